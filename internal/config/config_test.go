package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// clearEnv unsets every variable Load reads for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{EnvAPIKey, EnvGoogleAPIKey, EnvHost, EnvModel, EnvTimeout, EnvLogLevel, EnvLogFormat, EnvLogFile} {
		t.Setenv(name, "")
		os.Unsetenv(name)
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("", filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Model != DefaultModel || cfg.Log.Level != "info" || cfg.Timeout != 2*time.Minute {
		t.Errorf("Unexpected defaults: %+v", cfg)
	}
	if !errors.Is(cfg.Validate(), ErrMissingAPIKey) {
		t.Errorf("Expected ErrMissingAPIKey, got %v", cfg.Validate())
	}
}

func TestLoad_YAMLFile(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "genai.yaml", `
api-key: from-file
model: gemini-1.5-flash
timeout: 30s
generation:
  temperature: 0.2
  max-output-tokens: 256
  stop-sequences: ["END"]
log:
  level: debug
  format: json
`)

	cfg, err := Load(path, filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIKey != "from-file" || cfg.Model != "gemini-1.5-flash" || cfg.Timeout != 30*time.Second {
		t.Errorf("Unexpected config: %+v", cfg)
	}
	if cfg.Generation.Temperature == nil || *cfg.Generation.Temperature != 0.2 || *cfg.Generation.MaxOutputTokens != 256 {
		t.Errorf("Unexpected generation: %+v", cfg.Generation)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" || cfg.Log.MaxBackups != 3 {
		t.Errorf("Expected file values merged over defaults, got %+v", cfg.Log)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate returned error: %v", err)
	}
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "genai.yaml", "api-key: from-file\nmodel: from-file\n")
	t.Setenv(EnvAPIKey, "from-env")
	t.Setenv(EnvModel, "gemini-pro-vision")
	t.Setenv(EnvHost, "http://127.0.0.1:8080")
	t.Setenv(EnvTimeout, "5s")
	t.Setenv(EnvLogFile, "/tmp/genai.log")

	cfg, err := Load(path, filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIKey != "from-env" || cfg.Model != "gemini-pro-vision" || cfg.Host != "http://127.0.0.1:8080" {
		t.Errorf("Expected environment values, got %+v", cfg)
	}
	if cfg.Timeout != 5*time.Second || cfg.Log.File != "/tmp/genai.log" {
		t.Errorf("Unexpected timeout or log file: %+v", cfg)
	}
}

func TestLoad_GoogleAPIKeyFallback(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvGoogleAPIKey, "google-key")

	cfg, err := Load("", filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIKey != "google-key" {
		t.Errorf("Expected GOOGLE_API_KEY fallback, got %q", cfg.APIKey)
	}
}

func TestLoad_DotEnv(t *testing.T) {
	clearEnv(t)
	dotenv := writeFile(t, ".env", "GEMINI_API_KEY=dotenv-key\nGEMINI_MODEL=dotenv-model\n")
	t.Setenv(EnvModel, "already-set")

	cfg, err := Load("", dotenv)
	t.Cleanup(func() { os.Unsetenv(EnvAPIKey) })
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIKey != "dotenv-key" {
		t.Errorf("Expected the key from .env, got %q", cfg.APIKey)
	}
	if cfg.Model != "already-set" {
		t.Errorf("Expected .env not to override the environment, got %q", cfg.Model)
	}
}

func TestLoad_Errors(t *testing.T) {
	clearEnv(t)

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected an error for a missing config file")
	}
	if _, err := Load(writeFile(t, "bad.yaml", "model: [unclosed")); err == nil {
		t.Error("Expected an error for invalid YAML")
	}

	t.Setenv(EnvTimeout, "soon")
	if _, err := Load("", filepath.Join(t.TempDir(), "missing.env")); err == nil || !strings.Contains(err.Error(), EnvTimeout) {
		t.Errorf("Expected an invalid timeout error, got %v", err)
	}
}

func TestConfig_YAMLRedactsKey(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.APIKey = "secret"

	rendered, err := cfg.YAML()
	if err != nil {
		t.Fatalf("YAML returned error: %v", err)
	}
	if strings.Contains(string(rendered), "secret") || !strings.Contains(string(rendered), "[redacted]") {
		t.Errorf("Expected a redacted key, got:\n%s", rendered)
	}
	if cfg.APIKey != "secret" {
		t.Error("YAML must not modify the config")
	}
}
