// Package config loads the settings of the genai command: defaults, then an
// optional YAML file, then the environment. A .env file in the working
// directory is read into the environment first without overriding variables
// that are already set.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-pro"

// ErrMissingAPIKey is returned by Validate when no API key was found.
var ErrMissingAPIKey = errors.New("config: missing API key, set GEMINI_API_KEY")

// Environment variables read by Load.
const (
	EnvAPIKey       = "GEMINI_API_KEY"
	EnvGoogleAPIKey = "GOOGLE_API_KEY"
	EnvHost         = "GEMINI_API_HOST"
	EnvModel        = "GEMINI_MODEL"
	EnvTimeout      = "GENAI_TIMEOUT"
	EnvLogLevel     = "GENAI_LOG_LEVEL"
	EnvLogFormat    = "GENAI_LOG_FORMAT"
	EnvLogFile      = "GENAI_LOG_FILE"
)

// Config holds the settings of the genai command.
type Config struct {
	APIKey  string        `yaml:"api-key,omitempty"`
	Host    string        `yaml:"host,omitempty"`
	Model   string        `yaml:"model"`
	Timeout time.Duration `yaml:"timeout,omitempty"`

	Generation Generation `yaml:"generation,omitempty"`
	Log        Log        `yaml:"log"`
}

// Generation holds default generation parameters. Unset values are left to
// the server.
type Generation struct {
	Temperature     *float32 `yaml:"temperature,omitempty"`
	TopP            *float32 `yaml:"top-p,omitempty"`
	TopK            *int32   `yaml:"top-k,omitempty"`
	MaxOutputTokens *int32   `yaml:"max-output-tokens,omitempty"`
	StopSequences   []string `yaml:"stop-sequences,omitempty"`
}

// Log configures diagnostics. An empty File logs to stderr.
type Log struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	File       string `yaml:"file,omitempty"`
	MaxSizeMB  int    `yaml:"max-size-mb,omitempty"`
	MaxBackups int    `yaml:"max-backups,omitempty"`
	MaxAgeDays int    `yaml:"max-age-days,omitempty"`
	Compress   bool   `yaml:"compress,omitempty"`
}

// NewDefaultConfig returns the configuration used when nothing is set.
func NewDefaultConfig() *Config {
	return &Config{
		Model:   DefaultModel,
		Timeout: 2 * time.Minute,
		Log: Log{
			Level:      "info",
			Format:     "compact",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// Load builds the configuration. path names an optional YAML file; an empty
// path skips it. dotenvFiles default to ".env"; missing ones are ignored.
func Load(path string, dotenvFiles ...string) (*Config, error) {
	cfg := NewDefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if len(dotenvFiles) == 0 {
		dotenvFiles = []string{".env"}
	}
	for _, file := range dotenvFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", file, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if key := firstEnv(EnvAPIKey, EnvGoogleAPIKey); key != "" {
		c.APIKey = key
	}
	if host := os.Getenv(EnvHost); host != "" {
		c.Host = host
	}
	if model := os.Getenv(EnvModel); model != "" {
		c.Model = model
	}
	if timeout := os.Getenv(EnvTimeout); timeout != "" {
		parsed, err := time.ParseDuration(timeout)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvTimeout, err)
		}
		c.Timeout = parsed
	}
	if level := os.Getenv(EnvLogLevel); level != "" {
		c.Log.Level = level
	}
	if format := os.Getenv(EnvLogFormat); format != "" {
		c.Log.Format = format
	}
	if file := os.Getenv(EnvLogFile); file != "" {
		c.Log.File = file
	}
	return nil
}

// Validate reports missing required settings.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return ErrMissingAPIKey
	}
	if c.Model == "" {
		return errors.New("config: model must not be empty")
	}
	return nil
}

// YAML renders c without the API key, for display.
func (c *Config) YAML() ([]byte, error) {
	redacted := *c
	if redacted.APIKey != "" {
		redacted.APIKey = "[redacted]"
	}
	return yaml.Marshal(&redacted)
}

func firstEnv(names ...string) string {
	for _, name := range names {
		if value := strings.TrimSpace(os.Getenv(name)); value != "" {
			return value
		}
	}
	return ""
}
