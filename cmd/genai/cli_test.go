package main

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/tidwall/gjson"

	"github.com/leofalp/genai-go/genai"
	"github.com/leofalp/genai-go/internal/config"
)

const haiku = `{"candidates":[{"index":0,"content":{"role":"model","parts":[{"text":"Petals drift on wind"}]},"finishReason":"STOP"}]}`

// runCLI executes the root command against server with args and returns
// what it printed.
func runCLI(t *testing.T, server *httptest.Server, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv(config.EnvAPIKey, "")
	t.Setenv(config.EnvGoogleAPIKey, "")

	base := []string{"--log-level", "error", "--model", "gemini-pro"}
	if server != nil {
		base = append(base, "--api-key", "test-key", "--host", server.URL)
	}

	cmd := newRootCmd()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append(base, args...))

	err := cmd.Execute()
	return out.String(), err
}

// captureRequests records every request body the server receives.
func captureRequests(t *testing.T, handler http.HandlerFunc) (*httptest.Server, chan []byte) {
	t.Helper()
	bodies := make(chan []byte, 8)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		bodies <- body
		handler(w, r)
	}))
	t.Cleanup(server.Close)
	return server, bodies
}

func respond(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, body)
	}
}

func TestGenerate_PrintsText(t *testing.T) {
	server, bodies := captureRequests(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1beta/models/gemini-pro:generateContent" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("x-goog-api-key") != "test-key" {
			t.Errorf("Unexpected API key %q", r.Header.Get("x-goog-api-key"))
		}
		respond(haiku)(w, r)
	})

	out, err := runCLI(t, server, "", "generate", "Write", "a", "haiku")
	if err != nil {
		t.Fatalf("generate returned error: %v", err)
	}
	if out != "Petals drift on wind\n" {
		t.Errorf("Unexpected output %q", out)
	}

	body := <-bodies
	if got := gjson.GetBytes(body, "contents.0.parts.0.text").String(); got != "Write a haiku" {
		t.Errorf("Expected the joined prompt, got %q in %s", got, body)
	}
	if gjson.GetBytes(body, "generation_config").Exists() {
		t.Errorf("Expected no generation config, got %s", body)
	}
}

func TestGenerate_StdinFlagsAndAttachment(t *testing.T) {
	server, bodies := captureRequests(t, respond(haiku))
	attachment := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(attachment, []byte("plain notes"), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := runCLI(t, server, "  from stdin\n", "generate", "--temperature", "0.5", "--max-output-tokens", "64", "--file", attachment, "-")
	if err != nil {
		t.Fatalf("generate returned error: %v", err)
	}

	body := <-bodies
	checks := map[string]string{
		"contents.0.parts.0.text":                  "from stdin",
		"contents.0.parts.1.inline_data.mime_type": "text/plain",
		"generation_config.temperature":            "0.5",
		"generation_config.max_output_tokens":      "64",
	}
	for path, expected := range checks {
		if got := gjson.GetBytes(body, path).String(); got != expected {
			t.Errorf("%s = %q, expected %q in %s", path, got, expected, body)
		}
	}
}

func TestGenerate_JSON(t *testing.T) {
	server, _ := captureRequests(t, respond(haiku))

	out, err := runCLI(t, server, "", "generate", "--json", "hi")
	if err != nil {
		t.Fatalf("generate returned error: %v", err)
	}
	if got := gjson.Get(out, "candidates.0.finishReason").String(); got != "STOP" {
		t.Errorf("Expected a JSON response, got %s", out)
	}
}

func TestGenerate_Blocked(t *testing.T) {
	server, _ := captureRequests(t, respond(`{"promptFeedback":{"blockReason":"SAFETY"}}`))

	_, err := runCLI(t, server, "", "generate", "hi")
	if !errors.Is(err, genai.ErrPromptBlocked) {
		t.Fatalf("Expected ErrPromptBlocked, got %v", err)
	}
	if !strings.Contains(err.Error(), "rephrase") {
		t.Errorf("Expected a hint, got %v", err)
	}
}

func TestGenerate_ServerError(t *testing.T) {
	server, _ := captureRequests(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":{"code":400,"message":"API key not valid","status":"INVALID_ARGUMENT"}}`)
	})

	_, err := runCLI(t, server, "", "generate", "hi")
	var rpcErr *genai.RPCError
	if !errors.As(err, &rpcErr) || rpcErr.Code != 400 {
		t.Fatalf("Expected an RPCError, got %v", err)
	}
}

func TestGenerate_MissingAPIKey(t *testing.T) {
	_, err := runCLI(t, nil, "", "generate", "hi")
	if !errors.Is(err, config.ErrMissingAPIKey) {
		t.Fatalf("Expected ErrMissingAPIKey, got %v", err)
	}
}

func TestGenerate_EmptyPrompt(t *testing.T) {
	server, _ := captureRequests(t, respond(haiku))

	if _, err := runCLI(t, server, "   ", "generate"); err == nil {
		t.Fatal("Expected an error for an empty prompt")
	}
}

func TestStream_PrintsChunks(t *testing.T) {
	server, _ := captureRequests(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1beta/models/gemini-pro:streamGenerateContent" || r.URL.Query().Get("alt") != "sse" {
			t.Errorf("Unexpected URL %s", r.URL)
		}
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = io.WriteString(w, "data: {\"candidates\":[{\"content\":{\"parts\":[{\"text\":\"Petals \"}]}}]}\n\n")
		_, _ = io.WriteString(w, "data: {\"candidates\":[{\"content\":{\"parts\":[{\"text\":\"drift\"}]},\"finishReason\":\"STOP\"}]}\n\n")
	})

	out, err := runCLI(t, server, "", "stream", "hi")
	if err != nil {
		t.Fatalf("stream returned error: %v", err)
	}
	if out != "Petals drift\n" {
		t.Errorf("Unexpected output %q", out)
	}
}

func TestStream_StopsOnRejectedChunk(t *testing.T) {
	server, _ := captureRequests(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = io.WriteString(w, "data: {\"candidates\":[{\"content\":{\"parts\":[{\"text\":\"Petals\"}]}}]}\n\n")
		_, _ = io.WriteString(w, "data: {\"candidates\":[{\"finishReason\":\"MAX_TOKENS\"}]}\n\n")
	})

	out, err := runCLI(t, server, "", "stream", "hi")
	if !errors.Is(err, genai.ErrResponseStoppedEarly) {
		t.Fatalf("Expected ErrResponseStoppedEarly, got %v", err)
	}
	if !strings.Contains(err.Error(), "--max-output-tokens") {
		t.Errorf("Expected a hint, got %v", err)
	}
	if out != "Petals\n" {
		t.Errorf("Expected the text received before the failure, got %q", out)
	}
}

func TestStream_OutlivesTimeout(t *testing.T) {
	server, _ := captureRequests(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = io.WriteString(w, "data: {\"candidates\":[{\"content\":{\"parts\":[{\"text\":\"Petals \"}]}}]}\n\n")
		w.(http.Flusher).Flush()
		time.Sleep(300 * time.Millisecond)
		_, _ = io.WriteString(w, "data: {\"candidates\":[{\"content\":{\"parts\":[{\"text\":\"drift\"}]},\"finishReason\":\"STOP\"}]}\n\n")
	})

	out, err := runCLI(t, server, "", "--timeout", "100ms", "stream", "hi")
	if err != nil {
		t.Fatalf("stream returned error: %v", err)
	}
	if out != "Petals drift\n" {
		t.Errorf("Unexpected output %q", out)
	}
}

func TestGenerate_Timeout(t *testing.T) {
	server, _ := captureRequests(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.(http.Flusher).Flush()
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
		_, _ = io.WriteString(w, haiku)
	})

	if _, err := runCLI(t, server, "", "--timeout", "100ms", "generate", "hi"); err == nil {
		t.Fatal("Expected a slow body to exceed the timeout")
	}
}

func TestCountTokens(t *testing.T) {
	server, _ := captureRequests(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1beta/models/gemini-pro:countTokens" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		respond(`{"totalTokens":7}`)(w, r)
	})

	out, err := runCLI(t, server, "", "count-tokens", "How long is this?")
	if err != nil {
		t.Fatalf("count-tokens returned error: %v", err)
	}
	if out != "7\n" {
		t.Errorf("Unexpected output %q", out)
	}
}

func TestModelsList(t *testing.T) {
	server, _ := captureRequests(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("Expected GET, got %s", r.Method)
		}
		if r.URL.Query().Get("pageToken") == "" {
			respond(`{"models":[{"name":"models/gemini-pro","displayName":"Gemini Pro","inputTokenLimit":30720,"outputTokenLimit":2048,"supportedGenerationMethods":["generateContent","countTokens"]}],"nextPageToken":"next"}`)(w, r)
			return
		}
		respond(`{"models":[{"name":"models/embedding-001","displayName":"Embedding 001","supportedGenerationMethods":["embedContent"]}]}`)(w, r)
	})

	out, err := runCLI(t, server, "", "models", "list")
	if err != nil {
		t.Fatalf("models list returned error: %v", err)
	}
	if !strings.Contains(out, "models/gemini-pro") || !strings.Contains(out, "models/embedding-001") {
		t.Errorf("Expected both pages, got:\n%s", out)
	}

	out, err = runCLI(t, server, "", "models", "list", "--method", "generateContent")
	if err != nil {
		t.Fatalf("models list returned error: %v", err)
	}
	if strings.Contains(out, "embedding-001") || !strings.Contains(out, "30720") {
		t.Errorf("Expected only generation models, got:\n%s", out)
	}
}

func TestModelsGet(t *testing.T) {
	server, _ := captureRequests(t, func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, "/v1beta/")
		respond(`{"name":"` + name + `","displayName":"Described"}`)(w, r)
	})

	out, err := runCLI(t, server, "", "models", "get")
	if err != nil {
		t.Fatalf("models get returned error: %v", err)
	}
	if got := gjson.Get(out, "name").String(); got != "models/gemini-pro" {
		t.Errorf("Expected the configured model, got %s", out)
	}

	out, err = runCLI(t, server, "", "models", "get", "gemini-1.5-flash")
	if err != nil {
		t.Fatalf("models get returned error: %v", err)
	}
	if got := gjson.Get(out, "name").String(); got != "models/gemini-1.5-flash" {
		t.Errorf("Expected the named model, got %s", out)
	}
}

func TestConfigShow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "genai.yaml")
	if err := os.WriteFile(path, []byte("api-key: file-secret\ngeneration:\n  temperature: 0.3\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	out, err := runCLI(t, nil, "", "--config", path, "config", "show")
	if err != nil {
		t.Fatalf("config show returned error: %v", err)
	}
	if strings.Contains(out, "file-secret") || !strings.Contains(out, "temperature: 0.3") {
		t.Errorf("Unexpected config output:\n%s", out)
	}
}

func TestLogFile(t *testing.T) {
	server, _ := captureRequests(t, respond(haiku))
	logFile := filepath.Join(t.TempDir(), "logs", "genai.log")

	if _, err := runCLI(t, server, "", "generate", "--log-level", "info", "--log-format", "json", "--log-file", logFile, "hi"); err != nil {
		t.Fatalf("generate returned error: %v", err)
	}

	logged, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(logged), "Model initialized") {
		t.Errorf("Expected the model log in the file, got:\n%s", logged)
	}
}

func TestInvalidLogLevel(t *testing.T) {
	if _, err := runCLI(t, nil, "", "--log-level", "loud", "config", "show"); err == nil {
		t.Fatal("Expected an error for an unknown log level")
	}
}
