package transport

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/kaptinlin/jsonrepair"

	"github.com/leofalp/genai-go/internal/json"
	"github.com/leofalp/genai-go/internal/utils"
)

var (
	// ErrInvalidUTF8 marks a stream line or error payload that is not UTF-8 text.
	ErrInvalidUTF8 = errors.New("payload is not valid UTF-8")

	// ErrUnrecognizedPayload marks an error payload that does not carry a
	// structured error.
	ErrUnrecognizedPayload = errors.New("unrecognized error payload")
)

// ErrorDetail is one entry of RPCError.Details.
type ErrorDetail struct {
	Type     string            `json:"@type"`
	Reason   string            `json:"reason,omitempty"`
	Domain   string            `json:"domain,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// RPCError is a failure reported by the server itself, decoded from an error
// response body or from an error frame inside a stream.
type RPCError struct {
	Code    int           `json:"code"`
	Message string        `json:"message"`
	Status  string        `json:"status,omitempty"`
	Details []ErrorDetail `json:"details,omitempty"`
}

func (e *RPCError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("rpc error %d %s: %s", e.Code, e.Status, e.Message)
	}
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// Reason returns the reason of the first detail that has one.
func (e *RPCError) Reason() string {
	for _, detail := range e.Details {
		if detail.Reason != "" {
			return detail.Reason
		}
	}
	return ""
}

// DecodeError is a local failure to interpret a response payload. Payload is
// a truncated preview of what was received; HTML error pages are previewed
// as Markdown. StatusCode is the HTTP status of an error response, and zero
// when the payload came with a 200.
type DecodeError struct {
	StatusCode int
	Payload    string
	Err        error
}

func (e *DecodeError) Error() string {
	prefix := "decode response"
	if e.StatusCode != 0 {
		prefix = fmt.Sprintf("decode response (HTTP %d)", e.StatusCode)
	}
	if e.Payload == "" {
		return fmt.Sprintf("%s: %v", prefix, e.Err)
	}
	return fmt.Sprintf("%s: %v (payload: %s)", prefix, e.Err, e.Payload)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func newDecodeError(payload []byte, err error) *DecodeError {
	return &DecodeError{Payload: previewPayload(payload), Err: err}
}

// ParseError decodes payload as a structured server error. It accepts the
// {"error":{...}} envelope, a bare error object, or a one-element array of
// either. Malformed JSON is repaired before giving up. The result is a
// *RPCError, or a *DecodeError when no structured error can be read.
func ParseError(payload []byte) error {
	trimmed := bytes.TrimSpace(payload)
	if !utf8.Valid(trimmed) {
		return newDecodeError(payload, ErrInvalidUTF8)
	}

	rpcErr, cause := decodeRPCError(trimmed)
	if rpcErr != nil {
		return rpcErr
	}

	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		if repaired, repairErr := jsonrepair.JSONRepair(string(trimmed)); repairErr == nil {
			if rpcErr, _ := decodeRPCError([]byte(repaired)); rpcErr != nil {
				return rpcErr
			}
		}
	}

	if cause == nil {
		return newDecodeError(payload, ErrUnrecognizedPayload)
	}
	return newDecodeError(payload, fmt.Errorf("%w: %w", ErrUnrecognizedPayload, cause))
}

// parseStatusError is ParseError for the body of a non-200 response; a
// *DecodeError carries the status.
func parseStatusError(status int, payload []byte) error {
	err := ParseError(payload)
	if decodeErr, ok := err.(*DecodeError); ok {
		decodeErr.StatusCode = status
	}
	return err
}

// decodeRPCError returns (nil, nil) for valid JSON that is not an error.
func decodeRPCError(data []byte) (*RPCError, error) {
	if len(data) > 0 && data[0] == '[' {
		var elements []json.RawMessage
		if err := json.Unmarshal(data, &elements); err != nil {
			return nil, err
		}
		if len(elements) != 1 {
			return nil, nil
		}
		data = elements[0]
	}

	var envelope struct {
		Error *RPCError `json:"error"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, err
	}
	if envelope.Error != nil && envelope.Error.valid() {
		return envelope.Error, nil
	}

	var bare RPCError
	if err := json.Unmarshal(data, &bare); err != nil {
		return nil, err
	}
	if bare.valid() {
		return &bare, nil
	}
	return nil, nil
}

func (e *RPCError) valid() bool {
	return e.Code != 0 || e.Message != ""
}

func previewPayload(payload []byte) string {
	text := string(payload)
	if looksLikeHTML(text) {
		if markdown, err := htmltomarkdown.ConvertString(text); err == nil {
			text = strings.TrimSpace(markdown)
		}
	}
	return utils.TruncateStringDefault(text)
}

func looksLikeHTML(text string) bool {
	head := strings.ToLower(strings.TrimSpace(text))
	if len(head) > 512 {
		head = head[:512]
	}
	return strings.HasPrefix(head, "<!doctype html") || strings.HasPrefix(head, "<html") || strings.Contains(head, "<body")
}
