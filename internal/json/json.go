// Package json is the JSON codec used for every request body and response
// payload. It mirrors the subset of encoding/json the library needs and is
// backed by bytedance/sonic configured for standard-library compatibility,
// so struct tags, omitempty, []byte as base64 and custom (Un)Marshalers behave
// exactly as they do with encoding/json.
package json

import (
	stdjson "encoding/json"

	"github.com/bytedance/sonic"
)

// api is the sonic configuration shared by all helpers in this package.
var api = sonic.ConfigStd

// Marshal returns the JSON encoding of v.
func Marshal(v any) ([]byte, error) {
	return api.Marshal(v)
}

// MarshalIndent is like Marshal but applies indentation to the output.
func MarshalIndent(v any, prefix, indent string) ([]byte, error) {
	return api.MarshalIndent(v, prefix, indent)
}

// Unmarshal parses the JSON-encoded data and stores the result in v.
func Unmarshal(data []byte, v any) error {
	return api.Unmarshal(data, v)
}

// Valid reports whether data is a valid JSON encoding.
func Valid(data []byte) bool {
	return api.Valid(data)
}

type (
	// RawMessage is a raw encoded JSON value.
	RawMessage = stdjson.RawMessage

	// SyntaxError is a description of a JSON syntax error.
	SyntaxError = stdjson.SyntaxError

	// UnmarshalTypeError describes a JSON value that was not appropriate for a Go type.
	UnmarshalTypeError = stdjson.UnmarshalTypeError
)
