// Package wirecase converts JSON object keys between the camelCase names used
// by the Go entities and the snake_case names used on the wire.
//
// The conversion rewrites every object key of a document, at any depth, and
// leaves values untouched. Keys that contain no word boundary are returned as
// they are, so decoding a payload that already uses camelCase is a no-op.
package wirecase

import (
	"bytes"
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/leofalp/genai-go/internal/json"
	"github.com/tidwall/gjson"
)

// ErrInvalidJSON is returned when the document to rewrite is not valid JSON.
var ErrInvalidJSON = errors.New("wirecase: invalid JSON document")

// ToSnake converts a camelCase key to snake_case.
//
//	promptFeedback  -> prompt_feedback
//	baseModelId     -> base_model_id
//	myURLProperty   -> my_url_property
func ToSnake(name string) string {
	if name == "" {
		return name
	}

	runes := []rune(name)
	var builder strings.Builder
	builder.Grow(len(name) + 4)

	for index, current := range runes {
		if !unicode.IsUpper(current) {
			builder.WriteRune(current)
			continue
		}

		if index > 0 {
			previous := runes[index-1]
			nextIsLower := index+1 < len(runes) && unicode.IsLower(runes[index+1])
			if unicode.IsLower(previous) || unicode.IsDigit(previous) || (unicode.IsUpper(previous) && nextIsLower) {
				builder.WriteByte('_')
			}
		}
		builder.WriteRune(unicode.ToLower(current))
	}

	return builder.String()
}

// ToCamel converts a snake_case key to camelCase. Leading and trailing
// underscores are preserved; a key without inner underscores is unchanged.
func ToCamel(name string) string {
	trimmed := strings.Trim(name, "_")
	if !strings.Contains(trimmed, "_") {
		return name
	}

	leading := name[:strings.Index(name, trimmed)]
	trailing := name[len(leading)+len(trimmed):]

	var builder strings.Builder
	builder.Grow(len(name))
	builder.WriteString(leading)

	first := true
	for _, word := range strings.Split(trimmed, "_") {
		if word == "" {
			continue
		}
		lower := strings.ToLower(word)
		if first {
			builder.WriteString(lower)
			first = false
			continue
		}
		head, size := utf8.DecodeRuneInString(lower)
		builder.WriteRune(unicode.ToUpper(head))
		builder.WriteString(lower[size:])
	}

	builder.WriteString(trailing)
	return builder.String()
}

// Encode rewrites every object key of document from camelCase to snake_case.
func Encode(document []byte) ([]byte, error) {
	return Transform(document, ToSnake)
}

// Decode rewrites every object key of document from snake_case to camelCase.
func Decode(document []byte) ([]byte, error) {
	return Transform(document, ToCamel)
}

// Transform rewrites every object key of document with rename.
func Transform(document []byte, rename func(string) string) ([]byte, error) {
	if !gjson.ValidBytes(document) {
		return nil, ErrInvalidJSON
	}

	var buffer bytes.Buffer
	buffer.Grow(len(document))
	if err := writeValue(&buffer, gjson.ParseBytes(document), rename); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

func writeValue(buffer *bytes.Buffer, value gjson.Result, rename func(string) string) error {
	switch {
	case value.IsObject():
		var writeErr error
		buffer.WriteByte('{')
		first := true
		value.ForEach(func(key, member gjson.Result) bool {
			if !first {
				buffer.WriteByte(',')
			}
			first = false

			encodedKey, err := json.Marshal(rename(key.String()))
			if err != nil {
				writeErr = err
				return false
			}
			buffer.Write(encodedKey)
			buffer.WriteByte(':')
			if err := writeValue(buffer, member, rename); err != nil {
				writeErr = err
				return false
			}
			return true
		})
		buffer.WriteByte('}')
		return writeErr

	case value.IsArray():
		var writeErr error
		buffer.WriteByte('[')
		first := true
		value.ForEach(func(_, element gjson.Result) bool {
			if !first {
				buffer.WriteByte(',')
			}
			first = false
			if err := writeValue(buffer, element, rename); err != nil {
				writeErr = err
				return false
			}
			return true
		})
		buffer.WriteByte(']')
		return writeErr

	default:
		buffer.WriteString(value.Raw)
		return nil
	}
}
