package genai

import (
	"errors"
	"fmt"

	"github.com/leofalp/genai-go/internal/transport"
)

var (
	// ErrPromptBlocked matches a *GenerateContentError raised because the
	// server rejected the prompt.
	ErrPromptBlocked = errors.New("prompt blocked")

	// ErrResponseStoppedEarly matches a *GenerateContentError raised because
	// the first candidate finished for a reason other than STOP.
	ErrResponseStoppedEarly = errors.New("response stopped early")

	// ErrInternal matches errors raised because the call itself failed: a
	// network error, an undecodable payload, or an error reported by the server.
	ErrInternal = errors.New("internal error")

	// ErrStreamConsumed is returned when a GenerateContentStream is read twice.
	ErrStreamConsumed = errors.New("stream already consumed")

	// ErrInvalidUTF8 marks stream payloads that are not UTF-8 text.
	ErrInvalidUTF8 = transport.ErrInvalidUTF8
)

type (
	// RPCError is an error reported by the server, reachable with errors.As
	// from the errors returned by this package.
	RPCError = transport.RPCError

	// ErrorDetail is one entry of RPCError.Details.
	ErrorDetail = transport.ErrorDetail

	// DecodeError is a response payload that could not be interpreted.
	DecodeError = transport.DecodeError
)

// GenerateContentError is the error of a generate call or a streamed chunk.
// It matches exactly one of ErrPromptBlocked, ErrResponseStoppedEarly and
// ErrInternal with errors.Is. Response is set for the first two.
type GenerateContentError struct {
	kind error

	// BlockReason is set when the prompt was blocked.
	BlockReason BlockReason
	// FinishReason is set when the response stopped early.
	FinishReason FinishReason
	// Response is the response that failed the check.
	Response *GenerateContentResponse
	// Err is the underlying cause of an internal error.
	Err error
}

func (e *GenerateContentError) Error() string {
	switch e.kind {
	case ErrPromptBlocked:
		return fmt.Sprintf("genai: prompt blocked: %s", e.BlockReason)
	case ErrResponseStoppedEarly:
		return fmt.Sprintf("genai: response stopped early: %s", e.FinishReason)
	default:
		return fmt.Sprintf("genai: internal error: %v", e.Err)
	}
}

func (e *GenerateContentError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.kind}
	}
	return []error{e.kind, e.Err}
}

// CountTokensError is the error of a token count. It matches ErrInternal.
type CountTokensError struct {
	Err error
}

func (e *CountTokensError) Error() string {
	return fmt.Sprintf("genai: count tokens: internal error: %v", e.Err)
}

func (e *CountTokensError) Unwrap() []error {
	return []error{ErrInternal, e.Err}
}
