package observability

import (
	"context"
	"time"
)

// Provider is everything a model and its transport report to. Pass nil to
// turn reporting off; every caller checks for it.
type Provider interface {
	Tracer
	Metrics
	Logger
}

// Tracer opens the SpanRequest span of each generate, stream, count or
// model-listing call.
type Tracer interface {
	StartSpan(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Span covers one call from request preparation to the last stream chunk.
// The transport adds EventRequestPrepared, EventResponse or
// EventStreamStarted, one EventStreamChunk per chunk and EventStreamEnd, then
// sets the status and ends it exactly once.
type Span interface {
	End()
	SetAttributes(attrs ...Attribute)
	SetStatus(code StatusCode, description string)
	RecordError(err error)
	AddEvent(name string, attrs ...Attribute)
}

type StatusCode int

const (
	// StatusUnset is the status of a span still in flight.
	StatusUnset StatusCode = iota
	// StatusOK marks a call that did not fail, including a stream the
	// consumer stopped early.
	StatusOK
	// StatusError marks a call that ended with an error, including a
	// consumer-visible stream failure.
	StatusError
)

// Metrics resolves instruments by name, see MetricRequestCount,
// MetricRequestDuration and MetricStreamChunks. Asking twice for the same
// name must return the same instrument.
type Metrics interface {
	Counter(name string) Counter
	Histogram(name string) Histogram
}

type Counter interface {
	Add(ctx context.Context, value int64, attrs ...Attribute)
}

// Histogram receives request latencies in milliseconds.
type Histogram interface {
	Record(ctx context.Context, value float64, attrs ...Attribute)
}

// Logger mirrors slog's levels with an extra Trace level below Debug, used
// for the cURL rendering of outgoing requests.
type Logger interface {
	Trace(ctx context.Context, msg string, attrs ...Attribute)
	Debug(ctx context.Context, msg string, attrs ...Attribute)
	Info(ctx context.Context, msg string, attrs ...Attribute)
	Warn(ctx context.Context, msg string, attrs ...Attribute)
	Error(ctx context.Context, msg string, attrs ...Attribute)
}

// Attribute annotates a record, span or measurement. Keys come from
// semconv.go; Value is one of the types the constructors below produce.
type Attribute struct {
	Key   string
	Value any
}

func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

// Int, Int64 and Float64 carry sizes, counts and indexes.
func Int(key string, value int) Attribute {
	return Attribute{Key: key, Value: value}
}

func Int64(key string, value int64) Attribute {
	return Attribute{Key: key, Value: value}
}

func Float64(key string, value float64) Attribute {
	return Attribute{Key: key, Value: value}
}

func Bool(key string, value bool) Attribute {
	return Attribute{Key: key, Value: value}
}

// Duration keeps the time.Duration; handlers decide how to render it.
func Duration(key string, value time.Duration) Attribute {
	return Attribute{Key: key, Value: value}
}

// Error stores err's message under AttrError, or "" for a nil error, so a
// record always has the key.
func Error(err error) Attribute {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return Attribute{Key: AttrError, Value: message}
}
