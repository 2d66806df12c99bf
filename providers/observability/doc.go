// Package observability defines the tracing, metrics and logging interfaces
// the client reports to, together with the attribute keys, span names and
// metric names it uses.
//
// [Provider] composes [Tracer], [Metrics] and [Logger]. A provider is either
// configured on a client or attached to a single call with
// [ContextWithObserver]; the active span of a call is available through
// [SpanFromContext]. The slogobs subpackage implements [Provider] on log/slog.
package observability
