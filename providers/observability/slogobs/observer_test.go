package slogobs

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/leofalp/genai-go/providers/observability"
)

func newTestObserver(level slog.Level) (*Observer, *bytes.Buffer) {
	var buf bytes.Buffer
	return New(WithOutput(&buf), WithLevel(level), WithFormat(FormatCompact), WithColors(false)), &buf
}

func TestObserver_LogLevels(t *testing.T) {
	observer, buf := newTestObserver(LevelTrace)
	ctx := context.Background()

	observer.Trace(ctx, "t", observability.String("k", "v"))
	observer.Debug(ctx, "d")
	observer.Info(ctx, "i")
	observer.Warn(ctx, "w")
	observer.Error(ctx, "e", observability.Error(errors.New("boom")))

	output := buf.String()
	for _, expected := range []string{"TRACE t -> {\"k\":\"v\"}", "DEBUG d", " INFO i", " WARN w", "ERROR e -> {\"error\":\"boom\"}"} {
		if !strings.Contains(output, expected) {
			t.Errorf("Expected %q in output, got:\n%s", expected, output)
		}
	}
}

func TestObserver_TraceFilteredAtDebug(t *testing.T) {
	observer, buf := newTestObserver(slog.LevelDebug)

	observer.Trace(context.Background(), "hidden")

	if buf.Len() != 0 {
		t.Errorf("Expected no output, got: %s", buf.String())
	}
}

func TestObserver_Span(t *testing.T) {
	observer, buf := newTestObserver(slog.LevelDebug)

	ctx, span := observer.StartSpan(context.Background(), observability.SpanRequest, observability.String(observability.AttrModel, "models/m"))
	if observability.SpanFromContext(ctx) != span {
		t.Fatal("Expected span to be stored in the returned context")
	}
	span.AddEvent(observability.EventResponse, observability.Int(observability.AttrHTTPStatusCode, 200))
	span.RecordError(errors.New("late failure"))
	span.SetStatus(observability.StatusError, "late failure")
	span.End()
	span.End()

	output := buf.String()
	if strings.Count(output, "Span ended") != 1 {
		t.Errorf("Expected exactly one span end, got:\n%s", output)
	}
	for _, expected := range []string{"Span started", `"event":"http.response.received"`, `"status":"error"`, `"genai.model":"models/m"`, `"duration":`} {
		if !strings.Contains(output, expected) {
			t.Errorf("Expected %q in output, got:\n%s", expected, output)
		}
	}
}

func TestObserver_Metrics(t *testing.T) {
	observer, buf := newTestObserver(slog.LevelDebug)
	ctx := context.Background()

	observer.Counter(observability.MetricRequestCount).Add(ctx, 1)
	observer.Counter(observability.MetricRequestCount).Add(ctx, 2, observability.String(observability.AttrStatus, "ok"))
	observer.Histogram(observability.MetricRequestDuration).Record(ctx, 12.5)

	if got := observer.CounterValue(observability.MetricRequestCount); got != 3 {
		t.Errorf("CounterValue = %d, expected 3", got)
	}
	if got := observer.CounterValue("unused"); got != 0 {
		t.Errorf("CounterValue(unused) = %d, expected 0", got)
	}
	if !strings.Contains(buf.String(), `"type":"histogram","value":12.5`) && !strings.Contains(buf.String(), `"value":12.5`) {
		t.Errorf("Expected histogram record, got:\n%s", buf.String())
	}
}

func TestObserver_WithLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	observer := New(WithLogger(logger))

	if observer.Logger() != logger {
		t.Fatal("Expected the provided logger to be used")
	}
	observer.Info(context.Background(), "via text handler")
	if !strings.Contains(buf.String(), "msg=\"via text handler\"") {
		t.Errorf("Unexpected output: %s", buf.String())
	}
}
