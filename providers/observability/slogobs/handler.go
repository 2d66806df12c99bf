package slogobs

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/leofalp/genai-go/internal/json"
)

// Handler is a slog.Handler writing compact or JSON records.
type Handler struct {
	format Format
	level  slog.Leveler
	colors bool
	attrs  []slog.Attr
	prefix string

	// mu serializes writes to output across handlers derived with WithAttrs
	// and WithGroup.
	mu     *sync.Mutex
	output io.Writer
}

// HandlerOptions configures a Handler.
type HandlerOptions struct {
	Format Format
	Level  slog.Leveler
	Output io.Writer
	// Colors enables ANSI level colors in compact output. Colors are also
	// enabled when Output is a terminal.
	Colors bool
}

// NewHandler creates a Handler. A nil opts writes compact INFO records to os.Stderr.
func NewHandler(opts *HandlerOptions) *Handler {
	if opts == nil {
		opts = &HandlerOptions{}
	}
	handler := &Handler{
		format: opts.Format,
		level:  opts.Level,
		colors: opts.Colors,
		output: opts.Output,
		mu:     &sync.Mutex{},
	}
	if handler.format == "" {
		handler.format = FormatCompact
	}
	if handler.level == nil {
		handler.level = slog.LevelInfo
	}
	if handler.output == nil {
		handler.output = os.Stderr
	}
	if !handler.colors && handler.format == FormatCompact {
		if file, ok := handler.output.(*os.File); ok {
			handler.colors = isTerminal(file)
		}
	}
	return handler
}

// Enabled reports whether level is at or above the handler's minimum.
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle writes one record.
func (h *Handler) Handle(_ context.Context, record slog.Record) error {
	fields := make(map[string]any, len(h.attrs)+record.NumAttrs())
	for _, attr := range h.attrs {
		addAttr(fields, "", attr)
	}
	record.Attrs(func(attr slog.Attr) bool {
		addAttr(fields, h.prefix, attr)
		return true
	})

	var line []byte
	var err error
	if h.format == FormatJSON {
		line, err = h.formatJSON(record, fields)
	} else {
		line, err = h.formatCompact(record, fields)
	}
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err = h.output.Write(line)
	return err
}

// WithAttrs returns a handler that adds attrs to every record.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	clone.attrs = append(clone.attrs, h.attrs...)
	for _, attr := range attrs {
		clone.attrs = append(clone.attrs, slog.Attr{Key: h.prefix + attr.Key, Value: attr.Value})
	}
	return &clone
}

// WithGroup returns a handler that qualifies subsequent keys with name.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.prefix = h.prefix + name + "."
	return &clone
}

func (h *Handler) formatCompact(record slog.Record, fields map[string]any) ([]byte, error) {
	var builder strings.Builder
	builder.WriteString(record.Time.Format(time.DateTime))
	builder.WriteByte(' ')

	level := fmt.Sprintf("%5s", levelString(record.Level))
	if h.colors {
		builder.WriteString(colorForLevel(record.Level))
		builder.WriteString(level)
		builder.WriteString(colorReset)
	} else {
		builder.WriteString(level)
	}
	builder.WriteByte(' ')
	builder.WriteString(record.Message)

	if len(fields) > 0 {
		encoded, err := json.Marshal(fields)
		if err != nil {
			return nil, err
		}
		builder.WriteString(" -> ")
		builder.Write(encoded)
	}
	builder.WriteByte('\n')
	return []byte(builder.String()), nil
}

func (h *Handler) formatJSON(record slog.Record, fields map[string]any) ([]byte, error) {
	fields[slog.TimeKey] = record.Time.Format(time.RFC3339Nano)
	fields[slog.LevelKey] = levelString(record.Level)
	fields[slog.MessageKey] = record.Message

	encoded, err := json.Marshal(fields)
	if err != nil {
		return nil, err
	}
	return append(encoded, '\n'), nil
}

func addAttr(fields map[string]any, prefix string, attr slog.Attr) {
	value := attr.Value.Resolve()
	if attr.Equal(slog.Attr{}) {
		return
	}

	if value.Kind() == slog.KindGroup {
		groupPrefix := prefix
		if attr.Key != "" {
			groupPrefix = prefix + attr.Key + "."
		}
		for _, member := range value.Group() {
			addAttr(fields, groupPrefix, member)
		}
		return
	}

	fields[prefix+attr.Key] = plainValue(value)
}

// plainValue converts values the JSON encoder would render poorly.
func plainValue(value slog.Value) any {
	switch value.Kind() {
	case slog.KindDuration:
		return value.Duration().String()
	case slog.KindTime:
		return value.Time().Format(time.RFC3339Nano)
	case slog.KindAny:
		switch typed := value.Any().(type) {
		case error:
			return typed.Error()
		case time.Duration:
			return typed.String()
		case fmt.Stringer:
			return typed.String()
		}
	}
	return value.Any()
}

func levelString(level slog.Level) string {
	switch {
	case level < slog.LevelDebug:
		return "TRACE"
	case level < slog.LevelInfo:
		return "DEBUG"
	case level < slog.LevelWarn:
		return "INFO"
	case level < slog.LevelError:
		return "WARN"
	default:
		return "ERROR"
	}
}

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorGreen  = "\033[32m"
	colorBlue   = "\033[34m"
	colorGray   = "\033[90m"
)

func colorForLevel(level slog.Level) string {
	switch {
	case level < slog.LevelDebug:
		return colorGray
	case level < slog.LevelInfo:
		return colorBlue
	case level < slog.LevelWarn:
		return colorGreen
	case level < slog.LevelError:
		return colorYellow
	default:
		return colorRed
	}
}

func isTerminal(file *os.File) bool {
	info, err := file.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
