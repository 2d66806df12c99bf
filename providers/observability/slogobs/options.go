package slogobs

import (
	"io"
	"log/slog"
	"os"
)

// Option configures an Observer.
type Option func(*options)

type options struct {
	format Format
	level  slog.Level
	output io.Writer
	colors bool
	logger *slog.Logger
}

// WithFormat sets the output format.
func WithFormat(format Format) Option {
	return func(o *options) {
		o.format = format
	}
}

// WithLevel sets the minimum level.
func WithLevel(level slog.Level) Option {
	return func(o *options) {
		o.level = level
	}
}

// WithOutput sets the destination of records. Default os.Stderr.
func WithOutput(output io.Writer) Option {
	return func(o *options) {
		o.output = output
	}
}

// WithColors forces ANSI level colors in compact output.
func WithColors(enabled bool) Option {
	return func(o *options) {
		o.colors = enabled
	}
}

// WithLogger routes everything through logger; format, level, output and
// colors are then ignored.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func applyOptions(opts ...Option) *options {
	resolved := &options{
		format: FormatFromEnv(),
		level:  LevelFromEnv(),
		output: os.Stderr,
	}
	for _, opt := range opts {
		opt(resolved)
	}
	return resolved
}
