package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/leofalp/genai-go/internal/config"
	"github.com/leofalp/genai-go/providers/observability/slogobs"
)

// newObserver builds the observer for settings. When settings.File is set
// records go to a rotating file, which the caller must close.
func newObserver(settings config.Log) (*slogobs.Observer, io.Closer, error) {
	level, ok := slogobs.ParseLevel(settings.Level)
	if !ok {
		return nil, nil, fmt.Errorf("invalid log level %q", settings.Level)
	}

	opts := []slogobs.Option{
		slogobs.WithLevel(level),
		slogobs.WithFormat(slogobs.ParseFormat(settings.Format)),
	}

	if settings.File == "" {
		return slogobs.New(append(opts, slogobs.WithOutput(os.Stderr))...), nil, nil
	}

	if err := os.MkdirAll(filepath.Dir(settings.File), 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	writer := &lumberjack.Logger{
		Filename:   settings.File,
		MaxSize:    settings.MaxSizeMB,
		MaxBackups: settings.MaxBackups,
		MaxAge:     settings.MaxAgeDays,
		Compress:   settings.Compress,
	}
	return slogobs.New(append(opts, slogobs.WithOutput(writer))...), writer, nil
}
