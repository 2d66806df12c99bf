package slogobs

import (
	"log/slog"
	"os"
	"strings"
)

// Format selects the record layout written by [Handler].
type Format string

const (
	// FormatCompact writes one line per record:
	//	2026-01-02 10:40:35 DEBUG Stream line -> {"genai.chunk_index":0}
	FormatCompact Format = "compact"

	// FormatJSON writes one JSON object per record.
	FormatJSON Format = "json"
)

// LevelTrace is the level of the observer's Trace records.
const LevelTrace = slog.LevelDebug - 4

// ParseFormat returns the format named by s, or FormatCompact when s is unknown.
func ParseFormat(s string) Format {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON
	default:
		return FormatCompact
	}
}

func (f Format) String() string {
	return string(f)
}

// ParseLevel returns the level named by s (TRACE, DEBUG, INFO, WARN/WARNING,
// ERROR; case-insensitive). Unknown names yield slog.LevelInfo and false.
func ParseLevel(s string) (slog.Level, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TRACE":
		return LevelTrace, true
	case "DEBUG":
		return slog.LevelDebug, true
	case "INFO":
		return slog.LevelInfo, true
	case "WARN", "WARNING":
		return slog.LevelWarn, true
	case "ERROR":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

// FormatFromEnv reads GENAI_LOG_FORMAT, then LOG_FORMAT.
func FormatFromEnv() Format {
	return ParseFormat(firstEnv("GENAI_LOG_FORMAT", "LOG_FORMAT"))
}

// LevelFromEnv reads GENAI_LOG_LEVEL, then LOG_LEVEL. The default is INFO.
func LevelFromEnv() slog.Level {
	level, _ := ParseLevel(firstEnv("GENAI_LOG_LEVEL", "LOG_LEVEL"))
	return level
}

func firstEnv(names ...string) string {
	for _, name := range names {
		if value := os.Getenv(name); value != "" {
			return value
		}
	}
	return ""
}
