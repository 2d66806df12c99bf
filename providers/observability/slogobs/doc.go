// Package slogobs implements observability.Provider on log/slog.
//
// Spans and metric observations are written as debug records; the client's
// Trace level maps to [LevelTrace], below slog.LevelDebug. Output is either a
// compact single line with JSON attributes or one JSON object per record, see
// [Format]. Level and format default to GENAI_LOG_LEVEL and GENAI_LOG_FORMAT
// (falling back to LOG_LEVEL and LOG_FORMAT).
package slogobs
