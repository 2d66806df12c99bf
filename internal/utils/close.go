package utils

import (
	"io"
	"log/slog"
)

// CloseWithLog closes closer and logs a failure instead of returning it.
// Used in defer statements on response bodies, where a close error must not
// replace the result of the call.
func CloseWithLog(closer io.Closer) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		slog.Warn("failed to close response body", "error", err.Error())
	}
}
