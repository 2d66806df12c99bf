package utils

import (
	"fmt"
	"unicode/utf8"
)

// DefaultMaxStringLength is the preview length used for payloads in logs and errors.
const DefaultMaxStringLength = 500

// TruncateString shortens s to at most maxLen bytes, cutting on a rune
// boundary, and records the original length in a suffix. A non-positive
// maxLen selects [DefaultMaxStringLength].
func TruncateString(s string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = DefaultMaxStringLength
	}
	if len(s) <= maxLen {
		return s
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return fmt.Sprintf("%s... (truncated, total: %d bytes)", s[:cut], len(s))
}

// TruncateStringDefault truncates s to DefaultMaxStringLength.
func TruncateStringDefault(s string) string {
	return TruncateString(s, DefaultMaxStringLength)
}
