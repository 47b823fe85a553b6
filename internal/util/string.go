package util

import (
	"strings"
	"unicode"
)

// TruncateString cuts s to maxRunes runes and appends "..." when it was longer.
func TruncateString(s string, maxRunes int) string {
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	return string(runes[:maxRunes]) + "..."
}

// Normalize lowercases and trims s.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// SplitFirstField returns the first whitespace-delimited field of s and the
// remainder with its leading whitespace removed. Inner whitespace of the
// remainder, including newlines, is preserved.
func SplitFirstField(s string) (string, string) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	idx := strings.IndexFunc(s, unicode.IsSpace)
	if idx < 0 {
		return s, ""
	}
	return s[:idx], strings.TrimLeftFunc(s[idx:], unicode.IsSpace)
}
