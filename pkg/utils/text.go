// Package utils provides shared utilities for text, math, and logging.
package utils

import (
	"strings"
	"unicode/utf8"
)

// Truncate returns s truncated to at most maxLen bytes, with "..." appended if truncated.
// The cut never splits a UTF-8 sequence. If maxLen is 0 or negative, returns s unchanged.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

// OneLine collapses every run of whitespace in s to a single space.
func OneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
