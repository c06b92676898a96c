package search

import (
	"strings"
	"unicode/utf8"
)

// Snippet returns about maxLen bytes of content centred on the first
// case-insensitive occurrence of any term. Without a match it returns the
// head of content. Cuts land on rune boundaries and are marked with "...".
func Snippet(content string, terms []string, maxLen int) string {
	content = strings.TrimSpace(content)
	if maxLen <= 0 || len(content) <= maxLen {
		return content
	}
	lower := strings.ToLower(content)
	hit := -1
	for _, term := range terms {
		term = strings.ToLower(strings.TrimSpace(term))
		if term == "" {
			continue
		}
		if i := strings.Index(lower, term); i >= 0 && (hit < 0 || i < hit) {
			hit = i
		}
	}
	start := 0
	if hit > maxLen/2 {
		start = hit - maxLen/2
	}
	end := start + maxLen
	if end > len(content) {
		end = len(content)
		start = end - maxLen
	}
	for start > 0 && !utf8.RuneStart(content[start]) {
		start++
	}
	for end < len(content) && !utf8.RuneStart(content[end]) {
		end--
	}
	out := content[start:end]
	if start > 0 {
		out = "..." + out
	}
	if end < len(content) {
		out += "..."
	}
	return out
}
