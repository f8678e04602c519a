// Package textnorm provides deterministic text preprocessing applied to all
// content before it is embedded.
package textnorm

import "strings"

// MaxLength is the maximum number of runes a normalized string may contain.
// Embedding providers truncate silently at varying points; capping here keeps
// the stored content and the embedded content identical.
const MaxLength = 8192

// Normalize trims the input, collapses every internal whitespace run to a
// single space, and truncates the result to MaxLength runes. It is pure and
// idempotent. Callers must treat an empty result as unembeddable content.
func Normalize(text string) string {
	text = strings.Join(strings.Fields(text), " ")

	runes := []rune(text)
	if len(runes) > MaxLength {
		return string(runes[:MaxLength])
	}
	return text
}
