// Package match implements the offline retrieval pipeline: text
// normalization, synonym expansion and corpus scoring.
package match

import (
	"regexp"
	"strings"
)

var (
	punctRe = regexp.MustCompile(`[^\w\s]`)
	spaceRe = regexp.MustCompile(`\s+`)
)

// Normalize canonicalizes text for matching: lower-case, strip everything
// that is not a word character or whitespace, collapse whitespace runs and
// trim. Idempotent; returns "" for empty or punctuation-only input.
func Normalize(text string) string {
	s := strings.ToLower(text)
	s = punctRe.ReplaceAllString(s, "")
	s = spaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// tokens splits normalized text on single spaces. Normalize guarantees no
// empty fields for non-empty input.
func tokens(normalized string) []string {
	if normalized == "" {
		return nil
	}
	return strings.Split(normalized, " ")
}
