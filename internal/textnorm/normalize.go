// Package textnorm canonicalizes extracted document text before it is stored.
package textnorm

import (
	"regexp"
	"strings"
)

var (
	blankRuns = regexp.MustCompile(`\n{3,}`)
	spaceRuns = regexp.MustCompile(`[ \t]{2,}`)
)

// Normalize rewrites raw extractor output into its stored form:
// line endings become \n, runs of three or more newlines collapse to a
// blank line, runs of spaces/tabs collapse to one space, and the result is trimmed.
// The empty string normalizes to itself.
func Normalize(raw string) string {
	if raw == "" {
		return ""
	}
	s := strings.ReplaceAll(raw, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = blankRuns.ReplaceAllString(s, "\n\n")
	s = spaceRuns.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// IsBlank reports whether normalized text carries no content.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
