package util

import (
	"errors"
	"strings"
	"unicode"
)

// SanitizeFileName makes an uploaded file name safe for a Content-Disposition
// header. Path separators and quotes become underscores, control characters
// are dropped, and traversal patterns are rejected.
func SanitizeFileName(name string) (string, error) {
	if strings.Contains(name, "..") {
		return "", errors.New("invalid file name")
	}
	s := strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\' || r == '"':
			return '_'
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, strings.TrimSpace(name))
	s = strings.TrimSpace(s)
	if s == "" {
		return "", errors.New("invalid file name")
	}
	return s, nil
}
