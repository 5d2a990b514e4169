// Package target prepares user-supplied URL strings for scoring.
//
// Users paste URLs with or without a scheme:
//
//	https://example.com/login   (unchanged)
//	example.com/login           (becomes http://example.com/login)
//
// The scorer expects a scheme-qualified URL, so every entry point (HTTP
// handler, CLI, SDK) runs input through Normalize first.
package target

import (
	"errors"
	"strings"
)

// DefaultScheme is prepended to input that has no recognised scheme.
const DefaultScheme = "http://"

// ErrEmpty is returned by Normalize when the input is blank.
var ErrEmpty = errors.New("no URL provided")

// Normalize trims surrounding whitespace and prepends DefaultScheme unless the
// input already starts with "http://" or "https://". The prefix check is
// case-sensitive: "HTTP://x" is treated as scheme-less.
func Normalize(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", ErrEmpty
	}
	if HasScheme(s) {
		return s, nil
	}
	return DefaultScheme + s, nil
}

// HasScheme reports whether s starts with one of the schemes the scorer knows.
func HasScheme(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
