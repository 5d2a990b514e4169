package threat

import (
	"net/url"
	"strings"
)

// target is the normalized view of a URL that rules inspect.
type target struct {
	raw    string // as supplied by the caller
	full   string // raw, lowercased
	scheme string
	host   string // lowercased network location, userinfo and port included
	path   string

	// parsed is false when no authority could be extracted from the input.
	// scheme, host and path are empty in that case and rules reading them
	// contribute nothing.
	parsed bool
}

func parseTarget(raw string) *target {
	t := &target{raw: raw, full: strings.ToLower(raw)}

	if u, err := url.Parse(raw); err == nil {
		t.parsed = true
		t.scheme = strings.ToLower(u.Scheme)
		t.host = strings.ToLower(netloc(u))
		t.path = strings.ToLower(u.Path)
		return t
	}

	// net/url rejects bad escapes, non-numeric ports and odd host characters.
	// Those URLs still have a readable scheme and authority.
	scheme, authority, path, ok := splitURL(raw)
	if !ok {
		return t
	}
	t.parsed = true
	t.scheme = scheme
	t.host = strings.ToLower(authority)
	t.path = strings.ToLower(path)
	return t
}

// netloc reassembles the authority component, userinfo included.
func netloc(u *url.URL) string {
	if u.User == nil {
		return u.Host
	}
	return u.User.String() + "@" + u.Host
}

// splitURL cuts raw into scheme, authority and path without validating or
// unescaping any of them. The authority runs from "//" to the first '/', '?'
// or '#'. ok is false when the authority has an unbalanced IPv6 bracket.
func splitURL(raw string) (scheme, authority, path string, ok bool) {
	rest := strings.TrimLeftFunc(raw, func(r rune) bool { return r <= ' ' })
	rest = strings.NewReplacer("\t", "", "\r", "", "\n", "").Replace(rest)

	if i := strings.IndexByte(rest, ':'); i > 0 && isScheme(rest[:i]) {
		scheme, rest = strings.ToLower(rest[:i]), rest[i+1:]
	}

	if strings.HasPrefix(rest, "//") {
		rest = rest[2:]
		end := strings.IndexAny(rest, "/?#")
		if end < 0 {
			end = len(rest)
		}
		authority, rest = rest[:end], rest[end:]
		if strings.Contains(authority, "[") != strings.Contains(authority, "]") {
			return "", "", "", false
		}
	}

	path, _, _ = strings.Cut(rest, "#")
	path, _, _ = strings.Cut(path, "?")
	return scheme, authority, path, true
}

// isScheme reports whether s is a syntactically valid URL scheme.
func isScheme(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z':
		case i > 0 && ('0' <= c && c <= '9' || c == '+' || c == '-' || c == '.'):
		default:
			return false
		}
	}
	return s != ""
}

// leadingLabel returns the first dot-separated label of host after removing a
// leading "www.".
func (t *target) leadingLabel() string {
	h := strings.TrimPrefix(t.host, "www.")
	label, _, _ := strings.Cut(h, ".")
	return label
}
