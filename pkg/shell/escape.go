package shell

import (
	"strings"
)

// isSafeByte reports whether c can appear unquoted in a shell word.
func isSafeByte(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	}
	return strings.IndexByte("_@%+=:,./-", c) >= 0
}

// IsSafe reports whether s is non-empty and needs no quoting.
func IsSafe(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isSafeByte(s[i]) {
			return false
		}
	}
	return true
}

// Escape returns s as a single shell word that the shell reads back as s.
//
// Safe tokens are returned unchanged, so escaping an already-safe token is a
// no-op. Anything else is single-quoted. NUL bytes cannot be carried in an
// argument and are dropped.
func Escape(s string) string {
	s = strings.ReplaceAll(s, "\x00", "")
	if s == "" {
		return "''"
	}
	if IsSafe(s) {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// EscapeStrict is Escape without the NUL fallback.
func EscapeStrict(s string) (string, error) {
	if i := strings.IndexByte(s, 0); i >= 0 {
		return "", &EscapeError{Input: s, Offset: i}
	}
	return Escape(s), nil
}

// Join escapes each word and joins them with single spaces.
func Join(words ...string) string {
	escaped := make([]string, len(words))
	for i, w := range words {
		escaped[i] = Escape(w)
	}
	return strings.Join(escaped, " ")
}
