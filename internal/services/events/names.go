package events

import (
	"strings"
	"unicode"
)

var months = map[string]struct{}{
	"jan": {}, "feb": {}, "mar": {}, "apr": {}, "may": {}, "jun": {},
	"jul": {}, "aug": {}, "sep": {}, "oct": {}, "nov": {}, "dec": {},
}

// Normalize lower-cases a name and drops every space-like rune, including NBSP and zero-width characters.
func Normalize(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if unicode.IsSpace(r) || isInvisible(r) {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

func isInvisible(r rune) bool {
	switch r {
	case '\u200b', '\u200c', '\u200d', '\ufeff', '\u00a0':
		return true
	}
	return false
}

// Matcher tests normalized names against a fixed set of normalized prefixes.
type Matcher struct {
	prefixes []string
}

func NewMatcher(names []string) *Matcher {
	m := &Matcher{prefixes: make([]string, 0, len(names))}
	for _, n := range names {
		if p := Normalize(n); p != "" {
			m.prefixes = append(m.prefixes, p)
		}
	}
	return m
}

// Match reports whether the normalized name starts with any prefix.
func (m *Matcher) Match(normalized string) bool {
	for _, p := range m.prefixes {
		if strings.HasPrefix(normalized, p) {
			return true
		}
	}
	return false
}

// MatchesBound reports whether a bound key covers a row name. Both must be normalized.
// The key has to be a prefix of the name and whatever follows it has to be empty or
// start with a month abbreviation, so "cpi" covers "cpi" and "cpidec" but not "cpis.a".
func MatchesBound(name, key string) bool {
	if key == "" || !strings.HasPrefix(name, key) {
		return false
	}
	suffix := name[len(key):]
	if suffix == "" {
		return true
	}
	if len(suffix) < 3 {
		return false
	}
	_, ok := months[suffix[:3]]
	return ok
}
