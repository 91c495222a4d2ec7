// Package ident derives database-safe identifiers from user supplied names.
package ident

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

var ErrEmptyIdentifier = errors.New("ident: name has no identifier characters")

// Sanitize maps a display name to a lowercase identifier made only of
// [a-z0-9_-]. Whitespace becomes '_', every other character is dropped.
// Characters are processed one by one and never reordered; "" maps to "".
func Sanitize(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if out, ok := classify(string(r)); ok {
			b.WriteRune(out)
		}
	}
	return b.String()
}

// Identifier is Sanitize for callers that need a usable identifier.
func Identifier(name string) (string, error) {
	id := Sanitize(name)
	if id == "" {
		return "", fmt.Errorf("%w: %q", ErrEmptyIdentifier, name)
	}
	return id, nil
}

// Unique returns base when it is free, otherwise the first free base_N
// starting at N=2.
func Unique(base string, taken func(string) bool) string {
	if !taken(base) {
		return base
	}
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s_%d", base, n)
		if !taken(candidate) {
			return candidate
		}
	}
}

// classify maps exactly one character to its identifier form.
// Panics if unit is not a single character.
func classify(unit string) (rune, bool) {
	if utf8.RuneCountInString(unit) != 1 {
		panic(fmt.Sprintf("ident: classify expects a single character, got %q", unit))
	}
	r, _ := utf8.DecodeRuneInString(unit)

	if unicode.IsSpace(r) {
		return '_', true
	}
	r = unicode.ToLower(r)
	switch {
	case r >= 'a' && r <= 'z':
		return r, true
	case r >= '0' && r <= '9':
		return r, true
	case r == '_' || r == '-':
		return r, true
	}
	return 0, false
}
