// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug provides URL-friendly slug generation from arbitrary strings.
// Accented Latin letters are folded to ASCII; anything that has no ASCII
// decomposition is dropped.
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// nonWord matches anything that isn't a word character, whitespace, or hyphen.
	nonWord = regexp.MustCompile(`[^a-z0-9_\s-]`)
	// separators collapses runs of hyphens and whitespace into one hyphen.
	separators = regexp.MustCompile(`[-\s]+`)
	// valid matches a well-formed slug as accepted from clients.
	valid = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
)

// asciiFold decomposes characters (NFKD) and drops every non-ASCII rune,
// so "é" becomes "e" and "ﬁ" becomes "fi".
func asciiFold(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.Predicate(func(r rune) bool {
		return r > unicode.MaxASCII
	})))
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Generate creates a URL-friendly slug from the given string.
// Example: "Café, Society! 2026" → "cafe-society-2026"
func Generate(s string) string {
	result := strings.ToLower(asciiFold(s))
	result = nonWord.ReplaceAllString(result, "")
	result = strings.TrimSpace(result)
	result = separators.ReplaceAllString(result, "-")
	return strings.Trim(result, "-_")
}

// GenerateN is Generate cut to at most max characters, without leaving a
// dangling separator at the end.
func GenerateN(s string, max int) string {
	result := Generate(s)
	if max <= 0 || len(result) <= max {
		return result
	}
	// Output is pure ASCII, so byte and rune lengths agree.
	return strings.TrimRight(result[:max], "-_")
}

// Valid reports whether s is an acceptable client-supplied slug.
func Valid(s string) bool {
	return valid.MatchString(s)
}
