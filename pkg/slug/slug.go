// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package slug derives lowercase ASCII slugs ("science-fiction") for
// categories and genres created without an explicit one.
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
	separators = regexp.MustCompile(`[^a-z0-9]+`)
	stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

// From folds accents ("Café" becomes "cafe"), lowercases, and joins
// the remaining alphanumeric runs with single hyphens. Characters with no
// ASCII decomposition are dropped, so the result may be empty.
func From(s string) string {
	folded, _, err := transform.String(stripMarks, s)
	if err != nil {
		folded = s
	}
	return strings.Trim(separators.ReplaceAllString(strings.ToLower(folded), "-"), "-")
}

// FromMax is [From] truncated to max bytes without a trailing hyphen.
func FromMax(s string, max int) string {
	result := From(s)
	if max > 0 && len(result) > max {
		result = strings.TrimRight(result[:max], "-")
	}
	return result
}
