// Package engine implements the in-memory stock search engine: the
// classification hierarchy, the security index, the immutable snapshot
// that bundles them, and the matcher/ranker/detail operations run against it.
package engine

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// Normalize prepares text for matching: NFC composition, full-width to
// half-width folding, case folding and removal of all whitespace.
// The same function is applied to indexed names and to queries.
func Normalize(s string) string {
	s = norm.NFC.String(s)
	s = width.Fold.String(s)
	// cases.Caser keeps state; one per call.
	s = cases.Fold().String(s)
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
