// Package hangul extracts leading consonants (choseong) from Korean text.
package hangul

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

const (
	syllableFirst = 0xAC00
	syllableLast  = 0xD7A3

	choseongFirst = 0x1100
	choseongLast  = 0x1112
)

// compatInitials maps the 19 conjoining leading consonants (U+1100..U+1112)
// to their compatibility jamo, in Unicode order.
var compatInitials = [...]rune{
	'ㄱ', 'ㄲ', 'ㄴ', 'ㄷ', 'ㄸ', 'ㄹ', 'ㅁ', 'ㅂ', 'ㅃ', 'ㅅ',
	'ㅆ', 'ㅇ', 'ㅈ', 'ㅉ', 'ㅊ', 'ㅋ', 'ㅌ', 'ㅍ', 'ㅎ',
}

var isCompatInitial = func() map[rune]bool {
	m := make(map[rune]bool, len(compatInitials))
	for _, r := range compatInitials {
		m[r] = true
	}
	return m
}()

// Initials returns the leading-consonant sequence of text.
//
// Precomposed syllables contribute their leading consonant. Standalone
// leading consonants pass through in compatibility form. Every other rune
// (Latin, digits, punctuation, vowels, final-only clusters such as ㄳ) is
// dropped, so an empty or non-Korean input yields "".
func Initials(text string) string {
	if text == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if c, ok := initialOf(r); ok {
			b.WriteRune(c)
		}
	}
	return b.String()
}

func initialOf(r rune) (rune, bool) {
	switch {
	case r >= syllableFirst && r <= syllableLast:
		// NFD splits a syllable into L V (T); L is always the first rune.
		lead, _ := utf8.DecodeRuneInString(norm.NFD.String(string(r)))
		return choseong(lead)
	case r >= choseongFirst && r <= choseongLast:
		return choseong(r)
	case isCompatInitial[r]:
		return r, true
	}
	return 0, false
}

func choseong(r rune) (rune, bool) {
	if r < choseongFirst || r > choseongLast {
		return 0, false
	}
	return compatInitials[r-choseongFirst], true
}

// IsInitialQuery reports whether s contains at least one standalone leading
// consonant, i.e. the user typed an abbreviation such as "ㅅㅅ".
func IsInitialQuery(s string) bool {
	for _, r := range s {
		if isCompatInitial[r] || (r >= choseongFirst && r <= choseongLast) {
			return true
		}
	}
	return false
}

// IsStockCode reports whether s looks like a KRX short code (5 or 6 ASCII digits).
func IsStockCode(s string) bool {
	if len(s) < 5 || len(s) > 6 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
