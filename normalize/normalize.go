// Package normalize folds Japanese and Latin text into a canonical form for
// substring matching.
//
// Folding is a fixed pipeline of per-rune stages:
//   - hiragana (U+3041..U+3096) is shifted to katakana
//   - letters are lowercased, then full-width Latin letters and digits are
//     narrowed to their ASCII counterparts
//   - the ideographic space (U+3000) becomes an ASCII space
//
// Script folding runs first because lowercasing only targets cased scripts.
// Every other rune passes through unchanged, so Fold is total and
// idempotent.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

const (
	hiraganaFirst  = '\u3041'
	hiraganaLast   = '\u3096'
	katakanaOffset = 0x60

	fullWidthOffset  = 0xFEE0
	ideographicSpace = '\u3000'
)

var (
	toKatakana = runes.Map(func(r rune) rune {
		if r >= hiraganaFirst && r <= hiraganaLast {
			return r + katakanaOffset
		}
		return r
	})

	toLowerNarrow = runes.Map(func(r rune) rune {
		r = unicode.ToLower(r)
		if isFullWidthAlnum(r) {
			return r - fullWidthOffset
		}
		return r
	})

	toASCIISpace = runes.Map(func(r rune) rune {
		if r == ideographicSpace {
			return ' '
		}
		return r
	})
)

// isFullWidthAlnum reports whether r is in Ａ-Ｚ, ａ-ｚ or ０-９.
func isFullWidthAlnum(r rune) bool {
	return (r >= '\uFF21' && r <= '\uFF3A') || (r >= '\uFF41' && r <= '\uFF5A') || (r >= '\uFF10' && r <= '\uFF19')
}

// Transformer returns a new folding transformer. The returned value keeps
// internal buffers and must not be shared between goroutines.
func Transformer() transform.Transformer {
	return transform.Chain(toKatakana, toLowerNarrow, toASCIISpace)
}

// Fold returns the canonical search form of s.
func Fold(s string) string {
	if isFolded(s) {
		return s
	}
	result, _, err := transform.String(Transformer(), s)
	if err != nil {
		// runes.Map never fails; keep the input rather than lose it
		return s
	}
	return result
}

// isFolded reports whether s is plain ASCII without uppercase letters, which
// folding would leave untouched.
func isFolded(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 0x80 || (c >= 'A' && c <= 'Z') {
			return false
		}
	}
	return true
}

// Contains reports whether needle occurs in haystack after folding both.
func Contains(haystack, needle string) bool {
	return strings.Contains(Fold(haystack), Fold(needle))
}
