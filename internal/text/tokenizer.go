// Package text normalizes raw review text into token sequences suitable for
// word-vector training. Normalization lowercases, strips accents and
// punctuation, splits on word boundaries, filters by token length, and drops
// a fixed English stop-word set.
//
// Normalize is pure and deterministic; all functions are safe for concurrent
// use by multiple goroutines.
package text

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Token length bounds. Anything shorter than minTokenLen or longer than
// maxTokenLen (in runes) is dropped before stop-word filtering.
const (
	minTokenLen = 2
	maxTokenLen = 15
)

// deaccent decomposes to NFD, removes combining marks, and recomposes to NFC,
// so "café" normalizes to "cafe".
var deaccent = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize converts raw text into a cleaned, lowercase token sequence.
// The result may be empty (e.g. all-stopword input).
func Normalize(s string) []string {
	if s == "" {
		return nil
	}

	lowered := strings.ToLower(s)
	stripped, _, err := transform.String(deaccent, lowered)
	if err != nil {
		// Transform only fails on malformed UTF-8; fall back to the
		// lowercased input so such bytes split as non-letters below.
		stripped = lowered
	}

	fields := strings.FieldsFunc(stripped, func(r rune) bool {
		return !unicode.IsLetter(r)
	})

	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		n := len([]rune(f))
		if n < minTokenLen || n > maxTokenLen {
			continue
		}
		if isStopword(f) {
			continue
		}
		tokens = append(tokens, f)
	}
	if len(tokens) == 0 {
		return nil
	}
	return tokens
}
