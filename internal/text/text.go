// Package text provides the shared query/descriptor tokenizer.
//
// Catalog vectorization and query scoring must normalize text identically,
// otherwise term weights stop lining up. Both go through Tokenize.
package text

import (
	"strings"
	"unicode"
)

// stopwords are high-frequency tokens that carry no audience signal.
var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {},
	"by": {}, "for": {}, "from": {}, "in": {}, "is": {}, "of": {}, "on": {},
	"or": {}, "that": {}, "the": {}, "to": {}, "with": {}, "who": {},
}

// Tokenize lowercases s, strips punctuation, splits on whitespace and drops
// stopwords. The output order follows the input text.
func Tokenize(s string) []string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(unicode.ToLower(r))
		case r == '\'':
			// "environmentally-conscious" splits, "don't" collapses.
		default:
			b.WriteByte(' ')
		}
	}

	fields := strings.Fields(b.String())
	tokens := fields[:0]
	for _, f := range fields {
		if _, skip := stopwords[f]; skip {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}

// IsStopword reports whether the (already lowercased) token is a stopword.
func IsStopword(token string) bool {
	_, ok := stopwords[token]
	return ok
}
