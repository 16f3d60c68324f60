// Package segmenter splits content into translatable units and delimiters.
package segmenter

import (
	"iter"
	"strings"
	"unicode/utf8"

	"github.com/pricofy/word-translator/internal/symbols"
)

// Token is either a unit (a maximal run of non-split characters) or a single
// split character preserved verbatim for reassembly.
type Token struct {
	Text      string
	Offset    int // byte offset in the original content
	Delimiter bool
	// Valid is false for units holding a character the language does not allow.
	// Delimiters are always valid.
	Valid bool
}

// Segment scans content left to right using the language's split symbols.
// The returned sequence is lazy and can be ranged over any number of times.
// Empty content yields no tokens.
func Segment(rules symbols.Rules, content string) iter.Seq[Token] {
	return func(yield func(Token) bool) {
		start := -1
		for i, c := range content {
			if !rules.IsSplit(c) {
				if start < 0 {
					start = i
				}
				continue
			}

			if start >= 0 {
				if !yield(unit(rules, content[start:i], start)) {
					return
				}
				start = -1
			}

			_, size := utf8.DecodeRuneInString(content[i:])
			if !yield(Token{Text: content[i : i+size], Offset: i, Delimiter: true, Valid: true}) {
				return
			}
		}

		if start >= 0 {
			yield(unit(rules, content[start:], start))
		}
	}
}

func unit(rules symbols.Rules, text string, offset int) Token {
	_, _, invalid := symbols.FirstInvalid(rules, text)
	return Token{Text: text, Offset: offset, Valid: !invalid}
}

// Collect drains seq into a slice.
func Collect(seq iter.Seq[Token]) []Token {
	var tokens []Token
	for tok := range seq {
		tokens = append(tokens, tok)
	}
	return tokens
}

// Units returns only the non-delimiter tokens, in order.
func Units(tokens []Token) []Token {
	units := make([]Token, 0, len(tokens))
	for _, tok := range tokens {
		if !tok.Delimiter {
			units = append(units, tok)
		}
	}
	return units
}

// Join concatenates the token texts.
func Join(tokens []Token) string {
	var b strings.Builder
	for _, tok := range tokens {
		b.WriteString(tok.Text)
	}
	return b.String()
}
