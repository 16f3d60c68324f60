// Package symbols decides which characters a language accepts.
package symbols

import (
	"unicode/utf8"

	"github.com/pricofy/word-translator/internal/domain"
)

// Set is an immutable set of runes.
type Set map[rune]struct{}

// NewSet builds a Set from every rune of s.
func NewSet(s string) Set {
	set := make(Set, utf8.RuneCountInString(s))
	for _, r := range s {
		set[r] = struct{}{}
	}
	return set
}

// Has reports whether r is a member of the set.
func (s Set) Has(r rune) bool {
	_, ok := s[r]
	return ok
}

// Rules are a language's character rule sets.
type Rules struct {
	Split   Set
	Allowed Set
}

// NewRules extracts the rule sets of lang.
func NewRules(lang domain.Language) Rules {
	return Rules{
		Split:   NewSet(lang.UnitSplitSymbols),
		Allowed: NewSet(lang.AllowedSymbols),
	}
}

// IsSplit reports whether r delimits units.
func (r Rules) IsSplit(c rune) bool {
	return r.Split.Has(c)
}

// IsAllowed reports whether c is valid for the language. Split symbols are
// always structurally valid, even when they are not part of the alphabet.
func IsAllowed(rules Rules, c rune) bool {
	return rules.Allowed.Has(c) || rules.Split.Has(c)
}

// InAlphabet reports whether c can appear inside a single unit: it is an
// allowed symbol and does not split units, even when listed in both sets.
func InAlphabet(rules Rules, c rune) bool {
	return rules.Allowed.Has(c) && !rules.Split.Has(c)
}

// FirstInvalid returns the first rune of s rejected by IsAllowed and its byte offset.
func FirstInvalid(rules Rules, s string) (rune, int, bool) {
	return first(s, func(c rune) bool { return IsAllowed(rules, c) })
}

// FirstOutsideAlphabet returns the first rune of s rejected by InAlphabet and its byte offset.
func FirstOutsideAlphabet(rules Rules, s string) (rune, int, bool) {
	return first(s, func(c rune) bool { return InAlphabet(rules, c) })
}

func first(s string, ok func(rune) bool) (rune, int, bool) {
	for i, c := range s {
		if !ok(c) {
			return c, i, true
		}
	}
	return 0, 0, false
}
