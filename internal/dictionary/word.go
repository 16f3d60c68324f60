package dictionary

import "github.com/pricofy/word-translator/internal/domain"

// Word is an immutable dictionary entry. Adding meanings produces a new Word.
type Word struct {
	chain    string
	langs    []string            // destination languages in registration order
	meanings map[string][]string // destination language -> meanings
}

func newWord(chain string) *Word {
	return &Word{chain: chain, meanings: make(map[string][]string)}
}

// Chain returns the word's spelling in its owning language.
func (w *Word) Chain() string {
	return w.chain
}

// Languages returns the destination languages the word has meanings in.
func (w *Word) Languages() []string {
	return append([]string(nil), w.langs...)
}

// Meanings returns every meaning registered for dest.
func (w *Word) Meanings(dest string) []string {
	return append([]string(nil), w.meanings[dest]...)
}

// with returns a copy of w with meanings appended under dest.
func (w *Word) with(dest string, meanings []string) *Word {
	next := &Word{
		chain:    w.chain,
		langs:    append([]string(nil), w.langs...),
		meanings: make(map[string][]string, len(w.meanings)+1),
	}
	for lang, ms := range w.meanings {
		next.meanings[lang] = ms
	}
	if _, ok := next.meanings[dest]; !ok {
		next.langs = append(next.langs, dest)
	}
	next.meanings[dest] = append(append([]string(nil), w.meanings[dest]...), meanings...)
	return next
}

// TransWord renders the entry with an explicit language tag on every meaning.
func (w *Word) TransWord() domain.TransWord {
	tw := domain.TransWord{SymbolChain: w.chain}
	for _, lang := range w.langs {
		for _, m := range w.meanings[lang] {
			tw.Meanings = append(tw.Meanings, domain.WordToOtherLang{Lang: lang, SymbolChain: m})
		}
	}
	return tw
}
