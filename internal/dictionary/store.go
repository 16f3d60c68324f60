// Package dictionary holds the per-language word sets and their meanings.
//
// A Store is safe for concurrent use. Each language has its own read/write
// lock: lookups never block each other and only wait on an in-flight write to
// the same language. Words are immutable, so a reader never observes a
// partially registered entry.
package dictionary

import (
	"sort"
	"sync"

	"github.com/pricofy/word-translator/internal/domain"
	"github.com/pricofy/word-translator/internal/symbols"
)

// Info describes a registered language.
type Info struct {
	ID    string
	Label string
	Rules symbols.Rules

	split   string
	allowed string
}

type book struct {
	mu    sync.RWMutex
	info  Info
	words map[string]*Word
	order []string
}

// Store is the in-memory dictionary.
type Store struct {
	mu    sync.RWMutex
	books map[string]*book
}

// New creates a Store seeded with langs.
func New(langs ...domain.Language) (*Store, error) {
	s := &Store{books: make(map[string]*book)}
	for _, lang := range langs {
		if err := s.AddLanguage(lang); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// AddLanguage registers lang and its words. Seed words are taken as is;
// only uniqueness and meaning tags are checked.
func (s *Store) AddLanguage(lang domain.Language) error {
	b, err := newBook(lang)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.books[lang.ID]; ok {
		return opErr("add language", lang.ID, "", ErrDuplicateLanguage)
	}
	s.books[lang.ID] = b
	return nil
}

func newBook(lang domain.Language) (*book, error) {
	if lang.ID == "" {
		return nil, opErr("add language", lang.ID, "", ErrInvalidEntry)
	}

	b := &book{
		info: Info{
			ID:      lang.ID,
			Label:   lang.Label,
			Rules:   symbols.NewRules(lang),
			split:   lang.UnitSplitSymbols,
			allowed: lang.AllowedSymbols,
		},
		words: make(map[string]*Word, len(lang.Words)),
	}

	for _, tw := range lang.Words {
		if tw.SymbolChain == "" {
			return nil, opErr("add language", lang.ID, tw.SymbolChain, ErrInvalidEntry)
		}
		if _, ok := b.words[tw.SymbolChain]; ok {
			return nil, opErr("add language", lang.ID, tw.SymbolChain, ErrDuplicateWord)
		}

		w := newWord(tw.SymbolChain)
		for _, m := range tw.Meanings {
			if m.Lang == "" {
				return nil, opErr("add language", lang.ID, tw.SymbolChain, ErrInvalidEntry)
			}
			w = w.with(m.Lang, []string{m.SymbolChain})
		}
		b.words[w.chain] = w
		b.order = append(b.order, w.chain)
	}
	return b, nil
}

func (s *Store) book(id string) (*book, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.books[id]
	return b, ok
}

// Language returns the registered language id.
func (s *Store) Language(id string) (Info, error) {
	b, ok := s.book(id)
	if !ok {
		return Info{}, opErr("language", id, "", ErrUnknownLanguage)
	}
	return b.info, nil
}

// Languages returns all registered languages sorted by id.
func (s *Store) Languages() []Info {
	s.mu.RLock()
	infos := make([]Info, 0, len(s.books))
	for _, b := range s.books {
		infos = append(infos, b.info)
	}
	s.mu.RUnlock()

	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos
}

// Lookup finds chain in the language langID. Matching is exact.
func (s *Store) Lookup(langID, chain string) (*Word, bool) {
	b, ok := s.book(langID)
	if !ok {
		return nil, false
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	w, ok := b.words[chain]
	return w, ok
}

// MeaningIn returns the first meaning of word in the destination language.
func (s *Store) MeaningIn(word *Word, destID string) (string, bool) {
	if word == nil {
		return "", false
	}
	ms := word.meanings[destID]
	if len(ms) == 0 {
		return "", false
	}
	return ms[0], true
}

// Insert adds a new word to langID with its meanings keyed by destination language.
func (s *Store) Insert(langID, chain string, meaningsByLang map[string][]string) error {
	b, ok := s.book(langID)
	if !ok {
		return opErr("insert", langID, chain, ErrUnknownLanguage)
	}
	if chain == "" {
		return opErr("insert", langID, chain, ErrInvalidEntry)
	}

	dests := make([]string, 0, len(meaningsByLang))
	for dest := range meaningsByLang {
		if _, ok := s.book(dest); !ok {
			return opErr("insert", dest, chain, ErrUnknownLanguage)
		}
		dests = append(dests, dest)
	}
	sort.Strings(dests)

	w := newWord(chain)
	for _, dest := range dests {
		if len(meaningsByLang[dest]) > 0 {
			w = w.with(dest, meaningsByLang[dest])
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.words[chain]; ok {
		return opErr("insert", langID, chain, ErrDuplicateWord)
	}
	b.words[chain] = w
	b.order = append(b.order, chain)
	return nil
}

// AddMeanings appends meanings under destID to an existing word. It fails
// with ErrDuplicateMeaning if the word already has a meaning in destID.
func (s *Store) AddMeanings(langID, chain, destID string, meanings []string) error {
	b, ok := s.book(langID)
	if !ok {
		return opErr("add meanings", langID, chain, ErrUnknownLanguage)
	}
	if _, ok := s.book(destID); !ok {
		return opErr("add meanings", destID, chain, ErrUnknownLanguage)
	}
	if len(meanings) == 0 {
		return opErr("add meanings", langID, chain, ErrInvalidEntry)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	w, ok := b.words[chain]
	if !ok {
		return opErr("add meanings", langID, chain, ErrWordNotFound)
	}
	if len(w.meanings[destID]) > 0 {
		return opErr("add meanings", langID, chain, ErrDuplicateMeaning)
	}
	b.words[chain] = w.with(destID, meanings)
	return nil
}

// Snapshot returns the full record of langID, words in insertion order.
func (s *Store) Snapshot(langID string) (domain.Language, error) {
	b, ok := s.book(langID)
	if !ok {
		return domain.Language{}, opErr("snapshot", langID, "", ErrUnknownLanguage)
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	lang := domain.Language{
		ID:               b.info.ID,
		Label:            b.info.Label,
		UnitSplitSymbols: b.info.split,
		AllowedSymbols:   b.info.allowed,
		Words:            make([]domain.TransWord, 0, len(b.order)),
	}
	for _, chain := range b.order {
		lang.Words = append(lang.Words, b.words[chain].TransWord())
	}
	return lang, nil
}

// Replace swaps the whole dictionary for langs. Nothing changes on error.
func (s *Store) Replace(langs ...domain.Language) error {
	next, err := New(langs...)
	if err != nil {
		return err
	}
	s.Swap(next)
	return nil
}

// Swap atomically takes over the languages of next. next must not be used afterwards.
func (s *Store) Swap(next *Store) {
	next.mu.RLock()
	books := next.books
	next.mu.RUnlock()

	s.mu.Lock()
	s.books = books
	s.mu.Unlock()
}

// Stats returns the number of words per language.
func (s *Store) Stats() map[string]int {
	s.mu.RLock()
	books := make([]*book, 0, len(s.books))
	for _, b := range s.books {
		books = append(books, b)
	}
	s.mu.RUnlock()

	stats := make(map[string]int, len(books))
	for _, b := range books {
		b.mu.RLock()
		stats[b.info.ID] = len(b.words)
		b.mu.RUnlock()
	}
	return stats
}
