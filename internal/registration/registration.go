// Package registration validates and commits new dictionary entries.
package registration

import (
	"context"
	"errors"
	"fmt"

	"github.com/pricofy/word-translator/internal/dictionary"
	"github.com/pricofy/word-translator/internal/domain"
	"github.com/pricofy/word-translator/internal/symbols"
)

// Registration errors. The concrete error is *Error.
var (
	ErrUnknownLanguage  = dictionary.ErrUnknownLanguage
	ErrDuplicateWord    = dictionary.ErrDuplicateWord
	ErrDuplicateMeaning = dictionary.ErrDuplicateMeaning
	ErrInvalidSymbol    = errors.New("invalid symbol")
	ErrNoMeanings       = errors.New("no meanings given")
	// ErrNotPersisted means the entry is committed in memory and already
	// translatable, but the journal append failed. Retrying reports a duplicate.
	ErrNotPersisted = errors.New("entry registered but not persisted")
)

// Error names the string a registration was rejected for.
type Error struct {
	Reason  error
	Subject string
	Err     error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%v: %q", e.Reason, e.Subject)
	if e.Err != nil && !errors.Is(e.Err, e.Reason) {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Reason}
	}
	return []error{e.Reason, e.Err}
}

// Payload renders err as the registration error payload.
func Payload(err error) domain.NewTransErr {
	return domain.NewTransErr{Content: err.Error()}
}

// Store is the part of the dictionary the service writes to.
type Store interface {
	Language(id string) (dictionary.Info, error)
	Insert(langID, chain string, meaningsByLang map[string][]string) error
	AddMeanings(langID, chain, destID string, meanings []string) error
}

// Journal durably records committed registrations.
type Journal interface {
	Append(ctx context.Context, req domain.NewTransReq) error
}

// Option configures a Service.
type Option func(*Service)

// WithJournal records every committed registration in j.
func WithJournal(j Journal) Option {
	return func(s *Service) {
		s.journal = j
	}
}

// Service registers words and meanings.
type Service struct {
	store   Store
	journal Journal
}

// New creates a Service writing to store.
func New(store Store, opts ...Option) *Service {
	s := &Service{store: store}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register validates req and commits it. New words are inserted; an existing
// word gains the meanings under ToLang unless it already has one there.
// Nothing is committed when an error other than ErrNotPersisted is returned.
func (s *Service) Register(ctx context.Context, req domain.NewTransReq) error {
	meanings, err := s.validate(req)
	if err != nil {
		return err
	}

	if err := s.commit(req, meanings); err != nil {
		return err
	}

	if s.journal != nil {
		req.Meanings = meanings
		if err := s.journal.Append(ctx, req); err != nil {
			return &Error{Reason: ErrNotPersisted, Subject: req.Word, Err: err}
		}
	}
	return nil
}

func (s *Service) validate(req domain.NewTransReq) ([]string, error) {
	from, err := s.store.Language(req.FromLang)
	if err != nil {
		return nil, &Error{Reason: ErrUnknownLanguage, Subject: req.FromLang, Err: err}
	}
	to, err := s.store.Language(req.ToLang)
	if err != nil {
		return nil, &Error{Reason: ErrUnknownLanguage, Subject: req.ToLang, Err: err}
	}

	if req.Word == "" {
		return nil, &Error{Reason: ErrInvalidSymbol, Subject: req.Word}
	}
	if c, _, bad := symbols.FirstOutsideAlphabet(from.Rules, req.Word); bad {
		return nil, &Error{Reason: ErrInvalidSymbol, Subject: req.Word, Err: fmt.Errorf("%q not allowed in %s", c, from.ID)}
	}

	if len(req.Meanings) == 0 {
		return nil, &Error{Reason: ErrNoMeanings, Subject: req.Word}
	}

	seen := make(map[string]bool, len(req.Meanings))
	meanings := make([]string, 0, len(req.Meanings))
	for _, m := range req.Meanings {
		if m == "" {
			return nil, &Error{Reason: ErrInvalidSymbol, Subject: m}
		}
		if c, _, bad := symbols.FirstInvalid(to.Rules, m); bad {
			return nil, &Error{Reason: ErrInvalidSymbol, Subject: m, Err: fmt.Errorf("%q not allowed in %s", c, to.ID)}
		}
		if !seen[m] {
			seen[m] = true
			meanings = append(meanings, m)
		}
	}
	return meanings, nil
}

func (s *Service) commit(req domain.NewTransReq, meanings []string) error {
	err := s.store.AddMeanings(req.FromLang, req.Word, req.ToLang, meanings)
	if !errors.Is(err, dictionary.ErrWordNotFound) {
		return wrapStoreErr(req, err)
	}

	err = s.store.Insert(req.FromLang, req.Word, map[string][]string{req.ToLang: meanings})
	if errors.Is(err, dictionary.ErrDuplicateWord) {
		// Lost a race with a concurrent registration of the same word.
		err = s.store.AddMeanings(req.FromLang, req.Word, req.ToLang, meanings)
	}
	return wrapStoreErr(req, err)
}

func wrapStoreErr(req domain.NewTransReq, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, dictionary.ErrDuplicateMeaning):
		return &Error{Reason: ErrDuplicateMeaning, Subject: req.Word, Err: err}
	case errors.Is(err, dictionary.ErrDuplicateWord):
		return &Error{Reason: ErrDuplicateWord, Subject: req.Word, Err: err}
	case errors.Is(err, dictionary.ErrUnknownLanguage):
		return &Error{Reason: ErrUnknownLanguage, Subject: req.FromLang, Err: err}
	default:
		return fmt.Errorf("register %q: %w", req.Word, err)
	}
}
