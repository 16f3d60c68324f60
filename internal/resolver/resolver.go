// Package resolver answers translate requests against a dictionary.
package resolver

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pricofy/word-translator/internal/dictionary"
	"github.com/pricofy/word-translator/internal/domain"
	"github.com/pricofy/word-translator/internal/segmenter"
)

// Reasons a request is untranslatable. They never surface as errors from
// Resolve; Explain reports them in Result.Reason.
var (
	ErrInvalidSymbol = errors.New("invalid symbol")
	ErrWordNotFound  = dictionary.ErrWordNotFound
	ErrNoMeaning     = errors.New("no meaning in destination language")
)

// ErrUnknownLanguage is returned when from or to is not registered.
var ErrUnknownLanguage = dictionary.ErrUnknownLanguage

// Dictionary is the read side of the dictionary store.
type Dictionary interface {
	Language(id string) (dictionary.Info, error)
	Lookup(langID, chain string) (*dictionary.Word, bool)
	MeaningIn(word *dictionary.Word, destID string) (string, bool)
}

// Resolver translates content unit by unit.
type Resolver struct {
	dict Dictionary
}

// Result is a resolved request plus the reason it failed, if it did.
type Result struct {
	Response domain.TransResponse
	Units    int
	// Set only when Response.AbleToTranslate is false.
	Unit   string
	Offset int
	Reason error
}

// New creates a Resolver reading from dict.
func New(dict Dictionary) *Resolver {
	return &Resolver{dict: dict}
}

// Resolve translates req. Untranslatable content is not an error: the
// response echoes the input with AbleToTranslate false. An unknown language
// is returned as ErrUnknownLanguage.
func (r *Resolver) Resolve(req domain.TransReq) (domain.TransResponse, error) {
	res, err := r.Explain(req)
	if err != nil {
		return domain.TransResponse{}, err
	}
	return res.Response, nil
}

// Explain runs the same algorithm as Resolve and reports which unit failed.
// The whole request is rejected on the first failing unit.
func (r *Resolver) Explain(req domain.TransReq) (Result, error) {
	from, err := r.dict.Language(req.From)
	if err != nil {
		return Result{}, fmt.Errorf("resolve from: %w", err)
	}
	if _, err := r.dict.Language(req.To); err != nil {
		return Result{}, fmt.Errorf("resolve to: %w", err)
	}

	tokens := segmenter.Collect(segmenter.Segment(from.Rules, req.Content))
	units := segmenter.Units(tokens)

	for _, u := range units {
		if !u.Valid {
			return fail(req, len(units), u, ErrInvalidSymbol), nil
		}
	}

	translated := make(map[int]string, len(units))
	for _, u := range units {
		word, ok := r.dict.Lookup(req.From, u.Text)
		if !ok {
			return fail(req, len(units), u, ErrWordNotFound), nil
		}
		if req.From == req.To {
			// Identity: the word only has to exist.
			translated[u.Offset] = u.Text
			continue
		}
		meaning, ok := r.dict.MeaningIn(word, req.To)
		if !ok {
			return fail(req, len(units), u, ErrNoMeaning), nil
		}
		translated[u.Offset] = meaning
	}

	var b strings.Builder
	for _, tok := range tokens {
		if tok.Delimiter {
			b.WriteString(tok.Text)
			continue
		}
		b.WriteString(translated[tok.Offset])
	}

	return Result{
		Response: domain.TransResponse{Content: b.String(), AbleToTranslate: true},
		Units:    len(units),
	}, nil
}

func fail(req domain.TransReq, units int, u segmenter.Token, reason error) Result {
	return Result{
		Response: domain.TransResponse{Content: req.Content, AbleToTranslate: false},
		Units:    units,
		Unit:     u.Text,
		Offset:   u.Offset,
		Reason:   reason,
	}
}
