package dictionary

import (
	"errors"
	"fmt"
)

// Dictionary errors. Use errors.Is against these; the concrete error is *Error.
var (
	ErrUnknownLanguage   = errors.New("unknown language")
	ErrDuplicateLanguage = errors.New("duplicate language")
	ErrDuplicateWord     = errors.New("duplicate word")
	ErrDuplicateMeaning  = errors.New("duplicate meaning")
	ErrWordNotFound      = errors.New("word not found")
	ErrInvalidEntry      = errors.New("invalid entry")
)

// Error describes a failed store operation.
type Error struct {
	Op   string
	Lang string
	Word string
	Err  error
}

func (e *Error) Error() string {
	if e.Word == "" {
		return fmt.Sprintf("dictionary: %s %q: %v", e.Op, e.Lang, e.Err)
	}
	return fmt.Sprintf("dictionary: %s %q in %q: %v", e.Op, e.Word, e.Lang, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func opErr(op, lang, word string, err error) error {
	return &Error{Op: op, Lang: lang, Word: word, Err: err}
}
