package storage

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/pricofy/word-translator/internal/domain"
	"github.com/tidwall/buntdb"
)

const journalPrefix = "word:"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Journal is an append-only log of committed registrations. Appending the
// same word and language pair twice overwrites a single record.
type Journal struct {
	db *buntdb.DB
}

// OpenJournal opens the journal at path. ":memory:" keeps it in memory.
func OpenJournal(path string) (*Journal, error) {
	db, err := buntdb.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open journal %s: %w", path, err)
	}
	return &Journal{db: db}, nil
}

func journalKey(req domain.NewTransReq) string {
	return journalPrefix + strings.Join([]string{
		strconv.Quote(req.FromLang),
		strconv.Quote(req.Word),
		strconv.Quote(req.ToLang),
	}, ":")
}

// Append records req.
func (j *Journal) Append(_ context.Context, req domain.NewTransReq) error {
	value, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encode journal record: %w", err)
	}

	return j.db.Update(func(tx *buntdb.Tx) error {
		_, _, err := tx.Set(journalKey(req), string(value), nil)
		return err
	})
}

// Records returns every journaled registration ordered by key.
func (j *Journal) Records() ([]domain.NewTransReq, error) {
	var (
		reqs      []domain.NewTransReq
		decodeErr error
	)

	err := j.db.View(func(tx *buntdb.Tx) error {
		return tx.AscendKeys(journalPrefix+"*", func(key, value string) bool {
			var req domain.NewTransReq
			if err := json.UnmarshalFromString(value, &req); err != nil {
				decodeErr = fmt.Errorf("decode journal record %s: %w", key, err)
				return false
			}
			reqs = append(reqs, req)
			return true
		})
	})
	if err != nil {
		return nil, err
	}
	return reqs, decodeErr
}

// Replay passes every record to apply, stopping at the first error.
// It returns the number of records applied.
func (j *Journal) Replay(ctx context.Context, apply func(context.Context, domain.NewTransReq) error) (int, error) {
	reqs, err := j.Records()
	if err != nil {
		return 0, err
	}

	for i, req := range reqs {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		if err := apply(ctx, req); err != nil {
			return i, fmt.Errorf("replay %s: %w", journalKey(req), err)
		}
	}
	return len(reqs), nil
}

// Close closes the underlying database.
func (j *Journal) Close() error {
	return j.db.Close()
}
