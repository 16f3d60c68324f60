// Package app wires the dictionary engine, its storage and the request
// handler from a Config.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/pricofy/word-translator/internal/config"
	"github.com/pricofy/word-translator/internal/dictionary"
	"github.com/pricofy/word-translator/internal/domain"
	"github.com/pricofy/word-translator/internal/handler"
	"github.com/pricofy/word-translator/internal/metrics"
	"github.com/pricofy/word-translator/internal/registration"
	"github.com/pricofy/word-translator/internal/resolver"
	"github.com/pricofy/word-translator/internal/storage"
)

// App owns every long-lived component.
type App struct {
	Config    config.Config
	Logger    *slog.Logger
	Store     *dictionary.Store
	Journal   *storage.Journal
	Resolver  *resolver.Resolver
	Registrar *registration.Service
	Metrics   *metrics.Metrics
	Handler   *handler.Handler

	// Registrations hold the read side; Reload holds the write side so a
	// registration never lands in a store that is about to be swapped out.
	mu sync.RWMutex
}

// guardedRegistrar runs registrations under the App's read lock.
type guardedRegistrar struct {
	mu  *sync.RWMutex
	svc *registration.Service
}

func (g guardedRegistrar) Register(ctx context.Context, req domain.NewTransReq) error {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.svc.Register(ctx, req)
}

// New loads the seed file, replays the journal and builds the handler.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	langs, err := storage.LoadSeed(cfg.Dictionary.SeedPath)
	if err != nil {
		return nil, err
	}
	store, err := dictionary.New(langs...)
	if err != nil {
		return nil, fmt.Errorf("build dictionary: %w", err)
	}

	journal, err := storage.OpenJournal(cfg.Dictionary.JournalPath)
	if err != nil {
		return nil, err
	}

	a := &App{
		Config:  cfg,
		Logger:  logger,
		Store:   store,
		Journal: journal,
		Metrics: metrics.New(),
	}

	if err := a.replay(ctx, store); err != nil {
		journal.Close()
		return nil, err
	}

	a.Resolver = resolver.New(store)
	a.Registrar = registration.New(store, registration.WithJournal(journal))
	a.Handler = handler.New(a.Resolver, guardedRegistrar{mu: &a.mu, svc: a.Registrar}, store, logger, a.Metrics)
	a.Metrics.SetDictionaryWords(store.Stats())

	logger.Info("Dictionary loaded",
		"seed", cfg.Dictionary.SeedPath,
		"languages", len(langs),
		"environment", cfg.Environment)
	return a, nil
}

// replay re-applies journaled registrations to store. Records that no longer
// apply (duplicates, languages removed from the seed) are skipped.
func (a *App) replay(ctx context.Context, store *dictionary.Store) error {
	reg := registration.New(store)
	skipped := 0

	n, err := a.Journal.Replay(ctx, func(ctx context.Context, req domain.NewTransReq) error {
		err := reg.Register(ctx, req)
		var rErr *registration.Error
		if errors.As(err, &rErr) {
			skipped++
			a.Logger.Debug("Journal record skipped", "word", req.Word, "from", req.FromLang, "to", req.ToLang, "error", err)
			return nil
		}
		return err
	})
	if err != nil {
		return fmt.Errorf("replay journal: %w", err)
	}

	a.Logger.Info("Journal replayed", "records", n, "skipped", skipped)
	return nil
}

// Reload rebuilds the dictionary from the seed file at path plus the journal
// and swaps it in atomically. On error the current dictionary is kept.
// Registrations wait while a reload is in progress.
func (a *App) Reload(path string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	langs, err := storage.LoadSeed(path)
	if err != nil {
		return err
	}
	next, err := dictionary.New(langs...)
	if err != nil {
		return fmt.Errorf("build dictionary: %w", err)
	}
	if err := a.replay(context.Background(), next); err != nil {
		return err
	}

	a.Store.Swap(next)
	a.Metrics.SetDictionaryWords(a.Store.Stats())
	return nil
}

// Close releases the journal.
func (a *App) Close() error {
	return a.Journal.Close()
}
