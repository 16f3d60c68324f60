package app

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/pricofy/word-translator/internal/config"
	"github.com/pricofy/word-translator/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const seed = `languages:
  - id: en
    label: english
    unit_split_symbols: " "
    allowed_symbols: abcdefghijklmnopqrstuvwxyz
    words:
      - symbol_chain: hello
        meanings:
          - lang: elb
            symbol_chain: xy
  - id: elb
    label: elbish
    unit_split_symbols: " "
    allowed_symbols: xyz
`

func testConfig(t *testing.T) config.Config {
	t.Helper()
	dir := t.TempDir()
	seedPath := filepath.Join(dir, "dictionary.yaml")
	require.NoError(t, os.WriteFile(seedPath, []byte(seed), 0o600))

	cfg := config.Default()
	cfg.Dictionary.SeedPath = seedPath
	cfg.Dictionary.JournalPath = filepath.Join(dir, "journal.db")
	return cfg
}

func quiet() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNew_TranslatesSeedWords(t *testing.T) {
	a, err := New(context.Background(), testConfig(t), quiet())
	require.NoError(t, err)
	defer a.Close()

	resp, err := a.Resolver.Resolve(domain.NewTransReq("hello", "en", "elb"))
	require.NoError(t, err)
	assert.Equal(t, domain.TransResponse{Content: "xy", AbleToTranslate: true}, resp)
}

func TestNew_MissingSeed(t *testing.T) {
	cfg := testConfig(t)
	cfg.Dictionary.SeedPath = filepath.Join(t.TempDir(), "missing.yaml")

	_, err := New(context.Background(), cfg, quiet())
	assert.Error(t, err)
}

func TestRegistrationsSurviveRestart(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()

	a, err := New(ctx, cfg, quiet())
	require.NoError(t, err)
	require.NoError(t, a.Handler.Register(ctx, domain.NewRegistration("en", "elb", "world", "zyx")))
	require.NoError(t, a.Close())

	b, err := New(ctx, cfg, quiet())
	require.NoError(t, err)
	defer b.Close()

	resp, err := b.Resolver.Resolve(domain.NewTransReq("hello world", "en", "elb"))
	require.NoError(t, err)
	assert.Equal(t, "xy zyx", resp.Content)
}

func TestReplay_SkipsStaleRecords(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()

	a, err := New(ctx, cfg, quiet())
	require.NoError(t, err)
	// Journal a record the seed will later contain as well.
	require.NoError(t, a.Journal.Append(ctx, domain.NewRegistration("en", "elb", "hello", "xy")))
	require.NoError(t, a.Journal.Append(ctx, domain.NewRegistration("en", "gone", "hello", "x")))
	require.NoError(t, a.Close())

	b, err := New(ctx, cfg, quiet())
	require.NoError(t, err)
	defer b.Close()

	w, ok := b.Store.Lookup("en", "hello")
	require.True(t, ok)
	assert.Equal(t, []string{"xy"}, w.Meanings("elb"))
}

func TestReload(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()

	a, err := New(ctx, cfg, quiet())
	require.NoError(t, err)
	defer a.Close()
	require.NoError(t, a.Handler.Register(ctx, domain.NewRegistration("en", "elb", "world", "zyx")))

	updated := seed + `  - id: fr
    label: french
    unit_split_symbols: " "
    allowed_symbols: abcdefghijklmnopqrstuvwxyz
`
	require.NoError(t, os.WriteFile(cfg.Dictionary.SeedPath, []byte(updated), 0o600))
	require.NoError(t, a.Reload(cfg.Dictionary.SeedPath))

	_, err = a.Store.Language("fr")
	assert.NoError(t, err)
	_, ok := a.Store.Lookup("en", "world")
	assert.True(t, ok, "journaled words survive a reload")

	require.NoError(t, os.WriteFile(cfg.Dictionary.SeedPath, []byte("languages: ["), 0o600))
	assert.Error(t, a.Reload(cfg.Dictionary.SeedPath))
	_, err = a.Store.Language("fr")
	assert.NoError(t, err, "failed reload keeps the current dictionary")
}

func TestReload_ConcurrentRegistrations(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()

	a, err := New(ctx, cfg, quiet())
	require.NoError(t, err)
	defer a.Close()

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			default:
				assert.NoError(t, a.Reload(cfg.Dictionary.SeedPath))
			}
		}
	}()

	var words []string
	for c := 'a'; c <= 'z'; c++ {
		word := "w" + string(c)
		words = append(words, word)
		require.NoError(t, a.Handler.Register(ctx, domain.NewRegistration("en", "elb", word, "zyx")))
	}
	close(done)
	wg.Wait()

	for _, word := range words {
		_, ok := a.Store.Lookup("en", word)
		assert.True(t, ok, "registered word %q lost by a concurrent reload", word)
	}
}
