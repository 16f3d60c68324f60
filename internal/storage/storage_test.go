package storage

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pricofy/word-translator/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const seedYAML = `languages:
  - id: en
    label: english
    unit_split_symbols: " .,"
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

func TestReadSeed(t *testing.T) {
	langs, err := ReadSeed(strings.NewReader(seedYAML))
	require.NoError(t, err)
	require.Len(t, langs, 2)

	assert.Equal(t, "en", langs[0].ID)
	assert.Equal(t, " .,", langs[0].UnitSplitSymbols)
	assert.Equal(t, []domain.TransWord{domain.NewTransWord("hello", "elb", "xy")}, langs[0].Words)
	assert.Empty(t, langs[1].Words)
}

func TestReadSeed_Empty(t *testing.T) {
	langs, err := ReadSeed(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, langs)
}

func TestReadSeed_Malformed(t *testing.T) {
	_, err := ReadSeed(strings.NewReader("languages: [unclosed"))
	assert.Error(t, err)
}

func TestWriteSeed_RoundTrip(t *testing.T) {
	langs, err := ReadSeed(strings.NewReader(seedYAML))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteSeed(&buf, langs...))

	again, err := ReadSeed(&buf)
	require.NoError(t, err)
	assert.Equal(t, langs, again)
}

func TestLoadSeed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dictionary.yaml")
	require.NoError(t, os.WriteFile(path, []byte(seedYAML), 0o600))

	langs, err := LoadSeed(path)
	require.NoError(t, err)
	assert.Len(t, langs, 2)

	_, err = LoadSeed(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestJournal_AppendAndReplay(t *testing.T) {
	j, err := OpenJournal(":memory:")
	require.NoError(t, err)
	defer j.Close()

	ctx := context.Background()
	require.NoError(t, j.Append(ctx, domain.NewRegistration("en", "elb", "hello", "xy")))
	require.NoError(t, j.Append(ctx, domain.NewRegistration("en", "fr", "hello", "bonjour")))
	// Same key is idempotent.
	require.NoError(t, j.Append(ctx, domain.NewRegistration("en", "elb", "hello", "xy")))

	var replayed []domain.NewTransReq
	n, err := j.Replay(ctx, func(_ context.Context, req domain.NewTransReq) error {
		replayed = append(replayed, req)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.ElementsMatch(t, []domain.NewTransReq{
		domain.NewRegistration("en", "elb", "hello", "xy"),
		domain.NewRegistration("en", "fr", "hello", "bonjour"),
	}, replayed)
}

func TestJournal_KeysAreUnambiguous(t *testing.T) {
	a := journalKey(domain.NewRegistration("en", "b", "a:b"))
	b := journalKey(domain.NewRegistration("en", "a:b", "b"))
	assert.NotEqual(t, a, b)
}

func TestJournal_ReplayStopsOnError(t *testing.T) {
	j, err := OpenJournal(":memory:")
	require.NoError(t, err)
	defer j.Close()

	ctx := context.Background()
	require.NoError(t, j.Append(ctx, domain.NewRegistration("en", "elb", "a", "x")))
	require.NoError(t, j.Append(ctx, domain.NewRegistration("en", "elb", "b", "y")))

	boom := errors.New("boom")
	n, err := j.Replay(ctx, func(context.Context, domain.NewTransReq) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, n)
}

func TestJournal_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	ctx := context.Background()

	j, err := OpenJournal(path)
	require.NoError(t, err)
	require.NoError(t, j.Append(ctx, domain.NewRegistration("en", "elb", "hello", "xy")))
	require.NoError(t, j.Close())

	j, err = OpenJournal(path)
	require.NoError(t, err)
	defer j.Close()

	reqs, err := j.Records()
	require.NoError(t, err)
	assert.Equal(t, []domain.NewTransReq{domain.NewRegistration("en", "elb", "hello", "xy")}, reqs)
}

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dictionary.yaml")
	require.NoError(t, os.WriteFile(path, []byte(seedYAML), 0o600))

	var reloads atomic.Int32
	w, err := NewWatcher(path, func(string) error {
		reloads.Add(1)
		return nil
	}, nil)
	require.NoError(t, err)
	w.SetDebounce(20 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	// Unrelated files in the directory are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(path, []byte(seedYAML+"\n"), 0o600))

	assert.Eventually(t, func() bool { return reloads.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestWatcher_StopTwice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dictionary.yaml")
	w, err := NewWatcher(path, func(string) error { return nil }, nil)
	require.NoError(t, err)

	require.NoError(t, w.Start(context.Background()))
	assert.NoError(t, w.Stop())
	assert.NoError(t, w.Stop())
}
