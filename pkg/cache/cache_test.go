package cache

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mail_trans_engine/models/tables"
)

type fakeFast struct {
	entries map[string]string
	fail    bool
	sets    int
}

func newFakeFast() *fakeFast {
	return &fakeFast{entries: map[string]string{}}
}

func (f *fakeFast) Get(ctx context.Context, fp string) (string, error) {
	if f.fail {
		return "", errors.New("connection refused")
	}
	v, ok := f.entries[fp]
	if !ok {
		return "", ErrMiss
	}
	return v, nil
}

func (f *fakeFast) Set(ctx context.Context, fp, translated string) error {
	if f.fail {
		return errors.New("connection refused")
	}
	f.sets++
	f.entries[fp] = translated
	return nil
}

func (f *fakeFast) Clear(ctx context.Context) error {
	f.entries = map[string]string{}
	return nil
}

type fakeDurable struct {
	rows map[string]*tables.TranslationCache
	fail bool
}

func newFakeDurable() *fakeDurable {
	return &fakeDurable{rows: map[string]*tables.TranslationCache{}}
}

func (f *fakeDurable) Lookup(ctx context.Context, fp string) (*tables.TranslationCache, error) {
	if f.fail {
		return nil, errors.New("db gone")
	}
	return f.rows[fp], nil
}

func (f *fakeDurable) Insert(ctx context.Context, row *tables.TranslationCache) (bool, error) {
	if f.fail {
		return false, errors.New("db gone")
	}
	if _, ok := f.rows[row.Fingerprint]; ok {
		return false, nil
	}
	f.rows[row.Fingerprint] = row
	return true, nil
}

func (f *fakeDurable) BumpHit(ctx context.Context, fp string) error {
	if row, ok := f.rows[fp]; ok {
		row.HitCount++
	}
	return nil
}

func (f *fakeDurable) Stats(ctx context.Context) (int64, int64, error) {
	var hits int64
	for _, row := range f.rows {
		hits += row.HitCount
	}
	return int64(len(f.rows)), hits, nil
}

func (f *fakeDurable) Clear(ctx context.Context) error {
	f.rows = map[string]*tables.TranslationCache{}
	return nil
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(errWriter{}, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

type errWriter struct{}

func (errWriter) Write(p []byte) (int, error) { return len(p), nil }

func TestStoreMiss(t *testing.T) {
	store := NewStore(newFakeFast(), newFakeDurable(), discard())

	_, ok, err := store.Get(context.Background(), "nope")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStorePutThenGet(t *testing.T) {
	fast := newFakeFast()
	durable := newFakeDurable()
	store := NewStore(fast, durable, discard())
	ctx := context.Background()

	fp := Fingerprint("Guten Tag", "de", "en", "")
	entry := Entry{Fingerprint: fp, SourceText: "Guten Tag", SourceLang: "de", TargetLang: "en"}
	require.NoError(t, store.Put(ctx, entry, "Good day"))

	got, ok, err := store.Get(ctx, fp)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Good day", got)
}

// Second identical submission is served from cache and the durable hit
// counter moves from 1 to 2, regardless of which tenant asked.
func TestStoreCrossTenantHitCounter(t *testing.T) {
	fast := newFakeFast()
	durable := newFakeDurable()
	store := NewStore(fast, durable, discard())
	ctx := context.Background()

	fp := Fingerprint("Please confirm receipt of our order.", "en", "de", "")
	entry := Entry{Fingerprint: fp, SourceText: "Please confirm receipt of our order.", SourceLang: "en", TargetLang: "de"}
	require.NoError(t, store.Put(ctx, entry, "Bitte bestätigen Sie den Eingang unserer Bestellung."))
	assert.Equal(t, int64(1), durable.rows[fp].HitCount)

	_, ok, err := store.Get(ctx, fp)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(2), durable.rows[fp].HitCount)
}

func TestStoreDurableHitWarmsFast(t *testing.T) {
	fast := newFakeFast()
	durable := newFakeDurable()
	durable.rows["fp1"] = &tables.TranslationCache{Fingerprint: "fp1", Translated: "warm me", HitCount: 1}
	store := NewStore(fast, durable, discard())

	got, ok, err := store.Get(context.Background(), "fp1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "warm me", got)
	assert.Equal(t, "warm me", fast.entries["fp1"], "durable hit should repopulate the fast tier")
}

func TestStoreFirstWriterWins(t *testing.T) {
	fast := newFakeFast()
	durable := newFakeDurable()
	store := NewStore(fast, durable, discard())
	ctx := context.Background()

	entry := Entry{Fingerprint: "fp2", SourceText: "src", SourceLang: "en", TargetLang: "de"}
	require.NoError(t, store.Put(ctx, entry, "first"))
	require.NoError(t, store.Put(ctx, entry, "second"))

	assert.Equal(t, "first", durable.rows["fp2"].Translated, "durable value must not be overwritten")
	assert.Equal(t, int64(2), durable.rows["fp2"].HitCount, "duplicate put still counts as a hit")
	assert.Equal(t, "second", fast.entries["fp2"], "fast tier is last-writer-wins")
}

func TestStoreFastTierFailureSwallowed(t *testing.T) {
	fast := newFakeFast()
	fast.fail = true
	durable := newFakeDurable()
	durable.rows["fp3"] = &tables.TranslationCache{Fingerprint: "fp3", Translated: "still here", HitCount: 1}
	store := NewStore(fast, durable, discard())

	got, ok, err := store.Get(context.Background(), "fp3")
	require.NoError(t, err, "fast tier failure must fall through to durable")
	require.True(t, ok)
	assert.Equal(t, "still here", got)
}

func TestStoreDurableFailureSurfaces(t *testing.T) {
	durable := newFakeDurable()
	durable.fail = true
	store := NewStore(newFakeFast(), durable, discard())

	_, _, err := store.Get(context.Background(), "fp")
	assert.Error(t, err, "durable tier is correctness critical")
}

func TestStoreStatsAndClear(t *testing.T) {
	fast := newFakeFast()
	durable := newFakeDurable()
	store := NewStore(fast, durable, discard())
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, Entry{Fingerprint: "a"}, "x"))
	require.NoError(t, store.Put(ctx, Entry{Fingerprint: "b"}, "y"))
	_, _, _ = store.Get(ctx, "a")

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Entries)
	assert.Equal(t, int64(3), stats.TotalHits)

	require.NoError(t, store.Clear(ctx))
	stats, err = store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.Entries)
}
