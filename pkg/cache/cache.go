package cache

import (
	"context"
	"errors"
	"log/slog"

	"mail_trans_engine/models/models"
	"mail_trans_engine/models/tables"
)

// ErrMiss indicates the key was not found in a tier.
var ErrMiss = errors.New("cache miss")

// FastTier is the ephemeral low-latency tier. It may lose entries at any
// time; a miss or failure here is never an error for the caller.
type FastTier interface {
	Get(ctx context.Context, fingerprint string) (string, error)
	Set(ctx context.Context, fingerprint, translated string) error
	Clear(ctx context.Context) error
}

// DurableTier is the authoritative store. Values are immutable once written
// except for hit-counter increments.
type DurableTier interface {
	Lookup(ctx context.Context, fingerprint string) (*tables.TranslationCache, error)
	// Insert writes a new entry. Returns false without error when an entry
	// for the fingerprint already exists (first-writer-wins).
	Insert(ctx context.Context, row *tables.TranslationCache) (bool, error)
	BumpHit(ctx context.Context, fingerprint string) error
	Stats(ctx context.Context) (entries int64, hits int64, err error)
	Clear(ctx context.Context) error
}

// Entry carries the metadata persisted next to a translated value.
type Entry struct {
	Fingerprint string
	SourceText  string
	SourceLang  string
	TargetLang  string
}

// Store consults the fast tier first, then the durable tier, warming the
// fast tier on a durable hit. The fast tier is optional.
type Store struct {
	fast    FastTier
	durable DurableTier
	log     *slog.Logger
}

func NewStore(fast FastTier, durable DurableTier, log *slog.Logger) *Store {
	return &Store{fast: fast, durable: durable, log: log}
}

// Get returns the cached translation for the fingerprint, or ok=false on a
// miss. Fast-tier failures are swallowed; durable-tier failures surface.
// Every cache-served response bumps the durable hit counter.
func (s *Store) Get(ctx context.Context, fingerprint string) (string, bool, error) {
	if s.fast != nil {
		translated, err := s.fast.Get(ctx, fingerprint)
		if err == nil {
			if err := s.durable.BumpHit(ctx, fingerprint); err != nil {
				s.log.Warn("cache hit counter bump failed", "error", err.Error())
			}
			return translated, true, nil
		}
		if !errors.Is(err, ErrMiss) {
			s.log.Warn("fast cache tier unavailable", "error", err.Error())
		}
	}

	row, err := s.durable.Lookup(ctx, fingerprint)
	if err != nil {
		return "", false, err
	}
	if row == nil {
		return "", false, nil
	}

	if err := s.durable.BumpHit(ctx, fingerprint); err != nil {
		s.log.Warn("cache hit counter bump failed", "error", err.Error())
	}
	s.warm(ctx, fingerprint, row.Translated)
	return row.Translated, true, nil
}

// Put writes through both tiers. If a durable entry already exists the
// durable value is left untouched and only its hit counter moves; the fast
// tier is refreshed either way.
func (s *Store) Put(ctx context.Context, entry Entry, translated string) error {
	inserted, err := s.durable.Insert(ctx, &tables.TranslationCache{
		Fingerprint: entry.Fingerprint,
		SourceText:  entry.SourceText,
		Translated:  translated,
		SourceLang:  entry.SourceLang,
		TargetLang:  entry.TargetLang,
		HitCount:    1,
	})
	if err != nil {
		return err
	}
	if !inserted {
		if err := s.durable.BumpHit(ctx, entry.Fingerprint); err != nil {
			s.log.Warn("cache hit counter bump failed", "error", err.Error())
		}
	}

	s.warm(ctx, entry.Fingerprint, translated)
	return nil
}

func (s *Store) warm(ctx context.Context, fingerprint, translated string) {
	if s.fast == nil {
		return
	}
	if err := s.fast.Set(ctx, fingerprint, translated); err != nil {
		s.log.Warn("fast cache tier warm failed", "error", err.Error())
	}
}

func (s *Store) Stats(ctx context.Context) (models.CacheStats, error) {
	entries, hits, err := s.durable.Stats(ctx)
	if err != nil {
		return models.CacheStats{}, err
	}
	return models.CacheStats{Entries: entries, TotalHits: hits}, nil
}

func (s *Store) Clear(ctx context.Context) error {
	if err := s.durable.Clear(ctx); err != nil {
		return err
	}
	if s.fast != nil {
		if err := s.fast.Clear(ctx); err != nil {
			s.log.Warn("fast cache tier clear failed", "error", err.Error())
		}
	}
	return nil
}
