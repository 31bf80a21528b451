package cache

import (
	"context"
	"strings"

	"xorm.io/xorm"

	"mail_trans_engine/models/tables"
)

// MysqlTier is the xorm-backed durable tier.
type MysqlTier struct {
	db *xorm.Engine
}

func NewMysqlTier(db *xorm.Engine) *MysqlTier {
	return &MysqlTier{db: db}
}

func (m *MysqlTier) Lookup(ctx context.Context, fingerprint string) (*tables.TranslationCache, error) {
	row := tables.TranslationCache{}
	found, err := m.db.Context(ctx).Where("fingerprint = ?", fingerprint).Get(&row)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &row, nil
}

func (m *MysqlTier) Insert(ctx context.Context, row *tables.TranslationCache) (bool, error) {
	_, err := m.db.Context(ctx).Insert(row)
	if err != nil {
		// First-writer-wins: a concurrent writer beat us to the fingerprint.
		if strings.Contains(err.Error(), "Duplicate entry") {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (m *MysqlTier) BumpHit(ctx context.Context, fingerprint string) error {
	_, err := m.db.Context(ctx).
		Where("fingerprint = ?", fingerprint).
		Incr("hit_count").
		Update(&tables.TranslationCache{})
	return err
}

func (m *MysqlTier) Stats(ctx context.Context) (int64, int64, error) {
	entries, err := m.db.Context(ctx).Count(new(tables.TranslationCache))
	if err != nil {
		return 0, 0, err
	}
	hits, err := m.db.Context(ctx).SumInt(new(tables.TranslationCache), "hit_count")
	if err != nil {
		return 0, 0, err
	}
	return entries, hits, nil
}

func (m *MysqlTier) Clear(ctx context.Context) error {
	_, err := m.db.Context(ctx).Where("1 = 1").Delete(new(tables.TranslationCache))
	return err
}
