package executor

import (
	"context"
	"fmt"
	"strings"

	"xorm.io/xorm"

	"mail_trans_engine/models/tables"
)

// MysqlDocStore is the xorm-backed DocStore. One row per (document,
// target language); a re-translation overwrites the stored result.
type MysqlDocStore struct {
	db *xorm.Engine
}

func NewMysqlDocStore(db *xorm.Engine) *MysqlDocStore {
	return &MysqlDocStore{db: db}
}

func (s *MysqlDocStore) Lookup(ctx context.Context, documentId, targetLang string) (*tables.SharedDocTranslation, error) {
	row := tables.SharedDocTranslation{}
	found, err := s.db.Context(ctx).
		Where("document_id = ? AND target_lang = ?", documentId, targetLang).
		Get(&row)
	if err != nil {
		return nil, fmt.Errorf("shared document lookup: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &row, nil
}

func (s *MysqlDocStore) Save(ctx context.Context, row *tables.SharedDocTranslation) error {
	affected, err := s.db.Context(ctx).
		Where("document_id = ? AND target_lang = ?", row.DocumentId, row.TargetLang).
		Cols("subject", "body", "subject_translated", "body_translated", "engine_used").
		Update(row)
	if err != nil {
		return fmt.Errorf("shared document update: %w", err)
	}
	if affected > 0 {
		return nil
	}

	_, err = s.db.Context(ctx).Insert(row)
	if err != nil && strings.Contains(err.Error(), "Duplicate entry") {
		// A concurrent worker inserted the row between our update and
		// insert; retry the update so the newest result wins.
		_, err = s.db.Context(ctx).
			Where("document_id = ? AND target_lang = ?", row.DocumentId, row.TargetLang).
			Cols("subject", "body", "subject_translated", "body_translated", "engine_used").
			Update(row)
	}
	if err != nil {
		return fmt.Errorf("shared document insert: %w", err)
	}
	return nil
}
