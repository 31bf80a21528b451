// Package units owns the translation_units table. A unit's status column
// doubles as the cross-worker lock: whoever wins the conditional update to
// "translating" owns the unit until it completes, fails, or the claim
// expires.
package units

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"xorm.io/xorm"

	"mail_trans_engine/models/tables"
)

type Repo struct {
	db  *xorm.Engine
	log *slog.Logger
}

func NewRepo(db *xorm.Engine, log *slog.Logger) *Repo {
	return &Repo{db: db, log: log}
}

// Create persists a new unit in pending state and returns its id.
func (r *Repo) Create(ctx context.Context, unit *tables.TranslationUnit) (string, error) {
	if unit.Id == "" {
		unit.Id = uuid.New().String()
	}
	unit.Status = tables.UnitStatusPending
	if _, err := r.db.Context(ctx).Insert(unit); err != nil {
		return "", fmt.Errorf("insert unit: %w", err)
	}
	return unit.Id, nil
}

func (r *Repo) Load(ctx context.Context, id string) (*tables.TranslationUnit, error) {
	unit := tables.TranslationUnit{}
	found, err := r.db.Context(ctx).Where("id = ?", id).Get(&unit)
	if err != nil {
		return nil, fmt.Errorf("load unit: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &unit, nil
}

// Claim attempts the status transition to translating. Zero rows affected
// means another worker got there first or the unit is already done; the
// caller must skip the unit, not retry.
func (r *Repo) Claim(ctx context.Context, id string) (bool, error) {
	affected, err := r.db.Context(ctx).
		Where("id = ? AND status IN (?, ?, ?)",
			id, tables.UnitStatusNone, tables.UnitStatusPending, tables.UnitStatusFailed).
		Cols("status", "claimed_at").
		Update(&tables.TranslationUnit{
			Status:    tables.UnitStatusTranslating,
			ClaimedAt: time.Now(),
		})
	if err != nil {
		return false, fmt.Errorf("claim unit: %w", err)
	}
	if affected == 0 {
		r.log.Info("unit already claimed elsewhere, skipping", "unit_id", id)
		return false, nil
	}
	return true, nil
}

// Reclaim is the forced re-run transition: it also re-enters completed
// units. A unit currently held by another worker is left alone.
func (r *Repo) Reclaim(ctx context.Context, id string) (bool, error) {
	affected, err := r.db.Context(ctx).
		Where("id = ? AND status <> ?", id, tables.UnitStatusTranslating).
		Cols("status", "claimed_at").
		Update(&tables.TranslationUnit{
			Status:    tables.UnitStatusTranslating,
			ClaimedAt: time.Now(),
		})
	if err != nil {
		return false, fmt.Errorf("reclaim unit: %w", err)
	}
	if affected == 0 {
		r.log.Info("unit busy, forced re-run skipped", "unit_id", id)
		return false, nil
	}
	return true, nil
}

// Complete stores the results and releases the claim.
func (r *Repo) Complete(ctx context.Context, id, engine, subjectResult, bodyResult string) error {
	_, err := r.db.Context(ctx).
		Where("id = ?", id).
		Cols("status", "engine_used", "subject_result", "body_result", "last_error").
		Update(&tables.TranslationUnit{
			Status:        tables.UnitStatusCompleted,
			EngineUsed:    engine,
			SubjectResult: subjectResult,
			BodyResult:    bodyResult,
		})
	if err != nil {
		return fmt.Errorf("complete unit: %w", err)
	}
	return nil
}

// MarkFailed records the failure cause and releases the claim so a later
// attempt can re-claim the unit.
func (r *Repo) MarkFailed(ctx context.Context, id, cause string) error {
	_, err := r.db.Context(ctx).
		Where("id = ?", id).
		Cols("status", "last_error").
		Update(&tables.TranslationUnit{
			Status:    tables.UnitStatusFailed,
			LastError: cause,
		})
	if err != nil {
		return fmt.Errorf("mark unit failed: %w", err)
	}
	return nil
}

// SweepStuck fails any unit whose claim is older than the timeout. Covers
// workers that died mid-translation without releasing their claim.
func (r *Repo) SweepStuck(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan)
	affected, err := r.db.Context(ctx).
		Where("status = ? AND claimed_at < ?", tables.UnitStatusTranslating, cutoff).
		Cols("status", "last_error").
		Update(&tables.TranslationUnit{
			Status:    tables.UnitStatusFailed,
			LastError: "claim expired",
		})
	if err != nil {
		return 0, fmt.Errorf("sweep stuck units: %w", err)
	}
	if affected > 0 {
		r.log.Warn("reset stuck translation units", "count", affected)
	}
	return affected, nil
}
