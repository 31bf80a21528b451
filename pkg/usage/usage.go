// Package usage is the per-engine, per-month ledger behind quota
// enforcement. Increments are additive and rely on the database's atomic
// increment, so concurrent workers need no further coordination.
package usage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"xorm.io/xorm"

	"mail_trans_engine/models/models"
	"mail_trans_engine/models/tables"
)

// Period formats the calendar month a timestamp falls into. A new month is
// simply a new row, which is how counters reset at rollover.
func Period(t time.Time) string {
	return t.UTC().Format("2006-01")
}

type Ledger struct {
	db     *xorm.Engine
	quotas map[string]int64 // configured free allotment per engine, 0 = unlimited
	log    *slog.Logger
}

func NewLedger(db *xorm.Engine, quotas map[string]int64, log *slog.Logger) *Ledger {
	if quotas == nil {
		quotas = map[string]int64{}
	}
	return &Ledger{db: db, quotas: quotas, log: log}
}

// Record adds one executed translation to the engine's current-month
// counters and disables the engine once its allotment is exceeded. The call
// that crosses the threshold is itself already done and stays counted.
func (l *Ledger) Record(ctx context.Context, engine string, chars int) error {
	period := Period(time.Now())
	if err := l.ensureRow(ctx, engine, period); err != nil {
		return err
	}

	_, err := l.db.Context(ctx).
		Where("engine = ? AND period = ?", engine, period).
		Incr("char_count", chars).
		Incr("request_count", 1).
		Update(&tables.UsageCounter{})
	if err != nil {
		return fmt.Errorf("record usage: %w", err)
	}

	row, err := l.row(ctx, engine, period)
	if err != nil || row == nil {
		return err
	}
	if row.Quota > 0 && row.CharCount > row.Quota && !row.Disabled {
		_, err := l.db.Context(ctx).
			Where("engine = ? AND period = ?", engine, period).
			Cols("disabled").
			Update(&tables.UsageCounter{Disabled: true})
		if err != nil {
			return fmt.Errorf("disable engine: %w", err)
		}
		l.log.Warn("engine disabled for the rest of the month",
			"engine", engine, "period", period,
			"chars", row.CharCount, "quota", row.Quota)
	}
	return nil
}

// Disabled reports whether the engine is switched off for the current
// month. Lookup failures count as enabled; quota enforcement must not take
// the whole pipeline down.
func (l *Ledger) Disabled(engine string) bool {
	row, err := l.row(context.Background(), engine, Period(time.Now()))
	if err != nil {
		l.log.Warn("usage lookup failed", "engine", engine, "error", err.Error())
		return false
	}
	return row != nil && row.Disabled
}

// ReEnable clears the disabled flag for the current month.
func (l *Ledger) ReEnable(ctx context.Context, engine string) error {
	_, err := l.db.Context(ctx).
		Where("engine = ? AND period = ?", engine, Period(time.Now())).
		Cols("disabled").
		Update(&tables.UsageCounter{Disabled: false})
	return err
}

// Report returns current-month usage for one engine, or all engines when
// engine is empty.
func (l *Ledger) Report(ctx context.Context, engine string) ([]models.UsageReport, error) {
	session := l.db.Context(ctx).Where("period = ?", Period(time.Now()))
	if engine != "" {
		session = session.And("engine = ?", engine)
	}

	var rows []tables.UsageCounter
	if err := session.Find(&rows); err != nil {
		return nil, fmt.Errorf("usage report: %w", err)
	}
	return toReports(rows), nil
}

// History returns every recorded month for the engine, newest first.
func (l *Ledger) History(ctx context.Context, engine string) ([]models.UsageReport, error) {
	var rows []tables.UsageCounter
	err := l.db.Context(ctx).
		Where("engine = ?", engine).
		Desc("period").
		Find(&rows)
	if err != nil {
		return nil, fmt.Errorf("usage history: %w", err)
	}
	return toReports(rows), nil
}

func toReports(rows []tables.UsageCounter) []models.UsageReport {
	reports := make([]models.UsageReport, 0, len(rows))
	for _, row := range rows {
		reports = append(reports, models.UsageReport{
			Engine:        row.Engine,
			Period:        row.Period,
			TotalChars:    row.CharCount,
			TotalRequests: row.RequestCount,
			Quota:         row.Quota,
			Remaining:     Remaining(row.Quota, row.CharCount),
			Disabled:      row.Disabled,
		})
	}
	return reports
}

// Remaining computes the allotment left; 0 quota means unlimited and
// reports -1.
func Remaining(quota, used int64) int64 {
	if quota <= 0 {
		return -1
	}
	if used >= quota {
		return 0
	}
	return quota - used
}

func (l *Ledger) ensureRow(ctx context.Context, engine, period string) error {
	exists, err := l.db.Context(ctx).
		Where("engine = ? AND period = ?", engine, period).
		Exist(new(tables.UsageCounter))
	if err != nil {
		return fmt.Errorf("usage row check: %w", err)
	}
	if exists {
		return nil
	}

	_, err = l.db.Context(ctx).Insert(&tables.UsageCounter{
		Engine: engine,
		Period: period,
		Quota:  l.quotas[engine],
	})
	if err != nil {
		// A concurrent worker may have inserted the row first.
		exists, checkErr := l.db.Context(ctx).
			Where("engine = ? AND period = ?", engine, period).
			Exist(new(tables.UsageCounter))
		if checkErr == nil && exists {
			return nil
		}
		return fmt.Errorf("usage row insert: %w", err)
	}
	return nil
}

func (l *Ledger) row(ctx context.Context, engine, period string) (*tables.UsageCounter, error) {
	row := tables.UsageCounter{}
	found, err := l.db.Context(ctx).
		Where("engine = ? AND period = ?", engine, period).
		Get(&row)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &row, nil
}
