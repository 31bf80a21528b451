// Package tasks defines the queue task types, their payloads, and the
// handlers the worker registers. Payloads carry ids only; the handlers
// reload state from the database so stale queue entries stay harmless.
package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"mail_trans_engine/config"
	"mail_trans_engine/pkg/batch"
	"mail_trans_engine/pkg/translator"
	"mail_trans_engine/pkg/units"
)

const (
	TypeTranslateUnit = "translate:unit"
	TypeUnitsSweep    = "units:sweep"
	TypeBatchPoll     = "batch:poll"
)

type TranslateUnitPayload struct {
	UnitId string `json:"unit_id"`
	Force  bool   `json:"force,omitempty"` // re-enter completed units
}

func NewTranslateUnitTask(unitId string, force bool) (*asynq.Task, error) {
	payload, err := json.Marshal(TranslateUnitPayload{UnitId: unitId, Force: force})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeTranslateUnit, payload, asynq.MaxRetry(3)), nil
}

// Enqueuer wraps the asynq client handed to the API layer.
type Enqueuer struct {
	client *asynq.Client
}

func NewEnqueuer(cfg config.Redis) *Enqueuer {
	return &Enqueuer{
		client: asynq.NewClient(asynq.RedisClientOpt{
			Addr:     cfg.Addr(),
			Password: cfg.Password,
		}),
	}
}

func (e *Enqueuer) TranslateUnit(ctx context.Context, unitId string, force bool) error {
	task, err := NewTranslateUnitTask(unitId, force)
	if err != nil {
		return err
	}
	if _, err := e.client.EnqueueContext(ctx, task); err != nil {
		return fmt.Errorf("enqueue translate task: %w", err)
	}
	return nil
}

func (e *Enqueuer) Close() error {
	return e.client.Close()
}

// Handler holds the dependencies the worker-side task handlers need.
type Handler struct {
	translator   *translator.Service
	units        *units.Repo
	batch        *batch.Manager
	claimTimeout time.Duration
	log          *slog.Logger
}

func NewHandler(svc *translator.Service, unitRepo *units.Repo, batchMgr *batch.Manager, claimTimeout time.Duration, log *slog.Logger) *Handler {
	return &Handler{
		translator:   svc,
		units:        unitRepo,
		batch:        batchMgr,
		claimTimeout: claimTimeout,
		log:          log,
	}
}

func (h *Handler) HandleTranslateUnit(ctx context.Context, t *asynq.Task) error {
	var p TranslateUnitPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}
	return h.translator.ProcessUnit(ctx, p.UnitId, p.Force)
}

func (h *Handler) HandleUnitsSweep(ctx context.Context, t *asynq.Task) error {
	_, err := h.units.SweepStuck(ctx, h.claimTimeout)
	return err
}

// HandleBatchPoll refreshes every open batch job. One failing job does not
// stop the rest; the poll task itself only fails when listing jobs fails.
func (h *Handler) HandleBatchPoll(ctx context.Context, t *asynq.Task) error {
	jobIds, err := h.batch.OpenJobs(ctx)
	if err != nil {
		return err
	}

	for _, jobId := range jobIds {
		status, err := h.batch.Poll(ctx, jobId)
		if err != nil {
			if errors.Is(err, batch.ErrJobNotFound) {
				continue
			}
			h.log.Error("batch poll failed", "job_id", jobId, "error", err.Error())
			continue
		}
		h.log.Info("batch job polled", "job_id", jobId, "status", status.Status)
	}
	return nil
}
