// Package batch manages offline translation jobs against the hosted
// provider's batch API. Jobs and items are persisted before submission so
// a crash between submit and response is recoverable by re-polling.
package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"xorm.io/xorm"

	"mail_trans_engine/models/models"
	"mail_trans_engine/models/tables"
	"mail_trans_engine/pkg/cache"
	"mail_trans_engine/pkg/executor"
)

var ErrJobNotFound = errors.New("batch job not found")

// submitTimeout bounds how long a job may sit in pending without a
// provider job id. Past it the submit call is assumed to have died with
// the process that made it, and the job is failed.
const submitTimeout = 15 * time.Minute

// Provider is the slice of the hosted batch API the manager depends on.
type Provider interface {
	Submit(ctx context.Context, lines []ProviderLine) (providerJobId string, err error)
	Status(ctx context.Context, providerJobId string) (*ProviderStatus, error)
	Results(ctx context.Context, outputFileId string) ([]ProviderResult, error)
}

type ProviderLine struct {
	CustomId   string
	Text       string
	SourceLang string
	TargetLang string
}

type ProviderStatus struct {
	Status       string
	OutputFileId string
}

type ProviderResult struct {
	CustomId         string
	Translated       string
	Err              string
	PromptTokens     int
	CompletionTokens int
}

// correlationId ties a provider result line back to our job and item rows
// without trusting provider-side ordering.
func correlationId(jobId, itemId string) string {
	return jobId + ":" + itemId
}

func parseCorrelationId(customId string) (jobId, itemId string, err error) {
	jobId, itemId, found := strings.Cut(customId, ":")
	if !found || jobId == "" || itemId == "" {
		return "", "", fmt.Errorf("malformed correlation id %q", customId)
	}
	return jobId, itemId, nil
}

// mapProviderStatus folds the provider's lifecycle into ours. Unknown
// states count as still running so polling continues.
func mapProviderStatus(provider string) string {
	switch provider {
	case "validating", "in_progress", "finalizing":
		return tables.BatchStatusInProgress
	case "completed":
		return tables.BatchStatusEnded
	case "failed":
		return tables.BatchStatusFailed
	case "expired":
		return tables.BatchStatusExpired
	case "cancelled", "cancelling":
		return tables.BatchStatusCanceled
	default:
		return tables.BatchStatusInProgress
	}
}

func terminal(status string) bool {
	switch status {
	case tables.BatchStatusEnded, tables.BatchStatusFailed,
		tables.BatchStatusExpired, tables.BatchStatusCanceled:
		return true
	}
	return false
}

type Manager struct {
	db       *xorm.Engine
	provider Provider
	cache    executor.Cache
	log      *slog.Logger
}

func NewManager(db *xorm.Engine, provider Provider, c executor.Cache, log *slog.Logger) *Manager {
	return &Manager{db: db, provider: provider, cache: c, log: log}
}

// Submit persists the job and its items, then hands them to the provider.
// The returned id is ours; the provider's id is stored on the job row.
func (m *Manager) Submit(ctx context.Context, units []models.BatchUnit) (string, error) {
	if len(units) == 0 {
		return "", errors.New("batch submit: no units")
	}

	jobId := uuid.New().String()
	job := tables.BatchJob{
		Id:         jobId,
		Status:     tables.BatchStatusPending,
		TotalItems: len(units),
	}
	if _, err := m.db.Context(ctx).Insert(&job); err != nil {
		return "", fmt.Errorf("insert batch job: %w", err)
	}

	items := make([]tables.BatchItem, 0, len(units))
	lines := make([]ProviderLine, 0, len(units))
	for _, unit := range units {
		itemId := uuid.New().String()
		customId := correlationId(jobId, itemId)
		items = append(items, tables.BatchItem{
			Id:         itemId,
			JobId:      jobId,
			CustomId:   customId,
			UnitId:     unit.UnitId,
			SourceText: unit.Text,
			SourceLang: unit.SourceLang,
			TargetLang: unit.TargetLang,
			Status:     tables.BatchItemPending,
		})
		lines = append(lines, ProviderLine{
			CustomId:   customId,
			Text:       unit.Text,
			SourceLang: unit.SourceLang,
			TargetLang: unit.TargetLang,
		})
	}
	if _, err := m.db.Context(ctx).Insert(&items); err != nil {
		return "", fmt.Errorf("insert batch items: %w", err)
	}

	providerJobId, err := m.provider.Submit(ctx, lines)
	if err != nil {
		m.updateJobStatus(ctx, jobId, tables.BatchStatusFailed)
		return "", fmt.Errorf("provider batch submit: %w", err)
	}

	_, err = m.db.Context(ctx).
		Where("id = ?", jobId).
		Cols("provider_job_id", "status", "submitted_at").
		Update(&tables.BatchJob{
			ProviderJobId: providerJobId,
			Status:        tables.BatchStatusSubmitted,
			SubmittedAt:   time.Now(),
		})
	if err != nil {
		return "", fmt.Errorf("update batch job: %w", err)
	}

	m.log.Info("batch job submitted",
		"job_id", jobId, "provider_job_id", providerJobId, "items", len(units))
	return jobId, nil
}

// Poll refreshes the job from the provider. Once a job is terminal the
// stored state is returned without another provider call, so polling is
// idempotent. A job that just ended is harvested in the same call.
func (m *Manager) Poll(ctx context.Context, jobId string) (*models.BatchStatusResponse, error) {
	job, err := m.loadJob(ctx, jobId)
	if err != nil {
		return nil, err
	}

	if terminal(job.Status) {
		return statusResponse(job), nil
	}

	// A pending job with no provider id never finished its submit call.
	// There is nothing to poll; fail it once the submit window has passed.
	if job.ProviderJobId == "" {
		if time.Since(job.CreatedAt) > submitTimeout {
			m.log.Warn("batch job stuck in submit, failing",
				"job_id", jobId, "age", time.Since(job.CreatedAt).String())
			m.updateJobStatus(ctx, jobId, tables.BatchStatusFailed)
			job.Status = tables.BatchStatusFailed
		}
		return statusResponse(job), nil
	}

	providerStatus, err := m.provider.Status(ctx, job.ProviderJobId)
	if err != nil {
		return nil, fmt.Errorf("provider batch status: %w", err)
	}

	mapped := mapProviderStatus(providerStatus.Status)
	update := tables.BatchJob{Status: mapped, OutputFileId: providerStatus.OutputFileId}
	cols := []string{"status", "output_file_id"}
	if terminal(mapped) {
		update.CompletedAt = time.Now()
		cols = append(cols, "completed_at")
	}
	_, err = m.db.Context(ctx).Where("id = ?", jobId).Cols(cols...).Update(&update)
	if err != nil {
		return nil, fmt.Errorf("update batch job: %w", err)
	}
	job.Status = mapped
	job.OutputFileId = providerStatus.OutputFileId

	if mapped == tables.BatchStatusEnded {
		if _, err := m.Harvest(ctx, jobId); err != nil {
			m.log.Error("batch harvest failed", "job_id", jobId, "error", err.Error())
		} else {
			job, err = m.loadJob(ctx, jobId)
			if err != nil {
				return nil, err
			}
		}
	}
	return statusResponse(job), nil
}

// Harvest downloads the output file and applies each result line to its
// item: translation, token counts, cache write-through, and the owning
// translation unit when one is linked. Partial failure is per item.
func (m *Manager) Harvest(ctx context.Context, jobId string) ([]models.BatchItemResult, error) {
	job, err := m.loadJob(ctx, jobId)
	if err != nil {
		return nil, err
	}
	if job.OutputFileId == "" {
		return nil, fmt.Errorf("batch job %s has no output file yet", jobId)
	}

	results, err := m.provider.Results(ctx, job.OutputFileId)
	if err != nil {
		return nil, fmt.Errorf("provider batch results: %w", err)
	}

	completed, failed := 0, 0
	out := make([]models.BatchItemResult, 0, len(results))
	for _, result := range results {
		itemResult, ok := m.applyResult(ctx, jobId, result)
		if !ok {
			continue
		}
		if itemResult.Status == tables.BatchItemCompleted {
			completed++
		} else {
			failed++
		}
		out = append(out, itemResult)
	}

	_, err = m.db.Context(ctx).
		Where("id = ?", jobId).
		Cols("completed_items", "failed_items").
		Update(&tables.BatchJob{CompletedItems: completed, FailedItems: failed})
	if err != nil {
		return nil, fmt.Errorf("update batch job counts: %w", err)
	}

	m.log.Info("batch job harvested",
		"job_id", jobId, "completed", completed, "failed", failed)
	return out, nil
}

func (m *Manager) applyResult(ctx context.Context, jobId string, result ProviderResult) (models.BatchItemResult, bool) {
	resultJobId, _, err := parseCorrelationId(result.CustomId)
	if err != nil || resultJobId != jobId {
		m.log.Warn("dropping foreign batch result line", "custom_id", result.CustomId)
		return models.BatchItemResult{}, false
	}

	item := tables.BatchItem{}
	found, err := m.db.Context(ctx).Where("custom_id = ?", result.CustomId).Get(&item)
	if err != nil || !found {
		m.log.Warn("batch result without matching item", "custom_id", result.CustomId)
		return models.BatchItemResult{}, false
	}

	update := tables.BatchItem{
		PromptTokens:     result.PromptTokens,
		CompletionTokens: result.CompletionTokens,
	}
	if result.Err != "" || strings.TrimSpace(result.Translated) == "" {
		update.Status = tables.BatchItemFailed
		update.LastError = result.Err
		if update.LastError == "" {
			update.LastError = "empty translation in batch output"
		}
	} else {
		update.Status = tables.BatchItemCompleted
		update.Translated = executor.Clean(item.SourceText, result.Translated)
	}

	_, err = m.db.Context(ctx).
		Where("custom_id = ?", result.CustomId).
		Cols("status", "translated", "last_error", "prompt_tokens", "completion_tokens").
		Update(&update)
	if err != nil {
		m.log.Error("batch item update failed", "custom_id", result.CustomId, "error", err.Error())
		return models.BatchItemResult{}, false
	}

	if update.Status == tables.BatchItemCompleted {
		m.writeThrough(ctx, item, update.Translated)
		m.completeUnit(ctx, item.UnitId, update.Translated)
	}

	return models.BatchItemResult{
		UnitId:     item.UnitId,
		Status:     update.Status,
		Translated: update.Translated,
		Error:      update.LastError,
	}, true
}

// writeThrough seeds the shared cache so interactive requests for the same
// text are served without an engine call. Batch items carry no glossary
// context, so only glossary-free keys are written.
func (m *Manager) writeThrough(ctx context.Context, item tables.BatchItem, translated string) {
	fp := cache.Fingerprint(item.SourceText, item.SourceLang, item.TargetLang, "")
	entry := cache.Entry{
		Fingerprint: fp,
		SourceText:  item.SourceText,
		SourceLang:  item.SourceLang,
		TargetLang:  item.TargetLang,
	}
	if err := m.cache.Put(ctx, entry, translated); err != nil {
		m.log.Warn("batch cache write-through failed", "error", err.Error())
	}
}

func (m *Manager) completeUnit(ctx context.Context, unitId, translated string) {
	if unitId == "" {
		return
	}
	_, err := m.db.Context(ctx).
		Where("id = ?", unitId).
		Cols("status", "engine_used", "body_result").
		Update(&tables.TranslationUnit{
			Status:     tables.UnitStatusCompleted,
			EngineUsed: "openai-batch",
			BodyResult: translated,
		})
	if err != nil {
		m.log.Warn("batch unit write-back failed", "unit_id", unitId, "error", err.Error())
	}
}

// OpenJobs lists jobs the periodic poller should refresh. Pending jobs
// are included so ones orphaned mid-submit get reconciled by Poll.
func (m *Manager) OpenJobs(ctx context.Context) ([]string, error) {
	var jobs []tables.BatchJob
	err := m.db.Context(ctx).
		Where("status IN (?, ?, ?)", tables.BatchStatusPending,
			tables.BatchStatusSubmitted, tables.BatchStatusInProgress).
		Cols("id").
		Find(&jobs)
	if err != nil {
		return nil, fmt.Errorf("list open batch jobs: %w", err)
	}
	ids := make([]string, 0, len(jobs))
	for _, job := range jobs {
		ids = append(ids, job.Id)
	}
	return ids, nil
}

func (m *Manager) loadJob(ctx context.Context, jobId string) (*tables.BatchJob, error) {
	job := tables.BatchJob{}
	found, err := m.db.Context(ctx).Where("id = ?", jobId).Get(&job)
	if err != nil {
		return nil, fmt.Errorf("load batch job: %w", err)
	}
	if !found {
		return nil, ErrJobNotFound
	}
	return &job, nil
}

func (m *Manager) updateJobStatus(ctx context.Context, jobId, status string) {
	_, err := m.db.Context(ctx).
		Where("id = ?", jobId).
		Cols("status").
		Update(&tables.BatchJob{Status: status})
	if err != nil {
		m.log.Error("batch job status update failed", "job_id", jobId, "error", err.Error())
	}
}

func statusResponse(job *tables.BatchJob) *models.BatchStatusResponse {
	return &models.BatchStatusResponse{
		JobId:         job.Id,
		ProviderJobId: job.ProviderJobId,
		Status:        job.Status,
		TotalItems:    job.TotalItems,
		Completed:     job.CompletedItems,
		Failed:        job.FailedItems,
	}
}
