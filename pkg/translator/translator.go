// Package translator is the orchestration facade: it resolves glossary
// state, consults the cache, classifies, routes, executes, and records
// usage. HTTP handlers and queue workers both go through it.
package translator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"mail_trans_engine/config"
	"mail_trans_engine/models/models"
	"mail_trans_engine/models/tables"
	"mail_trans_engine/pkg/cache"
	"mail_trans_engine/pkg/complexity"
	"mail_trans_engine/pkg/engines"
	"mail_trans_engine/pkg/executor"
	"mail_trans_engine/pkg/glossary"
	"mail_trans_engine/pkg/notify"
)

// FailedError reports that a translation could not be produced by any
// configured engine.
type FailedError struct {
	Engines []string
	Err     error
}

func (e *FailedError) Error() string {
	if len(e.Engines) == 0 {
		return "translation failed: no engine available"
	}
	return fmt.Sprintf("translation failed after trying %s: %v",
		strings.Join(e.Engines, ", "), e.Err)
}

func (e *FailedError) Unwrap() error { return e.Err }

// Router narrows engines.Router to what the facade calls.
type Router interface {
	Select(assessment complexity.Assessment) []engines.Engine
}

// Exec narrows executor.Executor.
type Exec interface {
	Execute(ctx context.Context, task executor.Task) (*executor.Outcome, error)
}

// UsageRecorder narrows usage.Ledger.
type UsageRecorder interface {
	Record(ctx context.Context, engine string, chars int) error
}

// UnitRepo narrows units.Repo to the worker path's needs.
type UnitRepo interface {
	Load(ctx context.Context, id string) (*tables.TranslationUnit, error)
	Claim(ctx context.Context, id string) (bool, error)
	Reclaim(ctx context.Context, id string) (bool, error)
	Complete(ctx context.Context, id, engine, subjectResult, bodyResult string) error
	MarkFailed(ctx context.Context, id, cause string) error
}

type Service struct {
	cfg        config.TranslateConfig
	cache      executor.Cache
	classifier *complexity.Classifier
	router     Router
	exec       Exec
	glossary   glossary.Provider
	units      UnitRepo
	usage      UsageRecorder
	sink       notify.Sink
	log        *slog.Logger
}

func NewService(
	cfg config.TranslateConfig,
	c executor.Cache,
	classifier *complexity.Classifier,
	router Router,
	exec Exec,
	gloss glossary.Provider,
	units UnitRepo,
	usage UsageRecorder,
	sink notify.Sink,
	log *slog.Logger,
) *Service {
	return &Service{
		cfg:        cfg,
		cache:      c,
		classifier: classifier,
		router:     router,
		exec:       exec,
		glossary:   gloss,
		units:      units,
		usage:      usage,
		sink:       sink,
		log:        log,
	}
}

// Translate serves the plain endpoint: text in, translation out. A
// whole-text cache hit short-circuits before classification, so the common
// repeated-mail case costs one lookup and no model calls.
func (s *Service) Translate(ctx context.Context, req models.TranslateRequest) (*models.TranslateResponse, error) {
	terms, glossaryFp, err := s.glossaryState(ctx, req.TenantId)
	if err != nil {
		return nil, err
	}

	// The durable tier is authoritative: if it is down, failing the request
	// beats silently re-paying an engine for a translation it already holds.
	fp := cache.Fingerprint(req.Text, req.SourceLang, req.TargetLang, glossaryFp)
	cached, ok, err := s.cache.Get(ctx, fp)
	if err != nil {
		return nil, fmt.Errorf("durable cache lookup: %w", err)
	}
	if ok {
		s.log.Info("whole-text cache hit", "fingerprint", fp[:12])
		return &models.TranslateResponse{TranslatedText: cached}, nil
	}

	out, _, err := s.run(ctx, executor.Task{
		Body:       req.Text,
		SourceLang: req.SourceLang,
		TargetLang: req.TargetLang,
		Terms:      terms,
		GlossaryFp: glossaryFp,
	}, "")
	if err != nil {
		return nil, err
	}

	s.notify(ctx, req.TenantId, "translation.completed", map[string]interface{}{
		"engine_used": out.Engine,
		"target_lang": req.TargetLang,
	})
	return &models.TranslateResponse{TranslatedText: out.Body}, nil
}

// TranslateWithRouting serves the diagnostic endpoint: subject handling,
// the engine actually used, and the complexity assessment come back with
// the result.
func (s *Service) TranslateWithRouting(ctx context.Context, req models.RoutedTranslateRequest) (*models.RoutedTranslateResponse, error) {
	terms, glossaryFp, err := s.glossaryState(ctx, req.TenantId)
	if err != nil {
		return nil, err
	}

	out, assessment, err := s.run(ctx, executor.Task{
		Subject:    req.Subject,
		Body:       req.Text,
		SourceLang: req.SourceLang,
		TargetLang: req.TargetLang,
		Terms:      terms,
		GlossaryFp: glossaryFp,
	}, req.Subject)
	if err != nil {
		return nil, err
	}

	s.notify(ctx, req.TenantId, "translation.completed", map[string]interface{}{
		"engine_used": out.Engine,
		"target_lang": req.TargetLang,
	})
	return &models.RoutedTranslateResponse{
		TranslatedText:    out.Body,
		SubjectTranslated: out.Subject,
		EngineUsed:        out.Engine,
		Complexity: models.ComplexityInfo{
			Level:  string(assessment.Level),
			Score:  assessment.Score,
			Method: assessment.Method,
			Reason: assessment.Reason,
		},
	}, nil
}

// ProcessUnit is the worker path: claim the unit, translate it, persist
// the result. A lost claim race is a no-op, not an error. With force set
// the claim also re-enters completed units, re-translating them and
// overwriting the stored document translation.
func (s *Service) ProcessUnit(ctx context.Context, unitId string, force bool) error {
	unit, err := s.units.Load(ctx, unitId)
	if err != nil {
		return err
	}
	if unit == nil {
		s.log.Warn("translation unit not found, dropping task", "unit_id", unitId)
		return nil
	}

	claim := s.units.Claim
	if force {
		claim = s.units.Reclaim
	}
	claimed, err := claim(ctx, unitId)
	if err != nil {
		return err
	}
	if !claimed {
		return nil
	}

	terms, glossaryFp, err := s.glossaryState(ctx, unit.TenantId)
	if err != nil {
		terms, glossaryFp = nil, ""
		s.log.Warn("glossary load failed, translating without terms",
			"unit_id", unitId, "error", err.Error())
	}

	out, _, err := s.run(ctx, executor.Task{
		Subject:    unit.Subject,
		Body:       unit.Body,
		SourceLang: unit.SourceLang,
		TargetLang: unit.TargetLang,
		DocumentId: unit.DocumentId,
		InReplyTo:  unit.InReplyTo,
		Terms:      terms,
		GlossaryFp: glossaryFp,
	}, unit.Subject)
	if err != nil {
		if markErr := s.units.MarkFailed(ctx, unitId, err.Error()); markErr != nil {
			s.log.Error("failed to mark unit failed",
				"unit_id", unitId, "error", markErr.Error())
		}
		return err
	}

	if err := s.units.Complete(ctx, unitId, out.Engine, out.Subject, out.Body); err != nil {
		return err
	}

	s.notify(ctx, unit.TenantId, "unit.completed", map[string]interface{}{
		"unit_id":     unitId,
		"record_id":   unit.RecordId,
		"engine_used": out.Engine,
	})
	return nil
}

// run is the shared classify → route → execute → account path.
func (s *Service) run(ctx context.Context, task executor.Task, subject string) (*executor.Outcome, complexity.Assessment, error) {
	assessment := s.classifier.Assess(ctx, task.Body, subject)

	chain := s.router.Select(assessment)
	if len(chain) == 0 {
		return nil, assessment, &FailedError{Err: fmt.Errorf("no engine in chain")}
	}
	task.Chain = chain

	execCtx, cancel := context.WithTimeout(ctx, s.cfg.HardTimeout())
	defer cancel()

	out, err := s.exec.Execute(execCtx, task)
	if err != nil {
		if errors.Is(err, executor.ErrEnginesExhausted) {
			names := make([]string, 0, len(chain))
			for _, e := range chain {
				names = append(names, e.Name())
			}
			return nil, assessment, &FailedError{Engines: names, Err: err}
		}
		// Storage failures are not engine failures; surface them as-is.
		return nil, assessment, err
	}

	if out.FreshChars > 0 && out.Engine != executor.EngineCache {
		if err := s.usage.Record(ctx, out.Engine, out.FreshChars); err != nil {
			s.log.Warn("usage recording failed",
				"engine", out.Engine, "error", err.Error())
		}
	}
	return out, assessment, nil
}

func (s *Service) glossaryState(ctx context.Context, tenantId string) ([]glossary.Term, string, error) {
	terms, err := s.glossary.TermsFor(ctx, tenantId)
	if err != nil {
		return nil, "", fmt.Errorf("load glossary: %w", err)
	}
	return terms, glossary.Fingerprint(terms), nil
}

func (s *Service) notify(ctx context.Context, tenantId, event string, payload interface{}) {
	if s.sink == nil {
		return
	}
	s.sink.Publish(ctx, tenantId, event, payload)
}
