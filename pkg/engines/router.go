package engines

import (
	"log/slog"

	"mail_trans_engine/config"
	"mail_trans_engine/pkg/complexity"
)

// DisabledFunc reports whether the usage ledger has disabled an engine for
// the current month.
type DisabledFunc func(engine string) bool

// Router maps an assessment plus configuration to an ordered fallback
// chain. Pure apart from the disabled lookup; performs no I/O itself.
//
// Complexity is logged for observability but does not change the chosen
// order: with a single local engine deployed there is nothing for it to
// pick between. Callers may extend this once more engines exist.
type Router struct {
	mode     string
	fixed    string
	chain    []Engine
	disabled DisabledFunc
	log      *slog.Logger
}

func NewRouter(cfg config.TranslateConfig, chain []Engine, disabled DisabledFunc, log *slog.Logger) *Router {
	if disabled == nil {
		disabled = func(string) bool { return false }
	}
	return &Router{
		mode:     cfg.Mode,
		fixed:    cfg.FixedEngine,
		chain:    chain,
		disabled: disabled,
		log:      log,
	}
}

// Select returns the candidate engines in fallback order. A ledger-disabled
// engine is never returned. The list may be empty.
func (r *Router) Select(assessment complexity.Assessment) []Engine {
	r.log.Info("routing translation",
		"mode", r.mode,
		"complexity_level", string(assessment.Level),
		"complexity_score", assessment.Score,
		"complexity_method", assessment.Method,
	)

	if r.mode == "fixed" {
		for _, e := range r.chain {
			if e.Name() == r.fixed {
				if r.disabled(e.Name()) {
					return nil
				}
				return []Engine{e}
			}
		}
		return nil
	}

	selected := make([]Engine, 0, len(r.chain))
	for _, e := range r.chain {
		if r.disabled(e.Name()) {
			continue
		}
		selected = append(selected, e)
	}
	return selected
}
