// Package engines holds the translation backends and the router that
// orders them into a fallback chain.
package engines

import (
	"context"

	"mail_trans_engine/pkg/glossary"
)

// Engine names used in config, the usage ledger and diagnostics.
const (
	NameOllama = "ollama"
	NameOpenAI = "openai"
	NameAlimt  = "alimt"
)

type Request struct {
	Text       string
	SourceLang string // empty means auto-detect
	TargetLang string
	Terms      []glossary.Term
}

// Engine is one translation backend. Translate must respect ctx deadlines;
// Available is a cheap local check (circuit breaker state, config present)
// and never performs I/O.
type Engine interface {
	Name() string
	Translate(ctx context.Context, req Request) (string, error)
	Available() bool
}
