// Package executor runs one translation end to end: quote splitting,
// chunking over the threshold, per-chunk cache consultation, the engine
// fallback chain, and reuse of previously translated quoted content.
package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"mail_trans_engine/config"
	"mail_trans_engine/models/tables"
	"mail_trans_engine/pkg/cache"
	"mail_trans_engine/pkg/engines"
	"mail_trans_engine/pkg/glossary"
	"mail_trans_engine/pkg/textsplit"
)

// EngineCache reported when every part of a result came from the cache and
// no backend was called.
const EngineCache = "cache"

// ErrEnginesExhausted marks a failure where every engine in the chain was
// tried and none produced output. Callers distinguish it from storage
// failures, which wrap their own errors.
var ErrEnginesExhausted = errors.New("all engines exhausted")

const chunkSeparator = "\n\n"

// Cache is the slice of the cache store the executor depends on.
type Cache interface {
	Get(ctx context.Context, fingerprint string) (string, bool, error)
	Put(ctx context.Context, entry cache.Entry, translated string) error
}

// DocStore persists the translation produced for a document so replies
// quoting it can reuse the result instead of re-translating.
type DocStore interface {
	Lookup(ctx context.Context, documentId, targetLang string) (*tables.SharedDocTranslation, error)
	Save(ctx context.Context, row *tables.SharedDocTranslation) error
}

type Task struct {
	Subject    string
	Body       string
	SourceLang string // empty means auto-detect
	TargetLang string
	DocumentId string // stable external id of this message, may be empty
	InReplyTo  string // document id of the quoted message, may be empty
	Terms      []glossary.Term
	GlossaryFp string
	Chain      []engines.Engine // fallback order, from the router
}

type Outcome struct {
	Subject     string
	Body        string
	Engine      string // first backend that produced fresh output, or "cache"
	FreshChars  int    // source characters actually sent to a backend
	FreshChunks int
	CacheChunks int
}

type Executor struct {
	cfg   config.TranslateConfig
	cache Cache
	docs  DocStore
	log   *slog.Logger
}

func New(cfg config.TranslateConfig, c Cache, docs DocStore, log *slog.Logger) *Executor {
	return &Executor{cfg: cfg, cache: c, docs: docs, log: log}
}

// Execute translates the task's subject and body. The body is split into
// its latest part and quoted tail; the quoted tail is reused from an
// earlier document translation when one exists. Fails when a part needed
// fresh translation and every engine in the chain failed, or when the
// durable cache tier is unreachable: that store is authoritative, and
// falling through would silently re-pay for work it already holds.
func (e *Executor) Execute(ctx context.Context, task Task) (*Outcome, error) {
	out := &Outcome{}
	latest, quoted := textsplit.Split(task.Body)

	bodyLatest, err := e.translateText(ctx, task, latest, out)
	if err != nil {
		return nil, err
	}

	bodyQuoted := ""
	if strings.TrimSpace(quoted) != "" {
		bodyQuoted = e.reuseQuoted(ctx, task, quoted)
		if bodyQuoted == "" {
			bodyQuoted, err = e.translateText(ctx, task, quoted, out)
			if err != nil {
				return nil, err
			}
		}
	}

	if strings.TrimSpace(task.Subject) != "" {
		out.Subject, err = e.translateText(ctx, task, task.Subject, out)
		if err != nil {
			return nil, err
		}
	}

	out.Body = bodyLatest
	if bodyQuoted != "" {
		out.Body = bodyLatest + chunkSeparator + bodyQuoted
	}
	if out.Engine == "" {
		out.Engine = EngineCache
	}

	e.saveDoc(ctx, task, out)
	return out, nil
}

func (e *Executor) translateText(ctx context.Context, task Task, text string, out *Outcome) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}

	chunks := []string{text}
	if chars := utf8.RuneCountInString(text); chars > e.cfg.ChunkThreshold {
		chunks = textsplit.Chunk(text, e.cfg.MaxChunkSize)
		e.log.Info("text over chunk threshold, splitting",
			"chars", chars, "chunks", len(chunks))
	}

	parts := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		fp := cache.Fingerprint(chunk, task.SourceLang, task.TargetLang, task.GlossaryFp)

		cached, ok, err := e.cache.Get(ctx, fp)
		if err != nil {
			return "", fmt.Errorf("durable cache lookup: %w", err)
		}
		if ok {
			parts = append(parts, cached)
			out.CacheChunks++
			continue
		}

		translated, engine, err := e.translateChunk(ctx, task, chunk)
		if err != nil {
			return "", err
		}
		parts = append(parts, translated)
		out.FreshChunks++
		out.FreshChars += utf8.RuneCountInString(chunk)
		if out.Engine == "" {
			out.Engine = engine
		}

		entry := cache.Entry{
			Fingerprint: fp,
			SourceText:  chunk,
			SourceLang:  task.SourceLang,
			TargetLang:  task.TargetLang,
		}
		if err := e.cache.Put(ctx, entry, translated); err != nil {
			return "", fmt.Errorf("durable cache write: %w", err)
		}
	}

	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return strings.Join(parts, chunkSeparator), nil
}

func (e *Executor) translateChunk(ctx context.Context, task Task, chunk string) (string, string, error) {
	req := engines.Request{
		Text:       chunk,
		SourceLang: task.SourceLang,
		TargetLang: task.TargetLang,
		Terms:      task.Terms,
	}

	var lastErr error
	for _, eng := range task.Chain {
		if !eng.Available() {
			e.log.Info("engine unavailable, skipping", "engine", eng.Name())
			continue
		}

		callCtx, cancel := context.WithTimeout(ctx, e.cfg.SoftTimeout())
		raw, err := eng.Translate(callCtx, req)
		cancel()
		if err != nil {
			lastErr = err
			e.log.Warn("engine call failed, falling back",
				"engine", eng.Name(), "error", err.Error())
			continue
		}

		cleaned := Clean(chunk, raw)
		if strings.TrimSpace(cleaned) == "" {
			lastErr = fmt.Errorf("engine %s returned empty output", eng.Name())
			continue
		}
		return cleaned, eng.Name(), nil
	}

	if lastErr == nil {
		lastErr = errors.New("no engine available")
	}
	return "", "", fmt.Errorf("%w: %v", ErrEnginesExhausted, lastErr)
}

// reuseQuoted looks up the translation stored for the quoted document.
// Lookup failures are treated as a miss; reuse is an optimization, never a
// requirement.
func (e *Executor) reuseQuoted(ctx context.Context, task Task, quoted string) string {
	if task.InReplyTo == "" {
		return ""
	}
	row, err := e.docs.Lookup(ctx, task.InReplyTo, task.TargetLang)
	if err != nil {
		e.log.Warn("shared document lookup failed", "error", err.Error())
		return ""
	}
	if row == nil || row.BodyTranslated == "" {
		return ""
	}
	e.log.Info("reusing quoted content translation",
		"in_reply_to", task.InReplyTo, "target_lang", task.TargetLang)
	return row.BodyTranslated
}

func (e *Executor) saveDoc(ctx context.Context, task Task, out *Outcome) {
	if task.DocumentId == "" || e.docs == nil {
		return
	}
	err := e.docs.Save(ctx, &tables.SharedDocTranslation{
		DocumentId:        task.DocumentId,
		TargetLang:        task.TargetLang,
		Subject:           task.Subject,
		Body:              task.Body,
		SubjectTranslated: out.Subject,
		BodyTranslated:    out.Body,
		EngineUsed:        out.Engine,
	})
	if err != nil {
		e.log.Warn("shared document save failed",
			"document_id", task.DocumentId, "error", err.Error())
	}
}
