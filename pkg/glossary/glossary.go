package glossary

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"xorm.io/xorm"

	"mail_trans_engine/models/tables"
)

// Term is one source→target substitution active for a tenant.
type Term struct {
	Source string
	Target string
}

// Provider yields the terms currently active for a tenant. The engine core
// only reads terms; editing them belongs to the CRUD surfaces outside.
type Provider interface {
	TermsFor(ctx context.Context, tenantID string) ([]Term, error)
}

// Store is the mysql-backed Provider.
type Store struct {
	db *xorm.Engine
}

func NewStore(db *xorm.Engine) *Store {
	return &Store{db: db}
}

func (s *Store) TermsFor(ctx context.Context, tenantID string) ([]Term, error) {
	if tenantID == "" {
		return nil, nil
	}

	var rows []tables.GlossaryTerm
	err := s.db.Context(ctx).Where("tenant_id = ?", tenantID).Find(&rows)
	if err != nil {
		return nil, fmt.Errorf("load glossary terms: %w", err)
	}

	terms := make([]Term, 0, len(rows))
	for _, row := range rows {
		terms = append(terms, Term{Source: row.SourceTerm, Target: row.TargetTerm})
	}
	return terms, nil
}

// Fingerprint hashes the sorted term pairs. Any change to a tenant's
// glossary changes the fingerprint and with it every cache key derived from
// it, which invalidates affected cache entries without explicit eviction.
// An empty glossary yields an empty fingerprint so glossary-free tenants
// share cache keys globally.
func Fingerprint(terms []Term) string {
	if len(terms) == 0 {
		return ""
	}

	pairs := make([]string, 0, len(terms))
	for _, t := range terms {
		pairs = append(pairs, t.Source+"="+t.Target)
	}
	sort.Strings(pairs)

	sum := sha256.Sum256([]byte(strings.Join(pairs, "\n")))
	return hex.EncodeToString(sum[:])
}
