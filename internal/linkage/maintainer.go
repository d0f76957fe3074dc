// Package linkage maintains the related-case relation. Two cases are related
// when they hold an identifier of the same linking kind with the same
// normalized key. Edges are derived data: failures are logged and counted,
// never returned, and Rebuild recomputes them from the identifiers.
package linkage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/diewo77/scam-catalog/internal/matching"
	"github.com/diewo77/scam-catalog/internal/metrics"
	"github.com/diewo77/scam-catalog/internal/models"
)

// Store is the persistence the maintainer needs.
type Store interface {
	matching.RecordSource
	// Savepoint runs fn in a unit of work nested in the transaction bound
	// to ctx; an error rolls back only what fn wrote.
	Savepoint(ctx context.Context, fn func(ctx context.Context) error) error
	// LockMatchKey serializes linkage of one key until the transaction ends.
	LockMatchKey(ctx context.Context, kind matching.Kind, key string) error
	ExistingCaseIDs(ctx context.Context, ids []uint) ([]uint, error)
	LinkCases(ctx context.Context, a, b uint) (bool, error)
	IdentifiersOfCases(ctx context.Context, caseIDs []uint) ([]models.Identifier, error)
	EachLinkingIdentifier(ctx context.Context, batchSize int, fn func(models.Identifier) error) error
}

// Maintainer updates the related-case relation after identifier writes.
type Maintainer struct {
	store   Store
	finder  *matching.Finder
	log     *slog.Logger
	metrics *metrics.Metrics
}

// New creates a Maintainer. m may be nil.
func New(store Store, log *slog.Logger, m *metrics.Metrics) *Maintainer {
	if log == nil {
		log = slog.Default()
	}
	return &Maintainer{
		store:   store,
		finder:  matching.NewFinder(store),
		log:     log,
		metrics: m,
	}
}

// OnIdentifierSaved links the record's case to every other existing case
// holding the same key. Call it after persisting a record, with the ctx of
// the write's transaction. It never fails the caller: any error rolls back
// the linkage savepoint only and is logged.
func (m *Maintainer) OnIdentifierSaved(ctx context.Context, rec *models.Identifier) {
	if rec == nil || !rec.Links() {
		return
	}
	key, ok := matching.Normalize(rec.Kind, rec.Value)
	if !ok {
		return
	}

	start := time.Now()
	created := 0
	err := m.store.Savepoint(ctx, func(ctx context.Context) (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("linkage panic: %v", r)
			}
		}()
		created, err = m.link(ctx, rec, key)
		return err
	})
	m.metrics.ObserveLinkage(start, created, err != nil)
	if err != nil {
		m.log.Warn("linkage failed; identifier kept without new links",
			"identifier_id", rec.ID, "case_id", rec.CaseID, "kind", rec.Kind, "error", err)
		return
	}
	if created > 0 {
		m.log.Debug("cases linked", "case_id", rec.CaseID, "kind", rec.Kind, "new_links", created)
	}
}

// link unions rec's case with every co-holder and returns the number of new
// edges.
func (m *Maintainer) link(ctx context.Context, rec *models.Identifier, key string) (int, error) {
	if err := m.store.LockMatchKey(ctx, rec.Kind, key); err != nil {
		return 0, err
	}
	holders, err := m.finder.FindCoHolders(ctx, rec.Kind, key, rec.ID)
	if err != nil {
		return 0, fmt.Errorf("find co-holders: %w", err)
	}
	others := holders[:0]
	for _, id := range holders {
		if id != rec.CaseID {
			others = append(others, id)
		}
	}
	if len(others) == 0 {
		return 0, nil
	}
	existing, err := m.store.ExistingCaseIDs(ctx, others)
	if err != nil {
		return 0, fmt.Errorf("resolve cases: %w", err)
	}
	created := 0
	for _, id := range existing {
		ok, err := m.store.LinkCases(ctx, rec.CaseID, id)
		if err != nil {
			return 0, err
		}
		if ok {
			created++
		}
	}
	return created, nil
}

// Rebuild replays OnIdentifierSaved for every linking identifier, restoring
// edges lost to earlier linkage failures. Existing edges are left as they are.
func (m *Maintainer) Rebuild(ctx context.Context) (processed int, err error) {
	err = m.store.EachLinkingIdentifier(ctx, 500, func(ident models.Identifier) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		m.OnIdentifierSaved(ctx, &ident)
		processed++
		return nil
	})
	if err != nil {
		return processed, fmt.Errorf("rebuild links: %w", err)
	}
	m.log.Info("link rebuild finished", "identifiers", processed)
	return processed, nil
}
