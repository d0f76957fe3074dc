// Package store persists the catalog with GORM. Every method takes a context;
// when the context carries a transaction (see WithTx) the method runs inside it.
package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Sentinel errors for storage facts. Callers translate them into domain errors.
var (
	ErrNotFound = errors.New("record not found")
)

// Store is the GORM-backed persistence layer.
type Store struct {
	db *gorm.DB
}

// New wraps a GORM connection.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying connection for migrations and seeds.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// conn returns the transaction bound to ctx, or the root connection.
func (s *Store) conn(ctx context.Context) *gorm.DB {
	if tx, ok := TxFrom(ctx); ok {
		return tx.WithContext(ctx)
	}
	return s.db.WithContext(ctx)
}

// Transaction runs fn inside a transaction bound to the context passed to fn.
// When ctx already carries a transaction, fn runs inside a savepoint of it: an
// error from fn rolls back only the savepoint and the outer work survives.
func (s *Store) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(WithTx(ctx, tx))
	})
}

// Savepoint is Transaction under the name the linkage code uses for its
// isolated unit of work.
func (s *Store) Savepoint(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.Transaction(ctx, fn)
}

// translate maps GORM errors onto package sentinels.
func translate(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return fmt.Errorf("%s: %w", what, err)
}
