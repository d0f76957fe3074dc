package store

import (
	"context"

	"gorm.io/gorm"
)

type ctxKey struct{}

var txKey = ctxKey{}

// WithTx stores a GORM transaction in context for downstream store usage.
func WithTx(ctx context.Context, tx *gorm.DB) context.Context {
	if tx == nil {
		return ctx
	}
	return context.WithValue(ctx, txKey, tx)
}

// TxFrom extracts a GORM transaction from context if present.
func TxFrom(ctx context.Context) (*gorm.DB, bool) {
	tx, ok := ctx.Value(txKey).(*gorm.DB)
	return tx, ok
}
