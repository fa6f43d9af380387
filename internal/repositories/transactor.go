package repositories

import (
	"context"

	"gorm.io/gorm"
)

// Transactor runs a unit of work in one database transaction. Repository
// calls made with the context handed to fn join that transaction, so a
// wallet update and its ledger record commit or roll back together.
type Transactor interface {
	ExecuteInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type txKey struct{}

type gormTransactor struct {
	db *gorm.DB
}

func NewTransactor(db *gorm.DB) Transactor {
	return &gormTransactor{db: db}
}

// ExecuteInTransaction commits when fn returns nil and rolls back
// otherwise. A call made inside another unit of work joins the outer one.
func (t *gormTransactor) ExecuteInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// conn returns the transaction bound to ctx, or db.
func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}
