package postgres

import (
	"context"

	"gorm.io/gorm"
)

// txKey is the context key under which UnitOfWork stores the active
// transaction's *gorm.DB handle.
type txKey struct{}

// dbFrom returns the transaction bound to ctx by UnitOfWork.WithinTransaction,
// falling back to base when no transaction is active (ordinary reads).
func dbFrom(ctx context.Context, base *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return base.WithContext(ctx)
}

// UnitOfWork implements repository.UnitOfWork over *gorm.DB transactions.
type UnitOfWork struct{ db *gorm.DB }

func NewUnitOfWork(db *gorm.DB) *UnitOfWork { return &UnitOfWork{db: db} }

func (u *UnitOfWork) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return u.db.Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}
