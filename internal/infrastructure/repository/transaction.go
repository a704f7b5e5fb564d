package repository

import (
	"context"

	"gorm.io/gorm"
)

type txContextKey struct{}

// TransactionManager implements the transaction scope over gorm. The
// open transaction travels in the context so that every repository call
// inside the operation runs on the same handle.
type TransactionManager struct {
	db *gorm.DB
}

func NewTransactionManager(db *gorm.DB) *TransactionManager {
	return &TransactionManager{db: db}
}

// Begin opens a transaction unless the context already carries one. The
// returned bool reports whether this call opened it; only the opener
// may commit or roll back.
func (m *TransactionManager) Begin(ctx context.Context) (context.Context, bool, error) {
	if txFrom(ctx) != nil {
		return ctx, false, nil
	}

	tx := m.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return ctx, false, tx.Error
	}

	return context.WithValue(ctx, txContextKey{}, tx), true, nil
}

func (m *TransactionManager) Commit(ctx context.Context) error {
	tx := txFrom(ctx)
	if tx == nil {
		return nil
	}
	return tx.Commit().Error
}

func (m *TransactionManager) Rollback(ctx context.Context) error {
	tx := txFrom(ctx)
	if tx == nil {
		return nil
	}
	return tx.Rollback().Error
}

func txFrom(ctx context.Context) *gorm.DB {
	tx, _ := ctx.Value(txContextKey{}).(*gorm.DB)
	return tx
}

// dbFrom picks the in-flight transaction when one is open, the plain
// connection otherwise.
func dbFrom(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	if tx := txFrom(ctx); tx != nil {
		return tx
	}
	return fallback
}
