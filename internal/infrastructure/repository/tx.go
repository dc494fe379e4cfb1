package repository

import (
	"context"

	domainRepo "github.com/flightworks/aeroops-api/internal/domain/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type txKey struct{}

type txManager struct {
	db *gorm.DB
}

// NewTxManager creates a TxManager backed by gorm transactions. The active
// transaction travels in the context so every repository call inside the
// callback joins it.
func NewTxManager(db *gorm.DB) domainRepo.TxManager {
	return &txManager{db: db}
}

func (m *txManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	// Nested Do calls join the outer transaction instead of opening a new one
	if txFromContext(ctx) != nil {
		return fn(ctx)
	}
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

func txFromContext(ctx context.Context) *gorm.DB {
	tx, _ := ctx.Value(txKey{}).(*gorm.DB)
	return tx
}

// conn returns the transaction carried by ctx when one is active, otherwise
// the base connection.
func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx := txFromContext(ctx); tx != nil {
		return tx
	}
	return db.WithContext(ctx)
}

// forUpdate adds a row lock on engines that support it. SQLite has no
// FOR UPDATE; its single-writer model serializes transactions instead.
func forUpdate(db *gorm.DB) *gorm.DB {
	if db.Dialector.Name() == "postgres" {
		return db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return db
}
