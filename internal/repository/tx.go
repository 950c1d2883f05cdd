package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type txKey struct{}

// Transactor runs a function inside one database transaction. Repository
// calls made with the ctx passed to fn join that transaction.
type Transactor struct {
	db *gorm.DB
}

func NewTransactor(db *gorm.DB) *Transactor {
	return &Transactor{db: db}
}

func (t *Transactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
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

// forUpdate adds SELECT ... FOR UPDATE inside transactions. SQLite drops the
// clause and relies on its database-level write lock.
func forUpdate(ctx context.Context, db *gorm.DB) *gorm.DB {
	q := conn(ctx, db)
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return q
}

// Page converts page/limit into offset/limit with the usual bounds.
func Page(page, limit int) (int, int, int) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return page, limit, (page - 1) * limit
}

// containsPattern builds a LIKE pattern for case-insensitive contains search
// against LOWER(column).
func containsPattern(search string) string {
	return "%" + strings.ToLower(strings.TrimSpace(search)) + "%"
}
