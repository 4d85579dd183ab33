// Package store is the transactional boundary shared by the cart, inventory
// and checkout packages. Every checkout write and every read it validates
// against happen on the *gorm.DB handed to WithinTx.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrBegin  = errors.New("begin transaction")
	ErrCommit = errors.New("commit transaction")
)

type Gateway struct {
	db        *gorm.DB
	timeout   time.Duration
	txOptions *sql.TxOptions
}

type Option func(*Gateway)

// WithTimeout bounds every transaction opened by the gateway.
func WithTimeout(d time.Duration) Option {
	return func(g *Gateway) { g.timeout = d }
}

func WithIsolation(level sql.IsolationLevel) Option {
	return func(g *Gateway) { g.txOptions = &sql.TxOptions{Isolation: level} }
}

func New(db *gorm.DB, opts ...Option) *Gateway {
	g := &Gateway{db: db}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Gateway) DB() *gorm.DB {
	return g.db
}

// WithinTx runs fn inside one transaction. The transaction commits only if
// fn returns nil; an error, a panic or a failed commit rolls it back.
// The error returned by fn is passed through unchanged. fn receives the
// context carrying the gateway timeout and must use it for every statement.
func (g *Gateway) WithinTx(ctx context.Context, fn func(ctx context.Context, tx *gorm.DB) error) error {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	var tx *gorm.DB
	if g.txOptions != nil {
		tx = g.db.WithContext(ctx).Begin(g.txOptions)
	} else {
		tx = g.db.WithContext(ctx).Begin()
	}
	if tx.Error != nil {
		return fmt.Errorf("%w: %w", ErrBegin, tx.Error)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
		tx.Rollback()
	}()

	if err := fn(ctx, tx); err != nil {
		return err
	}
	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("%w: %w", ErrCommit, err)
	}
	committed = true
	return nil
}

// IsDuplicateKey reports whether err is a unique constraint violation.
// TranslateError covers mysql and postgres; the message check covers
// drivers without a translator.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint failed") ||
		strings.Contains(msg, "duplicate entry") ||
		strings.Contains(msg, "duplicate key")
}

// ForUpdate adds a row lock to the next query. SQLite has no row locks; its
// write transactions already exclude each other, so the clause is skipped.
func ForUpdate(db *gorm.DB) *gorm.DB {
	if db.Dialector.Name() == "sqlite" {
		return db
	}
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}
