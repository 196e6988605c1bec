// Package tx carries a SQL transaction through context so every store write
// inside one public operation joins the same atomic unit.
package tx

import (
	"context"
	"database/sql"
	"fmt"
)

type ctxKey struct{}

var txKey = ctxKey{}

// WithTx stores a SQL transaction in context for downstream store usage.
func WithTx(ctx context.Context, tx *sql.Tx) context.Context {
	if tx == nil {
		return ctx
	}
	return context.WithValue(ctx, txKey, tx)
}

// From extracts a SQL transaction from context if present.
func From(ctx context.Context) (*sql.Tx, bool) {
	tx, ok := ctx.Value(txKey).(*sql.Tx)
	return tx, ok
}

// Runner executes a function as one atomic unit. Services wrap each mutating
// operation's writes in one Run call so a failure anywhere leaves nothing
// committed.
type Runner interface {
	Run(ctx context.Context, fn func(ctx context.Context) error) error
}

// SQLRunner runs the function inside a single database transaction, carried
// in the context so every store touched by the function joins it.
type SQLRunner struct {
	db *sql.DB
}

func NewSQLRunner(db *sql.DB) *SQLRunner {
	return &SQLRunner{db: db}
}

func (r *SQLRunner) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(WithTx(ctx, dbTx)); err != nil {
		_ = dbTx.Rollback()
		return err
	}
	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// Passthrough runs the function directly. It backs memory-store deployments,
// where a single in-process write cannot partially fail.
type Passthrough struct{}

func (Passthrough) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
