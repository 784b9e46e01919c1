package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// ErrDanglingReference is returned when a transaction would commit a task
// whose parent or predecessor does not exist.
var ErrDanglingReference = errors.New("dangling task reference")

// UnitOfWork runs a function inside one transaction. The callback receives
// a DBTX backed by a *sql.Tx; callers build tx-scoped repositories from it.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx DBTX) error) error
}

type SQLiteUnitOfWork struct {
	db *sql.DB
}

func NewSQLiteUnitOfWork(db *sql.DB) *SQLiteUnitOfWork {
	return &SQLiteUnitOfWork{db: db}
}

// WithinTx commits when fn returns nil and rolls back on error or panic.
// Task references are deferred foreign keys, so a hierarchy imported out of
// order is fine until commit; a reference still unresolved then fails with
// ErrDanglingReference.
func (u *SQLiteUnitOfWork) WithinTx(ctx context.Context, fn func(ctx context.Context, tx DBTX) error) error {
	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(ctx, tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		if isConstraintViolation(err) {
			return fmt.Errorf("%w: %v", ErrDanglingReference, err)
		}
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Only deferred checks can fail at commit, and the schema defers nothing but
// task references.
func isConstraintViolation(err error) bool {
	var serr *sqlite.Error
	return errors.As(err, &serr) && serr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT
}
