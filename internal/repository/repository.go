// Package repository provides the data access layer of the planning engine.
package repository

import (
	"context"
	"database/sql"
)

// DB is the minimal database interface the repositories need. Satisfied by
// *database.DB and *sql.Tx alike.
type DB interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Scanner abstracts over sql.Row and sql.Rows.
type Scanner interface {
	Scan(dest ...interface{}) error
}
