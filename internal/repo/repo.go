// Package repo contains all data access logic for the room reservation API.
// Each resource has its own file with an interface and a Postgres implementation;
// memory.go provides in-process implementations of the same interfaces.
// No business logic lives here beyond the overlap check that must run
// inside the admission critical section.
package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test. Begin on a
// pgx.Tx opens a savepoint, so InsertIfFree still gets its own unit of work.
type db interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing the scan
// helpers to be reused for QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// Postgres SQLSTATE codes the repos translate into domain errors.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgExclusionViolation  = "23P01"
)

// pgErrCode returns the SQLSTATE of err, or "" if err is not a Postgres error.
func pgErrCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
