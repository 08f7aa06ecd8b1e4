// Package testutil holds Postgres helpers for integration tests. Every helper
// that takes a *testing.T skips the test when TEST_DATABASE_URL is unset.
package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" driver for database/sql

	"github.com/pkordes/roombook/migrations"
)

// DSNEnv names the variable holding the test database connection string.
const DSNEnv = "TEST_DATABASE_URL"

// NewPool returns a pinged pool closed at test cleanup.
func NewPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	pool, err := pgxpool.New(context.Background(), requireDSN(t))
	if err != nil {
		t.Fatalf("testutil.NewPool: %v", err)
	}
	if err := pool.Ping(context.Background()); err != nil {
		pool.Close()
		t.Fatalf("testutil.NewPool: ping: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}

// NewTx begins a transaction that is rolled back at test cleanup, so each
// test sees an empty schema and leaves nothing behind.
func NewTx(t *testing.T) pgx.Tx {
	t.Helper()

	tx, err := NewPool(t).Begin(context.Background())
	if err != nil {
		t.Fatalf("testutil.NewTx: begin: %v", err)
	}
	t.Cleanup(func() { _ = tx.Rollback(context.Background()) })
	return tx
}

// NewSQLDB returns a database/sql handle on the pgx driver, for goose.
func NewSQLDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := openSQL(requireDSN(t))
	if err != nil {
		t.Fatalf("testutil.NewSQLDB: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// Migrate applies all migrations to the test database. It is meant for
// TestMain, where no *testing.T exists; without TEST_DATABASE_URL it does
// nothing and reports false.
func Migrate(ctx context.Context) (bool, error) {
	dsn := os.Getenv(DSNEnv)
	if dsn == "" {
		return false, nil
	}
	db, err := openSQL(dsn)
	if err != nil {
		return false, err
	}
	defer db.Close()

	if _, err := migrations.Up(ctx, db); err != nil {
		return false, err
	}
	return true, nil
}

func openSQL(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	if err := db.PingContext(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return db, nil
}

func requireDSN(t *testing.T) string {
	t.Helper()
	dsn := os.Getenv(DSNEnv)
	if dsn == "" {
		t.Skip(DSNEnv + " not set; skipping integration test")
	}
	return dsn
}
