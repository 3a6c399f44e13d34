// Package sqlite provides the SQLite-backed implementation of every domain
// package's Storage interface over one shared database.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"api_pos/internal/auth"
	"api_pos/internal/cash"
	"api_pos/internal/catalog"
	"api_pos/internal/ledger"
	"api_pos/internal/reports"
	"api_pos/internal/sales"
)

// Compile-time checks that Store satisfies every consumer interface.
var (
	_ catalog.Storage  = (*Store)(nil)
	_ sales.Storage    = (*Store)(nil)
	_ cash.Storage     = (*Store)(nil)
	_ ledger.Storage   = (*Store)(nil)
	_ reports.Storage  = (*Store)(nil)
	_ auth.UserStorage = (*Store)(nil)
)

// Store is the shared durable store. All write operations run inside
// database transactions on a single pooled connection, so every
// read-check-write sequence executes as one isolated unit.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the database at dbPath and runs migrations.
// Use ":memory:" for an in-memory database in tests.
func New(dbPath string) (*Store, error) {
	if !strings.Contains(dbPath, ":memory:") {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite allows one writer at a time. A single pooled connection keeps
	// every transaction serialized and makes :memory: databases usable.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Timestamps are stored as unix nanoseconds in UTC.

func nanos(t time.Time) int64 {
	return t.UnixNano()
}

func fromNanos(n int64) time.Time {
	return time.Unix(0, n)
}

// Monetary amounts are stored as decimal TEXT and summed in Go so no
// floating-point rounding can creep into money arithmetic.

func dec(d decimal.Decimal) string {
	return d.String()
}

func scanDec(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid stored decimal %q: %w", s, err)
	}
	return d, nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func isForeignKeyViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
