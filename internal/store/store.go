// Package store persists validated records into PostgreSQL with
// dedup-by-natural-key semantics. Inserts are sparse: only populated fields
// become columns, so additive schema changes never get clobbered with nulls.
package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Outcome reports what a persist call did.
type Outcome string

// Persist outcomes.
const (
	Inserted Outcome = "inserted"
	Skipped  Outcome = "skipped"
)

// Error wraps a persistence failure with its operation.
type Error struct {
	Op    string
	Table string
	Cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("store error: %s on %s: %v", e.Op, e.Table, e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Querier is the subset of pgxpool.Pool the persisters use; tests substitute
// a fake.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Store wraps a PostgreSQL connection pool. The pool is shared across all
// sources within a job and closed when the job ends.
type Store struct {
	q    Querier
	pool *pgxpool.Pool
}

// Connect establishes a connection pool and verifies it with a ping.
func Connect(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &Store{q: pool, pool: pool}, nil
}

// NewWithQuerier wraps an existing querier; used by tests.
func NewWithQuerier(q Querier) *Store {
	return &Store{q: q}
}

// Close closes the connection pool.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *Store) exists(ctx context.Context, table, where string, args ...any) (bool, error) {
	var count int
	sql := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s", table, where)
	if err := s.q.QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return false, &Error{Op: "dedup check", Table: table, Cause: err}
	}
	return count > 0, nil
}

// insertSparse builds an explicit column list from cols/args and inserts.
func (s *Store) insertSparse(ctx context.Context, table string, cols []string, args []any) error {
	colList := ""
	placeholders := ""
	for i, c := range cols {
		if i > 0 {
			colList += ", "
			placeholders += ", "
		}
		colList += c
		placeholders += fmt.Sprintf("$%d", i+1)
	}
	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, colList, placeholders)
	if _, err := s.q.Exec(ctx, sql, args...); err != nil {
		return &Error{Op: "insert", Table: table, Cause: err}
	}
	return nil
}
