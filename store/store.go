// Package store persists securities in a SQLite file.
//
// A Store owns the single connection to the database. Writes happen in a
// transaction begun on first use and committed by Save; reads go through the
// same transaction so they observe pending writes. Close discards what was not
// saved.
//
// Queries are described by AND-combined Conditions and a list of Orders,
// compiled into parameterized SQL against the columns of a screener.Kind.
package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"github.com/rs/zerolog/log"
)

// Store is a session on the securities database.
type Store struct {
	db *sql.DB
	tx *sql.Tx
}

// Open opens (or creates) the database at path and applies the schema.
// Use ":memory:" for a private in-memory database.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %q: %w", path, err)
	}
	// one connection: an in-memory database lives and dies with it, and there is only one writer.
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open database %q: %w", path, err)
	}
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create schema: %w", err)
		}
	}
	log.Debug().Str("path", path).Msg("database opened")
	return &Store{db: db}, nil
}

// begin returns the pending transaction, starting one if needed.
func (s *Store) begin(ctx context.Context) (*sql.Tx, error) {
	if s.tx != nil {
		return s.tx, nil
	}
	// the transaction outlives the operation that starts it.
	tx, err := s.db.BeginTx(context.WithoutCancel(ctx), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	s.tx = tx
	return tx, nil
}

// exec runs a statement in the pending transaction and returns the number of affected rows.
func (s *Store) exec(ctx context.Context, query string, args ...any) (int64, error) {
	tx, err := s.begin(ctx)
	if err != nil {
		return 0, err
	}
	log.Debug().Str("sql", render(query, args)).Msg("exec")
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to execute %q: %w", query, err)
	}
	return res.RowsAffected()
}

// query runs a query in the pending transaction.
func (s *Store) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	tx, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("sql", render(query, args)).Msg("query")
	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %q: %w", query, err)
	}
	return rows, nil
}

// Save commits all pending writes.
func (s *Store) Save() error {
	if s.tx == nil {
		return nil
	}
	tx := s.tx
	s.tx = nil
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to save: %w", err)
	}
	return nil
}

// Close discards unsaved writes and closes the database.
func (s *Store) Close() error {
	if s.tx != nil {
		s.tx.Rollback()
		s.tx = nil
	}
	return s.db.Close()
}
