package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Store is a SQLite-backed render cache. SQLite runs in WAL mode so reads
// stay concurrent with the single writer.
type Store struct {
	db *sql.DB
}

// Open creates or opens the cache database at path. Idempotent: pragmas and
// schema are applied on every open.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open render cache: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect render cache: %w", err)
	}

	// SQLite supports one writer; a single connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// Get returns the cached markup for (typeName, propsHash), reporting
// whether an entry exists.
func (s *Store) Get(ctx context.Context, typeName, propsHash string) (string, bool, error) {
	var markup string
	err := s.db.QueryRowContext(ctx, `
		SELECT markup FROM fragments
		WHERE type_name = ? AND props_hash = ?
	`, typeName, propsHash).Scan(&markup)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("cache get: %w", err)
	}
	return markup, true, nil
}

// Put stores rendered markup for (typeName, propsHash). Re-rendering the
// same inputs produces the same bytes, so replacing an existing row is
// harmless and keeps the freshest provenance.
func (s *Store) Put(ctx context.Context, typeName, propsHash, markup, renderToken string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO fragments (type_name, props_hash, markup, render_token, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(type_name, props_hash) DO UPDATE SET
			markup = excluded.markup,
			render_token = excluded.render_token,
			created_at = excluded.created_at
	`, typeName, propsHash, markup, renderToken, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("cache put: %w", err)
	}
	return nil
}

// Purge removes every cached fragment for the given component type. Used
// when a component's implementation changes and its cached markup is stale.
func (s *Store) Purge(ctx context.Context, typeName string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM fragments WHERE type_name = ?`, typeName)
	if err != nil {
		return 0, fmt.Errorf("cache purge: %w", err)
	}
	return res.RowsAffected()
}

// Count returns the number of cached fragments.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM fragments`).Scan(&n); err != nil {
		return 0, fmt.Errorf("cache count: %w", err)
	}
	return n, nil
}
