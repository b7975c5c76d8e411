// Package tmstore persists the translation units of the currently open
// document in SQLite and serves candidate prefiltering for the local fuzzy
// matcher. The store is rebuilt wholesale on every document load; it never
// updates incrementally.
package tmstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when a requested entity doesn't exist
	ErrNotFound = errors.New("not found")
)

// Unit is one source/target pair from the open document.
type Unit struct {
	ID      int64
	Source  string
	Target  string
	Context string
}

// Store holds the indexed units of one open document.
type Store struct {
	db *sql.DB
}

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// SQLite benefits from a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// New creates a unit store at dbPath. Use ":memory:" for an in-memory
// store, which is the normal mode: the index only lives as long as the
// open document.
func New(dbPath string) (*Store, error) {
	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// ReplaceUnits drops all indexed units and inserts the given set in one
// transaction. Called on every document load and reload.
func (s *Store) ReplaceUnits(ctx context.Context, units []Unit) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM units"); err != nil {
		return fmt.Errorf("failed to clear units: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO units (source, target, context) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, u := range units {
		if u.Source == "" {
			continue
		}
		if _, err := stmt.ExecContext(ctx, u.Source, u.Target, u.Context); err != nil {
			return fmt.Errorf("failed to insert unit %q: %w", u.Source, err)
		}
	}

	return tx.Commit()
}

// Clear removes all indexed units. Called when the document is closed.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM units"); err != nil {
		return fmt.Errorf("failed to clear units: %w", err)
	}
	return nil
}

// Count returns the number of indexed units
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM units").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count units: %w", err)
	}
	return n, nil
}

// Search returns up to limit units whose source shares tokens with the
// query, best FTS rank first. It is a coarse prefilter; callers score the
// returned units with the edit-distance scorer before ranking. When the
// query produces no usable FTS tokens the whole unit table (capped at
// limit) is returned instead.
func (s *Store) Search(ctx context.Context, query string, limit int) ([]Unit, error) {
	if limit <= 0 {
		limit = 50
	}

	expr := ftsExpression(query)
	if expr == "" {
		return s.ListUnits(ctx, limit)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT u.id, u.source, u.target, u.context
		FROM units_fts f
		JOIN units u ON u.id = f.rowid
		WHERE units_fts MATCH ?
		ORDER BY bm25(units_fts)
		LIMIT ?
	`, expr, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search units: %w", err)
	}
	defer func() { _ = rows.Close() }()

	units, err := scanUnits(rows)
	if err != nil {
		return nil, err
	}
	if len(units) == 0 {
		// Token-level match found nothing; fall back to a full scan so
		// that near-misses without shared whole tokens still get scored.
		return s.ListUnits(ctx, limit)
	}
	return units, nil
}

// ListUnits returns up to limit indexed units in insertion order.
func (s *Store) ListUnits(ctx context.Context, limit int) ([]Unit, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source, target, context
		FROM units
		ORDER BY id
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list units: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanUnits(rows)
}

// ListTranslated returns all units with a non-empty target, for pushing to
// a remote TM server.
func (s *Store) ListTranslated(ctx context.Context) ([]Unit, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source, target, context
		FROM units
		WHERE target != ''
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list translated units: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanUnits(rows)
}

func scanUnits(rows *sql.Rows) ([]Unit, error) {
	var units []Unit
	for rows.Next() {
		var u Unit
		if err := rows.Scan(&u.ID, &u.Source, &u.Target, &u.Context); err != nil {
			return nil, fmt.Errorf("failed to scan unit: %w", err)
		}
		units = append(units, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read units: %w", err)
	}
	return units, nil
}

// ftsExpression builds an OR-of-tokens FTS5 match expression from free
// text. Each token is quoted so punctuation in the query cannot be
// interpreted as FTS syntax.
func ftsExpression(query string) string {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return ""
	}

	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.ReplaceAll(f, `"`, `""`)
		tokens = append(tokens, `"`+f+`"`)
	}
	return strings.Join(tokens, " OR ")
}
