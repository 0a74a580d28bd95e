// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history journals the field changes produced by rename runs in a
// SQLite database and restores the recorded link text on undo.
//
// Undo only rewrites the attachment field. Files moved by the rename stay
// at their new location.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/bibrename/internal/bib"
	"github.com/pdiddy/bibrename/pkg/types"
)

var (
	// ErrBatchNotFound is returned for an unknown batch ID, or by Latest
	// when nothing is left to undo.
	ErrBatchNotFound = errors.New("change batch not found")

	// ErrAlreadyUndone is returned when undoing a batch twice.
	ErrAlreadyUndone = errors.New("change batch already undone")
)

// DefaultDir and DefaultFile name the journal location next to a library.
const (
	DefaultDir  = ".bibrename"
	DefaultFile = "history.db"
)

// DefaultPath returns the journal path used for the library at libraryPath.
func DefaultPath(libraryPath string) string {
	return filepath.Join(filepath.Dir(libraryPath), DefaultDir, DefaultFile)
}

// Batch summarizes one recorded rename run.
type Batch struct {
	ID        string    `json:"id" yaml:"id"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	Pattern   string    `json:"pattern" yaml:"pattern"`
	Changes   int       `json:"changes" yaml:"changes"`
	Undone    bool      `json:"undone" yaml:"undone"`
	UndoneAt  time.Time `json:"undone_at,omitempty" yaml:"undone_at,omitempty"`
}

// Store is the change journal.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the journal at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, now: func() time.Time { return time.Now().UTC() }}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS batches (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			created_at TEXT NOT NULL,
			pattern TEXT,
			undone_at TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS changes (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			batch_id TEXT NOT NULL REFERENCES batches(id),
			entry_key TEXT NOT NULL,
			field TEXT NOT NULL,
			old_value TEXT,
			new_value TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_changes_batch_id ON changes(batch_id)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record stores changes as one batch and returns its ID. Nothing is
// recorded for an empty slice and the ID is "".
func (s *Store) Record(ctx context.Context, pattern string, changes []types.FieldChange) (string, error) {
	if len(changes) == 0 {
		return "", nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	id := uuid.NewString()
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO batches (id, created_at, pattern) VALUES (?, ?, ?)`,
		id, s.now().Format(time.RFC3339Nano), pattern,
	); err != nil {
		return "", fmt.Errorf("inserting batch: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO changes (batch_id, entry_key, field, old_value, new_value) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, c := range changes {
		if _, err := stmt.ExecContext(ctx, id, c.EntryKey, c.Field, c.OldValue, c.NewValue); err != nil {
			return "", fmt.Errorf("inserting change for %s: %w", c.EntryKey, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing batch: %w", err)
	}
	return id, nil
}

const batchColumns = `b.id, b.created_at, b.pattern, b.undone_at,
	(SELECT count(*) FROM changes c WHERE c.batch_id = b.id)`

// List returns up to limit batches, newest first. A limit of 0 or less
// returns all batches.
func (s *Store) List(ctx context.Context, limit int) ([]Batch, error) {
	query := `SELECT ` + batchColumns + ` FROM batches b ORDER BY b.seq DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying batches: %w", err)
	}
	defer rows.Close()

	var batches []Batch
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, err
		}
		batches = append(batches, b)
	}
	return batches, rows.Err()
}

// Get returns the batch with the given ID.
func (s *Store) Get(ctx context.Context, id string) (Batch, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+batchColumns+` FROM batches b WHERE b.id = ?`, id)
	b, err := scanBatch(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Batch{}, fmt.Errorf("%w: %s", ErrBatchNotFound, id)
	}
	return b, err
}

// Latest returns the newest batch that has not been undone.
func (s *Store) Latest(ctx context.Context) (Batch, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+batchColumns+` FROM batches b WHERE b.undone_at IS NULL ORDER BY b.seq DESC LIMIT 1`)
	b, err := scanBatch(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Batch{}, ErrBatchNotFound
	}
	return b, err
}

// Changes returns the changes of a batch in recording order.
func (s *Store) Changes(ctx context.Context, id string) ([]types.FieldChange, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT entry_key, field, old_value, new_value FROM changes WHERE batch_id = ? ORDER BY id`, id)
	if err != nil {
		return nil, fmt.Errorf("querying changes: %w", err)
	}
	defer rows.Close()

	var changes []types.FieldChange
	for rows.Next() {
		var c types.FieldChange
		var oldValue, newValue sql.NullString
		if err := rows.Scan(&c.EntryKey, &c.Field, &oldValue, &newValue); err != nil {
			return nil, fmt.Errorf("scanning change: %w", err)
		}
		c.OldValue, c.NewValue = oldValue.String, newValue.String
		changes = append(changes, c)
	}
	return changes, rows.Err()
}

// Undo restores the old field values of batch id in lib, saves the
// library, and marks the batch undone. It returns the changes applied to
// the library. Files are not moved back.
func (s *Store) Undo(ctx context.Context, lib *bib.Library, id string) ([]types.FieldChange, error) {
	batch, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if batch.Undone {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyUndone, id)
	}

	changes, err := s.Changes(ctx, id)
	if err != nil {
		return nil, err
	}

	var applied []types.FieldChange
	for i := len(changes) - 1; i >= 0; i-- {
		c := changes[i]
		entry, err := lib.Entry(c.EntryKey)
		if err != nil {
			return nil, fmt.Errorf("undoing batch %s: %w", id, err)
		}
		var (
			change types.FieldChange
			ok     bool
		)
		if c.OldValue == "" {
			change, ok = entry.ClearField(c.Field)
		} else {
			change, ok = entry.SetField(c.Field, c.OldValue)
		}
		if ok {
			applied = append(applied, change)
		}
	}

	if len(applied) > 0 {
		if err := lib.Save(); err != nil {
			return nil, fmt.Errorf("saving library: %w", err)
		}
	}

	if _, err := s.db.ExecContext(ctx,
		`UPDATE batches SET undone_at = ? WHERE id = ?`,
		s.now().Format(time.RFC3339Nano), id,
	); err != nil {
		return applied, fmt.Errorf("marking batch undone: %w", err)
	}
	return applied, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBatch(row scanner) (Batch, error) {
	var (
		b         Batch
		createdAt string
		pattern   sql.NullString
		undoneAt  sql.NullString
	)
	if err := row.Scan(&b.ID, &createdAt, &pattern, &undoneAt, &b.Changes); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Batch{}, err
		}
		return Batch{}, fmt.Errorf("scanning batch: %w", err)
	}
	b.Pattern = pattern.String
	if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		b.CreatedAt = t
	}
	if undoneAt.Valid {
		b.Undone = true
		if t, err := time.Parse(time.RFC3339Nano, undoneAt.String); err == nil {
			b.UndoneAt = t
		}
	}
	return b, nil
}
