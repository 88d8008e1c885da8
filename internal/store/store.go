// Package store provides the durable key-value record for the portfolio
// state plus a history of reached milestones.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // register sqlite driver
)

// StateKey is the key the whole portfolio record is stored under.
const StateKey = "appState"

// ErrNotFound is returned by Get when the key is absent.
var ErrNotFound = errors.New("store: key not found")

// Milestone is one reached progress band.
type Milestone struct {
	Band      float64   `json:"band" yaml:"band" csv:"band"`
	ReachedAt time.Time `json:"reached_at" yaml:"reached_at" csv:"reached_at"`
}

// Quota reports storage use.
type Quota struct {
	BytesInUse int64 `json:"bytes_in_use"`
	Keys       int   `json:"keys"`
	Milestones int   `json:"milestones"`
}

// DB is the SQLite-backed store.
type DB struct {
	db   *sql.DB
	path string
}

// Open opens or creates the store database at the given path.
func Open(dbPath string) (*DB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating state dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("opening state db: %w", err)
	}
	// Throttled writes arrive from a background goroutine.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db, path: dbPath}, nil
}

// Path returns the database file path.
func (s *DB) Path() string { return s.path }

// Close closes the database.
func (s *DB) Close() error {
	return s.db.Close()
}

// Get returns the value stored under key, or ErrNotFound.
func (s *DB) Get(ctx context.Context, key string) ([]byte, error) {
	var v []byte
	err := s.db.QueryRowContext(ctx, "SELECT value FROM kv_state WHERE key = ?", key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", key, err)
	}
	return v, nil
}

// Set stores value under key, replacing any previous value.
func (s *DB) Set(ctx context.Context, key string, value []byte) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(ctx, `INSERT INTO kv_state (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, now)
	if err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *DB) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM kv_state WHERE key = ?", key); err != nil {
		return fmt.Errorf("deleting %s: %w", key, err)
	}
	return nil
}

// Clear removes every key and the milestone history.
func (s *DB) Clear(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, q := range []string{"DELETE FROM kv_state", "DELETE FROM milestones"} {
		if _, err := tx.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("clearing store: %w", err)
		}
	}
	return tx.Commit()
}

// BytesInUse reports the stored payload size and row counts.
func (s *DB) BytesInUse(ctx context.Context) (Quota, error) {
	var q Quota
	err := s.db.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(LENGTH(key) + LENGTH(value)), 0), COUNT(*) FROM kv_state").
		Scan(&q.BytesInUse, &q.Keys)
	if err != nil {
		return Quota{}, fmt.Errorf("reading quota: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM milestones").Scan(&q.Milestones); err != nil {
		return Quota{}, fmt.Errorf("reading quota: %w", err)
	}
	return q, nil
}

// AppendMilestone records that band was reached at at.
func (s *DB) AppendMilestone(ctx context.Context, band float64, at time.Time) error {
	_, err := s.db.ExecContext(ctx, "INSERT INTO milestones (band, reached_at) VALUES (?, ?)",
		band, at.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("recording milestone: %w", err)
	}
	return nil
}

// Milestones returns the history, oldest first.
func (s *DB) Milestones(ctx context.Context) ([]Milestone, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT band, reached_at FROM milestones ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []Milestone
	for rows.Next() {
		var m Milestone
		var at string
		if err := rows.Scan(&m.Band, &at); err != nil {
			return nil, err
		}
		m.ReachedAt, _ = time.Parse(time.RFC3339Nano, at)
		out = append(out, m)
	}
	return out, rows.Err()
}
