// Package journal persists drained SDK events to SQLite so a session can be
// inspected after the fact.
//
// Each row carries the event's category, the request id and API error
// code of cloud-save responses (for indexed lookup), and the full event as
// deterministic CBOR. Entry.Event decodes a row back into the typed value.
package journal

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/tapsdk/internal/seq"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 0 - Initial schema (pre-migration)
// 1 - Added index on events.kind
const currentSchemaVersion = 1

// Journal is an append-only event log for one session. Several sessions
// may share a file, but only one process should write to it at a time.
type Journal struct {
	db      *sql.DB
	clock   seq.Source
	session string
	now     func() time.Time
}

// Option configures a Journal.
type Option func(*Journal)

// WithSession fixes the session id instead of generating a UUIDv7.
func WithSession(id string) Option {
	return func(j *Journal) { j.session = id }
}

// WithClock replaces the seq source. The default resumes after the
// highest seq already stored.
func WithClock(c seq.Source) Option {
	return func(j *Journal) { j.clock = c }
}

// WithNow replaces the wall clock used for recorded_at.
func WithNow(now func() time.Time) Option {
	return func(j *Journal) { j.now = now }
}

// Open creates or opens a journal at path and applies migrations.
//
// The database is configured with:
//   - WAL mode so `tapsdk journal` can read while `tapsdk run` writes
//   - NORMAL synchronous mode
//   - 5-second busy timeout for lock contention
func Open(path string, opts ...Option) (*Journal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to journal: %w", err)
	}

	// SQLite only supports one writer at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	j := &Journal{db: db, now: time.Now}
	for _, opt := range opts {
		opt(j)
	}
	if j.session == "" {
		j.session = seq.UUIDv7{}.Generate()
	}
	if j.clock == nil {
		var last int64
		if err := db.QueryRow("SELECT COALESCE(MAX(seq), 0) FROM events").Scan(&last); err != nil {
			db.Close()
			return nil, fmt.Errorf("read last seq: %w", err)
		}
		j.clock = seq.NewClockAt(last)
	}
	return j, nil
}

// Session returns the id stamped on every entry this Journal appends.
func (j *Journal) Session() string {
	return j.session
}

// Close closes the database connection.
func (j *Journal) Close() error {
	if j.db == nil {
		return nil
	}
	return j.db.Close()
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

// applySchema creates tables if they don't exist and runs migrations.
func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	return runMigrations(db)
}

// runMigrations applies incremental schema migrations based on user_version.
func runMigrations(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}

	if version < 1 {
		if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_events_kind ON events(kind, seq)`); err != nil {
			return fmt.Errorf("migrate to v1: %w", err)
		}
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}

// pragma reads a pragma value. Used by tests.
func (j *Journal) pragma(ctx context.Context, name string) (string, error) {
	var value string
	if err := j.db.QueryRowContext(ctx, "PRAGMA "+name).Scan(&value); err != nil {
		return "", fmt.Errorf("query %s: %w", name, err)
	}
	return value, nil
}
