// Package state keeps a history of install and uninstall batches in a SQLite
// database. It is a log only; installed state is always read from brew.
package state

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver
)

// Outcome is the result of one package within a batch.
type Outcome struct {
	Package string
	Detail  string // diagnostic text for a failure
	OK      bool
}

// BatchRecord is one completed batch.
type BatchRecord struct {
	StartedAt  time.Time
	FinishedAt time.Time
	Operation  string
	Host       string
	Outcomes   []Outcome // succeeded first, then failed
	ID         int64
}

// Succeeded returns the packages that completed successfully.
func (r BatchRecord) Succeeded() []string {
	return r.filter(true)
}

// Failed returns the packages that failed.
func (r BatchRecord) Failed() []string {
	return r.filter(false)
}

func (r BatchRecord) filter(ok bool) []string {
	out := []string{}

	for _, o := range r.Outcomes {
		if o.OK == ok {
			out = append(out, o.Package)
		}
	}

	return out
}

// Store manages the SQLite database for batch history.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database at the given path and runs migrations.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0750); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	ctx := context.Background()

	// WAL lets the CLI read history while a TUI session is writing it
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close() //nolint:errcheck,gosec // best-effort cleanup on error path
		return nil, fmt.Errorf("setting journal mode: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close() //nolint:errcheck,gosec // best-effort cleanup on error path
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveBatch stores rec and its outcomes in one transaction and returns the
// new batch ID.
func (s *Store) SaveBatch(ctx context.Context, rec BatchRecord) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO batch_runs (operation, host, started_at, finished_at)
		VALUES (?, ?, ?, ?)
	`, rec.Operation, rec.Host, formatTime(rec.StartedAt), formatTime(rec.FinishedAt))
	if err != nil {
		_ = tx.Rollback() //nolint:errcheck,gosec // rollback best-effort
		return 0, fmt.Errorf("saving batch: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		_ = tx.Rollback() //nolint:errcheck,gosec // rollback best-effort
		return 0, fmt.Errorf("reading batch id: %w", err)
	}

	for i, o := range rec.Outcomes {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO batch_outcomes (batch_id, position, package, ok, detail)
			VALUES (?, ?, ?, ?, ?)
		`, id, i, o.Package, o.OK, o.Detail); err != nil {
			_ = tx.Rollback() //nolint:errcheck,gosec // rollback best-effort
			return 0, fmt.Errorf("saving outcome for %s: %w", o.Package, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing batch: %w", err)
	}

	return id, nil
}

// RecentBatches returns up to limit batches, newest first, each with its
// outcomes.
func (s *Store) RecentBatches(ctx context.Context, limit int) ([]BatchRecord, error) {
	return s.RecentBatchesFor(ctx, "", limit)
}

// RecentBatchesFor is RecentBatches restricted to one operation. An empty
// operation matches every batch.
func (s *Store) RecentBatchesFor(ctx context.Context, operation string, limit int) ([]BatchRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, operation, host, started_at, finished_at
		FROM batch_runs
		WHERE ? = '' OR operation = ?
		ORDER BY id DESC
		LIMIT ?
	`, operation, operation, limit)
	if err != nil {
		return nil, fmt.Errorf("querying batch history: %w", err)
	}
	defer func() { _ = rows.Close() }() //nolint:errcheck,gosec // defer close is best-effort

	records := []BatchRecord{}

	for rows.Next() {
		var r BatchRecord
		var started, finished string

		if err := rows.Scan(&r.ID, &r.Operation, &r.Host, &started, &finished); err != nil {
			return nil, fmt.Errorf("scanning batch record: %w", err)
		}

		if r.StartedAt, err = parseTime(started); err != nil {
			return nil, fmt.Errorf("parsing started_at: %w", err)
		}

		if r.FinishedAt, err = parseTime(finished); err != nil {
			return nil, fmt.Errorf("parsing finished_at: %w", err)
		}

		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating batch history: %w", err)
	}

	for i := range records {
		outcomes, err := s.outcomes(ctx, records[i].ID)
		if err != nil {
			return nil, err
		}

		records[i].Outcomes = outcomes
	}

	return records, nil
}

func (s *Store) outcomes(ctx context.Context, batchID int64) ([]Outcome, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT package, ok, detail
		FROM batch_outcomes
		WHERE batch_id = ?
		ORDER BY position
	`, batchID)
	if err != nil {
		return nil, fmt.Errorf("querying outcomes for batch %d: %w", batchID, err)
	}
	defer func() { _ = rows.Close() }() //nolint:errcheck,gosec // defer close is best-effort

	out := []Outcome{}

	for rows.Next() {
		var o Outcome
		if err := rows.Scan(&o.Package, &o.OK, &o.Detail); err != nil {
			return nil, fmt.Errorf("scanning outcome: %w", err)
		}

		out = append(out, o)
	}

	return out, rows.Err()
}

// PruneHistory keeps only the keepN most recent batches, deleting older ones
// along with their outcomes.
func (s *Store) PruneHistory(ctx context.Context, keepN int) error {
	if keepN < 0 {
		keepN = 0
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	const keep = `SELECT id FROM batch_runs ORDER BY id DESC LIMIT ?`

	if _, err := tx.ExecContext(ctx, `DELETE FROM batch_outcomes WHERE batch_id NOT IN (`+keep+`)`, keepN); err != nil {
		_ = tx.Rollback() //nolint:errcheck,gosec // rollback best-effort
		return fmt.Errorf("pruning outcomes: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM batch_runs WHERE id NOT IN (`+keep+`)`, keepN); err != nil {
		_ = tx.Rollback() //nolint:errcheck,gosec // rollback best-effort
		return fmt.Errorf("pruning history: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing prune: %w", err)
	}

	return nil
}

// migrate runs schema migrations.
func (s *Store) migrate(ctx context.Context) error {
	currentVersion := s.getSchemaVersion(ctx)

	migrations := []func(context.Context, *sql.Tx) error{
		migrateV1,
	}

	for i := currentVersion; i < len(migrations); i++ {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("beginning migration %d: %w", i+1, err)
		}

		if err := migrations[i](ctx, tx); err != nil {
			_ = tx.Rollback() //nolint:errcheck,gosec // rollback best-effort on migration failure
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM schema_version`); err != nil {
			_ = tx.Rollback() //nolint:errcheck,gosec // rollback best-effort
			return fmt.Errorf("updating schema version: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `INSERT INTO schema_version (version) VALUES (?)`, i+1); err != nil {
			_ = tx.Rollback() //nolint:errcheck,gosec // rollback best-effort
			return fmt.Errorf("inserting schema version: %w", err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %d: %w", i+1, err)
		}
	}

	return nil
}

// getSchemaVersion returns the current schema version, or 0 for a new database.
func (s *Store) getSchemaVersion(ctx context.Context) int {
	var tableName string

	err := s.db.QueryRowContext(ctx, `SELECT name FROM sqlite_master WHERE type='table' AND name='schema_version'`).Scan(&tableName)
	if err != nil {
		return 0
	}

	var version int
	if err := s.db.QueryRowContext(ctx, `SELECT version FROM schema_version LIMIT 1`).Scan(&version); err != nil {
		return 0
	}

	return version
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}

	return t.UTC().Format(time.RFC3339Nano)
}

// parseTime parses a timestamp string from SQLite, trying multiple formats.
func parseTime(s string) (time.Time, error) {
	formats := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05",
	}

	for _, f := range formats {
		if t, err := time.Parse(f, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("cannot parse time %q", s)
}

func migrateV1(ctx context.Context, tx *sql.Tx) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS batch_runs (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			operation   TEXT NOT NULL,
			host        TEXT NOT NULL DEFAULT '',
			started_at  TEXT NOT NULL,
			finished_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS batch_outcomes (
			batch_id INTEGER NOT NULL,
			position INTEGER NOT NULL,
			package  TEXT NOT NULL,
			ok       INTEGER NOT NULL,
			detail   TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (batch_id, position)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_batch_outcomes_package
			ON batch_outcomes(package)`,
	}

	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("executing %q: %w", stmt[:40], err)
		}
	}

	return nil
}
