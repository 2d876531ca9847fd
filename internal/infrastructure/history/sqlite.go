package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/felixgeelhaar/jacocogate/internal/domain"
)

const schemaV1 = `
CREATE TABLE IF NOT EXISTS runs (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	recorded_at INTEGER NOT NULL,
	commit_sha  TEXT NOT NULL DEFAULT '',
	branch      TEXT NOT NULL DEFAULT '',
	passed      INTEGER NOT NULL DEFAULT 0,
	evaluated   INTEGER NOT NULL DEFAULT 0,
	violations  INTEGER NOT NULL DEFAULT 0,
	ratios_json TEXT NOT NULL DEFAULT '{}'
);
CREATE INDEX IF NOT EXISTS idx_runs_recorded_at ON runs(recorded_at);
`

// SQLiteStore keeps run history in a SQLite database.
type SQLiteStore struct {
	db         *sql.DB
	maxEntries int
}

// OpenSQLite opens or creates the database at path and applies the schema.
func OpenSQLite(path string, maxEntries int) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, err
	}
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// Single writer; WAL still lets other processes read.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(context.Background(), schemaV1); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate schema: %w", err)
	}
	return &SQLiteStore{db: db, maxEntries: maxEntries}, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Load returns all runs in insertion order.
func (s *SQLiteStore) Load() (domain.History, error) {
	ctx := context.Background()
	rows, err := s.db.QueryContext(ctx,
		`SELECT recorded_at, commit_sha, branch, passed, evaluated, violations, ratios_json FROM runs ORDER BY id`)
	if err != nil {
		return domain.History{}, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var h domain.History
	for rows.Next() {
		var (
			recordedAt int64
			passed     int
			ratios     string
			e          domain.HistoryEntry
		)
		if err := rows.Scan(&recordedAt, &e.Commit, &e.Branch, &passed, &e.Evaluated, &e.Violations, &ratios); err != nil {
			return domain.History{}, fmt.Errorf("scan run: %w", err)
		}
		e.Timestamp = time.Unix(0, recordedAt).UTC()
		e.Passed = passed != 0
		if err := json.Unmarshal([]byte(ratios), &e.Ratios); err != nil {
			return domain.History{}, fmt.Errorf("decode ratios: %w", err)
		}
		h.Entries = append(h.Entries, e)
	}
	return h, rows.Err()
}

// Save replaces the stored history with h.
func (s *SQLiteStore) Save(h domain.History) error {
	ctx := context.Background()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM runs`); err != nil {
		return err
	}
	for _, e := range h.Entries {
		if err := insertRun(ctx, tx, e); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Append inserts entry and trims the table to the newest maxEntries runs.
func (s *SQLiteStore) Append(entry domain.HistoryEntry) error {
	ctx := context.Background()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := insertRun(ctx, tx, entry); err != nil {
		return err
	}
	max := s.maxEntries
	if max <= 0 {
		max = DefaultMaxEntries
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM runs WHERE id NOT IN (SELECT id FROM runs ORDER BY id DESC LIMIT ?)`, max); err != nil {
		return fmt.Errorf("trim runs: %w", err)
	}
	return tx.Commit()
}

func insertRun(ctx context.Context, tx *sql.Tx, e domain.HistoryEntry) error {
	ratios, err := json.Marshal(e.Ratios)
	if err != nil {
		return err
	}
	passed := 0
	if e.Passed {
		passed = 1
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (recorded_at, commit_sha, branch, passed, evaluated, violations, ratios_json) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.Timestamp.UnixNano(), e.Commit, e.Branch, passed, e.Evaluated, e.Violations, string(ratios))
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}
