// Package archive persists finished games to a sqlite database and exports
// replay transcripts.
package archive

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/renameio/v2"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const schemaVersion = 1

// Record describes one finished game.
type Record struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Color      string // own player color
	Strategy   string
	Outcome    string // won, lost, draw
	Cause      string // score cause of the own player
	Turns      int
}

// Store is a sqlite-backed game archive. Safe for use from one goroutine.
type Store struct {
	db *sql.DB
}

// Open opens (and if needed creates) the archive database at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create archive directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("archive: migration failed: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	var current int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&current); err != nil {
		return err
	}
	if current >= schemaVersion {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	schema := `
	CREATE TABLE IF NOT EXISTS games (
		id TEXT PRIMARY KEY,
		started_at TEXT NOT NULL,
		finished_at TEXT NOT NULL,
		color TEXT NOT NULL,
		strategy TEXT NOT NULL,
		outcome TEXT NOT NULL,
		cause TEXT NOT NULL,
		turns INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_games_finished ON games(finished_at);
	`
	if _, err := tx.Exec(schema); err != nil {
		return err
	}
	if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
		return err
	}
	return tx.Commit()
}

// Save stores the record, assigning an id when it has none, and returns the
// stored record.
func (s *Store) Save(ctx context.Context, rec Record) (Record, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `
	INSERT INTO games (id, started_at, finished_at, color, strategy, outcome, cause, turns)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		rec.StartedAt.UTC().Format(time.RFC3339),
		rec.FinishedAt.UTC().Format(time.RFC3339),
		rec.Color, rec.Strategy, rec.Outcome, rec.Cause, rec.Turns,
	)
	if err != nil {
		return rec, fmt.Errorf("save game record: %w", err)
	}
	return rec, nil
}

// Recent returns up to limit records, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT id, started_at, finished_at, color, strategy, outcome, cause, turns
	FROM games ORDER BY finished_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query game records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var started, finished string
		if err := rows.Scan(&rec.ID, &started, &finished,
			&rec.Color, &rec.Strategy, &rec.Outcome, &rec.Cause, &rec.Turns); err != nil {
			return nil, fmt.Errorf("scan game record: %w", err)
		}
		rec.StartedAt, _ = time.Parse(time.RFC3339, started)
		rec.FinishedAt, _ = time.Parse(time.RFC3339, finished)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// ExportReplay writes the session transcript as a protocol XML document into
// dir, named after the record id. The write is atomic so half-written
// replays never appear.
func ExportReplay(dir, id string, transcript []string) (string, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("create replay directory: %w", err)
	}
	path := filepath.Join(dir, id+".xml")

	pending, err := renameio.NewPendingFile(path)
	if err != nil {
		return "", fmt.Errorf("create pending replay file: %w", err)
	}
	defer func() { _ = pending.Cleanup() }()

	var b strings.Builder
	b.WriteString("<protocol>\n")
	for _, msg := range transcript {
		b.WriteString(msg)
		b.WriteByte('\n')
	}
	b.WriteString("</protocol>\n")
	if _, err := pending.Write([]byte(b.String())); err != nil {
		return "", fmt.Errorf("write replay: %w", err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return "", fmt.Errorf("replace replay file: %w", err)
	}
	return path, nil
}
