package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"modeon/internal/core/model"
)

const (
	historyFileName = "history.db"
	timeLayout      = "2006-01-02T15:04:05.000000000Z07:00"
)

// HistoryStore keeps finished sessions in SQLite.
type HistoryStore struct {
	db *sql.DB
}

// HistoryPath returns the database path inside a state directory.
func HistoryPath(stateDir string) string {
	return filepath.Join(stateDir, historyFileName)
}

// OpenHistory opens or creates the history database at dbPath.
func OpenHistory(ctx context.Context, dbPath string) (*HistoryStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o700); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	store := &HistoryStore{db: db}
	if err := store.ensureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (store *HistoryStore) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS sessions (
  id TEXT PRIMARY KEY,
  keyword TEXT NOT NULL,
  started_at TEXT NOT NULL,
  stopped_at TEXT NOT NULL,
  focus_seconds REAL NOT NULL,
  distraction_seconds REAL NOT NULL
);
`
	if _, err := store.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create sessions table: %w", err)
	}
	if _, err := store.db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS sessions_stopped_at ON sessions (stopped_at)`); err != nil {
		return fmt.Errorf("create sessions index: %w", err)
	}
	return nil
}

// Record stores a finished session. An empty ID gets a random UUID.
func (store *HistoryStore) Record(ctx context.Context, summary model.SessionSummary) error {
	if summary.ID == "" {
		summary.ID = uuid.NewString()
	}

	const stmt = `
INSERT INTO sessions (id, keyword, started_at, stopped_at, focus_seconds, distraction_seconds)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  keyword=excluded.keyword,
  started_at=excluded.started_at,
  stopped_at=excluded.stopped_at,
  focus_seconds=excluded.focus_seconds,
  distraction_seconds=excluded.distraction_seconds;
`
	_, err := store.db.ExecContext(ctx, stmt,
		summary.ID,
		summary.Keyword,
		summary.StartedAt.UTC().Format(timeLayout),
		summary.StoppedAt.UTC().Format(timeLayout),
		summary.FocusSeconds,
		summary.DistractionSeconds,
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// Recent returns up to limit sessions, most recently stopped first.
func (store *HistoryStore) Recent(ctx context.Context, limit int) ([]model.SessionSummary, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := store.db.QueryContext(ctx, `
SELECT id, keyword, started_at, stopped_at, focus_seconds, distraction_seconds
FROM sessions
ORDER BY stopped_at DESC
LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var summaries []model.SessionSummary
	for rows.Next() {
		var (
			summary   model.SessionSummary
			startedAt string
			stoppedAt string
		)
		if err := rows.Scan(&summary.ID, &summary.Keyword, &startedAt, &stoppedAt,
			&summary.FocusSeconds, &summary.DistractionSeconds); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		if summary.StartedAt, err = time.Parse(timeLayout, startedAt); err != nil {
			return nil, fmt.Errorf("parse started_at: %w", err)
		}
		if summary.StoppedAt, err = time.Parse(timeLayout, stoppedAt); err != nil {
			return nil, fmt.Errorf("parse stopped_at: %w", err)
		}
		summaries = append(summaries, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return summaries, nil
}

// Close releases the database.
func (store *HistoryStore) Close() error {
	return store.db.Close()
}
