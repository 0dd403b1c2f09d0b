package policy

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteQuotaStore persists per-user cancellation counters in SQLite so
// quota state survives across evaluation runs. Counters are bucketed by
// calendar month, matching the monthly quota period.
type SQLiteQuotaStore struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLiteQuotaStore opens or creates the quota database at path.
func OpenSQLiteQuotaStore(path string) (*SQLiteQuotaStore, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve quota db path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return nil, fmt.Errorf("ensure quota db dir: %w", err)
	}

	db, err := sql.Open("sqlite", absPath)
	if err != nil {
		return nil, fmt.Errorf("open quota db: %w", err)
	}

	store := &SQLiteQuotaStore{db: db, now: time.Now}
	if err := store.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the database connection.
func (s *SQLiteQuotaStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteQuotaStore) ensureSchema() error {
	schema := `
CREATE TABLE IF NOT EXISTS cancellation_counts (
	user_id TEXT NOT NULL,
	period TEXT NOT NULL,
	count INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (user_id, period)
);
`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("ensure quota schema: %w", err)
	}
	return nil
}

func (s *SQLiteQuotaStore) period() string {
	return s.now().UTC().Format("2006-01")
}

// CancellationCount returns the user's count for the current month.
func (s *SQLiteQuotaStore) CancellationCount(ctx context.Context, userID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT count FROM cancellation_counts WHERE user_id = ? AND period = ?`,
		userID, s.period(),
	).Scan(&count)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("query cancellation count: %w", err)
	}
	return count, nil
}

// IncrementCancellations bumps the user's count for the current month.
func (s *SQLiteQuotaStore) IncrementCancellations(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO cancellation_counts (user_id, period, count) VALUES (?, ?, 1)
ON CONFLICT (user_id, period) DO UPDATE SET count = count + 1`,
		userID, s.period(),
	)
	if err != nil {
		return fmt.Errorf("increment cancellation count: %w", err)
	}
	return nil
}
