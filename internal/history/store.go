// Package history persists probe runs in a SQLite database so that past
// validation results can be listed after the process exits.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/taskledger/internal/logging"
	"github.com/mesh-intelligence/taskledger/internal/paths"
	"github.com/mesh-intelligence/taskledger/pkg/types"
)

// Store records probe runs. A Store is safe for concurrent use.
type Store struct {
	mu     sync.RWMutex
	db     *sql.DB
	path   string
	logger *log.Logger
}

// Open opens or creates the database at path, creating parent directories
// and the schema as needed. A nil logger discards diagnostics.
func Open(ctx context.Context, path string, logger *log.Logger) (*Store, error) {
	if path == "" {
		path = filepath.Join(paths.DefaultConfigDirName, paths.DefaultHistoryFile)
	}
	if logger == nil {
		logger = logging.Discard()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open history %s: %w", path, err)
	}
	// One writer at a time keeps SQLite from returning SQLITE_BUSY inside
	// this process.
	db.SetMaxOpenConns(1)

	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("create history schema: %w", err)
		}
	}

	logger.Debug("history opened", "path", path)
	return &Store{db: db, path: path, logger: logger}, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close releases the database. Closing twice is a no-op.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// SaveRun stores a run and its results. Saving a run id twice replaces the
// earlier copy.
func (s *Store) SaveRun(ctx context.Context, run *types.Run) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return types.ErrHistoryClosed
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE run_id = ?`, run.ID); err != nil {
		return fmt.Errorf("replace run %s: %w", run.ID, err)
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (run_id, base_url, started_at, finished_at, passed, failed) VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.BaseURL, formatTime(run.StartedAt), formatTime(run.FinishedAt), run.Passed(), run.Failed())
	if err != nil {
		return fmt.Errorf("insert run %s: %w", run.ID, err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO results (run_id, seq, probe, name, success, details, checked_at) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare results: %w", err)
	}
	defer stmt.Close()

	for i, res := range run.Results {
		if _, err := stmt.ExecContext(ctx, run.ID, i, res.Probe, res.Name, res.Success, res.Details, formatTime(res.At)); err != nil {
			return fmt.Errorf("insert result %d of run %s: %w", i, run.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run %s: %w", run.ID, err)
	}
	s.logger.Debug("run saved", "run", run.ID, "results", len(run.Results))
	return nil
}

// ListRuns returns up to limit runs, newest first, with their results.
// A limit of zero or less returns every run.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]*types.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, types.ErrHistoryClosed
	}
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, base_url, started_at, finished_at FROM runs ORDER BY started_at DESC, run_id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []*types.Run
	for rows.Next() {
		var (
			run               types.Run
			started, finished string
		)
		if err := rows.Scan(&run.ID, &run.BaseURL, &started, &finished); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if run.StartedAt, err = parseTime(started); err != nil {
			return nil, err
		}
		if run.FinishedAt, err = parseTime(finished); err != nil {
			return nil, err
		}
		runs = append(runs, &run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	rows.Close()

	for _, run := range runs {
		if run.Results, err = s.results(ctx, run.ID); err != nil {
			return nil, err
		}
	}
	return runs, nil
}

func (s *Store) results(ctx context.Context, runID string) ([]types.ProbeResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT probe, name, success, details, checked_at FROM results WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("query results of run %s: %w", runID, err)
	}
	defer rows.Close()

	var out []types.ProbeResult
	for rows.Next() {
		var (
			res types.ProbeResult
			at  string
		)
		if err := rows.Scan(&res.Probe, &res.Name, &res.Success, &res.Details, &at); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		if res.At, err = parseTime(at); err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate results: %w", err)
	}
	return out, nil
}

// timeLayout has a fixed width so that text ordering matches time ordering.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", s, err)
	}
	return t, nil
}
