// Package history persists completed orchestrator runs in a local SQLite
// database so past runs can be listed and inspected after the process exits.
package history

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ShayCichocki/flotilla/pkg/models"
)

// Store wraps an SQLite database holding run records.
type Store struct {
	conn *sql.DB
	path string
	mu   sync.RWMutex
}

// DefaultPath returns the path to the user-level history database.
func DefaultPath() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, _ := os.UserHomeDir()
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, "flotilla", "history.db")
}

// Open opens the history database at the given path, creating parent
// directories and applying the schema as needed. WAL mode is enabled for
// concurrent reads.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	s := &Store{conn: conn, path: path}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.Close()
}

// Path returns the path to the database file.
func (s *Store) Path() string {
	return s.path
}

// migrate applies all pending schema migrations.
func (s *Store) migrate() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.conn.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("create schema_version table: %w", err)
	}

	var currentVersion int
	row := s.conn.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("get schema version: %w", err)
	}

	migrations := []struct {
		version int
		sql     string
	}{
		{1, migrationV1Runs},
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}

		tx, err := s.conn.Begin()
		if err != nil {
			return fmt.Errorf("begin transaction: %w", err)
		}

		if _, err := tx.Exec(m.sql); err != nil {
			tx.Rollback()
			return fmt.Errorf("apply migration v%d: %w", m.version, err)
		}

		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", m.version); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration v%d: %w", m.version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration v%d: %w", m.version, err)
		}
	}

	return nil
}

const migrationV1Runs = `
CREATE TABLE IF NOT EXISTS runs (
	run_id TEXT PRIMARY KEY,
	root_task_id TEXT NOT NULL,
	instruction TEXT NOT NULL,
	final_output TEXT NOT NULL DEFAULT '',
	success INTEGER NOT NULL DEFAULT 0,
	state TEXT NOT NULL,
	worker_count INTEGER NOT NULL DEFAULT 0,
	worker_results TEXT NOT NULL DEFAULT '[]',
	synthesis_results TEXT NOT NULL DEFAULT '[]',
	total_cost REAL NOT NULL DEFAULT 0.0,
	total_tokens INTEGER NOT NULL DEFAULT 0,
	duration_ms INTEGER NOT NULL DEFAULT 0,
	started_at DATETIME NOT NULL,
	completed_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
CREATE INDEX IF NOT EXISTS idx_runs_state ON runs(state);
`

// RunSummary is the listing view of a stored run, without the result
// payloads.
type RunSummary struct {
	RunID       string          `json:"run_id"`
	Instruction string          `json:"instruction"`
	Success     bool            `json:"success"`
	State       models.RunState `json:"state"`
	WorkerCount int             `json:"worker_count"`
	TotalCost   float64         `json:"total_cost"`
	TotalTokens int64           `json:"total_tokens"`
	Duration    time.Duration   `json:"duration"`
	StartedAt   time.Time       `json:"started_at"`
}

// SaveRun stores a completed run. Saving the same run ID again overwrites
// the earlier record.
func (s *Store) SaveRun(res *models.OrchestratorResult) error {
	if res == nil {
		return fmt.Errorf("save run: nil result")
	}

	workers, err := json.Marshal(res.WorkerResults)
	if err != nil {
		return fmt.Errorf("marshal worker results: %w", err)
	}
	syntheses, err := json.Marshal(res.SynthesisResults)
	if err != nil {
		return fmt.Errorf("marshal synthesis results: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.conn.Exec(`
		INSERT OR REPLACE INTO runs (
			run_id, root_task_id, instruction, final_output, success, state,
			worker_count, worker_results, synthesis_results,
			total_cost, total_tokens, duration_ms, started_at, completed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, res.RunID, res.RootTaskID, res.Instruction, res.FinalOutput, res.Success, string(res.State),
		len(res.WorkerResults), string(workers), string(syntheses),
		res.TotalCost, res.TotalTokens, res.Duration.Milliseconds(),
		formatTime(res.StartedAt), formatTime(res.CompletedAt))
	if err != nil {
		return fmt.Errorf("save run: %w", err)
	}
	return nil
}

// GetRun retrieves a stored run by ID. Returns nil without error when the
// run is not present.
func (s *Store) GetRun(runID string) (*models.OrchestratorResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.conn.QueryRow(`
		SELECT run_id, root_task_id, instruction, final_output, success, state,
		       worker_results, synthesis_results,
		       total_cost, total_tokens, duration_ms, started_at, completed_at
		FROM runs WHERE run_id = ?
	`, runID)

	var res models.OrchestratorResult
	var workers, syntheses, startedAt, completedAt string
	var durationMS int64
	err := row.Scan(&res.RunID, &res.RootTaskID, &res.Instruction, &res.FinalOutput, &res.Success, &res.State,
		&workers, &syntheses,
		&res.TotalCost, &res.TotalTokens, &durationMS, &startedAt, &completedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}

	if err := json.Unmarshal([]byte(workers), &res.WorkerResults); err != nil {
		return nil, fmt.Errorf("unmarshal worker results: %w", err)
	}
	if err := json.Unmarshal([]byte(syntheses), &res.SynthesisResults); err != nil {
		return nil, fmt.Errorf("unmarshal synthesis results: %w", err)
	}
	res.Duration = time.Duration(durationMS) * time.Millisecond
	res.StartedAt, _ = parseTime(startedAt)
	res.CompletedAt, _ = parseTime(completedAt)
	return &res, nil
}

// ListRuns returns run summaries ordered most recent first. A limit of zero
// or less returns all runs.
func (s *Store) ListRuns(limit int) ([]RunSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT run_id, instruction, success, state, worker_count,
		       total_cost, total_tokens, duration_ms, started_at
		FROM runs ORDER BY started_at DESC
	`
	var rows *sql.Rows
	var err error
	if limit > 0 {
		rows, err = s.conn.Query(query+" LIMIT ?", limit)
	} else {
		rows, err = s.conn.Query(query)
	}
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var summaries []RunSummary
	for rows.Next() {
		var rs RunSummary
		var startedAt string
		var durationMS int64
		if err := rows.Scan(&rs.RunID, &rs.Instruction, &rs.Success, &rs.State, &rs.WorkerCount,
			&rs.TotalCost, &rs.TotalTokens, &durationMS, &startedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		rs.Duration = time.Duration(durationMS) * time.Millisecond
		rs.StartedAt, _ = parseTime(startedAt)
		summaries = append(summaries, rs)
	}
	return summaries, rows.Err()
}

// DeleteRun removes a stored run by ID.
func (s *Store) DeleteRun(runID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.conn.Exec("DELETE FROM runs WHERE run_id = ?", runID); err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	return nil
}

// PurgeOlderThan deletes runs that started before now minus olderThan.
// Returns the number of runs deleted.
func (s *Store) PurgeOlderThan(olderThan time.Duration) (int64, error) {
	cutoff := formatTime(time.Now().Add(-olderThan))

	s.mu.Lock()
	defer s.mu.Unlock()
	result, err := s.conn.Exec("DELETE FROM runs WHERE started_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge old runs: %w", err)
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("get rows affected: %w", err)
	}
	return count, nil
}

// formatTime formats a time.Time for SQLite storage.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTime parses a time string from SQLite.
func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
