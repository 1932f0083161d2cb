package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// StepResult is one executed step as stored in step_results.
type StepResult struct {
	File     string
	Line     int
	Scenario string
	Keyword  string
	Name     string
	Status   string
}

// RunLog records the steps of a single run.
type RunLog struct {
	db *sql.DB
	ID string
}

// BeginRun inserts a new run row and returns its log.
func BeginRun(sqlDB *sql.DB) (*RunLog, error) {
	id := uuid.NewString()
	if _, err := sqlDB.Exec(`INSERT INTO runs (id) VALUES (?)`, id); err != nil {
		return nil, fmt.Errorf("inserting run: %w", err)
	}
	return &RunLog{db: sqlDB, ID: id}, nil
}

func (l *RunLog) RecordStep(r StepResult) error {
	_, err := l.db.Exec(`
		INSERT INTO step_results (run_id, file_path, line, scenario, keyword, name, status)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, l.ID, r.File, r.Line, r.Scenario, r.Keyword, r.Name, r.Status)
	if err != nil {
		return fmt.Errorf("recording step %s:%d: %w", r.File, r.Line, err)
	}
	return nil
}

// Finish stamps the run with its finish time and outcome.
func (l *RunLog) Finish(success bool) error {
	_, err := l.db.Exec(`UPDATE runs SET finished_at = datetime('now'), success = ? WHERE id = ?`, success, l.ID)
	if err != nil {
		return fmt.Errorf("finishing run %s: %w", l.ID, err)
	}
	return nil
}

type Run struct {
	ID         string
	StartedAt  time.Time
	FinishedAt *time.Time
	Success    *bool
	Steps      int
}

// RecentRuns returns up to limit runs, newest first.
func RecentRuns(sqlDB *sql.DB, limit int) ([]Run, error) {
	rows, err := sqlDB.Query(`
		SELECT r.id, r.started_at, r.finished_at, r.success,
			(SELECT COUNT(*) FROM step_results WHERE run_id = r.id)
		FROM runs r
		ORDER BY r.started_at DESC, r.rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r        Run
			finished sql.NullTime
			success  sql.NullBool
		)
		if err := rows.Scan(&r.ID, &r.StartedAt, &finished, &success, &r.Steps); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		if finished.Valid {
			r.FinishedAt = &finished.Time
		}
		if success.Valid {
			r.Success = &success.Bool
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}
	return runs, nil
}

// StatusCounts returns the number of recorded steps per status for a run.
func StatusCounts(sqlDB *sql.DB, runID string) (map[string]int, error) {
	rows, err := sqlDB.Query(`SELECT status, COUNT(*) FROM step_results WHERE run_id = ? GROUP BY status`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying status counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scanning status row: %w", err)
		}
		counts[status] = n
	}
	return counts, rows.Err()
}
