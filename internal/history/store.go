// Package history persists verification runs to a local SQLite
// database so operators can compare readiness over time.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/kt2saint-sec/ragcheck/internal/errors"
	"github.com/kt2saint-sec/ragcheck/internal/phase"
)

// Store is a SQLite-backed run history.
type Store struct {
	db *sql.DB
}

// Run is one persisted verification run.
type Run struct {
	ID          int64
	StartedAt   time.Time
	Duration    time.Duration
	Operational bool
	Aborted     bool
	Phases      []PhaseRecord
}

// PhaseRecord is one phase's score within a persisted run.
type PhaseRecord struct {
	Label    string
	Critical bool
	Verdict  string
	Rate     float64
	Passed   uint
	Warned   uint
	Failed   uint
}

// Open opens (creating if necessary) the history database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, errors.New(errors.ErrCodeHistoryStore, "create history directory", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.New(errors.ErrCodeHistoryStore, "open history database", err)
	}
	// Single writer, single reader: the CLI runs one process at a time.
	db.SetMaxOpenConns(1)

	// modernc.org/sqlite leaves foreign keys off unless asked.
	if _, err := db.Exec(`PRAGMA foreign_keys = ON`); err != nil {
		_ = db.Close()
		return nil, errors.New(errors.ErrCodeHistoryStore, "enable foreign keys", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		started_at TIMESTAMP NOT NULL,
		duration_ms INTEGER NOT NULL,
		operational INTEGER NOT NULL,
		aborted INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS phase_reports (
		run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		label TEXT NOT NULL,
		critical INTEGER NOT NULL,
		verdict TEXT NOT NULL,
		rate REAL NOT NULL,
		passed INTEGER NOT NULL,
		warned INTEGER NOT NULL,
		failed INTEGER NOT NULL,
		PRIMARY KEY (run_id, label)
	);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at DESC);
	`
	if _, err := db.Exec(schema); err != nil {
		return errors.New(errors.ErrCodeHistoryStore, "create history schema", err)
	}
	return nil
}

// SaveRun persists one suite report and returns its row id.
func (s *Store) SaveRun(ctx context.Context, report *phase.SuiteReport) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, errors.New(errors.ErrCodeHistoryStore, "begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO runs (started_at, duration_ms, operational, aborted)
		VALUES (?, ?, ?, ?)
	`, report.StartedAt.UTC().Format(time.RFC3339), report.Duration.Milliseconds(),
		boolInt(report.Operational), boolInt(report.Aborted))
	if err != nil {
		return 0, errors.New(errors.ErrCodeHistoryStore, "insert run", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, errors.New(errors.ErrCodeHistoryStore, "run id", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO phase_reports (run_id, label, critical, verdict, rate, passed, warned, failed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, errors.New(errors.ErrCodeHistoryStore, "prepare phase insert", err)
	}
	defer stmt.Close()

	for _, p := range report.Phases {
		_, err := stmt.ExecContext(ctx, runID, p.Label, boolInt(p.Critical),
			p.Report.Verdict.String(), p.Report.Rate,
			p.Report.Passed, p.Report.Warned, p.Report.Failed)
		if err != nil {
			return 0, errors.New(errors.ErrCodeHistoryStore, fmt.Sprintf("insert phase %s", p.Label), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, errors.New(errors.ErrCodeHistoryStore, "commit run", err)
	}
	return runID, nil
}

// RecentRuns returns up to limit runs, newest first, with their phase
// records attached.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, started_at, duration_ms, operational, aborted
		FROM runs ORDER BY started_at DESC, id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, errors.New(errors.ErrCodeHistoryStore, "query runs", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var started string
		var durationMS, operational, aborted int64
		if err := rows.Scan(&r.ID, &started, &durationMS, &operational, &aborted); err != nil {
			return nil, errors.New(errors.ErrCodeHistoryStore, "scan run", err)
		}
		r.StartedAt, _ = time.Parse(time.RFC3339, started)
		r.Duration = time.Duration(durationMS) * time.Millisecond
		r.Operational = operational != 0
		r.Aborted = aborted != 0
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.New(errors.ErrCodeHistoryStore, "iterate runs", err)
	}

	for i := range runs {
		phases, err := s.phasesForRun(ctx, runs[i].ID)
		if err != nil {
			return nil, err
		}
		runs[i].Phases = phases
	}
	return runs, nil
}

func (s *Store) phasesForRun(ctx context.Context, runID int64) ([]PhaseRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT label, critical, verdict, rate, passed, warned, failed
		FROM phase_reports WHERE run_id = ? ORDER BY rowid
	`, runID)
	if err != nil {
		return nil, errors.New(errors.ErrCodeHistoryStore, "query phases", err)
	}
	defer rows.Close()

	var phases []PhaseRecord
	for rows.Next() {
		var p PhaseRecord
		var critical int64
		if err := rows.Scan(&p.Label, &critical, &p.Verdict, &p.Rate, &p.Passed, &p.Warned, &p.Failed); err != nil {
			return nil, errors.New(errors.ErrCodeHistoryStore, "scan phase", err)
		}
		p.Critical = critical != 0
		phases = append(phases, p)
	}
	return phases, rows.Err()
}

// Prune deletes runs older than the cutoff, keeping history bounded.
func (s *Store) Prune(ctx context.Context, olderThan time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM runs WHERE started_at < ?
	`, olderThan.UTC().Format(time.RFC3339))
	if err != nil {
		return 0, errors.New(errors.ErrCodeHistoryStore, "prune runs", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
