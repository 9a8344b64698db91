package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/Bergam0t/ciw-example-animation/internal/eventlog"
	"github.com/Bergam0t/ciw-example-animation/internal/model"
)

// Run is a stored simulation run.
type Run struct {
	ID         string           `json:"id"`
	CreatedAt  time.Time        `json:"created_at"`
	Experiment model.Experiment `json:"experiment"`
	Reps       int              `json:"reps"`
	Metrics    []model.Metrics  `json:"metrics,omitempty"`
}

// ErrRunNotFound is returned when a run ID does not exist.
var ErrRunNotFound = errors.New("run not found")

// Store is the run-history database rooted at a data directory.
type Store struct {
	db      *sql.DB
	dataDir string
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
  id TEXT PRIMARY KEY,
  created_at TEXT NOT NULL,
  n_operators INTEGER NOT NULL,
  n_nurses INTEGER NOT NULL,
  chance_callback REAL NOT NULL,
  reps INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS replications (
  run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
  rep INTEGER NOT NULL,
  operator_wait REAL NOT NULL,
  operator_util REAL NOT NULL,
  nurse_wait REAL NOT NULL,
  nurse_util REAL NOT NULL,
  PRIMARY KEY (run_id, rep)
);
CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
`

// Open opens (creating if needed) the store under dataDir.
func Open(dataDir string) (*Store, error) {
	if err := os.MkdirAll(LogsPath(dataDir), 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	db, err := sql.Open("sqlite", DBPath(dataDir))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// SQLite doesn't support concurrent writes
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialising schema: %w", err)
	}

	return &Store{db: db, dataDir: dataDir}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// SaveRun stores a run with its per-replication metrics, and the first
// replication's event log as JSONL for later animation.
func (s *Store) SaveRun(run Run, firstRepLog []eventlog.Entry) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO runs (id, created_at, n_operators, n_nurses, chance_callback, reps)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.CreatedAt.UTC().Format(time.RFC3339),
		run.Experiment.NOperators, run.Experiment.NNurses, run.Experiment.ChanceCallback, run.Reps,
	)
	if err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}

	for i, m := range run.Metrics {
		_, err = tx.Exec(
			`INSERT INTO replications (run_id, rep, operator_wait, operator_util, nurse_wait, nurse_util)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			run.ID, i, m.MeanWaitingTime, m.OperatorUtil, m.MeanNurseWaitingTime, m.NurseUtil,
		)
		if err != nil {
			return fmt.Errorf("inserting replication %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing run: %w", err)
	}

	if firstRepLog != nil {
		if err := eventlog.WriteAll(LogPath(s.dataDir, run.ID), firstRepLog); err != nil {
			return fmt.Errorf("writing event log: %w", err)
		}
	}
	return nil
}

// ListRuns returns stored runs, newest first, without metric rows.
func (s *Store) ListRuns() ([]Run, error) {
	rows, err := s.db.Query(
		`SELECT id, created_at, n_operators, n_nurses, chance_callback, reps
		 FROM runs ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRun returns one run including its per-replication metrics.
func (s *Store) GetRun(id string) (*Run, error) {
	row := s.db.QueryRow(
		`SELECT id, created_at, n_operators, n_nurses, chance_callback, reps
		 FROM runs WHERE id = ?`, id)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(
		`SELECT operator_wait, operator_util, nurse_wait, nurse_util
		 FROM replications WHERE run_id = ? ORDER BY rep`, id)
	if err != nil {
		return nil, fmt.Errorf("reading replications: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var m model.Metrics
		if err := rows.Scan(&m.MeanWaitingTime, &m.OperatorUtil, &m.MeanNurseWaitingTime, &m.NurseUtil); err != nil {
			return nil, fmt.Errorf("scanning replication: %w", err)
		}
		run.Metrics = append(run.Metrics, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &run, nil
}

// GetRunLog reads a stored run's event log.
func (s *Store) GetRunLog(id string) ([]eventlog.Entry, error) {
	entries, err := eventlog.ReadAll(LogPath(s.dataDir, id))
	if err != nil {
		return nil, err
	}
	if entries == nil {
		return nil, fmt.Errorf("%w: no event log for %s", ErrRunNotFound, id)
	}
	return entries, nil
}

// DeleteRun removes a run, its metrics and its event log.
func (s *Store) DeleteRun(id string) error {
	res, err := s.db.Exec(`DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrRunNotFound
	}

	if err := os.Remove(LogPath(s.dataDir, id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing event log: %w", err)
	}
	return nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (Run, error) {
	var run Run
	var created string
	err := sc.Scan(&run.ID, &created,
		&run.Experiment.NOperators, &run.Experiment.NNurses,
		&run.Experiment.ChanceCallback, &run.Reps)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return run, err
		}
		return run, fmt.Errorf("scanning run: %w", err)
	}
	run.CreatedAt, err = time.Parse(time.RFC3339, created)
	if err != nil {
		return run, fmt.Errorf("parsing created_at: %w", err)
	}
	return run, nil
}
