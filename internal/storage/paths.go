// Package storage persists simulation runs: run metadata and
// per-replication metrics in SQLite, event logs as JSONL files beside
// the database.
package storage

import "path/filepath"

const (
	// DataDirName is the default data directory name.
	DataDirName = ".callsim"
	// DBFile is the run-history database file name.
	DBFile = "runs.db"
	// LogsDir holds one JSONL event log per stored run.
	LogsDir = "logs"
)

// DBPath returns the path to the run database inside a data directory.
func DBPath(dataDir string) string {
	return filepath.Join(dataDir, DBFile)
}

// LogsPath returns the event log directory inside a data directory.
func LogsPath(dataDir string) string {
	return filepath.Join(dataDir, LogsDir)
}

// LogPath returns the event log file for a run.
func LogPath(dataDir, runID string) string {
	return filepath.Join(dataDir, LogsDir, runID+".jsonl")
}
