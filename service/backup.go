package service

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// PersistenceError marks a failed audit backup or output write. Persistence
// failures are fatal: an unaudited result must not be reported as success.
// The in-memory result is complete by the time persistence runs, so the
// caller may retry persistence alone.
type PersistenceError struct {
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to persist %s: %v", e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// backupEnvelope wraps a snapshot payload with run identification so a
// snapshot can always be traced back to the run that produced it.
type backupEnvelope struct {
	RunID     string      `json:"run_id"`
	CreatedAt string      `json:"created_at"`
	Data      interface{} `json:"data"`
}

// BackupStore writes immutable, timestamped JSON snapshots for audit. File
// names carry the run timestamp to the second, which keeps them unique
// within a day.
type BackupStore struct {
	dir string
	log zerolog.Logger
}

func NewBackupStore(dir string, log zerolog.Logger) *BackupStore {
	return &BackupStore{dir: dir, log: log}
}

// Save writes one snapshot named "<kind>_<timestamp>.json" and returns its
// path.
func (b *BackupStore) Save(kind, runID string, ts time.Time, payload interface{}) (string, error) {
	if err := os.MkdirAll(b.dir, 0o755); err != nil {
		return "", &PersistenceError{Path: b.dir, Err: err}
	}

	path := filepath.Join(b.dir, fmt.Sprintf("%s_%s.json", kind, ts.Format("20060102_150405")))
	data, err := json.MarshalIndent(backupEnvelope{
		RunID:     runID,
		CreatedAt: ts.Format(time.RFC3339),
		Data:      payload,
	}, "", "  ")
	if err != nil {
		return "", &PersistenceError{Path: path, Err: err}
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", &PersistenceError{Path: path, Err: err}
	}

	b.log.Info().Str("path", path).Msg("backup saved")
	return path, nil
}
