package utils

import (
	"os"
	"path/filepath"
)

const defaultSnapshotDir = "snapshots"

// SnapshotDir returns the snapshot directory, SNAPSHOT_DIR overriding the
// default.
func SnapshotDir() string {
	if dir := os.Getenv("SNAPSHOT_DIR"); dir != "" {
		return dir
	}
	return defaultSnapshotDir
}

// EnsureSnapshotDir creates the snapshot directory if it doesn't exist
func EnsureSnapshotDir() error {
	return os.MkdirAll(SnapshotDir(), os.ModePerm)
}

// WriteSnapshotFile writes a snapshot into the snapshot directory and
// returns the full path.
func WriteSnapshotFile(filename string, data []byte) (string, error) {
	if err := EnsureSnapshotDir(); err != nil {
		return "", err
	}
	path := filepath.Join(SnapshotDir(), filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
