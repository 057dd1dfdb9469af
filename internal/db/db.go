// Package db owns the on-disk record index: one sqlite file per workspace
// under .govline/. The index is a projection; the records themselves are
// authoritative, so the file can always be rebuilt.
package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const (
	workspaceDirName = ".govline"
	indexFileName    = "index.db"
)

type Config struct {
	Workspace string
}

// EnsureWorkspace creates the workspace directory if missing and returns
// its path.
func EnsureWorkspace(workspace string) (string, error) {
	path := filepath.Join(workspace, workspaceDirName)
	if err := os.MkdirAll(path, 0o755); err != nil {
		return "", err
	}
	return path, nil
}

// Open opens the workspace's record index. Foreign keys are enforced, WAL
// keeps the CLI and a running server from blocking each other, and the
// busy timeout absorbs short write contention instead of surfacing
// SQLITE_BUSY. Writes funnel through a single connection; sqlite serializes
// them anyway.
func Open(cfg Config) (*sql.DB, error) {
	if _, err := EnsureWorkspace(cfg.Workspace); err != nil {
		return nil, err
	}
	dsn := fmt.Sprintf(
		"file:%s?cache=shared&_pragma=foreign_keys(1)&_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)",
		Path(cfg.Workspace))
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	conn.SetMaxOpenConns(1)
	return conn, nil
}

// Path returns the index file path for the workspace.
func Path(workspace string) string {
	if workspace == "" {
		workspace = "."
	}
	return filepath.Join(workspace, workspaceDirName, indexFileName)
}
