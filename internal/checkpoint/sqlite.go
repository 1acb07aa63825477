package checkpoint

import (
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed schema/sqlite.sql
var sqliteSchema string

var sqlite = dialect{
	name: "sqlite",
	insert: `
INSERT INTO sessions (id, status, version, document, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)`,
	update: `
UPDATE sessions
SET status = ?, version = ?, document = ?, updated_at = ?
WHERE id = ? AND version = ?`,
	load:   `SELECT document FROM sessions WHERE id = ?`,
	exists: `SELECT 1 FROM sessions WHERE id = ?`,
	delete: `DELETE FROM sessions WHERE id = ?`,
	list:   `SELECT id FROM sessions ORDER BY id`,
	timestamp: func(t time.Time) any {
		return t.UTC().UnixMilli()
	},
}

// SQLite is a Store that owns its database handle.
type SQLite struct {
	*Store
}

// OpenSQLite opens or creates a SQLite checkpoint file and applies the schema.
func OpenSQLite(path string, logger *slog.Logger) (*SQLite, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}

	dsn := filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply sqlite schema: %w", err)
	}

	return &SQLite{Store: newStore(db, sqlite, logger)}, nil
}

// Close releases the SQLite connection.
func (s *SQLite) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
