package checkpoint

import (
	"database/sql"
	"log/slog"
	"time"
)

var postgres = dialect{
	name: "postgres",
	insert: `
INSERT INTO sessions (id, status, version, document, created_at, updated_at)
VALUES ($1, $2, $3, $4::jsonb, $5, $6)`,
	update: `
UPDATE sessions
SET status = $1, version = $2, document = $3::jsonb, updated_at = $4
WHERE id = $5 AND version = $6`,
	load:   `SELECT document::text FROM sessions WHERE id = $1`,
	exists: `SELECT 1 FROM sessions WHERE id = $1`,
	delete: `DELETE FROM sessions WHERE id = $1`,
	list:   `SELECT id FROM sessions ORDER BY id`,
	timestamp: func(t time.Time) any {
		return t.UTC()
	},
}

// NewPostgres creates a store over a PostgreSQL connection pool. The
// sessions table is created by cmd/migrate.
func NewPostgres(db *sql.DB, logger *slog.Logger) *Store {
	return newStore(db, postgres, logger)
}
