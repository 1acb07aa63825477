// Package checkpoint provides durable workflow.CheckpointStore backends over
// database/sql and an archiver that snapshots closed sessions to blob
// storage.
package checkpoint

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/JaimeStill/captioner/pkg/repository"
	"github.com/JaimeStill/captioner/workflow"
)

// dialect carries the statements and parameter encoding of one SQL engine.
// Sessions are stored as a JSON document alongside indexed id, status, and
// version columns.
type dialect struct {
	name      string
	insert    string
	update    string
	load      string
	exists    string
	delete    string
	list      string
	timestamp func(time.Time) any
}

// Store implements workflow.CheckpointStore over a SQL database.
type Store struct {
	db     *sql.DB
	d      dialect
	logger *slog.Logger
}

var _ workflow.CheckpointStore = (*Store)(nil)

func newStore(db *sql.DB, d dialect, logger *slog.Logger) *Store {
	return &Store{
		db:     db,
		d:      d,
		logger: logger.With("system", "checkpoint", "backend", d.name),
	}
}

// Save writes the session when its version matches the stored version,
// then advances s.Version. Version 0 creates the row.
func (st *Store) Save(ctx context.Context, s *workflow.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.ID == "" {
		return fmt.Errorf("%w: id required", workflow.ErrInvalidSession)
	}

	next := s.Clone()
	next.Version = s.Version + 1

	doc, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", s.ID, err)
	}

	if s.Version == 0 {
		err = repository.ExecExpectOne(
			ctx, st.db, st.d.insert,
			s.ID, string(s.Status), next.Version, string(doc),
			st.d.timestamp(s.CreatedAt), st.d.timestamp(s.UpdatedAt),
		)
	} else {
		err = repository.ExecExpectOne(
			ctx, st.db, st.d.update,
			string(s.Status), next.Version, string(doc), st.d.timestamp(s.UpdatedAt),
			s.ID, s.Version,
		)
	}

	if err != nil {
		err = repository.MapError(err, workflow.ErrConflict, workflow.ErrConflict)
		if errors.Is(err, workflow.ErrConflict) {
			return fmt.Errorf("%w: session %s at version %d", err, s.ID, s.Version)
		}
		return fmt.Errorf("save session %s: %w", s.ID, err)
	}

	s.Version = next.Version

	st.logger.DebugContext(
		ctx, "checkpoint saved",
		"session_id", s.ID,
		"status", s.Status,
		"version", s.Version,
	)
	return nil
}

// Load returns the stored session or workflow.ErrSessionNotFound.
func (st *Store) Load(ctx context.Context, id string) (*workflow.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc, err := repository.QueryOne(ctx, st.db, st.d.load, []any{id}, scanDocument)
	if err != nil {
		err = repository.MapError(err, workflow.ErrSessionNotFound, workflow.ErrConflict)
		if errors.Is(err, workflow.ErrSessionNotFound) {
			return nil, fmt.Errorf("%w: %s", err, id)
		}
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}

	var s workflow.Session
	if err := json.Unmarshal([]byte(doc), &s); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	return &s, nil
}

func (st *Store) Exists(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	_, err := repository.QueryOne(ctx, st.db, st.d.exists, []any{id}, scanInt)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check session %s: %w", id, err)
	}
	return true, nil
}

func (st *Store) Delete(ctx context.Context, id string) error {
	if _, err := st.db.ExecContext(ctx, st.d.delete, id); err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	return nil
}

func (st *Store) List(ctx context.Context) ([]string, error) {
	ids, err := repository.QueryMany(ctx, st.db, st.d.list, nil, scanString)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return ids, nil
}

func scanDocument(s repository.Scanner) (string, error) {
	var doc string
	err := s.Scan(&doc)
	return doc, err
}

func scanString(s repository.Scanner) (string, error) {
	var v string
	err := s.Scan(&v)
	return v, err
}

func scanInt(s repository.Scanner) (int, error) {
	var v int
	err := s.Scan(&v)
	return v, err
}
