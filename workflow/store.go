package workflow

import (
	"context"
	"fmt"
	"slices"
	"sync"
)

// CheckpointStore persists sessions between human replies.
//
// Save must happen-before any Load that observes it. Save enforces
// optimistic concurrency: the stored version must equal s.Version (zero
// for a session that has never been saved). On success the store
// increments s.Version in place; on mismatch it returns ErrConflict.
// Load returns ErrSessionNotFound for unknown ids.
//
// Implementations must be safe for concurrent use.
type CheckpointStore interface {
	Save(ctx context.Context, s *Session) error
	Load(ctx context.Context, id string) (*Session, error)
	Exists(ctx context.Context, id string) (bool, error)
	// Delete removes the checkpoint for id. No error if it does not exist.
	Delete(ctx context.Context, id string) error
	// List returns the ids of all stored sessions in lexical order.
	List(ctx context.Context) ([]string, error)
}

type memoryStore struct {
	sessions map[string]*Session
	mu       sync.RWMutex
}

// NewMemoryStore creates a CheckpointStore backed by a process-local map.
// Sessions are lost when the process exits.
func NewMemoryStore() CheckpointStore {
	return &memoryStore{
		sessions: make(map[string]*Session),
	}
}

func (m *memoryStore) Save(ctx context.Context, s *Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	current := 0
	if stored, ok := m.sessions[s.ID]; ok {
		current = stored.Version
	}
	if current != s.Version {
		return fmt.Errorf("%w: %s at version %d, have %d", ErrConflict, s.ID, current, s.Version)
	}

	s.Version++
	m.sessions[s.ID] = s.Clone()
	return nil
}

func (m *memoryStore) Load(ctx context.Context, id string) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return s.Clone(), nil
}

func (m *memoryStore) Exists(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.sessions[id]
	return ok, nil
}

func (m *memoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, id)
	return nil
}

func (m *memoryStore) List(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}
