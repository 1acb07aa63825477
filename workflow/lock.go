package workflow

import (
	"fmt"
	"sync"
)

// sessionLocks rejects concurrent work on the same session id instead of
// queueing it.
type sessionLocks struct {
	held map[string]struct{}
	mu   sync.Mutex
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{
		held: make(map[string]struct{}),
	}
}

func (l *sessionLocks) acquire(id string) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, busy := l.held[id]; busy {
		return nil, fmt.Errorf("%w: %s", ErrSessionBusy, id)
	}
	l.held[id] = struct{}{}

	return func() {
		l.mu.Lock()
		delete(l.held, id)
		l.mu.Unlock()
	}, nil
}
