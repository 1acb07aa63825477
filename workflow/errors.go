// Package workflow implements the caption review workflow for captioner.
// It provides the session state record, the reply grammar, the checkpoint
// store contract, and the engine that moves a session through
// generate → await human → regenerate | edit | publish | end.
package workflow

import (
	"errors"
	"fmt"
)

// Sentinel errors for workflow operations.
var (
	ErrSessionNotFound   = errors.New("session not found")
	ErrSessionExists     = errors.New("session already exists")
	ErrSessionBusy       = errors.New("session is already being processed")
	ErrSessionClosed     = errors.New("session is closed")
	ErrConflict          = errors.New("session version conflict")
	ErrInvalidSession    = errors.New("invalid session")
	ErrInvalidTransition = errors.New("invalid state transition")
	ErrRewriteFailed     = errors.New("caption rewrite failed")
	ErrPublishFailed     = errors.New("caption publish failed")
	ErrDescribeFailed    = errors.New("image description failed")
)

// RewriteError wraps a Rewriter failure during generation or regeneration.
// The engine absorbs it into a degraded prompt rather than returning it.
type RewriteError struct {
	Err error
}

func (e *RewriteError) Error() string {
	return fmt.Sprintf("%s: %v", ErrRewriteFailed, e.Err)
}

// Unwrap exposes both ErrRewriteFailed and the adapter cause to errors.Is and errors.As.
func (e *RewriteError) Unwrap() []error {
	return []error{ErrRewriteFailed, e.Err}
}

// PublishError wraps a Publisher failure. It is returned to the caller
// alongside a session in StatusFailed.
type PublishError struct {
	SessionID string
	Err       error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("%s: session %s: %v", ErrPublishFailed, e.SessionID, e.Err)
}

// Unwrap exposes both ErrPublishFailed and the adapter cause to errors.Is and errors.As.
func (e *PublishError) Unwrap() []error {
	return []error{ErrPublishFailed, e.Err}
}
