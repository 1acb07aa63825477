package workflow

import (
	"fmt"
	"slices"
)

// transitions is the complete edge set of the session state machine.
// Regeneration loops back to AwaitingHuman; editing always flows into
// publishing; only publishing can fail terminally.
var transitions = map[Status][]Status{
	StatusGenerating:    {StatusAwaitingHuman},
	StatusAwaitingHuman: {StatusRegenerating, StatusEditing, StatusPublishing, StatusDone},
	StatusRegenerating:  {StatusAwaitingHuman},
	StatusEditing:       {StatusPublishing},
	StatusPublishing:    {StatusDone, StatusFailed},
}

// CanTransition reports whether the state machine has an edge from → to.
func CanTransition(from, to Status) bool {
	return slices.Contains(transitions[from], to)
}

// moveTo advances the session along a single edge of the transition table.
func (s *Session) moveTo(to Status) error {
	if !CanTransition(s.Status, to) {
		return fmt.Errorf("%w: %s → %s", ErrInvalidTransition, s.Status, to)
	}
	s.Status = to
	return nil
}
