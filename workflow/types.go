package workflow

import (
	"slices"
	"time"
)

// Status is the state-machine position of a session.
type Status string

// Session states. Done and Failed are terminal.
const (
	StatusGenerating    Status = "GENERATING"
	StatusAwaitingHuman Status = "AWAITING_HUMAN"
	StatusRegenerating  Status = "REGENERATING"
	StatusEditing       Status = "EDITING"
	StatusPublishing    Status = "PUBLISHING"
	StatusDone          Status = "DONE"
	StatusFailed        Status = "FAILED"
)

// Terminal reports whether no further transitions are possible from s.
func (s Status) Terminal() bool {
	return s == StatusDone || s == StatusFailed
}

// Decision records the last routing choice made by the human.
type Decision string

// Routing decisions.
const (
	DecisionNone       Decision = "none"
	DecisionSelect     Decision = "select"
	DecisionEdit       Decision = "edit"
	DecisionRegenerate Decision = "regenerate"
	DecisionEnd        Decision = "end"
)

// Role tags the author of a history message.
type Role string

// Message roles.
const (
	RoleSystem    Role = "system"
	RoleHuman     Role = "human"
	RoleAssistant Role = "assistant"
)

// Message is one entry of the conversation passed to the Rewriter.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// NewMessage creates a Message with the given role and content.
func NewMessage(role Role, content string) Message {
	return Message{Role: role, Content: content}
}

// Stage names the workflow step that produced a failure.
type Stage string

// Failure stages.
const (
	StageGeneration  Stage = "generation"
	StagePublication Stage = "publication"
)

// Failure describes the most recent adapter failure recorded on a session.
// A generation failure leaves the session awaiting a human decision; a
// publication failure is terminal.
type Failure struct {
	Stage   Stage  `json:"stage"`
	Message string `json:"message"`
}

// Session is the persisted record of one workflow run.
//
// InitialDescription and ImageReference are fixed at creation. Candidates is
// replaced wholesale on every generation and is empty when the last
// generation failed. History only grows. Version is the optimistic
// concurrency counter maintained by the CheckpointStore.
type Session struct {
	ID                 string    `json:"id"`
	InitialDescription string    `json:"initial_description"`
	ImageReference     string    `json:"image_reference"`
	Candidates         []string  `json:"candidates"`
	History            []Message `json:"history"`
	SelectedCaption    string    `json:"selected_caption"`
	Decision           Decision  `json:"decision"`
	Status             Status    `json:"status"`
	Failure            *Failure  `json:"failure,omitempty"`
	Version            int       `json:"version"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// Clone returns a deep copy of the session.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	c.Candidates = slices.Clone(s.Candidates)
	c.History = slices.Clone(s.History)
	if s.Failure != nil {
		f := *s.Failure
		c.Failure = &f
	}
	return &c
}

// Degraded reports whether the session is waiting on a human with no
// candidates to choose from.
func (s *Session) Degraded() bool {
	return s.Status == StatusAwaitingHuman && len(s.Candidates) == 0
}

func (s *Session) seeded() bool {
	return len(s.History) > 0 && s.History[0].Role == RoleSystem
}
