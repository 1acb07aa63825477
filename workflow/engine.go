package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

var errNoCandidates = errors.New("rewriter returned no candidates")

// StartRequest carries the inputs of a new workflow run. When SessionID is
// empty a UUIDv7 is assigned. When Description is empty the runtime
// Describer produces one from the image.
type StartRequest struct {
	SessionID      string `json:"session_id,omitempty"`
	Description    string `json:"description,omitempty"`
	ImageReference string `json:"image_reference"`
}

// Engine drives sessions through the caption review state machine. Start
// and Reply are the only suspension points: each runs to the next
// AwaitingHuman or terminal state, persists the session, and returns.
type Engine struct {
	store     CheckpointStore
	rewriter  Rewriter
	publisher Publisher
	describer Describer
	archiver  Archiver
	prompts   PromptSet
	logger    *slog.Logger
	locks     *sessionLocks
}

// New creates an Engine from the runtime collaborators.
func New(rt *Runtime) (*Engine, error) {
	if err := rt.validate(); err != nil {
		return nil, fmt.Errorf("workflow runtime: %w", err)
	}

	return &Engine{
		store:     rt.Store,
		rewriter:  rt.Rewriter,
		publisher: rt.Publisher,
		describer: rt.Describer,
		archiver:  rt.Archiver,
		prompts:   rt.Prompts,
		logger:    rt.Logger.With("system", "workflow"),
		locks:     newSessionLocks(),
	}, nil
}

// Start creates a session, runs the generation step, and suspends at
// AwaitingHuman. A rewriter failure does not fail Start; the returned
// prompt carries no candidates instead. An id whose stored session is
// DONE or FAILED starts a fresh run that overwrites the closed one.
func (e *Engine) Start(ctx context.Context, req StartRequest) (*Session, *Prompt, error) {
	imageRef := strings.TrimSpace(req.ImageReference)
	if imageRef == "" {
		return nil, nil, fmt.Errorf("%w: image reference required", ErrInvalidSession)
	}

	id := strings.TrimSpace(req.SessionID)
	if id == "" {
		id = uuid.Must(uuid.NewV7()).String()
	}

	release, err := e.locks.acquire(id)
	if err != nil {
		return nil, nil, err
	}
	defer release()

	version, err := e.replaceable(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	description := strings.TrimSpace(req.Description)
	if description == "" {
		if description, err = e.describe(ctx, imageRef); err != nil {
			return nil, nil, err
		}
	}

	s := &Session{
		ID:                 id,
		InitialDescription: description,
		ImageReference:     imageRef,
		Candidates:         []string{},
		History:            []Message{},
		Decision:           DecisionNone,
		Status:             StatusGenerating,
		CreatedAt:          time.Now().UTC(),
		Version:            version,
	}

	e.logger.InfoContext(
		ctx, "session started",
		"session_id", id,
		"image_reference", imageRef,
		"replaces_version", version,
	)

	e.rewrite(ctx, s, e.seed(s))

	if err := s.moveTo(StatusAwaitingHuman); err != nil {
		return nil, nil, err
	}
	if err := e.save(ctx, s); err != nil {
		return nil, nil, err
	}

	return s.Clone(), NewPrompt(s.Candidates), nil
}

// Reply resumes a suspended session with a human reply and executes exactly
// one routing transition. An unparseable reply leaves the session untouched
// and re-issues the same prompt. A publish failure returns the failed
// session together with a *PublishError.
func (e *Engine) Reply(ctx context.Context, id, raw string) (*Session, *Prompt, error) {
	id = strings.TrimSpace(id)
	release, err := e.locks.acquire(id)
	if err != nil {
		return nil, nil, err
	}
	defer release()

	s, err := e.store.Load(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	if s.Status.Terminal() {
		return s, nil, fmt.Errorf("%w: %s is %s", ErrSessionClosed, id, s.Status)
	}
	if s.Status != StatusAwaitingHuman {
		return s, nil, fmt.Errorf("%w: %s is %s, not awaiting a reply", ErrInvalidTransition, id, s.Status)
	}

	action := ParseReply(raw, len(s.Candidates))

	e.logger.InfoContext(
		ctx, "reply received",
		"session_id", id,
		"action", action.Kind,
		"candidates", len(s.Candidates),
	)

	switch action.Kind {
	case ActionSelect:
		return e.selectCandidate(ctx, s, action.Index)
	case ActionEdit:
		return e.edit(ctx, s, action.Text)
	case ActionRegenerate:
		return e.regenerate(ctx, s, action.Text)
	case ActionEnd:
		return e.end(ctx, s)
	default:
		return s, NewPrompt(s.Candidates), nil
	}
}

// Get returns the current state of a session and, when it is awaiting a
// reply, the pending prompt.
func (e *Engine) Get(ctx context.Context, id string) (*Session, *Prompt, error) {
	s, err := e.store.Load(ctx, strings.TrimSpace(id))
	if err != nil {
		return nil, nil, err
	}
	if s.Status != StatusAwaitingHuman {
		return s, nil, nil
	}
	return s, NewPrompt(s.Candidates), nil
}

// List returns the ids of all stored sessions.
func (e *Engine) List(ctx context.Context) ([]string, error) {
	return e.store.List(ctx)
}

// Delete removes a stored session.
func (e *Engine) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	release, err := e.locks.acquire(id)
	if err != nil {
		return err
	}
	defer release()

	exists, err := e.store.Exists(ctx, id)
	if err != nil {
		return fmt.Errorf("check session %s: %w", id, err)
	}
	if !exists {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	if err := e.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}

	e.logger.InfoContext(ctx, "session deleted", "session_id", id)
	return nil
}

func (e *Engine) selectCandidate(ctx context.Context, s *Session, index int) (*Session, *Prompt, error) {
	s.SelectedCaption = s.Candidates[index]
	s.Decision = DecisionSelect

	if err := s.moveTo(StatusPublishing); err != nil {
		return nil, nil, err
	}
	return e.publish(ctx, s)
}

func (e *Engine) edit(ctx context.Context, s *Session, text string) (*Session, *Prompt, error) {
	s.SelectedCaption = text
	s.Decision = DecisionEdit

	if err := s.moveTo(StatusEditing); err != nil {
		return nil, nil, err
	}

	s.History = append(s.History, NewMessage(RoleHuman, "Edited caption: "+text))

	if err := s.moveTo(StatusPublishing); err != nil {
		return nil, nil, err
	}
	return e.publish(ctx, s)
}

func (e *Engine) regenerate(ctx context.Context, s *Session, guidance string) (*Session, *Prompt, error) {
	if !s.seeded() {
		s.History = append(s.History, e.seed(s)...)
	}
	s.History = append(s.History, NewMessage(RoleHuman, e.prompts.Regenerate(guidance)))
	s.Decision = DecisionRegenerate

	if err := s.moveTo(StatusRegenerating); err != nil {
		return nil, nil, err
	}

	e.rewrite(ctx, s, nil)

	if err := s.moveTo(StatusAwaitingHuman); err != nil {
		return nil, nil, err
	}
	if err := e.save(ctx, s); err != nil {
		return nil, nil, err
	}

	return s.Clone(), NewPrompt(s.Candidates), nil
}

func (e *Engine) end(ctx context.Context, s *Session) (*Session, *Prompt, error) {
	s.Decision = DecisionEnd

	if err := s.moveTo(StatusDone); err != nil {
		return nil, nil, err
	}
	if err := e.finish(ctx, s); err != nil {
		return nil, nil, err
	}

	return s.Clone(), nil, nil
}

func (e *Engine) publish(ctx context.Context, s *Session) (*Session, *Prompt, error) {
	if s.SelectedCaption == "" {
		return nil, nil, fmt.Errorf("%w: no caption selected", ErrInvalidSession)
	}

	if err := e.publisher.Publish(ctx, s.ImageReference, s.SelectedCaption); err != nil {
		perr := &PublishError{SessionID: s.ID, Err: err}

		e.logger.ErrorContext(
			ctx, "publish failed",
			"session_id", s.ID,
			"error", err,
		)

		s.Failure = &Failure{Stage: StagePublication, Message: err.Error()}
		if mErr := s.moveTo(StatusFailed); mErr != nil {
			return nil, nil, errors.Join(perr, mErr)
		}
		if sErr := e.finish(ctx, s); sErr != nil {
			return nil, nil, errors.Join(perr, sErr)
		}
		return s.Clone(), nil, perr
	}

	if err := s.moveTo(StatusDone); err != nil {
		return nil, nil, err
	}
	s.Failure = nil
	if err := e.finish(ctx, s); err != nil {
		return nil, nil, err
	}

	e.logger.InfoContext(
		ctx, "caption published",
		"session_id", s.ID,
		"decision", s.Decision,
	)

	return s.Clone(), nil, nil
}

// rewrite runs a GENERATING or REGENERATING step. The rewriter sees the
// history followed by pending; on success both are recorded along with an
// assistant summary of the candidates. On failure the history is left as
// it was and the candidate set is emptied.
func (e *Engine) rewrite(ctx context.Context, s *Session, pending []Message) {
	conversation := append(slices.Clone(s.History), pending...)

	candidates, err := e.rewriter.Rewrite(ctx, e.prompts.System, conversation)
	if err == nil && len(candidates) == 0 {
		err = errNoCandidates
	}

	if err != nil {
		rerr := &RewriteError{Err: err}

		e.logger.WarnContext(
			ctx, "caption generation failed",
			"session_id", s.ID,
			"status", s.Status,
			"error", err,
		)

		s.Candidates = []string{}
		s.Failure = &Failure{Stage: StageGeneration, Message: rerr.Error()}
		return
	}

	s.Candidates = slices.Clone(candidates)
	s.History = append(s.History, pending...)
	s.History = append(s.History, NewMessage(RoleAssistant, summarize(candidates)))
	s.Failure = nil

	e.logger.InfoContext(
		ctx, "captions generated",
		"session_id", s.ID,
		"status", s.Status,
		"candidates", len(candidates),
	)
}

// replaceable returns the stored version a new run for id must overwrite.
// Unknown ids yield zero. A DONE or FAILED session is replaced by the new
// run; any other stored session blocks Start.
func (e *Engine) replaceable(ctx context.Context, id string) (int, error) {
	prev, err := e.store.Load(ctx, id)
	switch {
	case errors.Is(err, ErrSessionNotFound):
		return 0, nil
	case err != nil:
		return 0, fmt.Errorf("check session %s: %w", id, err)
	case !prev.Status.Terminal():
		return 0, fmt.Errorf("%w: %s is %s", ErrSessionExists, id, prev.Status)
	default:
		return prev.Version, nil
	}
}

func (e *Engine) seed(s *Session) []Message {
	return []Message{
		NewMessage(RoleSystem, e.prompts.System),
		NewMessage(RoleHuman, e.prompts.Generate(s.InitialDescription)),
	}
}

func (e *Engine) describe(ctx context.Context, imageRef string) (string, error) {
	if e.describer == nil {
		return "", fmt.Errorf("%w: no description provided and no describer configured", ErrDescribeFailed)
	}

	description, err := e.describer.Describe(ctx, imageRef)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrDescribeFailed, imageRef, err)
	}

	description = strings.TrimSpace(description)
	if description == "" {
		return "", fmt.Errorf("%w: %s: empty description", ErrDescribeFailed, imageRef)
	}
	return description, nil
}

func (e *Engine) save(ctx context.Context, s *Session) error {
	s.UpdatedAt = time.Now().UTC()
	if err := e.store.Save(ctx, s); err != nil {
		return fmt.Errorf("save session %s: %w", s.ID, err)
	}
	return nil
}

// finish persists a terminal session and hands a snapshot to the archiver.
// Archive failures are logged; the stored checkpoint remains authoritative.
func (e *Engine) finish(ctx context.Context, s *Session) error {
	if err := e.save(ctx, s); err != nil {
		return err
	}

	e.logger.InfoContext(
		ctx, "session closed",
		"session_id", s.ID,
		"status", s.Status,
		"decision", s.Decision,
	)

	if e.archiver == nil {
		return nil
	}
	if err := e.archiver.Archive(ctx, s.Clone()); err != nil {
		e.logger.WarnContext(
			ctx, "session archive failed",
			"session_id", s.ID,
			"error", err,
		)
	}
	return nil
}
