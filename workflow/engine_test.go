package workflow_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/JaimeStill/captioner/workflow"
)

var fiveCaptions = []string{
	"Sandy paws, happy heart 🐾",
	"Beach day with my best friend 🌊",
	"Salt air and zoomies #dogsofinstagram",
	"Who let the dog out? The ocean did 🐶",
	"Living my best beach life ☀️",
}

var funnierCaptions = []string{
	"Ruff day at the beach 😂",
	"Shore thing, I'm a good boy",
	"Sea you later, tennis ball",
	"Unbe-leash-able beach vibes",
	"Pawsitively sandy",
}

type scriptedRewriter struct {
	mu        sync.Mutex
	responses [][]string
	errs      []error
	prompts   []string
	calls     [][]workflow.Message
}

func (r *scriptedRewriter) Rewrite(ctx context.Context, systemPrompt string, history []workflow.Message) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.prompts = append(r.prompts, systemPrompt)
	r.calls = append(r.calls, slices.Clone(history))
	i := len(r.calls) - 1

	if i < len(r.errs) && r.errs[i] != nil {
		return nil, r.errs[i]
	}
	if i < len(r.responses) {
		return r.responses[i], nil
	}
	return nil, errors.New("unscripted rewrite call")
}

func (r *scriptedRewriter) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

type publishCall struct {
	imageReference string
	caption        string
}

type recordingPublisher struct {
	mu    sync.Mutex
	err   error
	calls []publishCall
}

func (p *recordingPublisher) Publish(ctx context.Context, imageReference, caption string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, publishCall{imageReference, caption})
	return p.err
}

type recordingArchiver struct {
	mu       sync.Mutex
	sessions []*workflow.Session
}

func (a *recordingArchiver) Archive(ctx context.Context, s *workflow.Session) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sessions = append(a.sessions, s)
	return nil
}

type describerFunc func(ctx context.Context, imageReference string) (string, error)

func (f describerFunc) Describe(ctx context.Context, imageReference string) (string, error) {
	return f(ctx, imageReference)
}

func testPrompts() workflow.PromptSet {
	return workflow.PromptSet{
		System:     "You write captions.",
		Generate:   func(d string) string { return "Rewrite this caption: " + d },
		Regenerate: func(g string) string { return "Generate new captions: " + g },
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type harness struct {
	engine    *workflow.Engine
	store     workflow.CheckpointStore
	rewriter  *scriptedRewriter
	publisher *recordingPublisher
	archiver  *recordingArchiver
}

func newHarness(t *testing.T, rewriter *scriptedRewriter) *harness {
	t.Helper()

	h := &harness{
		store:     workflow.NewMemoryStore(),
		rewriter:  rewriter,
		publisher: &recordingPublisher{},
		archiver:  &recordingArchiver{},
	}

	engine, err := workflow.New(&workflow.Runtime{
		Store:     h.store,
		Rewriter:  h.rewriter,
		Publisher: h.publisher,
		Archiver:  h.archiver,
		Prompts:   testPrompts(),
		Logger:    discardLogger(),
	})
	if err != nil {
		t.Fatalf("workflow.New() error = %v", err)
	}
	h.engine = engine
	return h
}

func startDogOnBeach(t *testing.T, h *harness) (*workflow.Session, *workflow.Prompt) {
	t.Helper()
	s, p, err := h.engine.Start(context.Background(), workflow.StartRequest{
		SessionID:      "local",
		Description:    "a dog on a beach",
		ImageReference: "img1",
	})
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	return s, p
}

func TestNewValidatesRuntime(t *testing.T) {
	_, err := workflow.New(&workflow.Runtime{
		Store:   workflow.NewMemoryStore(),
		Prompts: testPrompts(),
		Logger:  discardLogger(),
	})
	if err == nil {
		t.Fatal("expected error for runtime without rewriter and publisher")
	}
}

func TestSelectAndPublish(t *testing.T) {
	h := newHarness(t, &scriptedRewriter{responses: [][]string{fiveCaptions}})

	s, p := startDogOnBeach(t, h)

	if s.Status != workflow.StatusAwaitingHuman {
		t.Fatalf("status after start: got %s, want AWAITING_HUMAN", s.Status)
	}
	if len(p.Candidates) != 5 {
		t.Fatalf("prompt candidates: got %d, want 5", len(p.Candidates))
	}
	if h.rewriter.prompts[0] != "You write captions." {
		t.Errorf("system prompt: got %q", h.rewriter.prompts[0])
	}

	s, p, err := h.engine.Reply(context.Background(), "local", "2")
	if err != nil {
		t.Fatalf("Reply() error = %v", err)
	}

	if s.SelectedCaption != fiveCaptions[2] {
		t.Errorf("selected caption: got %q, want %q", s.SelectedCaption, fiveCaptions[2])
	}
	if s.Decision != workflow.DecisionSelect {
		t.Errorf("decision: got %s, want select", s.Decision)
	}
	if s.Status != workflow.StatusDone {
		t.Errorf("status: got %s, want DONE", s.Status)
	}
	if p != nil {
		t.Error("terminal reply should not return a prompt")
	}

	if len(h.publisher.calls) != 1 {
		t.Fatalf("publish calls: got %d, want 1", len(h.publisher.calls))
	}
	call := h.publisher.calls[0]
	if call.imageReference != "img1" || call.caption != fiveCaptions[2] {
		t.Errorf("publish call: got %+v", call)
	}

	stored, err := h.store.Load(context.Background(), "local")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if stored.Status != workflow.StatusDone {
		t.Errorf("stored status: got %s, want DONE", stored.Status)
	}
	if len(h.archiver.sessions) != 1 {
		t.Errorf("archived sessions: got %d, want 1", len(h.archiver.sessions))
	}
}

func TestGenerationHistory(t *testing.T) {
	h := newHarness(t, &scriptedRewriter{responses: [][]string{fiveCaptions}})

	s, _ := startDogOnBeach(t, h)

	if len(s.History) != 3 {
		t.Fatalf("history length: got %d, want 3", len(s.History))
	}

	wantRoles := []workflow.Role{workflow.RoleSystem, workflow.RoleHuman, workflow.RoleAssistant}
	for i, role := range wantRoles {
		if s.History[i].Role != role {
			t.Errorf("history[%d] role: got %s, want %s", i, s.History[i].Role, role)
		}
	}
	if !strings.Contains(s.History[1].Content, "a dog on a beach") {
		t.Errorf("user prompt missing description: %q", s.History[1].Content)
	}
	for _, c := range fiveCaptions {
		if !strings.Contains(s.History[2].Content, c) {
			t.Errorf("assistant summary missing candidate %q", c)
		}
	}

	if len(h.rewriter.calls[0]) != 2 {
		t.Errorf("rewriter saw %d messages, want 2", len(h.rewriter.calls[0]))
	}
}

func TestGenerationFailureThenEnd(t *testing.T) {
	h := newHarness(t, &scriptedRewriter{errs: []error{errors.New("model unavailable")}})

	s, p := startDogOnBeach(t, h)

	if s.Status != workflow.StatusAwaitingHuman {
		t.Fatalf("status: got %s, want AWAITING_HUMAN", s.Status)
	}
	if p.Candidates == nil || len(p.Candidates) != 0 {
		t.Fatalf("degraded prompt candidates: got %#v, want empty list", p.Candidates)
	}
	if len(s.History) != 0 {
		t.Errorf("history should be untouched on failure, got %d messages", len(s.History))
	}
	if s.Failure == nil || s.Failure.Stage != workflow.StageGeneration {
		t.Errorf("failure: got %+v, want generation stage", s.Failure)
	}
	if !s.Degraded() {
		t.Error("Degraded() = false for empty candidate session")
	}

	s, p, err := h.engine.Reply(context.Background(), "local", "end")
	if err != nil {
		t.Fatalf("Reply(end) error = %v", err)
	}

	if s.Status != workflow.StatusDone {
		t.Errorf("status: got %s, want DONE", s.Status)
	}
	if s.Decision != workflow.DecisionEnd {
		t.Errorf("decision: got %s, want end", s.Decision)
	}
	if s.SelectedCaption != "" {
		t.Errorf("selected caption: got %q, want empty", s.SelectedCaption)
	}
	if p != nil {
		t.Error("ended session should not return a prompt")
	}
	if len(h.publisher.calls) != 0 {
		t.Errorf("publisher called %d times on end path", len(h.publisher.calls))
	}
}

func TestEmptyCandidatesTreatedAsFailure(t *testing.T) {
	h := newHarness(t, &scriptedRewriter{responses: [][]string{{}}})

	s, p := startDogOnBeach(t, h)

	if len(p.Candidates) != 0 {
		t.Errorf("prompt candidates: got %d, want 0", len(p.Candidates))
	}
	if s.Failure == nil {
		t.Error("expected generation failure to be recorded")
	}
}

func TestRegenerate(t *testing.T) {
	h := newHarness(t, &scriptedRewriter{responses: [][]string{fiveCaptions, funnierCaptions}})

	before, _ := startDogOnBeach(t, h)

	s, p, err := h.engine.Reply(context.Background(), "local", "regen: make it funnier")
	if err != nil {
		t.Fatalf("Reply() error = %v", err)
	}

	if h.rewriter.callCount() != 2 {
		t.Fatalf("rewriter calls: got %d, want 2", h.rewriter.callCount())
	}

	second := h.rewriter.calls[1]
	last := second[len(second)-1]
	if last.Role != workflow.RoleHuman || !strings.Contains(last.Content, "make it funnier") {
		t.Errorf("regenerate request not last in history: %+v", last)
	}
	if len(second) != len(before.History)+1 {
		t.Errorf("rewriter history: got %d messages, want %d", len(second), len(before.History)+1)
	}

	if s.Status != workflow.StatusAwaitingHuman {
		t.Errorf("status: got %s, want AWAITING_HUMAN", s.Status)
	}
	if s.Decision != workflow.DecisionRegenerate {
		t.Errorf("decision: got %s, want regenerate", s.Decision)
	}
	if !slices.Equal(s.Candidates, funnierCaptions) {
		t.Errorf("candidates not replaced: got %v", s.Candidates)
	}
	if !slices.Equal(p.Candidates, funnierCaptions) {
		t.Errorf("prompt candidates: got %v", p.Candidates)
	}

	if len(s.History) <= len(before.History) {
		t.Fatalf("history did not grow: before %d, after %d", len(before.History), len(s.History))
	}
	for i, msg := range before.History {
		if s.History[i] != msg {
			t.Errorf("history[%d] changed: got %+v, want %+v", i, s.History[i], msg)
		}
	}
}

func TestRegenerateFailureKeepsRequest(t *testing.T) {
	h := newHarness(t, &scriptedRewriter{
		responses: [][]string{fiveCaptions},
		errs:      []error{nil, errors.New("rate limited")},
	})

	before, _ := startDogOnBeach(t, h)

	s, p, err := h.engine.Reply(context.Background(), "local", "regen:")
	if err != nil {
		t.Fatalf("Reply() error = %v", err)
	}

	if len(p.Candidates) != 0 {
		t.Errorf("candidates after failed regenerate: got %d, want 0", len(p.Candidates))
	}
	if len(s.History) != len(before.History)+1 {
		t.Errorf("history: got %d messages, want %d", len(s.History), len(before.History)+1)
	}
	if s.Status != workflow.StatusAwaitingHuman {
		t.Errorf("status: got %s, want AWAITING_HUMAN", s.Status)
	}
}

func TestRegenerateAfterFailedGeneration(t *testing.T) {
	h := newHarness(t, &scriptedRewriter{
		responses: [][]string{nil, fiveCaptions},
		errs:      []error{errors.New("timeout")},
	})

	startDogOnBeach(t, h)

	s, _, err := h.engine.Reply(context.Background(), "local", "regen: try again")
	if err != nil {
		t.Fatalf("Reply() error = %v", err)
	}

	history := h.rewriter.calls[1]
	if len(history) != 3 {
		t.Fatalf("rewriter history: got %d messages, want 3", len(history))
	}
	if history[0].Role != workflow.RoleSystem {
		t.Errorf("history[0] role: got %s, want system", history[0].Role)
	}
	if !strings.Contains(history[1].Content, "a dog on a beach") {
		t.Errorf("history[1] should carry the description: %q", history[1].Content)
	}
	if !slices.Equal(s.Candidates, fiveCaptions) {
		t.Errorf("candidates: got %v", s.Candidates)
	}
	if s.Failure != nil {
		t.Errorf("failure should clear after success, got %+v", s.Failure)
	}
}

func TestEditAndPublish(t *testing.T) {
	h := newHarness(t, &scriptedRewriter{responses: [][]string{fiveCaptions}})

	startDogOnBeach(t, h)

	s, _, err := h.engine.Reply(context.Background(), "local", "edit: Sunset vibes only 🌅")
	if err != nil {
		t.Fatalf("Reply() error = %v", err)
	}

	if s.SelectedCaption != "Sunset vibes only 🌅" {
		t.Errorf("selected caption: got %q", s.SelectedCaption)
	}
	if s.Decision != workflow.DecisionEdit {
		t.Errorf("decision: got %s, want edit", s.Decision)
	}
	if s.Status != workflow.StatusDone {
		t.Errorf("status: got %s, want DONE", s.Status)
	}

	if len(h.publisher.calls) != 1 {
		t.Fatalf("publish calls: got %d, want 1", len(h.publisher.calls))
	}
	if got := h.publisher.calls[0].caption; got != "Sunset vibes only 🌅" {
		t.Errorf("published caption: got %q", got)
	}

	last := s.History[len(s.History)-1]
	if last.Role != workflow.RoleHuman || !strings.Contains(last.Content, "Sunset vibes only 🌅") {
		t.Errorf("edit provenance missing from history: %+v", last)
	}
}

func TestInvalidReplyIsIdempotent(t *testing.T) {
	h := newHarness(t, &scriptedRewriter{responses: [][]string{fiveCaptions}})

	_, firstPrompt := startDogOnBeach(t, h)
	before, err := h.store.Load(context.Background(), "local")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	for _, reply := range []string{"banana", "7", "edit:", "end"} {
		s, p, err := h.engine.Reply(context.Background(), "local", reply)
		if err != nil {
			t.Fatalf("Reply(%q) error = %v", reply, err)
		}
		if s.Status != workflow.StatusAwaitingHuman {
			t.Errorf("Reply(%q) status: got %s", reply, s.Status)
		}
		if p.Question != firstPrompt.Question || !slices.Equal(p.Candidates, firstPrompt.Candidates) {
			t.Errorf("Reply(%q) re-issued a different prompt: %+v", reply, p)
		}
	}

	after, err := h.store.Load(context.Background(), "local")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if !slices.Equal(after.Candidates, before.Candidates) {
		t.Error("candidates mutated by invalid reply")
	}
	if !slices.Equal(after.History, before.History) {
		t.Error("history mutated by invalid reply")
	}
	if after.SelectedCaption != before.SelectedCaption {
		t.Error("selected caption mutated by invalid reply")
	}
	if after.Version != before.Version {
		t.Errorf("invalid reply saved the session: version %d → %d", before.Version, after.Version)
	}
	if h.rewriter.callCount() != 1 || len(h.publisher.calls) != 0 {
		t.Error("invalid reply invoked an adapter")
	}
}

func TestPublishFailure(t *testing.T) {
	h := newHarness(t, &scriptedRewriter{responses: [][]string{fiveCaptions}})
	h.publisher.err = errors.New("login expired")

	startDogOnBeach(t, h)

	s, p, err := h.engine.Reply(context.Background(), "local", "0")
	if err == nil {
		t.Fatal("expected publish error")
	}

	var perr *workflow.PublishError
	if !errors.As(err, &perr) {
		t.Fatalf("error type: got %T, want *PublishError", err)
	}
	if !errors.Is(err, workflow.ErrPublishFailed) {
		t.Error("error should match ErrPublishFailed")
	}
	if perr.SessionID != "local" {
		t.Errorf("publish error session: got %q", perr.SessionID)
	}

	if s == nil || s.Status != workflow.StatusFailed {
		t.Fatalf("session: got %+v, want FAILED", s)
	}
	if s.Failure == nil || s.Failure.Stage != workflow.StagePublication {
		t.Errorf("failure: got %+v, want publication stage", s.Failure)
	}
	if p != nil {
		t.Error("failed session should not return a prompt")
	}

	if _, _, err := h.engine.Reply(context.Background(), "local", "1"); !errors.Is(err, workflow.ErrSessionClosed) {
		t.Errorf("reply to failed session: got %v, want ErrSessionClosed", err)
	}
	if len(h.publisher.calls) != 1 {
		t.Errorf("publish retried: got %d calls, want 1", len(h.publisher.calls))
	}
}

func TestReplyUnknownSession(t *testing.T) {
	h := newHarness(t, &scriptedRewriter{})

	_, _, err := h.engine.Reply(context.Background(), "missing", "1")
	if !errors.Is(err, workflow.ErrSessionNotFound) {
		t.Errorf("Reply() error = %v, want ErrSessionNotFound", err)
	}

	exists, _ := h.store.Exists(context.Background(), "missing")
	if exists {
		t.Error("Reply created a session for an unknown id")
	}
}

func TestStartDuplicateSession(t *testing.T) {
	h := newHarness(t, &scriptedRewriter{responses: [][]string{fiveCaptions, fiveCaptions}})

	startDogOnBeach(t, h)

	_, _, err := h.engine.Start(context.Background(), workflow.StartRequest{
		SessionID:      "local",
		Description:    "a cat",
		ImageReference: "img2",
	})
	if !errors.Is(err, workflow.ErrSessionExists) {
		t.Errorf("Start() error = %v, want ErrSessionExists", err)
	}
}

func TestStartReplacesClosedSession(t *testing.T) {
	h := newHarness(t, &scriptedRewriter{responses: [][]string{fiveCaptions, funnierCaptions}})
	ctx := context.Background()

	startDogOnBeach(t, h)
	closed, _, err := h.engine.Reply(ctx, "local", "0")
	if err != nil {
		t.Fatalf("Reply() error = %v", err)
	}
	if closed.Status != workflow.StatusDone {
		t.Fatalf("status: got %s, want DONE", closed.Status)
	}

	s, p, err := h.engine.Start(ctx, workflow.StartRequest{
		SessionID:      "local",
		Description:    "a cat on a couch",
		ImageReference: "img2",
	})
	if err != nil {
		t.Fatalf("Start() over closed session error = %v", err)
	}
	if s.Status != workflow.StatusAwaitingHuman || s.ImageReference != "img2" {
		t.Errorf("replacement session: %+v", s)
	}
	if s.SelectedCaption != "" || s.Decision != workflow.DecisionNone {
		t.Errorf("replacement kept the closed run's outcome: %q %s", s.SelectedCaption, s.Decision)
	}
	if s.Version != closed.Version+1 {
		t.Errorf("version: got %d, want %d", s.Version, closed.Version+1)
	}
	if p == nil || !slices.Equal(p.Candidates, funnierCaptions) {
		t.Errorf("prompt: %+v", p)
	}

	stored, _, err := h.engine.Get(ctx, "local")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if stored.InitialDescription != "a cat on a couch" {
		t.Errorf("stored description: got %q", stored.InitialDescription)
	}
}

func TestSessionIDsAreTrimmed(t *testing.T) {
	h := newHarness(t, &scriptedRewriter{responses: [][]string{fiveCaptions}})
	ctx := context.Background()

	_, _, err := h.engine.Start(ctx, workflow.StartRequest{
		SessionID:      " local ",
		Description:    "a dog on a beach",
		ImageReference: "img1",
	})
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	s, p, err := h.engine.Get(ctx, "local\t")
	if err != nil || s.ID != "local" || p == nil {
		t.Fatalf("Get() with padded id: %v, %v", s, err)
	}

	s, _, err = h.engine.Reply(ctx, " local", "banana")
	if err != nil || s.ID != "local" {
		t.Fatalf("Reply() with padded id: %v, %v", s, err)
	}

	if err := h.engine.Delete(ctx, "local "); err != nil {
		t.Fatalf("Delete() with padded id error = %v", err)
	}
	if exists, _ := h.store.Exists(ctx, "local"); exists {
		t.Error("Delete() with padded id left the session stored")
	}
}

func TestStartAssignsID(t *testing.T) {
	h := newHarness(t, &scriptedRewriter{responses: [][]string{fiveCaptions}})

	s, _, err := h.engine.Start(context.Background(), workflow.StartRequest{
		Description:    "a dog on a beach",
		ImageReference: "img1",
	})
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if s.ID == "" {
		t.Error("Start() did not assign a session id")
	}
}

func TestStartRequiresImageReference(t *testing.T) {
	h := newHarness(t, &scriptedRewriter{})

	_, _, err := h.engine.Start(context.Background(), workflow.StartRequest{Description: "a dog"})
	if !errors.Is(err, workflow.ErrInvalidSession) {
		t.Errorf("Start() error = %v, want ErrInvalidSession", err)
	}
}

func TestStartDescribesImage(t *testing.T) {
	rewriter := &scriptedRewriter{responses: [][]string{fiveCaptions}}

	engine, err := workflow.New(&workflow.Runtime{
		Store:     workflow.NewMemoryStore(),
		Rewriter:  rewriter,
		Publisher: &recordingPublisher{},
		Describer: describerFunc(func(ctx context.Context, ref string) (string, error) {
			return "  a dog running along the shoreline  ", nil
		}),
		Prompts: testPrompts(),
		Logger:  discardLogger(),
	})
	if err != nil {
		t.Fatalf("workflow.New() error = %v", err)
	}

	s, _, err := engine.Start(context.Background(), workflow.StartRequest{ImageReference: "images/dog.png"})
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if s.InitialDescription != "a dog running along the shoreline" {
		t.Errorf("description: got %q", s.InitialDescription)
	}
}

func TestStartWithoutDescriber(t *testing.T) {
	h := newHarness(t, &scriptedRewriter{})

	_, _, err := h.engine.Start(context.Background(), workflow.StartRequest{ImageReference: "img1"})
	if !errors.Is(err, workflow.ErrDescribeFailed) {
		t.Errorf("Start() error = %v, want ErrDescribeFailed", err)
	}

	exists, _ := h.store.Exists(context.Background(), "")
	if exists {
		t.Error("failed describe persisted a session")
	}
}

func TestConcurrentReplyRejected(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})

	blocking := workflow.RewriterFunc(func(ctx context.Context, sp string, h []workflow.Message) ([]string, error) {
		close(entered)
		<-release
		return fiveCaptions, nil
	})

	engine, err := workflow.New(&workflow.Runtime{
		Store:     workflow.NewMemoryStore(),
		Rewriter:  blocking,
		Publisher: &recordingPublisher{},
		Prompts:   testPrompts(),
		Logger:    discardLogger(),
	})
	if err != nil {
		t.Fatalf("workflow.New() error = %v", err)
	}

	done := make(chan error, 1)
	go func() {
		_, _, err := engine.Start(context.Background(), workflow.StartRequest{
			SessionID:      "local",
			Description:    "a dog on a beach",
			ImageReference: "img1",
		})
		done <- err
	}()

	<-entered

	if _, _, err := engine.Reply(context.Background(), "local", "1"); !errors.Is(err, workflow.ErrSessionBusy) {
		t.Errorf("concurrent Reply() error = %v, want ErrSessionBusy", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	if _, _, err := engine.Reply(context.Background(), "local", "banana"); err != nil {
		t.Errorf("Reply() after lock release error = %v", err)
	}
}

func TestGetAndDelete(t *testing.T) {
	h := newHarness(t, &scriptedRewriter{responses: [][]string{fiveCaptions}})
	ctx := context.Background()

	startDogOnBeach(t, h)

	s, p, err := h.engine.Get(ctx, "local")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if s.Status != workflow.StatusAwaitingHuman || p == nil {
		t.Errorf("Get(): status %s, prompt %v", s.Status, p)
	}

	ids, err := h.engine.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if !slices.Equal(ids, []string{"local"}) {
		t.Errorf("List() = %v", ids)
	}

	if err := h.engine.Delete(ctx, "local"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, _, err := h.engine.Get(ctx, "local"); !errors.Is(err, workflow.ErrSessionNotFound) {
		t.Errorf("Get() after delete error = %v, want ErrSessionNotFound", err)
	}
	if err := h.engine.Delete(ctx, "local"); !errors.Is(err, workflow.ErrSessionNotFound) {
		t.Errorf("second Delete() error = %v, want ErrSessionNotFound", err)
	}
}

func TestRewriteErrorUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := &workflow.RewriteError{Err: cause}

	if !errors.Is(err, workflow.ErrRewriteFailed) {
		t.Error("RewriteError should match ErrRewriteFailed")
	}
	if !errors.Is(err, cause) {
		t.Error("RewriteError should match its cause")
	}
}
