// Package rewriter adapts a go-agents chat agent to the workflow Rewriter
// contract. The conversation is flattened into a single prompt and the
// model's JSON response is parsed into caption candidates.
package rewriter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/JaimeStill/go-agents/pkg/agent"
	gaconfig "github.com/JaimeStill/go-agents/pkg/config"

	"github.com/JaimeStill/captioner/pkg/formatting"
	"github.com/JaimeStill/captioner/workflow"
)

// Domain errors for rewrite calls.
var (
	ErrChatFailed = errors.New("chat call failed")
	ErrNoCaptions = errors.New("response contained no captions")
)

// ChatFunc sends a single prompt to a model and returns the text response.
type ChatFunc func(ctx context.Context, prompt string) (string, error)

// FromAgent adapts a go-agents Agent to a ChatFunc.
func FromAgent(a agent.Agent) ChatFunc {
	return func(ctx context.Context, prompt string) (string, error) {
		resp, err := a.Chat(ctx, prompt)
		if err != nil {
			return "", err
		}
		return resp.Content(), nil
	}
}

type captionList struct {
	Captions []string `json:"captions"`
}

// Rewriter implements workflow.Rewriter over a chat model.
type Rewriter struct {
	chat   ChatFunc
	logger *slog.Logger
}

var _ workflow.Rewriter = (*Rewriter)(nil)

// New creates a Rewriter backed by a go-agents agent built from cfg.
func New(cfg *gaconfig.AgentConfig, logger *slog.Logger) (*Rewriter, error) {
	a, err := agent.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("create agent: %w", err)
	}
	return NewWithChat(FromAgent(a), logger), nil
}

// NewWithChat creates a Rewriter over an arbitrary chat function.
func NewWithChat(chat ChatFunc, logger *slog.Logger) *Rewriter {
	return &Rewriter{
		chat:   chat,
		logger: logger.With("system", "rewriter"),
	}
}

// Rewrite asks the model for caption candidates given the running history.
func (r *Rewriter) Rewrite(ctx context.Context, systemPrompt string, history []workflow.Message) ([]string, error) {
	prompt := composePrompt(systemPrompt, history)

	content, err := r.chat(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrChatFailed, err)
	}

	parsed, err := formatting.Parse[captionList](content)
	if err != nil {
		return nil, err
	}

	captions := normalize(parsed.Captions)
	if len(captions) == 0 {
		return nil, ErrNoCaptions
	}

	r.logger.DebugContext(
		ctx, "rewrite complete",
		"messages", len(history),
		"captions", len(captions),
	)

	return captions, nil
}

// composePrompt renders the system prompt followed by the non-system turns
// of the conversation. System-role entries in history are provenance copies
// of systemPrompt and are skipped.
func composePrompt(systemPrompt string, history []workflow.Message) string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(systemPrompt))

	turns := 0
	for _, m := range history {
		if m.Role == workflow.RoleSystem {
			continue
		}
		if turns == 0 {
			b.WriteString("\n\n## Conversation\n")
		}
		turns++
		fmt.Fprintf(&b, "\n[%s]\n%s\n", m.Role, strings.TrimSpace(m.Content))
	}

	b.WriteString("\nRespond to the latest human turn with the JSON object only.")
	return b.String()
}

// normalize trims candidates and drops blanks and exact duplicates while
// preserving model order.
func normalize(captions []string) []string {
	out := make([]string, 0, len(captions))
	for _, c := range captions {
		c = strings.TrimSpace(c)
		if c == "" || slices.Contains(out, c) {
			continue
		}
		out = append(out, c)
	}
	return out
}
