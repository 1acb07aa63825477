package workflow

import (
	"fmt"
	"slices"
	"strings"
)

const (
	reviewQuestion     = "Which caption should be published?"
	reviewInstructions = "Reply with the number of a caption to publish it, " +
		"\"edit: <text>\" to publish your own caption, or " +
		"\"regen: <guidance>\" to generate a new set."

	degradedQuestion     = "Caption generation failed. How would you like to continue?"
	degradedInstructions = "No captions are available. Reply \"end\" to close this session, " +
		"or \"regen: <guidance>\" to try generating again."
)

// Prompt is the suspension payload sent to the human channel whenever a
// session enters StatusAwaitingHuman. An empty Candidates list signals the
// degraded path.
type Prompt struct {
	Question     string   `json:"question"`
	Instructions string   `json:"instructions"`
	Candidates   []string `json:"candidates"`
}

// NewPrompt builds the suspension payload for the given candidate set.
func NewPrompt(candidates []string) *Prompt {
	if len(candidates) == 0 {
		return &Prompt{
			Question:     degradedQuestion,
			Instructions: degradedInstructions,
			Candidates:   []string{},
		}
	}
	return &Prompt{
		Question:     reviewQuestion,
		Instructions: reviewInstructions,
		Candidates:   slices.Clone(candidates),
	}
}

// String renders the prompt as numbered plain text for terminal channels.
func (p *Prompt) String() string {
	var sb strings.Builder
	sb.WriteString(p.Question)
	sb.WriteString("\n\n")
	for i, c := range p.Candidates {
		fmt.Fprintf(&sb, "  [%d] %s\n", i, c)
	}
	if len(p.Candidates) > 0 {
		sb.WriteString("\n")
	}
	sb.WriteString(p.Instructions)
	return sb.String()
}

// PromptSet supplies the rewriter instructions used by the engine.
// Generate wraps the initial description into the first human message;
// Regenerate wraps optional human guidance into a regenerate request.
type PromptSet struct {
	System     string
	Generate   func(description string) string
	Regenerate func(guidance string) string
}

func (p PromptSet) validate() error {
	if p.System == "" {
		return fmt.Errorf("system prompt required")
	}
	if p.Generate == nil {
		return fmt.Errorf("generate prompt required")
	}
	if p.Regenerate == nil {
		return fmt.Errorf("regenerate prompt required")
	}
	return nil
}

func summarize(candidates []string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Proposed %d captions:", len(candidates))
	for i, c := range candidates {
		fmt.Fprintf(&sb, "\n%d. %s", i, c)
	}
	return sb.String()
}
