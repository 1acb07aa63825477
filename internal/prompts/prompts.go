// Package prompts holds the default caption and description prompts and
// composes them, with optional per-stage overrides, into the prompt set the
// workflow engine runs with.
package prompts

import (
	"fmt"
	"strings"

	"github.com/JaimeStill/captioner/workflow"
)

// DefaultCount is the number of candidates requested per model call.
const DefaultCount = 5

const maxCount = 10

// Options selects the candidate count and any instruction overrides.
// An override replaces the default instructions for its stage; the output
// specification is always appended.
type Options struct {
	Count     int
	Overrides map[Stage]string
}

func (o Options) resolve(stage Stage) (string, error) {
	if text := strings.TrimSpace(o.Overrides[stage]); text != "" {
		return text, nil
	}
	return Instructions(stage)
}

func (o Options) validate() error {
	if o.Count < 1 || o.Count > maxCount {
		return fmt.Errorf("%w: %d", ErrInvalidCount, o.Count)
	}
	for stage := range o.Overrides {
		if _, err := ParseStage(string(stage)); err != nil {
			return fmt.Errorf("override %q: %w", stage, err)
		}
	}
	return nil
}

// Compose joins instructions and a specification into a single prompt.
func Compose(instructions, spec string) string {
	return strings.TrimSpace(instructions) + "\n\n" + strings.TrimSpace(spec)
}

// Build assembles the workflow prompt set. The system message carries the
// generate instructions and the caption specification; the regenerate
// instructions travel inside each regenerate request.
func Build(opts Options) (workflow.PromptSet, error) {
	if err := opts.validate(); err != nil {
		return workflow.PromptSet{}, err
	}

	generate, err := opts.resolve(StageGenerate)
	if err != nil {
		return workflow.PromptSet{}, err
	}
	regenerate, err := opts.resolve(StageRegenerate)
	if err != nil {
		return workflow.PromptSet{}, err
	}
	spec, err := Spec(StageGenerate, opts.Count)
	if err != nil {
		return workflow.PromptSet{}, err
	}

	count := opts.Count

	return workflow.PromptSet{
		System: Compose(generate, spec),
		Generate: func(description string) string {
			return fmt.Sprintf(
				"Rewrite this image description as %d Instagram captions. Keep them fun, casual, and human.\n\n%s",
				count, description,
			)
		},
		Regenerate: func(guidance string) string {
			var b strings.Builder
			b.WriteString(regenerate)
			fmt.Fprintf(&b, "\n\nGenerate %d new captions.", count)
			if guidance = strings.TrimSpace(guidance); guidance != "" {
				fmt.Fprintf(&b, " Reviewer request: %s", guidance)
			}
			return b.String()
		},
	}, nil
}

// Describe returns the vision prompt used to describe an image when the
// caller supplies no description.
func Describe(opts Options) (string, error) {
	instructions, err := opts.resolve(StageDescribe)
	if err != nil {
		return "", err
	}
	spec, err := Spec(StageDescribe, opts.Count)
	if err != nil {
		return "", err
	}
	return Compose(instructions, spec), nil
}
