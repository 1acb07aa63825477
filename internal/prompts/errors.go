package prompts

import "errors"

// Domain errors for prompt construction.
var (
	ErrInvalidStage = errors.New("stage must be generate, regenerate, or describe")
	ErrInvalidCount = errors.New("candidate count must be between 1 and 10")
)
