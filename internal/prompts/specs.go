package prompts

import "fmt"

const captionSpec = `Respond with a JSON object matching this exact structure:

{
  "captions": ["<caption1>", "<caption2>"]
}

Field constraints:
- captions: Exactly %d distinct captions, best first. Each caption is a
  single post body with its emojis and hashtags inline.

Behavioral constraints:
- Always respond with valid JSON, no markdown fencing
- Do not number the captions or add commentary outside the JSON object`

const describeSpec = `Respond with the description only, as plain text.`

// Spec returns the output specification for a stage. Caption stages embed
// the requested candidate count.
// Returns ErrInvalidStage if the stage is not recognized.
func Spec(stage Stage, count int) (string, error) {
	switch stage {
	case StageGenerate, StageRegenerate:
		return fmt.Sprintf(captionSpec, count), nil
	case StageDescribe:
		return describeSpec, nil
	default:
		return "", ErrInvalidStage
	}
}
