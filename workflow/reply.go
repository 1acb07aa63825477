package workflow

import (
	"strconv"
	"strings"
)

// ActionKind classifies a parsed human reply.
type ActionKind string

// Reply actions.
const (
	ActionSelect     ActionKind = "select"
	ActionEdit       ActionKind = "edit"
	ActionRegenerate ActionKind = "regenerate"
	ActionEnd        ActionKind = "end"
	ActionInvalid    ActionKind = "invalid"
)

const (
	editPrefix  = "edit:"
	regenPrefix = "regen:"
	endCommand  = "end"
)

// Action is the validated result of parsing a human reply.
// Index is set for ActionSelect; Text carries the edited caption for
// ActionEdit and the optional guidance for ActionRegenerate.
type Action struct {
	Kind  ActionKind `json:"kind"`
	Index int        `json:"index,omitempty"`
	Text  string     `json:"text,omitempty"`
}

// ParseReply maps free-text input to an Action. Rules are checked in order
// and the first match wins:
//
//  1. all digits: select(index), valid only when 0 <= index < candidateCount
//  2. "edit:" prefix (any case): edit(remainder), remainder must be non-blank
//  3. "regen:" prefix (any case): regenerate(remainder), remainder may be blank
//  4. "end" (any case): end, valid only when there are no candidates
//
// Anything else is ActionInvalid. Surrounding whitespace is ignored.
func ParseReply(raw string, candidateCount int) Action {
	text := strings.TrimSpace(raw)

	if isDigits(text) {
		index, err := strconv.Atoi(text)
		if err != nil || index < 0 || index >= candidateCount {
			return invalid()
		}
		return Action{Kind: ActionSelect, Index: index}
	}

	if rest, ok := cutPrefixFold(text, editPrefix); ok {
		rest = strings.TrimSpace(rest)
		if rest == "" {
			return invalid()
		}
		return Action{Kind: ActionEdit, Text: rest}
	}

	if rest, ok := cutPrefixFold(text, regenPrefix); ok {
		return Action{Kind: ActionRegenerate, Text: strings.TrimSpace(rest)}
	}

	if strings.EqualFold(text, endCommand) && candidateCount == 0 {
		return Action{Kind: ActionEnd}
	}

	return invalid()
}

func invalid() Action {
	return Action{Kind: ActionInvalid}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func cutPrefixFold(s, prefix string) (string, bool) {
	if len(s) < len(prefix) || !strings.EqualFold(s[:len(prefix)], prefix) {
		return "", false
	}
	return s[len(prefix):], true
}
