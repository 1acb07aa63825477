package workflow_test

import (
	"strconv"
	"testing"

	"github.com/JaimeStill/captioner/workflow"
)

func TestParseReplySelect(t *testing.T) {
	const count = 5

	for d := range count {
		t.Run(strconv.Itoa(d), func(t *testing.T) {
			got := workflow.ParseReply(strconv.Itoa(d), count)
			if got.Kind != workflow.ActionSelect {
				t.Fatalf("kind: got %s, want select", got.Kind)
			}
			if got.Index != d {
				t.Errorf("index: got %d, want %d", got.Index, d)
			}
		})
	}
}

func TestParseReplySelectOutOfRange(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		count int
	}{
		{"equal to count", "5", 5},
		{"above count", "42", 5},
		{"no candidates", "0", 0},
		{"overflow", "99999999999999999999999", 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := workflow.ParseReply(tt.raw, tt.count); got.Kind != workflow.ActionInvalid {
				t.Errorf("ParseReply(%q, %d) = %s, want invalid", tt.raw, tt.count, got.Kind)
			}
		})
	}
}

func TestParseReplyEdit(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"plain", "edit:Sunset vibes", "Sunset vibes"},
		{"trimmed", "edit:   Sunset vibes  ", "Sunset vibes"},
		{"upper case prefix", "EDIT: Sunset vibes", "Sunset vibes"},
		{"mixed case prefix", "Edit: Sunset vibes only 🌅", "Sunset vibes only 🌅"},
		{"digits remainder", "edit: 3", "3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := workflow.ParseReply(tt.raw, 5)
			if got.Kind != workflow.ActionEdit {
				t.Fatalf("kind: got %s, want edit", got.Kind)
			}
			if got.Text != tt.want {
				t.Errorf("text: got %q, want %q", got.Text, tt.want)
			}
		})
	}
}

func TestParseReplyEditEmpty(t *testing.T) {
	for _, raw := range []string{"edit:", "edit:   ", "EDIT:\t"} {
		if got := workflow.ParseReply(raw, 5); got.Kind != workflow.ActionInvalid {
			t.Errorf("ParseReply(%q) = %s, want invalid", raw, got.Kind)
		}
	}
}

func TestParseReplyRegenerate(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		count int
		want  string
	}{
		{"with guidance", "regen: make it funnier", 5, "make it funnier"},
		{"empty guidance", "regen:", 5, ""},
		{"blank guidance", "regen:    ", 5, ""},
		{"upper case", "REGEN: shorter", 5, "shorter"},
		{"no candidates", "regen: try again", 0, "try again"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := workflow.ParseReply(tt.raw, tt.count)
			if got.Kind != workflow.ActionRegenerate {
				t.Fatalf("kind: got %s, want regenerate", got.Kind)
			}
			if got.Text != tt.want {
				t.Errorf("text: got %q, want %q", got.Text, tt.want)
			}
		})
	}
}

func TestParseReplyEnd(t *testing.T) {
	if got := workflow.ParseReply("end", 0); got.Kind != workflow.ActionEnd {
		t.Errorf("end with no candidates: got %s, want end", got.Kind)
	}
	if got := workflow.ParseReply(" END ", 0); got.Kind != workflow.ActionEnd {
		t.Errorf("END with no candidates: got %s, want end", got.Kind)
	}
	if got := workflow.ParseReply("end", 3); got.Kind != workflow.ActionInvalid {
		t.Errorf("end with candidates: got %s, want invalid", got.Kind)
	}
}

func TestParseReplyInvalid(t *testing.T) {
	for _, raw := range []string{"", "banana", "-1", "2.5", "edit", "regen", "select 2", "１"} {
		if got := workflow.ParseReply(raw, 5); got.Kind != workflow.ActionInvalid {
			t.Errorf("ParseReply(%q) = %s, want invalid", raw, got.Kind)
		}
	}
}

func TestParseReplyOrder(t *testing.T) {
	got := workflow.ParseReply(" 2 ", 5)
	if got.Kind != workflow.ActionSelect || got.Index != 2 {
		t.Errorf("whitespace-padded digits: got %+v, want select(2)", got)
	}
}
