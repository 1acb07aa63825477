package config

import (
	"fmt"
	"os"
	"slices"
	"strconv"

	"github.com/JaimeStill/captioner/internal/prompts"
)

const (
	EnvWorkflowSystemPrompt   = "CAPTION_WORKFLOW_SYSTEM_PROMPT"
	EnvWorkflowCandidateCount = "CAPTION_WORKFLOW_CANDIDATE_COUNT"
	EnvWorkflowCheckpoint     = "CAPTION_WORKFLOW_CHECKPOINT"
	EnvWorkflowSQLitePath     = "CAPTION_WORKFLOW_SQLITE_PATH"
	EnvWorkflowArchive        = "CAPTION_WORKFLOW_ARCHIVE"
	EnvWorkflowArchivePrefix  = "CAPTION_WORKFLOW_ARCHIVE_PREFIX"
)

// Checkpoint backends.
const (
	CheckpointMemory   = "memory"
	CheckpointPostgres = "postgres"
	CheckpointSQLite   = "sqlite"
)

var checkpoints = []string{CheckpointMemory, CheckpointPostgres, CheckpointSQLite}

// WorkflowConfig holds prompt, candidate, and persistence settings for the
// caption review workflow.
//
// SystemPrompt replaces the default generate instructions. Prompts may
// override any stage by name; SystemPrompt wins for the generate stage.
type WorkflowConfig struct {
	SystemPrompt   string            `toml:"system_prompt"`
	Prompts        map[string]string `toml:"prompts"`
	CandidateCount int               `toml:"candidate_count"`
	Checkpoint     string            `toml:"checkpoint"`
	SQLitePath     string            `toml:"sqlite_path"`
	Archive        bool              `toml:"archive"`
	ArchivePrefix  string            `toml:"archive_prefix"`
}

// PromptOptions converts the prompt settings into prompts.Options.
func (c *WorkflowConfig) PromptOptions() prompts.Options {
	overrides := make(map[prompts.Stage]string, len(c.Prompts)+1)
	for name, text := range c.Prompts {
		overrides[prompts.Stage(name)] = text
	}
	if c.SystemPrompt != "" {
		overrides[prompts.StageGenerate] = c.SystemPrompt
	}
	return prompts.Options{
		Count:     c.CandidateCount,
		Overrides: overrides,
	}
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *WorkflowConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay. Prompt overrides merge by
// stage name.
func (c *WorkflowConfig) Merge(overlay *WorkflowConfig) {
	if overlay.SystemPrompt != "" {
		c.SystemPrompt = overlay.SystemPrompt
	}
	if len(overlay.Prompts) > 0 {
		if c.Prompts == nil {
			c.Prompts = make(map[string]string, len(overlay.Prompts))
		}
		for name, text := range overlay.Prompts {
			c.Prompts[name] = text
		}
	}
	if overlay.CandidateCount != 0 {
		c.CandidateCount = overlay.CandidateCount
	}
	if overlay.Checkpoint != "" {
		c.Checkpoint = overlay.Checkpoint
	}
	if overlay.SQLitePath != "" {
		c.SQLitePath = overlay.SQLitePath
	}
	if overlay.Archive {
		c.Archive = true
	}
	if overlay.ArchivePrefix != "" {
		c.ArchivePrefix = overlay.ArchivePrefix
	}
}

func (c *WorkflowConfig) loadDefaults() {
	if c.CandidateCount == 0 {
		c.CandidateCount = prompts.DefaultCount
	}
	if c.Checkpoint == "" {
		c.Checkpoint = CheckpointMemory
	}
	if c.SQLitePath == "" {
		c.SQLitePath = "captioner.db"
	}
	if c.ArchivePrefix == "" {
		c.ArchivePrefix = "sessions"
	}
}

func (c *WorkflowConfig) loadEnv() {
	if v := os.Getenv(EnvWorkflowSystemPrompt); v != "" {
		c.SystemPrompt = v
	}
	if v := os.Getenv(EnvWorkflowCandidateCount); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.CandidateCount = n
		}
	}
	if v := os.Getenv(EnvWorkflowCheckpoint); v != "" {
		c.Checkpoint = v
	}
	if v := os.Getenv(EnvWorkflowSQLitePath); v != "" {
		c.SQLitePath = v
	}
	if v := os.Getenv(EnvWorkflowArchive); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Archive = b
		}
	}
	if v := os.Getenv(EnvWorkflowArchivePrefix); v != "" {
		c.ArchivePrefix = v
	}
}

func (c *WorkflowConfig) validate() error {
	if !slices.Contains(checkpoints, c.Checkpoint) {
		return fmt.Errorf("invalid checkpoint %q: must be memory, postgres, or sqlite", c.Checkpoint)
	}
	if _, err := prompts.Build(c.PromptOptions()); err != nil {
		return fmt.Errorf("prompts: %w", err)
	}
	return nil
}
