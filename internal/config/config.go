// Package config defines the on-disk configuration surface (§6): which
// model backs the agent, how the chain is shaped, and the token budgets
// that drive chathistory pruning, plus the ambient logging knobs.
package config

import (
	"fmt"

	"github.com/sapiens-run/sapiens/internal/runtime"
)

// Config is the root configuration document, loaded from a single YAML
// file (see Load).
type Config struct {
	Version int `yaml:"version"`

	// ModelRef selects both the provider adapter and the concrete model,
	// via a "<provider>:<model>" prefix: "anthropic:claude-sonnet-4-5",
	// "openai:gpt-4.1", "bedrock:anthropic.claude-3-5-sonnet",
	// "google:gemini-2.0-flash".
	ModelRef string `yaml:"model_ref"`

	// ChainType selects the chain topology: "single_step_ooda" (one agent
	// performs Observe-Orient-Decide-Act every step) or
	// "multi_step_ooda" (four agents, one per phase, round-robin).
	ChainType string `yaml:"chain_type"`

	// MaxSteps bounds how many scheduler steps a run may take before
	// ErrMaxStepsReached is returned.
	MaxSteps int `yaml:"max_steps"`

	// MaxTokens is the maximum number of tokens the model may generate for
	// a single query.
	MaxTokens int `yaml:"max_tokens"`

	// MinTokensForCompletion reserves headroom below the model's context
	// size: ChatHistory.Purge stops trying to fit more once
	// context_size - min_tokens_for_completion would be exceeded.
	MinTokensForCompletion int `yaml:"min_tokens_for_completion"`

	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig carries the ambient logging knobs threaded into
// observability.NewLogger.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Defaults returns the configuration used for any field the loaded document
// leaves unset.
func Defaults() Config {
	return Config{
		Version:                CurrentVersion,
		ModelRef:               "anthropic:claude-sonnet-4-5",
		ChainType:              string(runtime.ChainSingleStepOODA),
		MaxSteps:               50,
		MaxTokens:              1024,
		MinTokensForCompletion: 512,
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Validate checks the document for values the rest of the system cannot
// recover from.
func (c Config) Validate() error {
	if err := ValidateVersion(c.Version); err != nil {
		return err
	}
	if c.ModelRef == "" {
		return fmt.Errorf("config: model_ref must be set")
	}
	switch runtime.ChainType(c.ChainType) {
	case runtime.ChainSingleStepOODA, runtime.ChainMultiStepOODA:
	default:
		return fmt.Errorf("config: unknown chain_type %q", c.ChainType)
	}
	if c.MaxSteps <= 0 {
		return fmt.Errorf("config: max_steps must be positive, got %d", c.MaxSteps)
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("config: max_tokens must be positive, got %d", c.MaxTokens)
	}
	if c.MinTokensForCompletion <= 0 {
		return fmt.Errorf("config: min_tokens_for_completion must be positive, got %d", c.MinTokensForCompletion)
	}
	return nil
}
