// Package model defines the Model client contract (§6) and the mock
// implementation used throughout the test suite, plus concrete adapters
// over four third-party provider SDKs.
package model

import (
	"context"

	"github.com/sapiens-run/sapiens/internal/chathistory"
	"github.com/sapiens-run/sapiens/internal/message"
)

// Response is returned by Query: the model's reply text and, when the
// provider reports it, token usage.
type Response struct {
	Text  string
	Usage *message.Usage
}

// Model is the external collaborator queried once per Agent turn. Errors
// bubble up as agent errors without retry at this layer; adapters may
// retry transient transport failures internally before ever returning an
// error here (see internal/retry).
type Model interface {
	// Query sends a ChatInput to the model and returns its reply. maxTokens
	// is a hint bounding the length of the reply; 0 means provider default.
	Query(ctx context.Context, in chathistory.Input, maxTokens int) (Response, error)

	// NumTokens implements chathistory.TokenCounter so that ChatHistory
	// pruning is tokenizer-accurate for this model.
	NumTokens(ctx context.Context, in chathistory.Input) (int, error)

	// ContextSize returns the model's maximum context window, in tokens.
	ContextSize() int
}
