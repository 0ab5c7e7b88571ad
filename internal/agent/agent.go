package agent

import (
	"context"

	"github.com/sapiens-run/sapiens/internal/message"
)

// Agent is the interface the Scheduler drives once per step: snapshot the
// Context into a ChatHistory, query the Model, and return the next
// Message. Errors are always fatal for the run (wrapped as ErrAgentFailed).
type Agent interface {
	Act(ctx context.Context, c *message.Context) (message.Message, error)
}
