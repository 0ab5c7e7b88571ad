// Package tools provides the small set of reference tools used to exercise
// the Toolbox and Runtime end to end: a terminal tool that ends a run, and
// a plain tool used as a composition fixture for the sandbox.
package tools

import (
	"context"
	"sync"

	"github.com/sapiens-run/sapiens/internal/tool"
	"github.com/sapiens-run/sapiens/internal/value"
)

// Conclude is a terminal tool: once invoked with {original_question,
// conclusion}, it latches a TerminationMessage and echoes the conclusion
// back as its result. Safe for concurrent use; the latch is held under a
// mutex, as design notes require of terminal tools' interior mutability.
type Conclude struct {
	mu     sync.Mutex
	latched *tool.TerminationMessage
}

// NewConclude constructs an unlatched Conclude tool.
func NewConclude() *Conclude {
	return &Conclude{}
}

func (c *Conclude) Description() tool.ToolDescription {
	return tool.NewDescription("conclude", "Ends the task with a final answer.").
		WithParam("original_question", tool.TypeStr, false, "the task's original question, echoed back").
		WithParam("conclusion", tool.TypeStr, false, "the final answer to the task").
		WithResponse("conclusion", tool.TypeStr, false, "the conclusion that was recorded")
}

func (c *Conclude) Invoke(ctx context.Context, input value.Value) (value.Value, *tool.UseError) {
	q, ok := input.Get("original_question")
	qs, _ := q.Str()
	if !ok {
		return value.Value{}, tool.InvalidInput("missing required field original_question")
	}
	concl, ok := input.Get("conclusion")
	cs, _ := concl.Str()
	if !ok {
		return value.Value{}, tool.InvalidInput("missing required field conclusion")
	}

	c.mu.Lock()
	c.latched = &tool.TerminationMessage{OriginalQuestion: qs, Conclusion: cs}
	c.mu.Unlock()

	return value.Mapping(value.Pair{Key: "conclusion", Value: value.String(cs)}), nil
}

// TakeDone atomically consumes any latched termination.
func (c *Conclude) TakeDone() (tool.TerminationMessage, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.latched == nil {
		return tool.TerminationMessage{}, false
	}
	msg := *c.latched
	c.latched = nil
	return msg, true
}
