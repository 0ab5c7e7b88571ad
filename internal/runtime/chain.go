package runtime

import (
	"log/slog"

	"github.com/sapiens-run/sapiens/internal/agent"
	"github.com/sapiens-run/sapiens/internal/message"
	"github.com/sapiens-run/sapiens/internal/model"
	"github.com/sapiens-run/sapiens/internal/toolbox"
)

// Dump clones the Context's messages for introspection, without exposing
// the live backing slice.
func (r *Runtime) Dump() []message.Message {
	src := r.ctx.Messages()
	out := make([]message.Message, len(src))
	copy(out, src)
	return out
}

// ChainType selects which Agent combination a Chain drives.
type ChainType string

const (
	ChainSingleStepOODA ChainType = "SingleStepOODA"
	ChainMultiStepOODA  ChainType = "MultiStepOODA"
)

// NewChain is a thin wrapper that fixes the scheduler + agent combination
// named by chainType and seeds the Context with a Task message built from
// task. It returns a ready-to-run Runtime.
func NewChain(chainType ChainType, tb *toolbox.Toolbox, m model.Model, task string, maxSteps, maxInputTokens, minTokensForCompletion, maxTokens int, observer Observer, logger *slog.Logger) (*Runtime, error) {
	seed := message.NewContext(message.NewTask(task))

	var scheduler Scheduler
	switch chainType {
	case ChainSingleStepOODA:
		a := agent.NewSingleStep(tb, m, maxInputTokens, minTokensForCompletion, maxTokens)
		scheduler = NewSingleAgentScheduler(a, maxSteps)
	case ChainMultiStepOODA:
		agents := []agent.Agent{
			agent.NewObserver(tb, m, maxInputTokens, minTokensForCompletion, maxTokens),
			agent.NewOrienter(tb, m, maxInputTokens, minTokensForCompletion, maxTokens),
			agent.NewDecider(tb, m, maxInputTokens, minTokensForCompletion, maxTokens),
			agent.NewActor(tb, m, maxInputTokens, minTokensForCompletion, maxTokens),
		}
		scheduler = NewMultiAgentScheduler(agents, maxSteps)
	default:
		scheduler = NewSingleAgentScheduler(agent.NewSingleStep(tb, m, maxInputTokens, minTokensForCompletion, maxTokens), maxSteps)
	}

	rt, err := New(tb, scheduler, seed, observer, logger)
	if err != nil {
		return nil, err
	}
	rt.notify("on_task", func() { rt.observer.OnTask(seed.Messages()[0]) })
	rt.notify("on_start", func() { rt.observer.OnStart(rt.Dump()) })
	return rt, nil
}
