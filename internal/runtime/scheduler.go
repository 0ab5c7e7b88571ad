// Package runtime implements the Runtime/Scheduler/Chain triad (§4.F) that
// drives the OODA loop: pick an agent, append its output, invoke tools on
// actions, and detect termination.
package runtime

import (
	"context"
	"errors"

	"github.com/sapiens-run/sapiens/internal/agent"
	"github.com/sapiens-run/sapiens/internal/message"
)

// ErrMaxStepsReached is returned by Scheduler.Schedule once the step budget
// is exhausted. It is fatal for the run.
var ErrMaxStepsReached = errors.New("runtime: max steps reached")

// Scheduler picks the next Message to append to the Context, by delegating
// to one or more Agents.
type Scheduler interface {
	Schedule(ctx context.Context, c *message.Context) (message.Message, error)
}

// SingleAgentScheduler owns one agent and a decrementing remaining-steps
// counter; it returns ErrMaxStepsReached when the counter hits zero before
// scheduling.
type SingleAgentScheduler struct {
	agent     agent.Agent
	remaining int
}

// NewSingleAgentScheduler constructs a scheduler bound to one agent and a
// fixed step budget.
func NewSingleAgentScheduler(a agent.Agent, maxSteps int) *SingleAgentScheduler {
	return &SingleAgentScheduler{agent: a, remaining: maxSteps}
}

func (s *SingleAgentScheduler) Schedule(ctx context.Context, c *message.Context) (message.Message, error) {
	if s.remaining <= 0 {
		return message.Message{}, ErrMaxStepsReached
	}
	s.remaining--
	return s.agent.Act(ctx, c)
}

// MultiAgentScheduler owns an ordered list of agents and a round-robin
// cursor; each Schedule call advances the cursor modulo the list length and
// decrements the shared step counter.
type MultiAgentScheduler struct {
	agents    []agent.Agent
	cursor    int
	remaining int
}

// NewMultiAgentScheduler constructs a round-robin scheduler over the given
// agents (in order: Observer, Orienter, Decider, Actor, for the multi-step
// chain) and a shared step budget.
func NewMultiAgentScheduler(agents []agent.Agent, maxSteps int) *MultiAgentScheduler {
	return &MultiAgentScheduler{agents: agents, remaining: maxSteps}
}

func (s *MultiAgentScheduler) Schedule(ctx context.Context, c *message.Context) (message.Message, error) {
	if s.remaining <= 0 {
		return message.Message{}, ErrMaxStepsReached
	}
	s.remaining--
	a := s.agents[s.cursor]
	s.cursor = (s.cursor + 1) % len(s.agents)
	return a.Act(ctx, c)
}
