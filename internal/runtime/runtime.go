package runtime

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/sapiens-run/sapiens/internal/invocation"
	"github.com/sapiens-run/sapiens/internal/message"
	"github.com/sapiens-run/sapiens/internal/observability"
	"github.com/sapiens-run/sapiens/internal/tool"
	"github.com/sapiens-run/sapiens/internal/toolbox"
)

// tracer emits one span per Runtime.Step call, the loop's unit of work.
var tracer = otel.Tracer("github.com/sapiens-run/sapiens/internal/runtime")

// ErrNoTerminalTool is returned by New when the supplied Toolbox has no
// terminal tool registered. Fatal before the run starts.
var ErrNoTerminalTool = errors.New("runtime: toolbox has no terminal tool")

// TerminalState is produced once a terminal tool has latched a conclusion;
// it carries every termination message drained in that step.
type TerminalState struct {
	Messages []tool.TerminationMessage
}

// Runtime drives the OODA loop described in §4.F. It owns the Context
// exclusively; callers must not call Step concurrently on the same
// Runtime.
type Runtime struct {
	tb        *toolbox.Toolbox
	scheduler Scheduler
	observer  Observer
	ctx       *message.Context
	logger    *slog.Logger
}

// New constructs a Runtime seeded with the given Context. Construction
// fails with ErrNoTerminalTool if the Toolbox has no terminal tool
// registered. A nil observer installs NullObserver; a nil logger defaults
// to slog.Default().
func New(tb *toolbox.Toolbox, scheduler Scheduler, seed *message.Context, observer Observer, logger *slog.Logger) (*Runtime, error) {
	if !tb.HasTerminalTools() {
		return nil, ErrNoTerminalTool
	}
	if observer == nil {
		observer = NullObserver{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runtime{tb: tb, scheduler: scheduler, observer: observer, ctx: seed, logger: logger}, nil
}

// Context returns the Runtime's append-only message log.
func (r *Runtime) Context() *message.Context { return r.ctx }

// notify guards a single Observer call with recover, so a panicking
// observer never aborts the run.
func (r *Runtime) notify(name string, fn func()) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("observer panicked", "hook", name, "recovered", rec)
		}
	}()
	fn()
}

// Step performs one iteration of the loop: ask the scheduler for a
// message, append it, notify observers, dispatch an Action's invocation if
// present, and drain termination messages. It returns (state, true, nil)
// when the run has terminated, (TerminalState{}, false, nil) when the
// caller should step again, and a non-nil error (always fatal) otherwise.
func (r *Runtime) Step(ctx context.Context) (TerminalState, bool, error) {
	ctx, span := tracer.Start(ctx, "runtime.step")
	defer span.End()

	msg, err := r.scheduler.Schedule(ctx, r.ctx)
	if err != nil {
		observability.RecordSpanError(span, err)
		return TerminalState{}, false, err
	}
	span.SetAttributes(attribute.String("message_kind", msg.Kind().String()))
	r.ctx.Append(msg)
	r.notify("on_message", func() { r.observer.OnMessage(msg) })

	if msg.Kind() == message.KindAction {
		result := r.dispatchAction(ctx, msg)
		r.ctx.Append(result)
		r.notify("on_invocation_result", func() { r.observer.OnInvocationResult(result) })
	}

	terms := r.tb.TerminationMessages()
	if len(terms) > 0 {
		span.SetAttributes(attribute.Bool("terminated", true))
		r.notify("on_termination", func() { r.observer.OnTermination(terms) })
		return TerminalState{Messages: terms}, true, nil
	}
	return TerminalState{}, false, nil
}

// dispatchAction extracts the first invocation from an Action message,
// dispatches it through the Toolbox, and wraps the outcome into an
// ActionResult message.
func (r *Runtime) dispatchAction(ctx context.Context, action message.Message) message.Message {
	extracted, extractErr := invocation.Extract(action.Content())
	if extractErr != nil {
		outcome := message.NoInvocationsFoundOutcome(extractErr)
		if extractErr.Kind == invocation.ErrNoValidInvocationFound {
			outcome = message.NoValidInvocationsFoundOutcome(extractErr)
		}
		return message.NewActionResult(0, "", nil, outcome)
	}

	first := extracted.Invocations[0]
	result, useErr := r.tb.Invoke(ctx, first.ToolName, first.Parameters)
	input := first.Parameters
	if useErr != nil {
		return message.NewActionResult(len(extracted.Invocations), first.ToolName, &input, message.ToolUseErrorOutcome(useErr))
	}
	return message.NewActionResult(len(extracted.Invocations), first.ToolName, &input, message.SuccessOutcome(result))
}

// Run loops Step to completion, returning the TerminalState once the run
// terminates, or propagating any scheduler/agent error directly.
func (r *Runtime) Run(ctx context.Context) (TerminalState, error) {
	for {
		state, done, err := r.Step(ctx)
		if err != nil {
			return TerminalState{}, err
		}
		if done {
			return state, nil
		}
	}
}
