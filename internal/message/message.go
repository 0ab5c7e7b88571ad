// Package message defines the Message tagged union exchanged between
// Agents and the Runtime, the append-only Context that accumulates them,
// and the Outcome type carried by ActionResult.
package message

import (
	"github.com/sapiens-run/sapiens/internal/invocation"
	"github.com/sapiens-run/sapiens/internal/tool"
	"github.com/sapiens-run/sapiens/internal/value"
)

// Usage carries token-count accounting for a single model query.
type Usage struct {
	Prompt     int
	Completion int
	Total      int
}

// Kind tags which variant a Message holds. Every consumer should switch
// exhaustively over Kind; adding a phase is a breaking change to this
// package, not an extension point (see design notes).
type Kind int

const (
	KindTask Kind = iota
	KindObservation
	KindOrientation
	KindDecision
	KindAction
	KindActionResult
)

func (k Kind) String() string {
	switch k {
	case KindTask:
		return "Task"
	case KindObservation:
		return "Observation"
	case KindOrientation:
		return "Orientation"
	case KindDecision:
		return "Decision"
	case KindAction:
		return "Action"
	case KindActionResult:
		return "ActionResult"
	default:
		return "Unknown"
	}
}

// OutcomeKind tags which variant an Outcome holds.
type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota
	OutcomeNoValidInvocationsFound
	OutcomeNoInvocationsFound
	OutcomeToolUseError
)

// Outcome is the result of dispatching (or failing to extract) an
// invocation, carried by an ActionResult message.
type Outcome struct {
	Kind            OutcomeKind
	Result          value.Value     // valid when Kind == OutcomeSuccess
	ExtractionError *invocation.Error // valid when Kind is one of the NoInvocation* variants
	ToolError       *tool.UseError    // valid when Kind == OutcomeToolUseError
}

// SuccessOutcome wraps a successful tool result.
func SuccessOutcome(result value.Value) Outcome {
	return Outcome{Kind: OutcomeSuccess, Result: result}
}

// NoValidInvocationsFoundOutcome wraps an extraction failure where blocks
// were present but none parsed.
func NoValidInvocationsFoundOutcome(e *invocation.Error) Outcome {
	return Outcome{Kind: OutcomeNoValidInvocationsFound, ExtractionError: e}
}

// NoInvocationsFoundOutcome wraps an extraction failure where no block (or
// no parseable invocation anywhere) was found.
func NoInvocationsFoundOutcome(e *invocation.Error) Outcome {
	return Outcome{Kind: OutcomeNoInvocationsFound, ExtractionError: e}
}

// ToolUseErrorOutcome wraps a tool dispatch failure.
func ToolUseErrorOutcome(e *tool.UseError) Outcome {
	return Outcome{Kind: OutcomeToolUseError, ToolError: e}
}

// Message is the closed sum type exchanged between Agents, the Runtime, and
// the Context. Use Kind() to discriminate, then the typed accessor for that
// kind.
type Message struct {
	kind Kind

	// Task
	task string

	// Observation / Orientation / Decision / Action
	content string
	usage   *Usage

	// ActionResult
	invocationCount int
	toolName        string
	extractedInput  *value.Value
	outcome         Outcome
}

// NewTask constructs a Task message. Task is singular and immutable once
// appended to a Context; callers should append at most one per run.
func NewTask(task string) Message {
	return Message{kind: KindTask, task: task}
}

func NewObservation(content string, usage *Usage) Message {
	return Message{kind: KindObservation, content: content, usage: usage}
}

func NewOrientation(content string, usage *Usage) Message {
	return Message{kind: KindOrientation, content: content, usage: usage}
}

func NewDecision(content string, usage *Usage) Message {
	return Message{kind: KindDecision, content: content, usage: usage}
}

func NewAction(content string, usage *Usage) Message {
	return Message{kind: KindAction, content: content, usage: usage}
}

// NewActionResult constructs an ActionResult message. toolName and
// extractedInput are nil/empty when the outcome is an extraction failure
// (no invocation was ever resolved to a tool).
func NewActionResult(invocationCount int, toolName string, extractedInput *value.Value, outcome Outcome) Message {
	return Message{
		kind:            KindActionResult,
		invocationCount: invocationCount,
		toolName:        toolName,
		extractedInput:  extractedInput,
		outcome:         outcome,
	}
}

func (m Message) Kind() Kind { return m.kind }

// Task returns the task text; valid only when Kind() == KindTask.
func (m Message) Task() string { return m.task }

// Content returns the free-form text; valid for Observation, Orientation,
// Decision, and Action.
func (m Message) Content() string { return m.content }

// Usage returns the token usage, if recorded, for Observation/Orientation/
// Decision/Action messages.
func (m Message) Usage() *Usage { return m.usage }

// InvocationCount, ToolName, ExtractedInput, Outcome are valid only when
// Kind() == KindActionResult.
func (m Message) InvocationCount() int            { return m.invocationCount }
func (m Message) ToolName() string                { return m.toolName }
func (m Message) ExtractedInput() *value.Value     { return m.extractedInput }
func (m Message) Outcome() Outcome                 { return m.outcome }

// Context is the ordered, append-only sequence of Messages produced over
// the lifetime of a single Runtime.
type Context struct {
	messages []Message
}

// NewContext seeds a Context with its Task message.
func NewContext(task Message) *Context {
	return &Context{messages: []Message{task}}
}

// Append adds a message to the end of the Context.
func (c *Context) Append(m Message) {
	c.messages = append(c.messages, m)
}

// Messages returns the full message sequence. The caller must not mutate
// the returned slice's backing array; Dump (see chain package) clones it
// for introspection.
func (c *Context) Messages() []Message {
	return c.messages
}

// Len returns the number of messages appended so far.
func (c *Context) Len() int {
	return len(c.messages)
}

// LatestTask performs a reverse linear scan for the most recent Task
// message.
func (c *Context) LatestTask() (Message, bool) {
	for i := len(c.messages) - 1; i >= 0; i-- {
		if c.messages[i].Kind() == KindTask {
			return c.messages[i], true
		}
	}
	return Message{}, false
}
