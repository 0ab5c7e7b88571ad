package agent

import (
	"context"
	"strings"

	"github.com/sapiens-run/sapiens/internal/chathistory"
	"github.com/sapiens-run/sapiens/internal/message"
	"github.com/sapiens-run/sapiens/internal/model"
	"github.com/sapiens-run/sapiens/internal/toolbox"
)

// multiStepAgent is the shared implementation behind the four multi-step
// OODA roles (§4.E.2): Observer, Orienter, Decider, Actor. Each owns its own
// response_format and warm-up exemplars but shares the context-to-history
// mapping rule: messages of its own phase render as Assistant entries;
// every other phase's content (plus formatted ActionResults) accumulates
// into a pending User entry that flushes immediately before the next
// Assistant boundary.
type multiStepAgent struct {
	own         message.Kind
	pm          *PromptManager
	m           model.Model
	maxTokens   int
	maxInput    int
	minHeadroom int
	warmUp      []chathistory.ExamplePair
	mk          func(content string, usage *message.Usage) message.Message
}

func (a *multiStepAgent) Act(ctx context.Context, c *message.Context) (message.Message, error) {
	history := chathistory.New(a.maxInput, a.minHeadroom, a.m)
	a.pm.PopulateChatHistory(history, a.warmUp)

	task, _ := c.LatestTask()
	taskView := a.pm.BuildTaskPrompt(task.Task())

	var pending []string
	flush := func() {
		if len(pending) == 0 {
			return
		}
		history.AddChitchat(chathistory.Entry{Role: chathistory.RoleUser, Text: strings.Join(pending, "\n")})
		pending = nil
	}

	for _, msg := range c.Messages() {
		switch msg.Kind() {
		case message.KindTask:
			continue
		case message.KindActionResult:
			pending = append(pending, renderActionResult(taskView, msg))
		case a.own:
			flush()
			history.AddChitchat(chathistory.Entry{Role: chathistory.RoleAssistant, Text: msg.Content()})
		default:
			pending = append(pending, msg.Content())
		}
	}
	flush()

	if history.MakeInput().Chitchat == nil {
		history.AddChitchat(chathistory.Entry{Role: chathistory.RoleUser, Text: taskView.ToPrompt()})
	}

	if err := history.Purge(ctx); err != nil {
		return message.Message{}, failed(err)
	}

	resp, err := a.m.Query(ctx, history.MakeInput(), a.maxTokens)
	if err != nil {
		return message.Message{}, failed(err)
	}
	return a.mk(resp.Text, resp.Usage), nil
}

const multiStepToolPrefix = "You have access to the following tools. Invoke at most one per turn.\n"

// NewObserver, NewOrienter, NewDecider, NewActor construct the four
// multi-step OODA agents sharing a Toolbox and Model. Only the Actor
// returns Message::Action; the others return their eponymous variant.
func NewObserver(tb *toolbox.Toolbox, m model.Model, maxInputTokens, minTokensForCompletion, maxTokens int) Agent {
	prefix := "You are the Observer. Describe what you currently see in the task and its history, in plain text.\n\n"
	format := "Respond with a single paragraph describing your observation. Do not invoke any tool.\n\n"
	pm := NewPromptManager(tb, prefix, "\nProvide your Observation.", prefix, multiStepToolPrefix, format)
	return &multiStepAgent{
		own: message.KindObservation, pm: pm, m: m,
		maxTokens: maxTokens, maxInput: maxInputTokens, minHeadroom: minTokensForCompletion,
		mk: message.NewObservation,
	}
}

func NewOrienter(tb *toolbox.Toolbox, m model.Model, maxInputTokens, minTokensForCompletion, maxTokens int) Agent {
	prefix := "You are the Orienter. Given the Observation, explain what it implies for solving the task.\n\n"
	format := "Respond with a single paragraph giving your orientation. Do not invoke any tool.\n\n"
	pm := NewPromptManager(tb, prefix, "\nProvide your Orientation.", prefix, multiStepToolPrefix, format)
	return &multiStepAgent{
		own: message.KindOrientation, pm: pm, m: m,
		maxTokens: maxTokens, maxInput: maxInputTokens, minHeadroom: minTokensForCompletion,
		mk: message.NewOrientation,
	}
}

func NewDecider(tb *toolbox.Toolbox, m model.Model, maxInputTokens, minTokensForCompletion, maxTokens int) Agent {
	prefix := "You are the Decider. Given the Orientation, decide what concrete step to take next.\n\n"
	format := "Respond with a single paragraph stating your decision. Do not invoke any tool.\n\n"
	pm := NewPromptManager(tb, prefix, "\nProvide your Decision.", prefix, multiStepToolPrefix, format)
	return &multiStepAgent{
		own: message.KindDecision, pm: pm, m: m,
		maxTokens: maxTokens, maxInput: maxInputTokens, minHeadroom: minTokensForCompletion,
		mk: message.NewDecision,
	}
}

func NewActor(tb *toolbox.Toolbox, m model.Model, maxInputTokens, minTokensForCompletion, maxTokens int) Agent {
	prefix := "You are the Actor. Given the Decision, carry it out by invoking exactly one tool.\n\n"
	format := "Respond with exactly one tool call as a fenced yaml block:\n" +
		"```yaml\n" +
		"tool_name: <Name>\n" +
		"parameters:\n" +
		"  <key>: <value>\n" +
		"```\n\n"
	pm := NewPromptManager(tb, prefix, "\nRespond with exactly one Action.", prefix, multiStepToolPrefix, format)
	return &multiStepAgent{
		own: message.KindAction, pm: pm, m: m,
		maxTokens: maxTokens, maxInput: maxInputTokens, minHeadroom: minTokensForCompletion,
		mk: message.NewAction,
	}
}
