package agent

import (
	"context"
	"fmt"

	"github.com/sapiens-run/sapiens/internal/chathistory"
	"github.com/sapiens-run/sapiens/internal/message"
	"github.com/sapiens-run/sapiens/internal/model"
	"github.com/sapiens-run/sapiens/internal/toolbox"
)

const (
	singleStepPrefix = "You are Sapiens, an autonomous problem-solving agent. " +
		"You work step by step: you observe the situation, orient yourself, decide what to do, and act.\n\n"

	singleStepToolPrefix = "You have access to the following tools. Invoke at most one per turn.\n"

	singleStepResponseFormat = "Respond with your Observation, Orientation, Decision and Action as free text, " +
		"then emit exactly one tool call as a fenced yaml block:\n" +
		"```yaml\n" +
		"tool_name: <Name>\n" +
		"parameters:\n" +
		"  <key>: <value>\n" +
		"```\n\n"
)

// singleStepWarmUpExchange1 and singleStepWarmUpExchange2 are the two
// hard-coded warm-up exemplars (§4.E) demonstrating the expected
// observe/orient/decide/act-then-invoke shape, using the sandbox tool to
// chain a plain tool call and then the conclude tool.
var (
	singleStepWarmUpExchange1 = chathistory.ExamplePair{
		User: chathistory.Entry{Role: chathistory.RoleUser,
			Text: "# Your turn\nOriginal question: Sort the list [3, 1, 2] and tell me the result.\n"},
		Assistant: chathistory.Entry{Role: chathistory.RoleAssistant,
			Text: "Observation: I need to sort a short list of integers.\n" +
				"Orientation: The sandbox tool can run a short script to do this directly.\n" +
				"Decision: Use the sandbox tool to sort the list and print it.\n" +
				"Action:\n" +
				"```yaml\n" +
				"tool_name: sandbox\n" +
				"parameters:\n" +
				"  code: \"print(sorted([3, 1, 2]))\"\n" +
				"```\n"},
	}
	singleStepWarmUpExchange2 = chathistory.ExamplePair{
		User: chathistory.Entry{Role: chathistory.RoleUser,
			Text: "# Result of sandbox\nstdout: [1, 2, 3]\n"},
		Assistant: chathistory.Entry{Role: chathistory.RoleAssistant,
			Text: "Observation: The list is now sorted: [1, 2, 3].\n" +
				"Orientation: The task is complete.\n" +
				"Decision: Conclude with the sorted list.\n" +
				"Action:\n" +
				"```yaml\n" +
				"tool_name: conclude\n" +
				"parameters:\n" +
				"  original_question: \"Sort the list [3, 1, 2] and tell me the result.\"\n" +
				"  conclusion: \"[1, 2, 3]\"\n" +
				"```\n"},
	}
)

// SingleStep is the single-step OODA agent: one agent emits
// Observation+Orientation+Decision+Action in a single assistant turn.
type SingleStep struct {
	pm        *PromptManager
	m         model.Model
	maxTokens int
	maxInput  int
	minHeadroom int
}

// NewSingleStep constructs a SingleStep agent. maxInputTokens and
// minTokensForCompletion size the ChatHistory; maxTokens bounds the
// model's reply.
func NewSingleStep(tb *toolbox.Toolbox, m model.Model, maxInputTokens, minTokensForCompletion, maxTokens int) *SingleStep {
	pm := NewPromptManager(tb, singleStepPrefix, "\nRespond with exactly one Action.", singleStepPrefix, singleStepToolPrefix, singleStepResponseFormat)
	return &SingleStep{pm: pm, m: m, maxTokens: maxTokens, maxInput: maxInputTokens, minHeadroom: minTokensForCompletion}
}

func (a *SingleStep) Act(ctx context.Context, c *message.Context) (message.Message, error) {
	history := chathistory.New(a.maxInput, a.minHeadroom, a.m)
	a.pm.PopulateChatHistory(history, []chathistory.ExamplePair{singleStepWarmUpExchange1, singleStepWarmUpExchange2})

	task, _ := c.LatestTask()
	taskView := a.pm.BuildTaskPrompt(task.Task())

	for _, msg := range c.Messages() {
		switch msg.Kind() {
		case message.KindAction:
			history.AddChitchat(chathistory.Entry{Role: chathistory.RoleAssistant, Text: msg.Content()})
		case message.KindActionResult:
			history.AddChitchat(chathistory.Entry{Role: chathistory.RoleUser, Text: renderActionResult(taskView, msg)})
		}
	}

	// If no chitchat was installed from context (first turn), install the
	// task prompt as a single User entry.
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
	return message.NewAction(resp.Text, resp.Usage), nil
}

// renderActionResult formats an ActionResult message via the Task helpers,
// per §4.E.
func renderActionResult(t Task, m message.Message) string {
	outcome := m.Outcome()
	switch outcome.Kind {
	case message.OutcomeSuccess:
		result := fmt.Sprintf("%v", outcome.Result.ToGo())
		if ResultExceedsCeiling(result) {
			return t.OversizedResultPrompt(m.ToolName())
		}
		return t.ActionSuccessPrompt(m.ToolName(), m.InvocationCount(), result)
	case message.OutcomeToolUseError:
		return t.ActionFailedPrompt(m.ToolName(), outcome.ToolError.Error())
	case message.OutcomeNoValidInvocationsFound, message.OutcomeNoInvocationsFound:
		return t.InvalidActionPrompt(outcome.ExtractionError.Error())
	default:
		return t.InvalidActionPrompt("unknown outcome")
	}
}
