// Package agent implements the PromptManager, the Task-phase prompt
// helpers, and the Single-step and Multi-step OODA agent variants (§4.E).
package agent

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sapiens-run/sapiens/internal/chathistory"
	"github.com/sapiens-run/sapiens/internal/tool"
	"github.com/sapiens-run/sapiens/internal/toolbox"
)

// resultLengthCeiling is the hard length ceiling (§4.E) past which a
// success result is replaced with a prompt nudging the model toward the
// sandbox tool instead of inlining a huge payload.
const resultLengthCeiling = 2048

// PromptManager is parameterized at construction by a Toolbox and six
// string fragments, and builds the prompts an Agent needs to converse with
// the model.
type PromptManager struct {
	tb             *toolbox.Toolbox
	systemPrompt   string
	userPrompt     string
	prefix         string
	toolPrefix     string
	responseFormat string
}

// NewPromptManager constructs a PromptManager over the given Toolbox and
// prompt fragments.
func NewPromptManager(tb *toolbox.Toolbox, systemPrompt, userPrompt, prefix, toolPrefix, responseFormat string) *PromptManager {
	return &PromptManager{
		tb:             tb,
		systemPrompt:   systemPrompt,
		userPrompt:     userPrompt,
		prefix:         prefix,
		toolPrefix:     toolPrefix,
		responseFormat: responseFormat,
	}
}

// CreateToolDescription serializes the Toolbox description table, sorted
// by tool name, under toolPrefix.
func (pm *PromptManager) CreateToolDescription() string {
	descs := pm.tb.Describe()
	names := make([]string, 0, len(descs))
	for name := range descs {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(pm.toolPrefix)
	for _, name := range names {
		d := descs[name]
		fmt.Fprintf(&b, "\n## %s\n%s\n", d.Name, d.Description)
		b.WriteString("Parameters:\n")
		for _, f := range d.Parameters.Fields {
			writeField(&b, f)
		}
		b.WriteString("Response:\n")
		for _, f := range d.Response.Fields {
			writeField(&b, f)
		}
	}
	return b.String()
}

func writeField(b *strings.Builder, f tool.FieldFormat) {
	opt := ""
	if f.Optional {
		opt = " (optional)"
	}
	fmt.Fprintf(b, "- %s: %s%s - %s\n", f.Name, f.Type, opt, f.Description)
}

// CreateToolWarmUp concatenates prefix + response_format + tool_description.
func (pm *PromptManager) CreateToolWarmUp() string {
	return pm.prefix + pm.responseFormat + pm.CreateToolDescription()
}

// PopulateChatHistory sets the history's context to two entries —
// System(system_prompt) and User(create_tool_warm_up()) — then installs
// each (user, assistant) exemplar pair.
func (pm *PromptManager) PopulateChatHistory(history *chathistory.History, examples []chathistory.ExamplePair) {
	history.SetContext([]chathistory.Entry{
		{Role: chathistory.RoleSystem, Text: pm.systemPrompt},
		{Role: chathistory.RoleUser, Text: pm.CreateToolWarmUp()},
	})
	for _, ex := range examples {
		history.AddExample(ex.User, ex.Assistant)
	}
}

// Task is a stateless view over a task string, exposing the task-phase
// prompt helpers.
type Task struct {
	question   string
	userPrompt string
}

// BuildTaskPrompt produces a Task view for the given question.
func (pm *PromptManager) BuildTaskPrompt(question string) Task {
	return Task{question: question, userPrompt: pm.userPrompt}
}

// ToPrompt renders the initial task prompt.
func (t Task) ToPrompt() string {
	return fmt.Sprintf("# Your turn\nOriginal question: %s\n%s", t.question, t.userPrompt)
}

// ActionSuccessPrompt embeds the serialized result under a header. When
// nInvocations > 1, a reminder that only the first action was taken is
// prepended. When the raw result would exceed resultLengthCeiling, the
// caller should instead call ActionFailedPrompt nudging toward the sandbox.
func (t Task) ActionSuccessPrompt(toolName string, nInvocations int, result string) string {
	var b strings.Builder
	if nInvocations > 1 {
		fmt.Fprintf(&b, "Note: %d invocations were found in your last response; only the first one was considered.\n\n", nInvocations)
	}
	fmt.Fprintf(&b, "# Result of %s\n%s\n%s", toolName, result, t.userPrompt)
	return b.String()
}

// ActionFailedPrompt embeds the error with a request for a corrected
// response.
func (t Task) ActionFailedPrompt(toolName, errMessage string) string {
	return fmt.Sprintf("# %s failed\n%s\nPlease correct your last response and try again.\n%s", toolName, errMessage, t.userPrompt)
}

// InvalidActionPrompt is the same shape, keyed on extractor failures rather
// than tool failures.
func (t Task) InvalidActionPrompt(errMessage string) string {
	return fmt.Sprintf("# Invalid action\n%s\nPlease correct your last response and try again.\n%s", errMessage, t.userPrompt)
}

// OversizedResultPrompt is used when a success result exceeds
// resultLengthCeiling: the Agent substitutes an action-failed prompt
// instructing the model to route via the sandbox tool instead of inlining
// the payload.
func (t Task) OversizedResultPrompt(toolName string) string {
	return t.ActionFailedPrompt(toolName, fmt.Sprintf(
		"the result exceeds %d characters and cannot be inlined; use the sandbox tool to process it in a script instead of asking for the full value directly",
		resultLengthCeiling))
}

// ResultExceedsCeiling reports whether a raw success result is too large to
// inline, per the §4.E hard length ceiling.
func ResultExceedsCeiling(result string) bool {
	return len(result) > resultLengthCeiling
}
