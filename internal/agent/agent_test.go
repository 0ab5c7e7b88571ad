package agent

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sapiens-run/sapiens/internal/chathistory"
	"github.com/sapiens-run/sapiens/internal/message"
	"github.com/sapiens-run/sapiens/internal/model"
	"github.com/sapiens-run/sapiens/internal/toolbox"
	"github.com/sapiens-run/sapiens/internal/tools"
	"github.com/sapiens-run/sapiens/internal/value"
)

func newTestToolbox() *toolbox.Toolbox {
	tb := toolbox.New(nil)
	tb.AddTool(tools.NewDummy())
	tb.AddTerminalTool(tools.NewConclude())
	return tb
}

func TestSingleStepActReturnsActionMessage(t *testing.T) {
	tb := newTestToolbox()
	m := model.NewMock("Observation: ...\nAction:\n```yaml\ntool_name: dummy\nparameters:\n  blah: x\n```\n")
	a := NewSingleStep(tb, m, 100000, 0, 1000)

	c := message.NewContext(message.NewTask("do the thing"))
	out, err := a.Act(context.Background(), c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Kind() != message.KindAction {
		t.Fatalf("Kind() = %v, want KindAction", out.Kind())
	}
	if out.Usage() == nil {
		t.Error("expected usage to be recorded")
	}
}

func TestSingleStepFirstTurnInstallsTaskPrompt(t *testing.T) {
	tb := newTestToolbox()
	m := model.NewMock("reply")
	a := NewSingleStep(tb, m, 100000, 0, 1000)

	c := message.NewContext(message.NewTask("summarize the README"))
	if _, err := a.Act(context.Background(), c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(m.LastInput.Chitchat) != 1 {
		t.Fatalf("expected exactly one chitchat entry on the first turn, got %d", len(m.LastInput.Chitchat))
	}
	if !strings.Contains(m.LastInput.Chitchat[0].Text, "summarize the README") {
		t.Errorf("expected the task prompt to mention the question, got %q", m.LastInput.Chitchat[0].Text)
	}
}

func TestSingleStepRendersActionResultAsChitchat(t *testing.T) {
	tb := newTestToolbox()
	m := model.NewMock("reply")
	a := NewSingleStep(tb, m, 100000, 0, 1000)

	c := message.NewContext(message.NewTask("q"))
	c.Append(message.NewAction("Action:\n```yaml\ntool_name: dummy\nparameters: {}\n```", nil))
	successResult := value.Mapping(value.Pair{Key: "something", Value: value.String("x and something else")})
	c.Append(message.NewActionResult(1, "dummy", nil, message.SuccessOutcome(successResult)))

	if _, err := a.Act(context.Background(), c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(m.LastInput.Chitchat) != 2 {
		t.Fatalf("expected action + action-result chitchat entries, got %d", len(m.LastInput.Chitchat))
	}
	if m.LastInput.Chitchat[0].Role != chathistory.RoleAssistant {
		t.Errorf("expected the prior Action to render as an assistant turn, got %v", m.LastInput.Chitchat[0].Role)
	}
	if m.LastInput.Chitchat[1].Role != chathistory.RoleUser {
		t.Errorf("expected the ActionResult to render as a user turn, got %v", m.LastInput.Chitchat[1].Role)
	}
}

func TestSingleStepPropagatesModelErrorAsAgentFailed(t *testing.T) {
	tb := newTestToolbox()
	m := &erroringModel{}
	a := NewSingleStep(tb, m, 100000, 0, 1000)

	c := message.NewContext(message.NewTask("q"))
	_, err := a.Act(context.Background(), c)
	if err == nil {
		t.Fatal("expected an error from a failing model")
	}
	if !errors.Is(err, ErrAgentFailed) {
		t.Errorf("expected err to wrap ErrAgentFailed, got %v", err)
	}
}

func TestMultiStepObserverReturnsObservationMessage(t *testing.T) {
	tb := newTestToolbox()
	m := model.NewMock("I observe the task.")
	a := NewObserver(tb, m, 100000, 0, 1000)

	c := message.NewContext(message.NewTask("q"))
	out, err := a.Act(context.Background(), c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Kind() != message.KindObservation {
		t.Fatalf("Kind() = %v, want KindObservation", out.Kind())
	}
}

func TestMultiStepActorOwnPhaseRendersAsAssistant(t *testing.T) {
	tb := newTestToolbox()
	m := model.NewMock("next action")
	a := NewActor(tb, m, 100000, 0, 1000)

	c := message.NewContext(message.NewTask("q"))
	c.Append(message.NewObservation("obs content", nil))
	c.Append(message.NewOrientation("ori content", nil))
	c.Append(message.NewDecision("dec content", nil))
	c.Append(message.NewAction("previous action", nil))

	if _, err := a.Act(context.Background(), c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// The Actor's own phase (Action) should render as an Assistant turn,
	// with Observation/Orientation/Decision accumulated into a pending User
	// turn flushed immediately before it.
	if len(m.LastInput.Chitchat) < 2 {
		t.Fatalf("expected at least a flushed user turn and the assistant turn, got %d", len(m.LastInput.Chitchat))
	}
	last := m.LastInput.Chitchat[len(m.LastInput.Chitchat)-1]
	if last.Role != chathistory.RoleAssistant || last.Text != "previous action" {
		t.Errorf("expected the Actor's own prior content to be the final assistant turn, got %+v", last)
	}
}

func TestResultExceedsCeilingAndOversizedPrompt(t *testing.T) {
	small := "ok"
	if ResultExceedsCeiling(small) {
		t.Error("a short result should not exceed the ceiling")
	}
	large := strings.Repeat("x", 3000)
	if !ResultExceedsCeiling(large) {
		t.Error("expected a 3000-char result to exceed the ceiling")
	}
}

var errBoom = errors.New("model boom")

// erroringModel always fails Query, to exercise the Agent -> ErrAgentFailed
// wrapping contract.
type erroringModel struct{}

func (erroringModel) Query(ctx context.Context, in chathistory.Input, maxTokens int) (model.Response, error) {
	return model.Response{}, errBoom
}

func (erroringModel) NumTokens(ctx context.Context, in chathistory.Input) (int, error) {
	return 0, nil
}

func (erroringModel) ContextSize() int { return 100000 }
