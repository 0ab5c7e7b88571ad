package sandbox

import (
	"context"
	"strings"
	"testing"

	"github.com/sapiens-run/sapiens/internal/tool"
	"github.com/sapiens-run/sapiens/internal/tools"
	"github.com/sapiens-run/sapiens/internal/toolbox"
	"github.com/sapiens-run/sapiens/internal/value"
)

func newTestToolbox() *toolbox.Toolbox {
	tb := toolbox.New(nil)
	tb.AddTool(tools.NewDummy())
	tb.AddTerminalTool(tools.NewConclude())
	tb.AddAdvancedTool(NewSandbox())
	return tb
}

func runScript(t *testing.T, tb *toolbox.Toolbox, code string) (value.Value, *tool.UseError) {
	t.Helper()
	input := value.Mapping(value.Pair{Key: "code", Value: value.String(code)})
	return tb.Invoke(context.Background(), "sandbox", input)
}

// S3: sandbox composition — a script calls a plain tool through the
// façade and the conclude tool through the same façade, end to end.
func TestSandboxComposesPlainAndTerminalTools(t *testing.T) {
	tb := newTestToolbox()
	code := `
r = tools.dummy(blah="hi")
tools.conclude(original_question="q", conclusion=r["something"])
print(r["something"])
`
	out, useErr := runScript(t, tb, code)
	if useErr != nil {
		t.Fatalf("unexpected error: %v", useErr)
	}
	stdout, ok := out.Get("stdout")
	if !ok {
		t.Fatal("expected a stdout field")
	}
	s, _ := stdout.Str()
	if strings.TrimSpace(s) != "hi and something else" {
		t.Errorf("stdout = %q", s)
	}

	msgs := tb.TerminationMessages()
	if len(msgs) != 1 || msgs[0].Conclusion != "hi and something else" {
		t.Fatalf("expected the sandboxed conclude call to latch, got %v", msgs)
	}
}

func TestSandboxFacadeExposesSnakeCaseAndPascalCase(t *testing.T) {
	tb := newTestToolbox()
	code := `
a = tools.dummy(blah="x")
b = tools.Dummy(blah="x")
print(a["something"] == b["something"])
`
	out, useErr := runScript(t, tb, code)
	if useErr != nil {
		t.Fatalf("unexpected error: %v", useErr)
	}
	stdout, _ := out.Get("stdout")
	s, _ := stdout.Str()
	if strings.TrimSpace(s) != "True" {
		t.Errorf("expected snake_case and PascalCase to forward to the same tool, got stdout %q", s)
	}
}

func TestSandboxListExposesRegisteredTools(t *testing.T) {
	tb := newTestToolbox()
	code := `print(len(tools.list()) > 0)`
	out, useErr := runScript(t, tb, code)
	if useErr != nil {
		t.Fatalf("unexpected error: %v", useErr)
	}
	stdout, _ := out.Get("stdout")
	s, _ := stdout.Str()
	if strings.TrimSpace(s) != "True" {
		t.Errorf("expected tools.list() to report at least one tool, got stdout %q", s)
	}
}

func TestSandboxRejectsBannedSubstrings(t *testing.T) {
	tb := newTestToolbox()
	_, useErr := runScript(t, tb, `exec("print(1)")`)
	if useErr == nil {
		t.Fatal("expected a script referencing exec to be rejected")
	}
	_, useErr = runScript(t, tb, `x = "pip install something"`)
	if useErr == nil {
		t.Fatal("expected a script referencing pip to be rejected")
	}
}

func TestSandboxStripsLeadingFacadeImports(t *testing.T) {
	tb := newTestToolbox()
	code := "import tools\nprint(tools.dummy(blah=\"x\")[\"something\"])\n"
	out, useErr := runScript(t, tb, code)
	if useErr != nil {
		t.Fatalf("unexpected error: %v", useErr)
	}
	stdout, _ := out.Get("stdout")
	s, _ := stdout.Str()
	if strings.TrimSpace(s) != "x and something else" {
		t.Errorf("stdout = %q", s)
	}
}

func TestSandboxOutputOverCeilingFails(t *testing.T) {
	tb := newTestToolbox()
	code := `print("x" * 1000)`
	_, useErr := runScript(t, tb, code)
	if useErr == nil {
		t.Fatal("expected output exceeding the byte ceiling to fail the invocation")
	}
}

func TestSandboxScriptErrorReturnsStderrWithoutFailingInvocation(t *testing.T) {
	tb := newTestToolbox()
	_, useErr := runScript(t, tb, `tools.dummy()`)
	if useErr != nil {
		t.Fatalf("expected a script-level error to surface as stderr, not a UseError: %v", useErr)
	}
}

func TestSandboxMissingCodeFieldIsInvalidInput(t *testing.T) {
	tb := newTestToolbox()
	_, useErr := tb.Invoke(context.Background(), "sandbox", value.NewMapping())
	if useErr == nil || useErr.Kind != tool.ErrKindInvalidInput {
		t.Fatalf("expected invalid_input, got %v", useErr)
	}
}

func TestSandboxCannotRecurseIntoItself(t *testing.T) {
	tb := newTestToolbox()
	_, useErr := runScript(t, tb, `tools.sandbox(code="print(1)")`)
	if useErr != nil {
		t.Fatalf("expected calling sandbox from within a script to surface as a script error, not a UseError: %v", useErr)
	}
}

func TestSandboxDirectInvokeRejected(t *testing.T) {
	s := NewSandbox()
	_, useErr := s.Invoke(context.Background(), value.Value{})
	if useErr == nil {
		t.Fatal("expected direct Invoke (bypassing the toolbox) to be rejected")
	}
}
