package sandbox

import (
	"context"
	"fmt"
	"strings"

	"go.starlark.net/starlark"

	"github.com/sapiens-run/sapiens/internal/tool"
	"github.com/sapiens-run/sapiens/internal/value"
)

// outputCeiling is the combined stdout+stderr byte cap enforced per §4.G:
// scripts that print past this are reported back to the model as a failed
// invocation rather than silently truncated.
const outputCeiling = 512

// bannedSubstrings are rejected outright before the script ever runs: the
// façade offers no process-spawning or package-installation surface, so any
// script that mentions one is almost certainly trying to escape the
// sandbox rather than use it.
var bannedSubstrings = []string{"exec", "pip"}

// facadeImportPrefixes are stripped from the top of the script before it
// runs: models are warmed up with example snippets that `import tools` for
// readability, but the façade module is injected as a predeclared global,
// not a real importable module, so a literal import statement would fail.
var facadeImportPrefixes = []string{"import tools", "from tools import"}

// Sandbox is the AdvancedTool described in §4.G: it runs model-authored
// Starlark source against a generated façade exposing every non-advanced
// tool in the toolbox it's invoked with, and reports back what the script
// printed.
type Sandbox struct{}

// NewSandbox constructs the sandbox tool.
func NewSandbox() Sandbox {
	return Sandbox{}
}

func (Sandbox) Description() tool.ToolDescription {
	return tool.NewDescription("sandbox",
		"Runs a short Starlark script that can call any other registered tool "+
			"through the predeclared `tools` module (e.g. tools.dummy(blah=\"x\"), "+
			"tools.list()). Use this to compose several tool calls, or to "+
			"transform a tool's result, in a single step.").
		WithParam("code", tool.TypeStr, false, "the Starlark source to run").
		WithResponse("stdout", tool.TypeStr, false, "everything the script printed").
		WithResponse("stderr", tool.TypeStr, true, "a failure message, if the script could not complete")
}

func (Sandbox) Invoke(ctx context.Context, input value.Value) (value.Value, *tool.UseError) {
	return value.Value{}, tool.InvocationFailed("sandbox must be invoked through the toolbox, not directly")
}

// InvokeWithToolbox is the real entry point (§4.G): tb is the same Toolbox
// the sandbox tool is itself registered in, re-entered only via
// InvokeSimple through the proxy, so a script can never recurse into
// another AdvancedTool (including the sandbox itself).
func (Sandbox) InvokeWithToolbox(ctx context.Context, input value.Value, tb tool.Toolbox) (value.Value, *tool.UseError) {
	codeVal, ok := input.Get("code")
	if !ok {
		return value.Value{}, tool.InvalidInput("missing required field code")
	}
	code, ok := codeVal.Str()
	if !ok {
		return value.Value{}, tool.InvalidInput("field code must be a string")
	}

	if kind, found := findBannedSubstring(code); found {
		return value.Value{}, tool.InvocationFailed(fmt.Sprintf("script may not reference %q", kind))
	}
	code = stripFacadeImports(code)

	p := newProxy(ctx, tb)
	module := buildFacade(p)

	var out strings.Builder
	thread := &starlark.Thread{
		Name: "sandbox",
		Print: func(_ *starlark.Thread, msg string) {
			out.WriteString(msg)
			out.WriteByte('\n')
		},
	}

	predeclared := starlark.StringDict{
		"tools": module,
	}

	_, err := starlark.ExecFile(thread, "sandbox.star", code, predeclared)
	stdout := out.String()
	if len(stdout) > outputCeiling {
		return value.Value{}, tool.InvocationFailed(
			fmt.Sprintf("script output exceeded %d bytes; have it return a smaller result or call conclude directly", outputCeiling))
	}

	if err != nil {
		stderr := err.Error()
		if len(stdout)+len(stderr) > outputCeiling {
			return value.Value{}, tool.InvocationFailed(
				fmt.Sprintf("script output exceeded %d bytes; have it return a smaller result or call conclude directly", outputCeiling))
		}
		return value.Mapping(
			value.Pair{Key: "stdout", Value: value.String(stdout)},
			value.Pair{Key: "stderr", Value: value.String(stderr)},
		), nil
	}

	return value.Mapping(
		value.Pair{Key: "stdout", Value: value.String(stdout)},
	), nil
}

func findBannedSubstring(code string) (string, bool) {
	for _, s := range bannedSubstrings {
		if strings.Contains(code, s) {
			return s, true
		}
	}
	return "", false
}

// stripFacadeImports removes any leading lines that try to import the
// `tools` façade as a real module, leaving the rest of the script intact.
func stripFacadeImports(code string) string {
	lines := strings.Split(code, "\n")
	start := 0
	for start < len(lines) {
		trimmed := strings.TrimSpace(lines[start])
		if trimmed == "" {
			start++
			continue
		}
		isImport := false
		for _, prefix := range facadeImportPrefixes {
			if strings.HasPrefix(trimmed, prefix) {
				isImport = true
				break
			}
		}
		if !isImport {
			break
		}
		start++
	}
	return strings.Join(lines[start:], "\n")
}

var _ tool.AdvancedTool = Sandbox{}
