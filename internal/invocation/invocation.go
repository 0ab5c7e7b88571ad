// Package invocation extracts tool invocations from the free-form text of
// an Action message: fenced ```yaml blocks containing one or more
// {tool_name, parameters} documents.
package invocation

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sapiens-run/sapiens/internal/value"
)

// maxYAMLBlocks defensively caps the number of fences scanned in a single
// Action, guarding against pathological input; it is not expected to ever
// trigger on real model output.
const maxYAMLBlocks = 1000

// Invocation is a {tool_name, parameters, junk} record extracted from an
// Action message. junk collects unexpected top-level keys the model emitted
// alongside tool_name/parameters; it is discarded with a warning by the
// caller and does not invalidate the call.
type Invocation struct {
	ToolName   string
	Parameters value.Value
	Junk       value.Value
}

// ErrorKind enumerates the extraction error taxonomy (§4.C, §7).
type ErrorKind string

const (
	ErrNoInvocationFound      ErrorKind = "no_invocation_found"
	ErrNoValidInvocationFound ErrorKind = "no_valid_invocation_found"
	ErrInvalidYaml            ErrorKind = "invalid_yaml"
	ErrTooManyYamlBlocks      ErrorKind = "too_many_yaml_blocks"
)

// Error is returned when no invocation could be extracted.
type Error struct {
	Kind   ErrorKind
	Detail string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

// Extracted is the successful result: the ordered list of invocations found
// across every block, and the number of ```yaml fences observed (whether or
// not they parsed), used by the Runtime to build the "only the first was
// considered" reminder.
type Extracted struct {
	Invocations   []Invocation
	YAMLBlockCount int
}

// Extract runs the extraction algorithm over the raw text of an Action
// message.
func Extract(text string) (Extracted, *Error) {
	blocks := findFencedBlocks(text)
	if len(blocks) > maxYAMLBlocks {
		return Extracted{}, &Error{Kind: ErrTooManyYamlBlocks, Detail: fmt.Sprintf("%d fences", len(blocks))}
	}
	if len(blocks) == 0 {
		return Extracted{}, &Error{Kind: ErrNoInvocationFound, Detail: "no yaml block found"}
	}

	var invocations []Invocation
	var lastErr *Error
	for _, block := range blocks {
		found, err := parseBlock(block)
		if err != nil {
			lastErr = err
			continue
		}
		// A later successful block suppresses an earlier failure.
		lastErr = nil
		invocations = append(invocations, found...)
	}

	if len(invocations) == 0 {
		if lastErr != nil {
			return Extracted{YAMLBlockCount: len(blocks)}, lastErr
		}
		return Extracted{YAMLBlockCount: len(blocks)}, &Error{Kind: ErrNoValidInvocationFound, Detail: "no block parsed to a valid invocation"}
	}

	return Extracted{Invocations: invocations, YAMLBlockCount: len(blocks)}, nil
}

// findFencedBlocks splits text into lines and scans for opening fences of
// the form ` ```yaml` (leading whitespace tolerated), accumulating the raw
// body of each fenced block until its matching closing fence.
func findFencedBlocks(text string) []string {
	lines := strings.Split(text, "\n")
	var blocks []string
	i := 0
	for i < len(lines) {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed == "```yaml" || trimmed == "```yml" {
			var body []string
			i++
			for i < len(lines) && strings.TrimSpace(lines[i]) != "```" {
				body = append(body, lines[i])
				i++
			}
			blocks = append(blocks, strings.Join(body, "\n"))
			// i now sits on the closing fence (or EOF); advance past it.
			i++
			continue
		}
		i++
	}
	return blocks
}

// parseBlock parses one fenced block's body as a sequence of YAML
// documents (separated by `---`), each being either a mapping with
// {tool_name, parameters, ...} or a list of such mappings.
func parseBlock(body string) ([]Invocation, *Error) {
	dec := yaml.NewDecoder(strings.NewReader(body))
	var invocations []Invocation
	sawAny := false
	for {
		var doc any
		err := dec.Decode(&doc)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, &Error{Kind: ErrInvalidYaml, Detail: err.Error()}
		}
		sawAny = true
		found, err := parseDocument(doc)
		if err != nil {
			return nil, &Error{Kind: ErrNoValidInvocationFound, Detail: err.Error()}
		}
		invocations = append(invocations, found...)
	}
	if !sawAny {
		return nil, &Error{Kind: ErrInvalidYaml, Detail: "empty document"}
	}
	if len(invocations) == 0 {
		return nil, &Error{Kind: ErrNoValidInvocationFound, Detail: "document did not contain a valid invocation"}
	}
	return invocations, nil
}

func parseDocument(doc any) ([]Invocation, error) {
	switch d := doc.(type) {
	case map[string]any:
		inv, err := mappingToInvocation(d)
		if err != nil {
			return nil, err
		}
		return []Invocation{inv}, nil
	case []any:
		var out []Invocation
		for _, item := range d {
			m, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("list item is not a mapping")
			}
			inv, err := mappingToInvocation(m)
			if err != nil {
				return nil, err
			}
			out = append(out, inv)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("document is neither a mapping nor a list of mappings")
	}
}

func mappingToInvocation(m map[string]any) (Invocation, error) {
	name, ok := m["tool_name"].(string)
	if !ok || name == "" {
		return Invocation{}, fmt.Errorf("missing required key tool_name")
	}
	params, ok := m["parameters"].(map[string]any)
	if !ok {
		return Invocation{}, fmt.Errorf("missing required mapping key parameters")
	}

	junk := value.NewMapping()
	for k, v := range m {
		if k == "tool_name" || k == "parameters" {
			continue
		}
		junk.Set(k, value.FromGo(v))
	}

	return Invocation{
		ToolName:   name,
		Parameters: value.FromGo(map[string]any(params)),
		Junk:       junk,
	}, nil
}
