package sandbox

import (
	"context"
	"fmt"

	"github.com/sapiens-run/sapiens/internal/tool"
	"github.com/sapiens-run/sapiens/internal/value"
)

// proxy is the Toolbox proxy bound under the fixed global name `tools`
// inside the generated façade. Its Invoke converts the script's kwargs to
// the structured-value type, hands it to toolbox.InvokeSimple, and converts
// the result back.
//
// The call is dispatched on a dedicated goroutine whose result is awaited
// on a reply channel: this mirrors the original's separate-thread dispatch
// that preserves blocking call semantics inside the scripting language
// without blocking the surrounding async runtime, even though Go itself has
// no distinction between a blocking call and an "awaited" one.
type proxy struct {
	ctx context.Context
	tb  tool.Toolbox
}

func newProxy(ctx context.Context, tb tool.Toolbox) *proxy {
	return &proxy{ctx: ctx, tb: tb}
}

type invokeResult struct {
	out value.Value
	err *tool.UseError
}

// Invoke runs toolbox.InvokeSimple(name, input) on a dedicated goroutine
// and blocks until it replies or the proxy's context is cancelled.
func (p *proxy) Invoke(name string, input value.Value) (value.Value, error) {
	reply := make(chan invokeResult, 1)
	go func() {
		out, err := p.tb.InvokeSimple(p.ctx, name, input)
		reply <- invokeResult{out: out, err: err}
	}()

	select {
	case r := <-reply:
		if r.err != nil {
			return value.Value{}, fmt.Errorf("%s", r.err.Error())
		}
		return r.out, nil
	case <-p.ctx.Done():
		return value.Value{}, p.ctx.Err()
	}
}

// list returns all non-advanced tool descriptions as simplified records
// {name, description, parameters, responses_content}, each field being
// {name, type, optional, description}.
func (p *proxy) list() value.Value {
	descs := p.tb.NonAdvancedDescriptions()
	items := make([]value.Value, 0, len(descs))
	for _, d := range descs {
		items = append(items, describeRecord(d))
	}
	return value.Sequence(items...)
}

func describeRecord(d tool.ToolDescription) value.Value {
	return value.Mapping(
		value.Pair{Key: "name", Value: value.String(d.Name)},
		value.Pair{Key: "description", Value: value.String(d.Description)},
		value.Pair{Key: "parameters", Value: fieldsValue(d.Parameters.Fields)},
		value.Pair{Key: "responses_content", Value: fieldsValue(d.Response.Fields)},
	)
}

func fieldsValue(fields []tool.FieldFormat) value.Value {
	items := make([]value.Value, len(fields))
	for i, f := range fields {
		items[i] = value.Mapping(
			value.Pair{Key: "name", Value: value.String(f.Name)},
			value.Pair{Key: "type", Value: value.String(string(f.Type))},
			value.Pair{Key: "optional", Value: value.Bool(f.Optional)},
			value.Pair{Key: "description", Value: value.String(f.Description)},
		)
	}
	return value.Sequence(items...)
}
