package sandbox

import (
	"fmt"
	"sort"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"

	"github.com/sapiens-run/sapiens/internal/tool"
)

// buildFacade synthesizes the `tools` module: one builtin per non-advanced
// tool in the Toolbox, in both snake_case and PascalCase, plus a `list`
// builtin, all forwarding to the given proxy's generic Invoke.
func buildFacade(p *proxy) *starlarkstruct.Module {
	descs := p.tb.NonAdvancedDescriptions()
	names := make([]string, 0, len(descs))
	for name := range descs {
		names = append(names, name)
	}
	sort.Strings(names)

	members := starlark.StringDict{}
	for _, name := range names {
		d := descs[name]
		fn := makeToolBuiltin(p, d)
		members[name] = fn
		members[toPascalCase(name)] = fn
	}
	members["list"] = starlark.NewBuiltin("list", func(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		return valueToStarlark(p.list()), nil
	})
	members["doc"] = starlark.NewBuiltin("doc", func(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var name string
		if err := starlark.UnpackArgs("doc", args, kwargs, "name", &name); err != nil {
			return nil, err
		}
		d, ok := descs[name]
		if !ok {
			return nil, fmt.Errorf("doc: no such tool %q", name)
		}
		return starlark.String(facadeDocstring(d)), nil
	})

	return starlarkstruct.NewModule("tools", members)
}

// makeToolBuiltin builds one forwarding method for the tool described by d.
// Required parameters must be supplied positionally or by name; optional
// parameters default to None. Full parameter/response documentation is
// available at runtime via tools.doc(name) and ahead of time via
// CreateToolDescription (internal/agent).
func makeToolBuiltin(p *proxy, d tool.ToolDescription) *starlark.Builtin {
	ordered := orderedParams(d.Parameters.Fields)

	fn := func(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		params, err := bindParams(ordered, args, kwargs)
		if err != nil {
			return nil, err
		}
		converted, err := starlarkToValue(params)
		if err != nil {
			return nil, err
		}
		out, err := p.Invoke(d.Name, converted)
		if err != nil {
			return nil, err
		}
		return valueToStarlark(out), nil
	}
	return starlark.NewBuiltin(d.Name, fn)
}

// orderedParams sorts required parameters first, then optional ones,
// preserving each group's declared order, per §4.G's method-signature rule.
func orderedParams(fields []tool.FieldFormat) []tool.FieldFormat {
	var required, optional []tool.FieldFormat
	for _, f := range fields {
		if f.Optional {
			optional = append(optional, f)
		} else {
			required = append(required, f)
		}
	}
	return append(required, optional...)
}

// bindParams maps positional and keyword arguments onto the tool's ordered
// parameter list, returning a Starlark dict value ready for conversion.
func bindParams(ordered []tool.FieldFormat, args starlark.Tuple, kwargs []starlark.Tuple) (*starlark.Dict, error) {
	d := starlark.NewDict(len(ordered))
	if len(args) > len(ordered) {
		return nil, fmt.Errorf("too many positional arguments: got %d, want at most %d", len(args), len(ordered))
	}
	for i, a := range args {
		_ = d.SetKey(starlark.String(ordered[i].Name), a)
	}
	for _, kv := range kwargs {
		key, ok := starlark.AsString(kv[0])
		if !ok {
			return nil, fmt.Errorf("keyword argument name must be a string")
		}
		_ = d.SetKey(starlark.String(key), kv[1])
	}
	for _, f := range ordered {
		if f.Optional {
			continue
		}
		if _, found, _ := d.Get(starlark.String(f.Name)); !found {
			return nil, fmt.Errorf("missing required argument %q", f.Name)
		}
	}
	return d, nil
}

func facadeDocstring(d tool.ToolDescription) string {
	var b strings.Builder
	b.WriteString(d.Description)
	for _, f := range d.Parameters.Fields {
		opt := ""
		if f.Optional {
			opt = " (optional)"
		}
		fmt.Fprintf(&b, "\n:param %s: %s%s - %s", f.Name, f.Type, opt, f.Description)
	}
	for _, f := range d.Response.Fields {
		opt := ""
		if f.Optional {
			opt = " (optional)"
		}
		fmt.Fprintf(&b, "\n:return %s: %s%s - %s", f.Name, f.Type, opt, f.Description)
	}
	return b.String()
}

// toPascalCase converts a snake_case tool name to PascalCase, e.g.
// "dummy" -> "Dummy", "send_email" -> "SendEmail".
func toPascalCase(name string) string {
	parts := strings.Split(name, "_")
	var b strings.Builder
	for _, p := range parts {
		if p == "" {
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(p[1:])
	}
	return b.String()
}
