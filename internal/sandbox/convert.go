// Package sandbox implements the AdvancedTool described in §4.G: it
// executes model-authored Starlark source against a generated façade that
// exposes every non-advanced tool in the Toolbox, via a Toolbox proxy.
package sandbox

import (
	"fmt"
	"math/big"

	"go.starlark.net/starlark"

	"github.com/sapiens-run/sapiens/internal/value"
)

// starlarkToValue converts a Starlark value into the structured-value wire
// format (§3), per the conversion rules in §4.G: null/bool/int/float/
// string map directly; list/tuple become sequences; dict becomes a mapping
// with keys coerced to strings. Unconvertible values return an error.
func starlarkToValue(sv starlark.Value) (value.Value, error) {
	switch v := sv.(type) {
	case starlark.NoneType:
		return value.Null(), nil
	case starlark.Bool:
		return value.Bool(bool(v)), nil
	case starlark.Int:
		if i, ok := v.Int64(); ok {
			return value.Int(i), nil
		}
		f := new(big.Float).SetInt(v.BigInt())
		f64, _ := f.Float64()
		return value.Float(f64), nil
	case starlark.Float:
		return value.Float(float64(v)), nil
	case starlark.String:
		return value.String(string(v)), nil
	case starlark.Tuple:
		items := make([]value.Value, len(v))
		for i, item := range v {
			converted, err := starlarkToValue(item)
			if err != nil {
				return value.Value{}, err
			}
			items[i] = converted
		}
		return value.Sequence(items...), nil
	case *starlark.List:
		items := make([]value.Value, 0, v.Len())
		iter := v.Iterate()
		defer iter.Done()
		var x starlark.Value
		for iter.Next(&x) {
			converted, err := starlarkToValue(x)
			if err != nil {
				return value.Value{}, err
			}
			items = append(items, converted)
		}
		return value.Sequence(items...), nil
	case *starlark.Dict:
		m := value.NewMapping()
		for _, item := range v.Items() {
			key := mappingKeyString(item[0])
			converted, err := starlarkToValue(item[1])
			if err != nil {
				return value.Value{}, err
			}
			m.Set(key, converted)
		}
		return m, nil
	default:
		return value.Value{}, fmt.Errorf("cannot convert %s to a structured value", sv.Type())
	}
}

// mappingKeyString coerces a Starlark dict key to a string, per the
// conversion rules: null -> "null", bool -> "true"/"false", other scalars
// -> their printed form.
func mappingKeyString(k starlark.Value) string {
	switch v := k.(type) {
	case starlark.NoneType:
		return "null"
	case starlark.Bool:
		if v {
			return "true"
		}
		return "false"
	case starlark.String:
		return string(v)
	default:
		return v.String()
	}
}

// valueToStarlark converts a structured Value back into a Starlark value,
// for handing a tool's result back to the running script.
func valueToStarlark(v value.Value) starlark.Value {
	switch v.Kind() {
	case value.KindNull:
		return starlark.None
	case value.KindBool:
		b, _ := v.Bool()
		return starlark.Bool(b)
	case value.KindInt:
		i, _ := v.Int()
		return starlark.MakeInt64(i)
	case value.KindFloat:
		f, _ := v.Float()
		return starlark.Float(f)
	case value.KindString:
		s, _ := v.Str()
		return starlark.String(s)
	case value.KindSequence:
		seq, _ := v.Seq()
		items := make([]starlark.Value, len(seq))
		for i, item := range seq {
			items[i] = valueToStarlark(item)
		}
		return starlark.NewList(items)
	case value.KindMapping:
		d := starlark.NewDict(len(v.Keys()))
		for _, k := range v.Keys() {
			item, _ := v.Get(k)
			_ = d.SetKey(starlark.String(k), valueToStarlark(item))
		}
		return d
	default:
		return starlark.None
	}
}
