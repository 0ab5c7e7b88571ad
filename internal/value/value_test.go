package value

import (
	"reflect"
	"testing"
)

func TestScalarAccessors(t *testing.T) {
	if b, ok := Bool(true).Bool(); !ok || !b {
		t.Errorf("Bool accessor = %v, %v", b, ok)
	}
	if i, ok := Int(42).Int(); !ok || i != 42 {
		t.Errorf("Int accessor = %v, %v", i, ok)
	}
	if f, ok := Float(3.5).Float(); !ok || f != 3.5 {
		t.Errorf("Float accessor = %v, %v", f, ok)
	}
	if s, ok := String("hi").Str(); !ok || s != "hi" {
		t.Errorf("Str accessor = %q, %v", s, ok)
	}
	if !Null().IsNull() {
		t.Error("Null().IsNull() = false")
	}
}

func TestWrongKindAccessorFails(t *testing.T) {
	if _, ok := String("x").Int(); ok {
		t.Error("Int() on a string Value should fail")
	}
	if _, ok := Int(1).Str(); ok {
		t.Error("Str() on an int Value should fail")
	}
}

func TestMappingPreservesInsertionOrder(t *testing.T) {
	m := Mapping(
		Pair{Key: "z", Value: Int(1)},
		Pair{Key: "a", Value: Int(2)},
		Pair{Key: "m", Value: Int(3)},
	)
	if got := m.Keys(); !reflect.DeepEqual(got, []string{"z", "a", "m"}) {
		t.Errorf("Keys() = %v, want insertion order [z a m]", got)
	}
	if got := m.SortedKeys(); !reflect.DeepEqual(got, []string{"a", "m", "z"}) {
		t.Errorf("SortedKeys() = %v, want lexical order", got)
	}
}

func TestMappingSetReplacesWithoutDuplicatingKey(t *testing.T) {
	m := NewMapping()
	m.Set("x", Int(1))
	m.Set("x", Int(2))
	if got := m.Keys(); len(got) != 1 {
		t.Fatalf("expected one key after replace, got %v", got)
	}
	v, ok := m.Get("x")
	if !ok {
		t.Fatal("expected x to be present")
	}
	if i, _ := v.Int(); i != 2 {
		t.Errorf("expected replaced value 2, got %d", i)
	}
}

func TestSetOnNonMappingPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected Set on a non-mapping Value to panic")
		}
	}()
	v := Int(1)
	v.Set("x", Int(2))
}

func TestToGoRoundTripsNestedStructure(t *testing.T) {
	v := Mapping(
		Pair{Key: "name", Value: String("sapiens")},
		Pair{Key: "tags", Value: Sequence(String("a"), String("b"))},
		Pair{Key: "nested", Value: Mapping(Pair{Key: "ok", Value: Bool(true)})},
	)
	got := v.ToGo()
	want := map[string]any{
		"name": "sapiens",
		"tags": []any{"a", "b"},
		"nested": map[string]any{
			"ok": true,
		},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ToGo() = %#v, want %#v", got, want)
	}
}

func TestFromGoConvertsDecodedYAMLShapes(t *testing.T) {
	in := map[any]any{
		"tool_name": "dummy",
		"parameters": map[string]any{
			"blah": "x",
			"n":    int(3),
		},
	}
	v := FromGo(in)
	if v.Kind() != KindMapping {
		t.Fatalf("expected a mapping, got %s", v.Kind())
	}
	name, ok := v.Get("tool_name")
	if !ok {
		t.Fatal("expected tool_name key")
	}
	if s, _ := name.Str(); s != "dummy" {
		t.Errorf("tool_name = %q, want dummy", s)
	}
}

func TestFromGoFallsBackToStringForUnknownTypes(t *testing.T) {
	type custom struct{ X int }
	v := FromGo(custom{X: 1})
	s, ok := v.Str()
	if !ok {
		t.Fatal("expected an unrecognized type to coerce to a string Value")
	}
	if s == "" {
		t.Error("expected a non-empty printed form")
	}
}

func TestKindString(t *testing.T) {
	cases := map[Kind]string{
		KindNull:     "null",
		KindBool:     "bool",
		KindInt:      "int",
		KindFloat:    "float",
		KindString:   "string",
		KindSequence: "sequence",
		KindMapping:  "mapping",
	}
	for k, want := range cases {
		if got := k.String(); got != want {
			t.Errorf("Kind(%d).String() = %q, want %q", k, got, want)
		}
	}
}
