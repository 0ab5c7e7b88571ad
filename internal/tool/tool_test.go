package tool

import "testing"

func TestDescriptionBuilderOrdersFieldsAsDeclared(t *testing.T) {
	d := NewDescription("dummy", "an example tool").
		WithParam("blah", TypeStr, false, "required").
		WithParam("extra", TypeInt, true, "optional").
		WithResponse("something", TypeStr, false, "result")

	if d.Name != "dummy" || d.Description != "an example tool" {
		t.Fatalf("unexpected description fields: %+v", d)
	}
	if len(d.Parameters.Fields) != 2 {
		t.Fatalf("expected 2 parameter fields, got %d", len(d.Parameters.Fields))
	}
	if d.Parameters.Fields[0].Name != "blah" || d.Parameters.Fields[0].Optional {
		t.Errorf("first field should be required %q, got %+v", "blah", d.Parameters.Fields[0])
	}
	if d.Parameters.Fields[1].Name != "extra" || !d.Parameters.Fields[1].Optional {
		t.Errorf("second field should be optional %q, got %+v", "extra", d.Parameters.Fields[1])
	}
	if len(d.Response.Fields) != 1 || d.Response.Fields[0].Name != "something" {
		t.Errorf("unexpected response fields: %+v", d.Response.Fields)
	}
}

func TestTypeTagComposition(t *testing.T) {
	if got := ListOf(TypeStr); got != "list[str]" {
		t.Errorf("ListOf(TypeStr) = %q, want list[str]", got)
	}
	if got := OptionalOf(TypeInt); got != "Optional[int]" {
		t.Errorf("OptionalOf(TypeInt) = %q, want Optional[int]", got)
	}
}

func TestUseErrorConstructorsSetKind(t *testing.T) {
	cases := []struct {
		err  *UseError
		kind UseErrorKind
	}{
		{ToolNotFound("x"), ErrKindToolNotFound},
		{InvocationFailed("boom"), ErrKindInvocationFail},
		{InvalidInput("bad field"), ErrKindInvalidInput},
		{InvalidOutput("bad result"), ErrKindInvalidOutput},
		{NoActionFound(), ErrKindNoActionFound},
	}
	for _, c := range cases {
		if c.err.Kind != c.kind {
			t.Errorf("expected kind %q, got %q", c.kind, c.err.Kind)
		}
		if c.err.Error() == "" {
			t.Error("expected a non-empty error message")
		}
	}
}

func TestUseErrorMessageIncludesTargetWhenSet(t *testing.T) {
	err := ToolNotFound("nonexistent")
	if got := err.Error(); got != "tool_not_found: nonexistent: tool not registered" {
		t.Errorf("Error() = %q", got)
	}

	noTarget := InvalidInput("missing field")
	if got := noTarget.Error(); got != "invalid_input: missing field" {
		t.Errorf("Error() = %q", got)
	}
}
