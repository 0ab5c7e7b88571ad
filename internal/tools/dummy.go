package tools

import (
	"context"
	"fmt"

	"github.com/sapiens-run/sapiens/internal/tool"
	"github.com/sapiens-run/sapiens/internal/value"
)

// Dummy is a plain tool used as a fixture for sandbox composition tests
// (§8 S3): {blah: str} -> {something: str}, formatting
// "<blah> and something else".
type Dummy struct{}

func NewDummy() Dummy { return Dummy{} }

func (Dummy) Description() tool.ToolDescription {
	return tool.NewDescription("dummy", "Echoes its input with a fixed suffix; used to exercise tool composition.").
		WithParam("blah", tool.TypeStr, false, "arbitrary input string").
		WithResponse("something", tool.TypeStr, false, "blah, followed by \" and something else\"")
}

func (Dummy) Invoke(ctx context.Context, input value.Value) (value.Value, *tool.UseError) {
	blahVal, ok := input.Get("blah")
	blah, _ := blahVal.Str()
	if !ok {
		return value.Value{}, tool.InvalidInput("missing required field blah")
	}
	something := fmt.Sprintf("%s and something else", blah)
	return value.Mapping(value.Pair{Key: "something", Value: value.String(something)}), nil
}
