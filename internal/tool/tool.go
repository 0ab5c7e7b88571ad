// Package tool defines the uniform description and invocation surface for a
// tool, and the three nested capability levels a tool can implement.
package tool

import (
	"context"
	"fmt"

	"github.com/sapiens-run/sapiens/internal/value"
)

// TypeTag is a language-neutral label used for documentation and for the
// sandbox's façade code generation (§4.G). Tags are not runtime-enforced.
type TypeTag string

const (
	TypeStr      TypeTag = "str"
	TypeInt      TypeTag = "int"
	TypeFloat    TypeTag = "float"
	TypeBool     TypeTag = "bool"
	TypeDict     TypeTag = "dict"
	TypeList     TypeTag = "list"
	TypeOptional TypeTag = "Optional"
)

// ListOf renders a `list[T]` type tag for the given element tag.
func ListOf(elem TypeTag) TypeTag {
	return TypeTag(fmt.Sprintf("list[%s]", elem))
}

// OptionalOf renders an `Optional[T]` type tag for the given element tag.
func OptionalOf(elem TypeTag) TypeTag {
	return TypeTag(fmt.Sprintf("Optional[%s]", elem))
}

// FieldFormat describes a single field of a parameter or response schema.
type FieldFormat struct {
	Name        string
	Type        TypeTag
	Optional    bool
	Description string
}

// Format is an ordered sequence of fields describing a parameter or response
// schema.
type Format struct {
	Fields []FieldFormat
}

// Field appends a required field and returns the Format for chaining.
func (f Format) Field(name string, tag TypeTag, desc string) Format {
	f.Fields = append(f.Fields, FieldFormat{Name: name, Type: tag, Description: desc})
	return f
}

// OptionalField appends an optional field and returns the Format for chaining.
func (f Format) OptionalField(name string, tag TypeTag, desc string) Format {
	f.Fields = append(f.Fields, FieldFormat{Name: name, Type: tag, Optional: true, Description: desc})
	return f
}

// ToolDescription is the static, uniform description of a tool: name
// (unique, stable), human description, parameter schema, response schema.
type ToolDescription struct {
	Name        string
	Description string
	Parameters  Format
	Response    Format
}

// NewDescription starts building a ToolDescription with a runtime builder,
// in place of the compile-time macros the reference implementation relies
// on: Go has no attribute-macro equivalent, so WithParam/WithResponse play
// the role of the derive annotations while producing an identical on-the-
// wire description.
func NewDescription(name, description string) ToolDescription {
	return ToolDescription{Name: name, Description: description}
}

func (d ToolDescription) WithParam(name string, tag TypeTag, optional bool, desc string) ToolDescription {
	field := FieldFormat{Name: name, Type: tag, Optional: optional, Description: desc}
	d.Parameters.Fields = append(d.Parameters.Fields, field)
	return d
}

func (d ToolDescription) WithResponse(name string, tag TypeTag, optional bool, desc string) ToolDescription {
	field := FieldFormat{Name: name, Type: tag, Optional: optional, Description: desc}
	d.Response.Fields = append(d.Response.Fields, field)
	return d
}

// UseErrorKind is the recoverable tool-use error taxonomy (§4.A, §7).
type UseErrorKind string

const (
	ErrKindToolNotFound   UseErrorKind = "tool_not_found"
	ErrKindInvocationFail UseErrorKind = "invocation_failed"
	ErrKindInvalidInput   UseErrorKind = "invalid_input"
	ErrKindInvalidOutput  UseErrorKind = "invalid_output"
	ErrKindNoActionFound  UseErrorKind = "no_action_found"
)

// UseError is the recoverable error returned by Invoke. It satisfies the
// error interface so it composes with %w wrapping and errors.Is against the
// kind, while carrying enough structure for ActionResult.Outcome and for
// metrics labeling.
type UseError struct {
	Kind    UseErrorKind
	Target  string // tool or field name the error concerns, when applicable
	Message string
}

func (e *UseError) Error() string {
	if e.Target != "" {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Target, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func ToolNotFound(name string) *UseError {
	return &UseError{Kind: ErrKindToolNotFound, Target: name, Message: "tool not registered"}
}

func InvocationFailed(message string) *UseError {
	return &UseError{Kind: ErrKindInvocationFail, Message: message}
}

func InvalidInput(cause string) *UseError {
	return &UseError{Kind: ErrKindInvalidInput, Message: cause}
}

func InvalidOutput(cause string) *UseError {
	return &UseError{Kind: ErrKindInvalidOutput, Message: cause}
}

func NoActionFound() *UseError {
	return &UseError{Kind: ErrKindNoActionFound, Message: "no action was taken"}
}

// TerminationMessage is produced by a terminal tool once per task; it is
// drained by the Runtime to yield a TerminalState.
type TerminationMessage struct {
	OriginalQuestion string
	Conclusion       string
}

// Tool is the base capability: a static description and a synchronous
// invocation. Implementations must be safe to call concurrently from
// multiple goroutines, since the Toolbox may dispatch distinct tools
// concurrently.
type Tool interface {
	Description() ToolDescription
	Invoke(ctx context.Context, input value.Value) (value.Value, *UseError)
}

// TerminalTool is a Tool that can additionally latch a TerminationMessage
// once a conclusion has been reached. TakeDone atomically consumes any
// latched message; subsequent calls return (TerminationMessage{}, false)
// until a new conclusion is latched.
type TerminalTool interface {
	Tool
	TakeDone() (TerminationMessage, bool)
}

// Toolbox is the minimal re-entry surface an AdvancedTool needs: dispatch
// into the registry without risking recursion into other advanced tools.
// It is satisfied by *toolbox.Toolbox; declared here (rather than imported)
// to avoid an import cycle between tool and toolbox.
type Toolbox interface {
	InvokeSimple(ctx context.Context, name string, input value.Value) (value.Value, *UseError)
	Describe() map[string]ToolDescription
	NonAdvancedDescriptions() map[string]ToolDescription
}

// AdvancedTool is a Tool that additionally accepts a Toolbox handle on
// invocation, enabling re-entry into the registry for tools that orchestrate
// other tools (e.g. the sandbox tool). Advanced tools must call
// InvokeSimple, never Invoke, on the handle they receive.
type AdvancedTool interface {
	Tool
	InvokeWithToolbox(ctx context.Context, input value.Value, tb Toolbox) (value.Value, *UseError)
}
