// Package toolbox implements the registry of tools keyed by name: it
// dispatches invocations, tracks per-tool usage statistics, and surfaces
// termination messages latched by terminal tools.
package toolbox

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/sapiens-run/sapiens/internal/observability"
	"github.com/sapiens-run/sapiens/internal/tool"
	"github.com/sapiens-run/sapiens/internal/value"
)

// Stats is the usage counter record, one entry per tool name per outcome.
type Stats struct {
	Success  map[string]int
	Error    map[string]int
	NotFound map[string]int
}

func newStats() Stats {
	return Stats{
		Success:  map[string]int{},
		Error:    map[string]int{},
		NotFound: map[string]int{},
	}
}

func (s Stats) clone() Stats {
	out := newStats()
	for k, v := range s.Success {
		out.Success[k] = v
	}
	for k, v := range s.Error {
		out.Error[k] = v
	}
	for k, v := range s.NotFound {
		out.NotFound[k] = v
	}
	return out
}

// Toolbox holds three disjoint keyed tables — plain, advanced, terminal —
// plus the stats record. Names are unique across all three tables. Readers
// (Describe, dispatch lookups) may overlap; mutations (AddTool and friends)
// exclude all other access.
type Toolbox struct {
	mu       sync.RWMutex
	plain    map[string]tool.Tool
	advanced map[string]tool.AdvancedTool
	terminal map[string]tool.TerminalTool
	// terminalOrder preserves registration order for termination_messages().
	terminalOrder []string
	stats         Stats
	logger        *slog.Logger
	tracer        trace.Tracer
	dispatches    metric.Int64Counter
}

// New constructs an empty Toolbox. A nil logger defaults to slog.Default().
func New(logger *slog.Logger) *Toolbox {
	if logger == nil {
		logger = slog.Default()
	}
	meter := otel.Meter("github.com/sapiens-run/sapiens/internal/toolbox")
	counter, err := meter.Int64Counter(
		"sapiens_tool_dispatch_total",
		metric.WithDescription("Tool dispatches by tool name and outcome"),
	)
	if err != nil {
		counter = nil
	}
	return &Toolbox{
		plain:      map[string]tool.Tool{},
		advanced:   map[string]tool.AdvancedTool{},
		terminal:   map[string]tool.TerminalTool{},
		stats:      newStats(),
		logger:     logger,
		tracer:     otel.Tracer("github.com/sapiens-run/sapiens/internal/toolbox"),
		dispatches: counter,
	}
}

// AddTool inserts or replaces a plain tool by its description name.
func (tb *Toolbox) AddTool(t tool.Tool) {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	tb.plain[t.Description().Name] = t
}

// AddAdvancedTool inserts or replaces an advanced tool by its description name.
func (tb *Toolbox) AddAdvancedTool(t tool.AdvancedTool) {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	tb.advanced[t.Description().Name] = t
}

// AddTerminalTool inserts or replaces a terminal tool by its description
// name, recording it at the end of terminalOrder on first insertion.
func (tb *Toolbox) AddTerminalTool(t tool.TerminalTool) {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	name := t.Description().Name
	if _, exists := tb.terminal[name]; !exists {
		tb.terminalOrder = append(tb.terminalOrder, name)
	}
	tb.terminal[name] = t
}

// Describe returns the union of the three tables' descriptions.
func (tb *Toolbox) Describe() map[string]tool.ToolDescription {
	tb.mu.RLock()
	defer tb.mu.RUnlock()
	out := make(map[string]tool.ToolDescription, len(tb.plain)+len(tb.advanced)+len(tb.terminal))
	for name, t := range tb.plain {
		out[name] = t.Description()
	}
	for name, t := range tb.advanced {
		out[name] = t.Description()
	}
	for name, t := range tb.terminal {
		out[name] = t.Description()
	}
	return out
}

// NonAdvancedDescriptions returns the union of the plain and terminal
// tables' descriptions — the set reachable through InvokeSimple, and
// therefore the set the sandbox tool's façade generates methods for.
func (tb *Toolbox) NonAdvancedDescriptions() map[string]tool.ToolDescription {
	tb.mu.RLock()
	defer tb.mu.RUnlock()
	out := make(map[string]tool.ToolDescription, len(tb.plain)+len(tb.terminal))
	for name, t := range tb.plain {
		out[name] = t.Description()
	}
	for name, t := range tb.terminal {
		out[name] = t.Description()
	}
	return out
}

// HasTerminalTools reports whether at least one terminal tool is registered;
// used by Runtime construction as a precondition.
func (tb *Toolbox) HasTerminalTools() bool {
	tb.mu.RLock()
	defer tb.mu.RUnlock()
	return len(tb.terminal) > 0
}

// TerminationMessages drains TakeDone from every terminal tool, in
// registration order. The returned slice is empty iff no terminal tool has
// latched.
func (tb *Toolbox) TerminationMessages() []tool.TerminationMessage {
	tb.mu.RLock()
	order := make([]string, len(tb.terminalOrder))
	copy(order, tb.terminalOrder)
	terms := make(map[string]tool.TerminalTool, len(tb.terminal))
	for k, v := range tb.terminal {
		terms[k] = v
	}
	tb.mu.RUnlock()

	var out []tool.TerminationMessage
	for _, name := range order {
		t, ok := terms[name]
		if !ok {
			continue
		}
		if msg, done := t.TakeDone(); done {
			out = append(out, msg)
		}
	}
	return out
}

// Stats returns a snapshot copy of the usage counters.
func (tb *Toolbox) Stats() Stats {
	tb.mu.RLock()
	defer tb.mu.RUnlock()
	return tb.stats.clone()
}

// ResetStats replaces the usage counters with a fresh, zeroed record.
func (tb *Toolbox) ResetStats() {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	tb.stats = newStats()
}

// Invoke dispatches by trying advanced, then terminal, then plain. On a hit
// it invokes the tool and bumps Success or Error; on a miss it bumps
// NotFound and returns ToolNotFound. Every call records exactly one stats
// bump, one debug log record, one span, and one outcome-labeled OTel
// counter increment.
func (tb *Toolbox) Invoke(ctx context.Context, name string, input value.Value) (value.Value, *tool.UseError) {
	return tb.dispatch(ctx, name, input, true)
}

// InvokeSimple is identical to Invoke except the advanced table is skipped.
// This is the entry point exposed to AdvancedTools so they cannot recurse
// into other advanced tools.
func (tb *Toolbox) InvokeSimple(ctx context.Context, name string, input value.Value) (value.Value, *tool.UseError) {
	return tb.dispatch(ctx, name, input, false)
}

func (tb *Toolbox) dispatch(ctx context.Context, name string, input value.Value, allowAdvanced bool) (value.Value, *tool.UseError) {
	ctx, span := tb.tracer.Start(ctx, "toolbox.dispatch", trace.WithAttributes(attribute.String("tool", name)))
	defer span.End()

	start := time.Now()
	out, useErr := tb.invokeOne(ctx, name, input, allowAdvanced)

	tb.mu.Lock()
	switch {
	case useErr == nil:
		tb.stats.Success[name]++
	case useErr.Kind == tool.ErrKindToolNotFound:
		tb.stats.NotFound[name]++
	default:
		tb.stats.Error[name]++
	}
	tb.mu.Unlock()

	outcome := "success"
	if useErr != nil {
		outcome = string(useErr.Kind)
		observability.RecordSpanError(span, useErr)
	}
	span.SetAttributes(attribute.String("outcome", outcome))
	if tb.dispatches != nil {
		tb.dispatches.Add(ctx, 1, metric.WithAttributes(
			attribute.String("tool", name),
			attribute.String("outcome", outcome),
		))
	}

	tb.logger.Debug("tool dispatch", "tool", name, "outcome", outcome, "duration", time.Since(start))
	return out, useErr
}

func (tb *Toolbox) invokeOne(ctx context.Context, name string, input value.Value, allowAdvanced bool) (value.Value, *tool.UseError) {
	tb.mu.RLock()
	advanced, isAdvanced := tb.advanced[name]
	terminal, isTerminal := tb.terminal[name]
	plain, isPlain := tb.plain[name]
	tb.mu.RUnlock()

	if allowAdvanced && isAdvanced {
		return advanced.InvokeWithToolbox(ctx, input, tb)
	}
	if isTerminal {
		return terminal.Invoke(ctx, input)
	}
	if isPlain {
		return plain.Invoke(ctx, input)
	}
	return value.Value{}, tool.ToolNotFound(name)
}
