package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// newTestMetrics builds a Metrics using a private registry so tests never
// collide with each other or with NewMetrics' use of the default registry.
func newTestMetrics(t *testing.T) *Metrics {
	t.Helper()
	reg := prometheus.NewRegistry()
	m := &Metrics{
		ModelRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{Name: "test_model_request_duration_seconds", Help: "h"},
			[]string{"provider", "model"}),
		ModelRequestCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "test_model_requests_total", Help: "h"},
			[]string{"provider", "model", "status"}),
		ModelTokensUsed: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "test_model_tokens_total", Help: "h"},
			[]string{"provider", "model", "type"}),
		ContextWindowUsed: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{Name: "test_context_window_tokens", Help: "h"},
			[]string{"provider", "model"}),
		ToolExecutionCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "test_tool_executions_total", Help: "h"},
			[]string{"tool_name", "outcome"}),
		ToolExecutionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{Name: "test_tool_execution_duration_seconds", Help: "h"},
			[]string{"tool_name"}),
		StepCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "test_steps_total", Help: "h"},
			[]string{"status"}),
		ErrorCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "test_errors_total", Help: "h"},
			[]string{"component", "error_kind"}),
	}
	reg.MustRegister(m.ModelRequestDuration, m.ModelRequestCounter, m.ModelTokensUsed,
		m.ContextWindowUsed, m.ToolExecutionCounter, m.ToolExecutionDuration, m.StepCounter, m.ErrorCounter)
	return m
}

func TestRecordModelRequest(t *testing.T) {
	m := newTestMetrics(t)
	m.RecordModelRequest("anthropic", "claude-sonnet", "success", 1.2, 100, 40)
	m.RecordModelRequest("anthropic", "claude-sonnet", "error", 0.1, 0, 0)

	if got := testutil.ToFloat64(m.ModelRequestCounter.WithLabelValues("anthropic", "claude-sonnet", "success")); got != 1 {
		t.Errorf("success counter = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.ModelTokensUsed.WithLabelValues("anthropic", "claude-sonnet", "prompt")); got != 100 {
		t.Errorf("prompt tokens = %v, want 100", got)
	}
	if got := testutil.ToFloat64(m.ModelTokensUsed.WithLabelValues("anthropic", "claude-sonnet", "completion")); got != 40 {
		t.Errorf("completion tokens = %v, want 40", got)
	}
}

func TestRecordContextWindow(t *testing.T) {
	m := newTestMetrics(t)
	m.RecordContextWindow("openai", "gpt-4", 4096)
	if count := testutil.CollectAndCount(m.ContextWindowUsed); count != 1 {
		t.Errorf("expected 1 observation series, got %d", count)
	}
}

func TestRecordToolExecution(t *testing.T) {
	m := newTestMetrics(t)
	m.RecordToolExecution("dummy", "success", 0.01)
	m.RecordToolExecution("dummy", "success", 0.02)
	m.RecordToolExecution("sandbox", "invocation_failed", 0.5)

	if got := testutil.ToFloat64(m.ToolExecutionCounter.WithLabelValues("dummy", "success")); got != 2 {
		t.Errorf("dummy success count = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.ToolExecutionCounter.WithLabelValues("sandbox", "invocation_failed")); got != 1 {
		t.Errorf("sandbox failure count = %v, want 1", got)
	}
}

func TestRecordStep(t *testing.T) {
	m := newTestMetrics(t)
	m.RecordStep("message")
	m.RecordStep("message")
	m.RecordStep("terminated")

	if got := testutil.ToFloat64(m.StepCounter.WithLabelValues("message")); got != 2 {
		t.Errorf("message steps = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.StepCounter.WithLabelValues("terminated")); got != 1 {
		t.Errorf("terminated steps = %v, want 1", got)
	}
}

func TestRecordError(t *testing.T) {
	m := newTestMetrics(t)
	m.RecordError("runtime", "max_steps_reached")
	m.RecordError("runtime", "max_steps_reached")
	m.RecordError("agent", "failed")

	if got := testutil.ToFloat64(m.ErrorCounter.WithLabelValues("runtime", "max_steps_reached")); got != 2 {
		t.Errorf("runtime errors = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.ErrorCounter.WithLabelValues("agent", "failed")); got != 1 {
		t.Errorf("agent errors = %v, want 1", got)
	}
}
