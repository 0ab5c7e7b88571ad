package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics is a centralized interface for the Prometheus metrics a Runtime
// exposes: model call latency and token consumption, tool dispatch outcomes,
// and step-level error rates.
type Metrics struct {
	// ModelRequestDuration measures model query latency in seconds.
	// Labels: provider, model.
	ModelRequestDuration *prometheus.HistogramVec

	// ModelRequestCounter counts model queries by provider, model, and status.
	ModelRequestCounter *prometheus.CounterVec

	// ModelTokensUsed tracks token consumption by provider, model, and type
	// (prompt|completion).
	ModelTokensUsed *prometheus.CounterVec

	// ContextWindowUsed tracks how much of a model's context window a query
	// consumed.
	ContextWindowUsed *prometheus.HistogramVec

	// ToolExecutionCounter counts tool invocations by tool name and outcome
	// (success|tool_not_found|invocation_failed|invalid_input|invalid_output).
	ToolExecutionCounter *prometheus.CounterVec

	// ToolExecutionDuration measures tool execution time in seconds.
	ToolExecutionDuration *prometheus.HistogramVec

	// StepCounter counts Runtime.Step outcomes by status (message|terminated|
	// max_steps_reached|agent_failed).
	StepCounter *prometheus.CounterVec

	// ErrorCounter tracks errors by component and error kind.
	ErrorCounter *prometheus.CounterVec
}

// NewMetrics creates and registers all Prometheus metrics against the
// default registry. Call once at process startup.
func NewMetrics() *Metrics {
	return &Metrics{
		ModelRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sapiens_model_request_duration_seconds",
				Help:    "Duration of model queries in seconds",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
			},
			[]string{"provider", "model"},
		),
		ModelRequestCounter: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sapiens_model_requests_total",
				Help: "Total number of model queries by provider, model, and status",
			},
			[]string{"provider", "model", "status"},
		),
		ModelTokensUsed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sapiens_model_tokens_total",
				Help: "Total number of tokens used by provider, model, and type",
			},
			[]string{"provider", "model", "type"},
		),
		ContextWindowUsed: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sapiens_context_window_tokens",
				Help:    "Context window tokens consumed per query",
				Buckets: []float64{1000, 4000, 8000, 16000, 32000, 64000, 128000},
			},
			[]string{"provider", "model"},
		),
		ToolExecutionCounter: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sapiens_tool_executions_total",
				Help: "Total number of tool executions by tool name and outcome",
			},
			[]string{"tool_name", "outcome"},
		),
		ToolExecutionDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sapiens_tool_execution_duration_seconds",
				Help:    "Duration of tool executions in seconds",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
			},
			[]string{"tool_name"},
		),
		StepCounter: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sapiens_steps_total",
				Help: "Total number of Runtime.Step calls by outcome",
			},
			[]string{"status"},
		),
		ErrorCounter: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sapiens_errors_total",
				Help: "Total number of errors by component and error kind",
			},
			[]string{"component", "error_kind"},
		),
	}
}

// RecordModelRequest records metrics for a single model query.
func (m *Metrics) RecordModelRequest(provider, model, status string, durationSeconds float64, promptTokens, completionTokens int) {
	m.ModelRequestCounter.WithLabelValues(provider, model, status).Inc()
	m.ModelRequestDuration.WithLabelValues(provider, model).Observe(durationSeconds)
	if promptTokens > 0 {
		m.ModelTokensUsed.WithLabelValues(provider, model, "prompt").Add(float64(promptTokens))
	}
	if completionTokens > 0 {
		m.ModelTokensUsed.WithLabelValues(provider, model, "completion").Add(float64(completionTokens))
	}
}

// RecordContextWindow records context window utilization for a query.
func (m *Metrics) RecordContextWindow(provider, model string, tokensUsed int) {
	m.ContextWindowUsed.WithLabelValues(provider, model).Observe(float64(tokensUsed))
}

// RecordToolExecution records metrics for a tool dispatch.
func (m *Metrics) RecordToolExecution(toolName, outcome string, durationSeconds float64) {
	m.ToolExecutionCounter.WithLabelValues(toolName, outcome).Inc()
	m.ToolExecutionDuration.WithLabelValues(toolName).Observe(durationSeconds)
}

// RecordStep records the outcome of a single Runtime.Step call.
func (m *Metrics) RecordStep(status string) {
	m.StepCounter.WithLabelValues(status).Inc()
}

// RecordError increments the error counter for a given component and error kind.
func (m *Metrics) RecordError(component, errorKind string) {
	m.ErrorCounter.WithLabelValues(component, errorKind).Inc()
}
