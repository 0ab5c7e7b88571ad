package main

import (
	"log/slog"

	"github.com/sapiens-run/sapiens/internal/message"
	"github.com/sapiens-run/sapiens/internal/observability"
	"github.com/sapiens-run/sapiens/internal/runtime"
	"github.com/sapiens-run/sapiens/internal/tool"
	"github.com/sapiens-run/sapiens/internal/usage"
)

// telemetryObserver layers metrics and token-usage accumulation on top of
// the stock LoggingObserver, so a single CLI run gets structured logs, a
// Prometheus-shaped metrics snapshot, and a usage summary without the
// caller juggling three separate hooks.
type telemetryObserver struct {
	logging *runtime.LoggingObserver
	metrics *observability.Metrics
	tracker *usage.Tracker
}

func newTelemetryObserver(logger *slog.Logger, metrics *observability.Metrics, tracker *usage.Tracker) *telemetryObserver {
	return &telemetryObserver{
		logging: runtime.NewLoggingObserver(logger),
		metrics: metrics,
		tracker: tracker,
	}
}

func (o *telemetryObserver) OnTask(task message.Message) {
	o.logging.OnTask(task)
}

func (o *telemetryObserver) OnStart(dump []message.Message) {
	o.logging.OnStart(dump)
}

func (o *telemetryObserver) OnMessage(msg message.Message) {
	o.logging.OnMessage(msg)
	o.tracker.Record(msg.Kind(), msg.Usage())
	o.metrics.RecordStep("message")
}

func (o *telemetryObserver) OnInvocationResult(result message.Message) {
	o.logging.OnInvocationResult(result)

	outcome := "success"
	switch result.Outcome().Kind {
	case message.OutcomeNoValidInvocationsFound, message.OutcomeNoInvocationsFound:
		outcome = "no_invocation"
	case message.OutcomeToolUseError:
		outcome = "tool_error"
	}
	if result.ToolName() != "" {
		o.metrics.RecordToolExecution(result.ToolName(), outcome, 0)
	}
}

func (o *telemetryObserver) OnTermination(messages []tool.TerminationMessage) {
	o.logging.OnTermination(messages)
	o.metrics.RecordStep("terminated")
}

var _ runtime.Observer = (*telemetryObserver)(nil)
