package runtime

import (
	"log/slog"

	"github.com/sapiens-run/sapiens/internal/message"
	"github.com/sapiens-run/sapiens/internal/tool"
)

// Observer hooks are fire-and-forget notifications; implementations must
// not mutate Runtime state. All hooks are optional: embed NullObserver (or
// the default the Runtime installs) to implement only the ones you need.
type Observer interface {
	OnTask(task message.Message)
	OnStart(dump []message.Message)
	OnMessage(msg message.Message)
	OnInvocationResult(result message.Message)
	OnTermination(messages []tool.TerminationMessage)
}

// NullObserver implements Observer with no-ops. It is installed when the
// caller supplies none, so the Runtime never needs to nil-check its
// observer.
type NullObserver struct{}

func (NullObserver) OnTask(message.Message)                        {}
func (NullObserver) OnStart([]message.Message)                      {}
func (NullObserver) OnMessage(message.Message)                      {}
func (NullObserver) OnInvocationResult(message.Message)             {}
func (NullObserver) OnTermination([]tool.TerminationMessage)        {}

// LoggingObserver logs one structured record per hook via slog, at debug
// level for the high-frequency hooks and info for task/termination
// boundaries. It is the default Observer when a caller wants visibility
// without writing their own.
type LoggingObserver struct {
	Logger *slog.Logger
}

// NewLoggingObserver constructs a LoggingObserver; a nil logger defaults to
// slog.Default().
func NewLoggingObserver(logger *slog.Logger) *LoggingObserver {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingObserver{Logger: logger}
}

func (o *LoggingObserver) OnTask(task message.Message) {
	o.Logger.Info("task received", "task", task.Task())
}

func (o *LoggingObserver) OnStart(dump []message.Message) {
	o.Logger.Debug("runtime started", "messages", len(dump))
}

func (o *LoggingObserver) OnMessage(msg message.Message) {
	o.Logger.Debug("message appended", "kind", msg.Kind().String())
}

func (o *LoggingObserver) OnInvocationResult(result message.Message) {
	o.Logger.Debug("invocation result", "tool", result.ToolName(), "outcome", int(result.Outcome().Kind))
}

func (o *LoggingObserver) OnTermination(messages []tool.TerminationMessage) {
	o.Logger.Info("run terminated", "terminations", len(messages))
}
