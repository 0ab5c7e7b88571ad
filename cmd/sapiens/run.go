package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/sapiens-run/sapiens/internal/config"
	"github.com/sapiens-run/sapiens/internal/model"
	"github.com/sapiens-run/sapiens/internal/observability"
	"github.com/sapiens-run/sapiens/internal/runtime"
	"github.com/sapiens-run/sapiens/internal/sandbox"
	"github.com/sapiens-run/sapiens/internal/tools"
	"github.com/sapiens-run/sapiens/internal/toolbox"
	"github.com/sapiens-run/sapiens/internal/usage"
)

func buildRunCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "run [task]",
		Short: "Run a single task through the OODA loop",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTask(cmd.Context(), configPath, args[0])
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath(), "Path to the configuration file")
	return cmd
}

func runTask(ctx context.Context, configPath, task string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("sapiens: %w", err)
	}

	logger := observability.NewLogger(observability.LogConfig{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})

	_, shutdownTracing := observability.NewTracerProvider(observability.TraceConfig{
		ServiceName:    "sapiens",
		ServiceVersion: version,
	})
	defer shutdownTracing(context.Background())

	metrics := observability.NewMetrics()

	m, err := model.New(ctx, cfg.ModelRef, model.ProviderConfigFromEnv(), metrics)
	if err != nil {
		return fmt.Errorf("sapiens: %w", err)
	}

	tb := toolbox.New(logger.Slog())
	tb.AddTerminalTool(tools.NewConclude())
	tb.AddTool(tools.NewDummy())
	tb.AddAdvancedTool(sandbox.NewSandbox())

	tracker := usage.NewTracker()
	observer := newTelemetryObserver(logger.Slog(), metrics, tracker)

	runID := uuid.NewString()
	ctx = observability.AddRunID(ctx, runID)

	rt, err := runtime.NewChain(
		runtime.ChainType(cfg.ChainType),
		tb,
		m,
		task,
		cfg.MaxSteps,
		m.ContextSize(),
		cfg.MinTokensForCompletion,
		cfg.MaxTokens,
		observer,
		logger.Slog(),
	)
	if err != nil {
		return fmt.Errorf("sapiens: %w", err)
	}

	terminal, err := rt.Run(ctx)
	if err != nil {
		return fmt.Errorf("sapiens: run %s: %w", runID, err)
	}

	printResult(terminal, tracker)
	return nil
}

func printResult(terminal runtime.TerminalState, tracker *usage.Tracker) {
	var conclusions []string
	for _, msg := range terminal.Messages {
		conclusions = append(conclusions, msg.Conclusion)
	}
	fmt.Println(strings.Join(conclusions, "\n"))
	fmt.Printf("\n(%s, %d messages)\n", tracker.String(), tracker.Entries())
}
