package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/xinkaiwang/tabuplacer/libs/xklib/klogging"
	"github.com/xinkaiwang/tabuplacer/services/tabuplacer/internal/common"
)

func main() {
	ctx := context.Background()
	command := newTabuplacerCommand(ctx)
	if err := command.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

func newTabuplacerCommand(ctx context.Context) *cobra.Command {
	opts := NewPlacerOptions()

	cmd := &cobra.Command{
		Use:   "tabuplacer",
		Short: "Balance workloads across capacity-bounded resources with tabu search",
		Long: `tabuplacer assigns every workload to exactly one resource so that resource
utilizations are as even as possible, penalizing load above capacity.

The instance comes from --instance (json or yaml), from --etcd-key, or, when
neither is given, from a built-in example of 5 resources and 15 workloads.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.Validate(); err != nil {
				return err
			}
			setupLogging(ctx, opts)
			klogging.Info(ctx).
				With("version", common.GetVersion()).
				With("sessionId", common.GetSessionId()).
				With("startTime", common.GetStartTimeMs()).
				Log("TabuplacerStarting", "")

			stopMetrics, err := startMetricsServer(ctx, opts.MetricsPort)
			if err != nil {
				return err
			}
			defer stopMetrics()
			return runPlacer(ctx, opts, cmd.Flags(), cmd.OutOrStdout())
		},
	}
	opts.AddFlags(cmd.Flags())
	return cmd
}

func setupLogging(ctx context.Context, opts *PlacerOptions) {
	logrusLogger := klogging.NewLogrusLogger(ctx).WithMetricsReporter(NewLoggerMetricsReporter())
	logrusLogger.SetConfig(ctx, opts.LogLevel, opts.LogFormat)
	klogging.SetDefaultLogger(logrusLogger)
	klogging.Info(ctx).With("logLevel", opts.LogLevel).With("logFormat", opts.LogFormat).Log("LogLevelSet", "")
}
