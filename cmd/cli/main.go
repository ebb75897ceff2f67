package main

import (
	"fmt"
	"os"

	"ecg-synth/internal/observability"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app carries state shared by subcommands. The logger is built once flags are parsed.
type app struct {
	logger *zap.Logger
}

// newRootCmd builds a fresh command tree, so tests never share flag state.
func newRootCmd() *cobra.Command {
	var (
		logLevel string
		logFile  string
		dev      bool
	)
	a := &app{logger: zap.NewNop()}

	root := &cobra.Command{
		Use:           "ecgsim",
		Short:         "Synthesize PQRST ECG records from presets or scenario files",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			a.logger = observability.FromConfig(observability.Config{
				Level:       logLevel,
				Development: dev,
				File:        logFile,
				MaxSizeMB:   10,
				MaxBackups:  2,
			})
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", envOr("LOG_LEVEL", "warn"), "log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&logFile, "log-file", os.Getenv("LOG_FILE"), "also write JSON logs to this rotated file")
	root.PersistentFlags().BoolVar(&dev, "dev", false, "human-readable console logs")

	root.AddCommand(
		newSimulateCmd(a),
		newPresetsCmd(),
		newCompareCmd(a),
		newStreamCmd(a),
		newListenCmd(a),
	)
	return root
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
