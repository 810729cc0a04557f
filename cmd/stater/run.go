package main

import (
	"fmt"
	"io"
	"os"

	"github.com/aretw0/stater/internal/cli"
	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run [updates.jsonl]",
	Short: "Route updates from a file or stdin",
	Long: `Reads one update per line, as a JSON object or as plain text for chat 1,
and routes each through the manifest. One JSON result line per update goes to
stdout, replies go to stderr. Updates of one conversation are handled in order.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var in io.Reader = os.Stdin
		if len(args) > 0 {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open updates: %w", err)
			}
			defer f.Close()
			in = f
		}

		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()

		err := cli.RunPipeline(sigCtx, cfg, in, os.Stdout, os.Stderr, logger)
		if sig := sigCtx.Signal(); sig != nil {
			logger.Info("Interrupted", "signal", sig.String())
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().Int("workers", 4, "Concurrent workers")
	runCmd.Flags().Int("queue-size", 64, "Per-worker queue size")
	bind(runCmd.Flags().Lookup("workers"), "runner.workers")
	bind(runCmd.Flags().Lookup("queue-size"), "runner.queue_size")
}
