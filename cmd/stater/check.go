package main

import (
	"os"

	"github.com/aretw0/stater/internal/cli"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Compile the manifest and run its cases",
	Long: `Compiles the routes manifest, reporting every malformed or ambiguous route
with the line it was declared on, then runs the manifest's cases.
Exits non-zero when anything fails.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		watch, _ := cmd.Flags().GetBool("watch")
		profile := outputProfile()

		if !watch {
			return cli.RunCheck(cmd.Context(), os.Stdout, cfg.Manifest, profile, logger)
		}

		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()
		return cli.Watch(sigCtx, cfg.Manifest, logger, func() {
			if err := cli.RunCheck(sigCtx, os.Stdout, cfg.Manifest, profile, logger); err != nil {
				logger.Error("Check failed", "err", err)
			}
		})
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().BoolP("watch", "w", false, "Re-run on every manifest change")
}
