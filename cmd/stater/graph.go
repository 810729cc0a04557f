package main

import (
	"fmt"

	"github.com/aretw0/stater/internal/cli"
	"github.com/aretw0/stater/internal/presentation/graph"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the decision tree visualization",
	Long: `Compiles the manifest and outputs a Mermaid diagram (graph LR) of the decision tree.
With --text or --kind, the path such an update takes is highlighted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		bot, err := cli.LoadBot(cfg.Manifest, logger, nil)
		if err != nil {
			return err
		}

		var overlay *graph.Overlay
		if cmd.Flags().Changed("text") || cmd.Flags().Changed("kind") {
			u, state, err := updateFromFlags(cmd)
			if err != nil {
				return err
			}
			overlay = &graph.Overlay{Path: bot.Router.Explain(&u, state).Path}
		}

		fmt.Print(graph.GenerateMermaid(bot.Router.Table(), overlay))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	addUpdateFlags(graphCmd)
}
