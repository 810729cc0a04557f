package main

import (
	"os"

	"github.com/aretw0/stater/internal/cli"
	"github.com/aretw0/stater/internal/presentation/graph"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Print the compiled decision tree",
	Long:  `Prints the decision tree level by level (kind, command, state) with each leaf's handlers in evaluation order.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		bot, err := cli.LoadBot(cfg.Manifest, logger, nil)
		if err != nil {
			return err
		}
		return graph.RenderTree(os.Stdout, bot.Router.Table(), outputProfile())
	},
}

func init() {
	rootCmd.AddCommand(treeCmd)
}

// outputProfile returns the terminal's color profile, or Ascii when stdout is not a terminal.
func outputProfile() termenv.Profile {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return termenv.Ascii
	}
	return termenv.EnvColorProfile()
}
