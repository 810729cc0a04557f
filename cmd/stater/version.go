package main

import (
	"os"

	"github.com/aretw0/stater"
	"github.com/aretw0/stater/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of stater",
	Run: func(cmd *cobra.Command, args []string) {
		tui.PrintBanner(os.Stdout, "stater version "+stater.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
