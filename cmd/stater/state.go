package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/aretw0/stater/internal/cli"
	"github.com/aretw0/stater/pkg/domain"
	"github.com/spf13/cobra"
)

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Inspect and reset stored conversation states",
	Long:  `Reads or clears conversation states in the configured file or redis store.`,
}

var stateGetCmd = &cobra.Command{
	Use:   "get <chat-id>",
	Short: "Print the state of a conversation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		keys, err := parseKeys(cmd, args)
		if err != nil {
			return err
		}
		return cli.ShowState(cmd.Context(), os.Stdout, cfg.Store, keys[0])
	},
}

var stateResetCmd = &cobra.Command{
	Use:   "reset <chat-id>...",
	Short: "Move conversations back to the default state",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		keys, err := parseKeys(cmd, args)
		if err != nil {
			return err
		}
		return cli.ResetStates(cmd.Context(), os.Stdout, cfg.Store, logger, keys...)
	},
}

func init() {
	rootCmd.AddCommand(stateCmd)
	stateCmd.AddCommand(stateGetCmd)
	stateCmd.AddCommand(stateResetCmd)
	stateCmd.PersistentFlags().Int64("thread", 0, "Forum topic ID")
}

func parseKeys(cmd *cobra.Command, args []string) ([]domain.StateKey, error) {
	thread, _ := cmd.Flags().GetInt64("thread")
	keys := make([]domain.StateKey, len(args))
	for i, a := range args {
		id, err := strconv.ParseInt(a, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid chat id %q", a)
		}
		keys[i] = domain.StateKey{ChatID: id, ThreadID: thread}
	}
	return keys, nil
}
