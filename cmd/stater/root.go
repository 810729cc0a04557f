package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/stater/internal/cli"
	"github.com/spf13/cobra"
)

var (
	v      = cli.NewViper()
	cfg    cli.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "stater",
	Short: "Stater compiles conversational bot routes into a dispatch table",
	Long: `Stater reads a routes manifest, checks it for ambiguous declarations and
runs it against updates from stdin, HTTP webhooks or fixtures.

Every flag can also be set with a STATER_ environment variable
(STATER_STORE_DRIVER, STATER_SERVER_ADDR...) or in a config file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("config")
		var err error
		if cfg, err = cli.LoadConfig(v, file); err != nil {
			return err
		}
		logger, err = cli.NewLogger(cfg.Log)
		return err
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Config file (yaml, json or toml)")
	flags.StringP("manifest", "m", "routes.yaml", "Routes manifest")
	flags.String("log-level", "info", "Log level: debug, info, warn or error")
	flags.Bool("log-json", false, "Log as JSON lines")
	flags.String("store", "memory", "State store: memory, file or redis")
	flags.String("state-dir", ".stater/state", "Directory of the file store")
	flags.String("redis-addr", "localhost:6379", "Redis address")
	flags.Bool("strict-states", false, "Reject writes of states the manifest never mentions")

	bind(flags.Lookup("manifest"), "manifest")
	bind(flags.Lookup("log-level"), "log.level")
	bind(flags.Lookup("log-json"), "log.json")
	bind(flags.Lookup("store"), "store.driver")
	bind(flags.Lookup("state-dir"), "store.dir")
	bind(flags.Lookup("redis-addr"), "store.redis.addr")
	bind(flags.Lookup("strict-states"), "store.strict")
}
