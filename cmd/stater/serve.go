package main

import (
	"fmt"
	"net"
	"os"

	"github.com/aretw0/stater/internal/cli"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Serves the manifest's bot over HTTP: POST /updates and /telegram dispatch
updates, GET /routes, /graph, /events and /metrics inspect it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ln, err := net.Listen("tcp", cfg.Server.Addr)
		if err != nil {
			return fmt.Errorf("failed to listen on %s: %w", cfg.Server.Addr, err)
		}

		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()
		return cli.RunServer(sigCtx, cfg, ln, os.Stdout, logger)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("addr", "a", ":8080", "Address to listen on")
	serveCmd.Flags().Bool("metrics", true, "Expose Prometheus metrics on /metrics")
	bind(serveCmd.Flags().Lookup("addr"), "server.addr")
	bind(serveCmd.Flags().Lookup("metrics"), "metrics.enabled")
}
