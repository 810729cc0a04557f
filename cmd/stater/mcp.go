package main

import (
	"os"

	"github.com/aretw0/stater/internal/cli"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes the manifest's routes to AI agents as MCP tools: explain_update,
list_routes and get_graph, plus the stater://routes resource. No tool runs a
handler or writes state.

Supported Transports:
- stdio (default): JSON-RPC on Standard Input/Output. Logs go to stderr.
- sse: Server-Sent Events over HTTP on --addr.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()
		return cli.RunMCP(sigCtx, cfg, os.Stdin, os.Stdout, logger)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().String("addr", ":8090", "Address to listen on (only for SSE)")
	bind(mcpCmd.Flags().Lookup("transport"), "mcp.transport")
	bind(mcpCmd.Flags().Lookup("addr"), "mcp.addr")
}
