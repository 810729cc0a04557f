package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"

	mcpadapter "github.com/aretw0/stater/pkg/adapters/mcp"
)

// RunMCP serves the manifest's routes as MCP tools until ctx is done. The stdio
// transport speaks JSON-RPC on in and out; sse listens on cfg.MCP.Addr.
func RunMCP(ctx context.Context, cfg Config, in io.Reader, out io.Writer, logger *slog.Logger) error {
	switch cfg.MCP.Transport {
	case "stdio", "sse":
	default:
		return fmt.Errorf("unknown MCP transport %q (stdio or sse)", cfg.MCP.Transport)
	}

	bot, err := LoadBot(cfg.Manifest, logger, nil)
	if err != nil {
		return err
	}
	srv := mcpadapter.NewServer(bot.Router, logger)

	if cfg.MCP.Transport == "stdio" {
		return srv.ServeStdio(ctx, in, out)
	}
	ln, err := net.Listen("tcp", cfg.MCP.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.MCP.Addr, err)
	}
	return srv.ServeSSE(ctx, ln)
}
