package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"

	httpadapter "github.com/aretw0/stater/pkg/adapters/http"
	"github.com/aretw0/stater/pkg/domain"
	"github.com/aretw0/stater/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// RunServer serves the manifest's bot over HTTP on ln until ctx is done, then
// shuts down gracefully within cfg.Server.ShutdownTimeout. Replies go to replies.
func RunServer(ctx context.Context, cfg Config, ln net.Listener, replies io.Writer, logger *slog.Logger) error {
	streams := httpadapter.NewStreamManager(logger)
	hooks := []domain.Hooks{streams.Hooks()}

	var gatherer prometheus.Gatherer
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		metrics, err := observability.NewMetrics(reg, cfg.Metrics.Namespace)
		if err != nil {
			return err
		}
		hooks = append(hooks, metrics.Hooks())
		gatherer = reg
	}

	bot, err := LoadBot(cfg.Manifest, logger, WriterReplier(replies), hooks...)
	if err != nil {
		return err
	}

	backend, err := OpenStore(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer backend.Close()
	if cfg.Store.Strict {
		backend.Guard(bot)
	}

	srv := &http.Server{
		Handler: httpadapter.NewHandler(httpadapter.Config{
			Router:   bot.Router,
			Sessions: backend.Sessions(cfg.Store, logger),
			Streams:  streams,
			Gatherer: gatherer,
			Logger:   logger,
		}),
		BaseContext: func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("Starting stater server", "addr", ln.Addr().String(), "store", cfg.Store.Driver)
		serverErrors <- srv.Serve(ln)
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case <-ctx.Done():
		logger.Info("Start shutdown")

		// Give outstanding requests a deadline for completion.
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Graceful shutdown did not complete", "timeout", cfg.Server.ShutdownTimeout, "err", err)
			if err := srv.Close(); err != nil {
				return fmt.Errorf("failed to stop server: %w", err)
			}
		}
		logger.Info("Stater server stopped gracefully")
		return nil
	}
}
