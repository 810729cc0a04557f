package cli

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/aretw0/stater/pkg/domain"
	"github.com/aretw0/stater/pkg/runner"
)

// RunPipeline reads updates as JSON lines (or plain text) from in, routes them
// through the manifest's bot with the configured store, writes one result line
// per update to out and replies to replies. It returns when in is exhausted
// and every update was handled, or when ctx is done.
func RunPipeline(ctx context.Context, cfg Config, in io.Reader, out, replies io.Writer, logger *slog.Logger) error {
	bot, err := LoadBot(cfg.Manifest, logger, WriterReplier(replies))
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

	enc := runner.NewResultEncoder(out)
	pool := runner.New(bot.Router, backend.Sessions(cfg.Store, logger),
		runner.WithWorkers(cfg.Runner.Workers),
		runner.WithQueueSize(cfg.Runner.QueueSize),
		runner.WithLogger(logger),
		runner.WithResultHandler(func(r runner.Result) {
			if err := enc.Encode(r); err != nil {
				logger.Error("Result encode failed", "err", err)
			}
		}))

	// The decoder may block on a terminal read; it is not waited for after cancellation.
	updates := make(chan domain.Update)
	decodeErr := make(chan error, 1)
	go func() {
		defer close(updates)
		decodeErr <- runner.DecodeUpdates(ctx, in, updates)
	}()

	if err := pool.Run(ctx, updates); err != nil {
		if errors.Is(err, context.Canceled) && ctx.Err() != nil {
			return nil // Exit 0 for interruptions
		}
		return err
	}
	return <-decodeErr
}
