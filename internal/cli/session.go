package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/stater/pkg/domain"
)

// ShowState prints the stored state of one conversation.
func ShowState(ctx context.Context, w io.Writer, cfg StoreConfig, key domain.StateKey) error {
	backend, err := OpenStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer backend.Close()

	state, err := backend.Store.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", key, err)
	}
	fmt.Fprintf(w, "%s\t%s\n", key, state)
	return nil
}

// ResetStates moves each conversation back to the default state, under its lock.
func ResetStates(ctx context.Context, w io.Writer, cfg StoreConfig, logger *slog.Logger, keys ...domain.StateKey) error {
	backend, err := OpenStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer backend.Close()

	sessions := backend.Sessions(cfg, logger)
	var failed int
	for _, key := range keys {
		if err := sessions.Reset(ctx, key); err != nil {
			fmt.Fprintf(w, "Error resetting '%s': %v\n", key, err)
			failed++
			continue
		}
		fmt.Fprintf(w, "Reset '%s'\n", key)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d conversations not reset", failed, len(keys))
	}
	return nil
}
