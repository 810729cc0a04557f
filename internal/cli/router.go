package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/aretw0/stater"
	"github.com/aretw0/stater/internal/manifest"
	"github.com/aretw0/stater/pkg/domain"
	"github.com/aretw0/stater/pkg/observability"
	"github.com/aretw0/stater/pkg/route"
)

// Bot is a router loaded from a manifest.
type Bot struct {
	Manifest *manifest.Manifest
	Router   *stater.Router
}

// LoadBot reads the manifest at path and compiles it. Replies are passed to reply;
// a nil reply discards them. Router hooks always include debug logging.
func LoadBot(path string, logger *slog.Logger, reply manifest.Replier, hooks ...domain.Hooks) (*Bot, error) {
	m, err := manifest.Load(path)
	if err != nil {
		return nil, err
	}
	hooks = append(hooks, observability.LogHooks(logger))
	r, err := m.Router(reply,
		stater.WithLogger(logger),
		stater.WithHooks(observability.Combine(hooks...)))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	logger.Info("Routes loaded", "manifest", path, "handlers", r.Stats().Handlers)
	return &Bot{Manifest: m, Router: r}, nil
}

// WriterReplier prints each reply as "[key] text" to w. Safe for concurrent use.
func WriterReplier(w io.Writer) manifest.Replier {
	var mu sync.Mutex
	return func(_ context.Context, c route.Context, text string) error {
		mu.Lock()
		defer mu.Unlock()
		_, err := fmt.Fprintf(w, "[%s] %s\n", c.Key(), text)
		return err
	}
}
