package runtime

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/stater/pkg/domain"
	"github.com/aretw0/stater/pkg/ports"
)

// dispatchContext is the route.Context of one dispatch. It is not shared between updates.
type dispatchContext struct {
	update   *domain.Update
	key      domain.StateKey
	state    domain.StateID
	stateErr error
	store    ports.StateStore
	handler  string
	logger   *slog.Logger
}

func (c *dispatchContext) Update() *domain.Update { return c.update }

func (c *dispatchContext) Key() domain.StateKey { return c.key }

func (c *dispatchContext) State() (domain.StateID, error) { return c.state, c.stateErr }

func (c *dispatchContext) Handler() string { return c.handler }

func (c *dispatchContext) Logger() *slog.Logger { return c.logger }

// SetState writes the conversation's next state. On success State reports it.
func (c *dispatchContext) SetState(ctx context.Context, id domain.StateID) error {
	if c.store == nil {
		return fmt.Errorf("%w: no store configured", domain.ErrStateStore)
	}
	if c.key.IsZero() {
		return fmt.Errorf("%w: update has no state key", domain.ErrStateStore)
	}
	if err := c.store.Set(ctx, c.key, id); err != nil {
		return fmt.Errorf("%w: set %s to %s: %w", domain.ErrStateStore, c.key, id, err)
	}
	c.logger.DebugContext(ctx, "state changed", "from", c.state.String(), "to", id.String())
	c.state, c.stateErr = id, nil
	return nil
}

func (c *dispatchContext) ResetState(ctx context.Context) error {
	return c.SetState(ctx, domain.DefaultState)
}
