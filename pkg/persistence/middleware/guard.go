package middleware

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/stater/pkg/domain"
	"github.com/aretw0/stater/pkg/ports"
)

// ErrUnknownState is returned when a handler sets a state no route knows about.
var ErrUnknownState = errors.New("unknown state")

type guardMiddleware struct {
	next    ports.StateStore
	allowed map[domain.StateID]struct{}
}

// NewGuardMiddleware creates a middleware that rejects writes of states outside allowed.
// The default state is always allowed. Reads are not checked, so conversations
// stored by an older set of routes keep routing.
func NewGuardMiddleware(allowed ...domain.StateID) Middleware {
	set := make(map[domain.StateID]struct{}, len(allowed))
	for _, s := range allowed {
		set[s] = struct{}{}
	}
	return func(next ports.StateStore) ports.StateStore {
		return &guardMiddleware{next: next, allowed: set}
	}
}

func (m *guardMiddleware) Set(ctx context.Context, key domain.StateKey, state domain.StateID) error {
	if state != domain.DefaultState {
		if _, ok := m.allowed[state]; !ok {
			return fmt.Errorf("%w %q for %s", ErrUnknownState, state, key)
		}
	}
	return m.next.Set(ctx, key, state)
}

func (m *guardMiddleware) Get(ctx context.Context, key domain.StateKey) (domain.StateID, error) {
	return m.next.Get(ctx, key)
}
