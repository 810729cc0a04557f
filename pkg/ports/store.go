package ports

import (
	"context"

	"github.com/aretw0/stater/pkg/domain"
)

// StateStore persists the conversation state of each chat or user.
// Implementations must be safe for concurrent use.
type StateStore interface {
	// Get returns the state of key, or domain.DefaultState if none was set.
	// An unknown key is not an error.
	Get(ctx context.Context, key domain.StateKey) (domain.StateID, error)

	// Set records the state of key. Setting domain.DefaultState clears the key.
	Set(ctx context.Context, key domain.StateKey, state domain.StateID) error
}
