package ports

import (
	"context"
	"time"

	"github.com/aretw0/stater/pkg/domain"
)

// UnlockFunc is a function that releases a distributed lock.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker serializes work on one conversation across multiple instances (replicas).
type DistributedLocker interface {
	// Lock blocks until the lock for key is acquired or ctx is done.
	// The lock expires after ttl if never released.
	// Returns an UnlockFunc that MUST be called to release the lock.
	Lock(ctx context.Context, key domain.StateKey, ttl time.Duration) (UnlockFunc, error)
}
