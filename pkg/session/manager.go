package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"log/slog"

	"github.com/aretw0/stater/internal/logging"
	"github.com/aretw0/stater/internal/runtime"
	"github.com/aretw0/stater/pkg/domain"
	"github.com/aretw0/stater/pkg/ports"
)

// DefaultLockTTL bounds how long a crashed replica can hold a distributed lock.
const DefaultLockTTL = 30 * time.Second

// Dispatcher is satisfied by *stater.Router.
type Dispatcher interface {
	Dispatch(ctx context.Context, u *domain.Update, store ports.StateStore) (runtime.Outcome, error)
}

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates conversation access, ensuring safe concurrent operations.
// It uses Reference Counting to garbage collect unused locks.
type Manager struct {
	store ports.StateStore

	mu    sync.Mutex                     // Global lock for the map
	locks map[domain.StateKey]*lockEntry // Map of active locks

	locker  ports.DistributedLocker // Optional distributed locker
	lockTTL time.Duration
	logger  *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the expiry of distributed locks.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.lockTTL = ttl
		}
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a new Manager over store.
func NewManager(store ports.StateStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[domain.StateKey]*lockEntry),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(), // Default to no-op
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(key) after unlocking.
func (m *Manager) acquire(key domain.StateKey) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[key]
	if !exists {
		entry = &lockEntry{}
		m.locks[key] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(key domain.StateKey) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[key]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, key)
	}
}

// activeLocks returns the number of keys currently locked or waited on.
func (m *Manager) activeLocks() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.locks)
}

// Store returns the underlying state store.
func (m *Manager) Store() ports.StateStore {
	return m.store
}

// WithLock executes fn while holding the lock for key.
func (m *Manager) WithLock(ctx context.Context, key domain.StateKey, fn func(context.Context) error) error {
	entry := m.acquire(key)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(key)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, key, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock for %s: %w", key, err)
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"key", key.String(),
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}

// Dispatch runs one update through d while holding its conversation's lock.
// Malformed updates have no key and are dispatched without locking.
func (m *Manager) Dispatch(ctx context.Context, d Dispatcher, u *domain.Update) (runtime.Outcome, error) {
	if u.Validate() != nil {
		return d.Dispatch(ctx, u, m.store)
	}

	var out runtime.Outcome
	var dispatchErr error
	err := m.WithLock(ctx, u.Key(), func(ctx context.Context) error {
		out, dispatchErr = d.Dispatch(ctx, u, m.store)
		return nil
	})
	if err != nil {
		return out, err
	}
	return out, dispatchErr
}

// Reset moves a conversation back to the default state.
func (m *Manager) Reset(ctx context.Context, key domain.StateKey) error {
	return m.WithLock(ctx, key, func(ctx context.Context) error {
		return m.store.Set(ctx, key, domain.DefaultState)
	})
}
