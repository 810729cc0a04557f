package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/stater/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// DefaultPrefix is prepended to every state key.
const DefaultPrefix = "stater:state:"

// Store implements ports.StateStore using Redis.
// Each conversation is one string key holding its state ID.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*Store)

// WithTTL expires conversations left untouched for ttl. Zero keeps them forever.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: DefaultPrefix,
	}

	for _, opt := range opts {
		opt(store)
	}

	return store
}

// Client returns the underlying client, for sharing it with a Locker.
func (s *Store) Client() *backend.Client { return s.client }

func (s *Store) key(key domain.StateKey) string {
	return s.prefix + key.String()
}

// Get returns the stored state, or domain.DefaultState for a missing or expired key.
func (s *Store) Get(ctx context.Context, key domain.StateKey) (domain.StateID, error) {
	val, err := s.client.Get(ctx, s.key(key)).Result()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return domain.DefaultState, nil
		}
		return domain.DefaultState, fmt.Errorf("failed to get state from redis: %w", err)
	}
	return domain.StateID(val), nil
}

// Set writes the state with the configured TTL. domain.DefaultState deletes the key.
func (s *Store) Set(ctx context.Context, key domain.StateKey, state domain.StateID) error {
	if state == domain.DefaultState {
		if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
			return fmt.Errorf("failed to clear state in redis: %w", err)
		}
		return nil
	}
	if err := s.client.Set(ctx, s.key(key), string(state), s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save state to redis: %w", err)
	}
	return nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
