package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/stater/pkg/adapters/file"
	"github.com/aretw0/stater/pkg/adapters/memory"
	"github.com/aretw0/stater/pkg/adapters/redis"
	"github.com/aretw0/stater/pkg/persistence/middleware"
	"github.com/aretw0/stater/pkg/ports"
	"github.com/aretw0/stater/pkg/session"
)

// Backend is an opened state store, with a distributed locker when the driver provides one.
type Backend struct {
	Store  ports.StateStore
	Locker ports.DistributedLocker
	close  func() error
}

// Close releases the store's connections.
func (b *Backend) Close() error {
	if b.close == nil {
		return nil
	}
	return b.close()
}

// Guard makes the store reject writes of states the bot's manifest never mentions.
func (b *Backend) Guard(bot *Bot) {
	b.Store = middleware.NewGuardMiddleware(bot.Manifest.States()...)(b.Store)
}

// Sessions returns a session manager over the backend.
func (b *Backend) Sessions(cfg StoreConfig, logger *slog.Logger) *session.Manager {
	opts := []session.Option{session.WithLogger(logger)}
	if b.Locker != nil {
		opts = append(opts, session.WithLocker(b.Locker), session.WithLockTTL(cfg.Redis.LockTTL))
	}
	return session.NewManager(b.Store, opts...)
}

// OpenStore opens the configured store. Redis is pinged so that a wrong address fails fast.
// States are encrypted at rest when an encryption key is configured.
func OpenStore(ctx context.Context, cfg StoreConfig) (*Backend, error) {
	var mws []middleware.Middleware
	if cfg.EncryptionKey != "" {
		enc, err := encryptionConfig(cfg)
		if err != nil {
			return nil, err
		}
		mws = append(mws, middleware.NewEncryptionMiddleware(enc))
	}

	b, err := openDriver(ctx, cfg)
	if err != nil {
		return nil, err
	}
	b.Store = middleware.Chain(b.Store, mws...)
	return b, nil
}

func encryptionConfig(cfg StoreConfig) (middleware.EncryptionConfig, error) {
	active, err := middleware.ParseKey(cfg.EncryptionKey)
	if err != nil {
		return middleware.EncryptionConfig{}, fmt.Errorf("store.encryption_key: %w", err)
	}
	enc := middleware.EncryptionConfig{ActiveKey: active}
	for i, k := range cfg.FallbackKeys {
		key, err := middleware.ParseKey(k)
		if err != nil {
			return middleware.EncryptionConfig{}, fmt.Errorf("store.fallback_keys[%d]: %w", i, err)
		}
		enc.FallbackKeys = append(enc.FallbackKeys, key)
	}
	return enc, nil
}

func openDriver(ctx context.Context, cfg StoreConfig) (*Backend, error) {
	switch cfg.Driver {
	case "", "memory":
		return &Backend{Store: memory.NewStore()}, nil
	case "file":
		return &Backend{Store: file.New(cfg.Dir)}, nil
	case "redis":
		store := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
			redis.WithPrefix(cfg.Redis.Prefix), redis.WithTTL(cfg.Redis.TTL))
		if err := store.Ping(ctx); err != nil {
			store.Close()
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Redis.Addr, err)
		}
		return &Backend{
			Store:  store,
			Locker: redis.NewLocker(store.Client(), cfg.Redis.Prefix),
			close:  store.Close,
		}, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
}
