package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aretw0/stater/internal/runtime"
	"github.com/aretw0/stater/pkg/adapters/memory"
	"github.com/aretw0/stater/pkg/domain"
	"github.com/aretw0/stater/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingDispatcher records the maximum number of concurrent dispatches per key.
type countingDispatcher struct {
	mu      sync.Mutex
	running map[domain.StateKey]int
	maxSeen int
}

func (d *countingDispatcher) Dispatch(ctx context.Context, u *domain.Update, store ports.StateStore) (runtime.Outcome, error) {
	key := u.Key()
	d.mu.Lock()
	d.running[key]++
	if d.running[key] > d.maxSeen {
		d.maxSeen = d.running[key]
	}
	d.mu.Unlock()

	time.Sleep(2 * time.Millisecond)

	d.mu.Lock()
	d.running[key]--
	d.mu.Unlock()
	return runtime.Outcome{Handler: "counted"}, nil
}

func TestManager_SerializesSameKey(t *testing.T) {
	mgr := NewManager(memory.NewStore())
	d := &countingDispatcher{running: make(map[domain.StateKey]int)}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			u := domain.NewMessage(1, 1, "hi")
			out, err := mgr.Dispatch(context.Background(), d, &u)
			assert.NoError(t, err)
			assert.Equal(t, "counted", out.Handler)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, d.maxSeen, "same conversation must never run concurrently")
	assert.Equal(t, 0, mgr.activeLocks())
}

func TestManager_DifferentKeysRunInParallel(t *testing.T) {
	mgr := NewManager(memory.NewStore())
	started := make(chan struct{})
	release := make(chan struct{})

	go func() {
		_ = mgr.WithLock(context.Background(), domain.StateKey{ChatID: 1}, func(context.Context) error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	done := make(chan struct{})
	go func() {
		_ = mgr.WithLock(context.Background(), domain.StateKey{ChatID: 2}, func(context.Context) error { return nil })
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on another key blocked")
	}
	close(release)
}

func TestManager_LockLifecycle(t *testing.T) {
	mgr := NewManager(memory.NewStore())
	ctx := context.Background()

	for i := int64(1); i <= 10000; i++ {
		key := domain.StateKey{ChatID: i}
		_ = mgr.WithLock(ctx, key, func(context.Context) error { return nil })
	}

	if n := mgr.activeLocks(); n != 0 {
		t.Errorf("Lock leak detected: %d entries remain", n)
	}
}

type fakeLocker struct {
	locked   atomic.Int32
	unlocked atomic.Int32
	err      error
	ttl      time.Duration
}

func (f *fakeLocker) Lock(ctx context.Context, key domain.StateKey, ttl time.Duration) (ports.UnlockFunc, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.ttl = ttl
	f.locked.Add(1)
	return func(context.Context) error {
		f.unlocked.Add(1)
		return nil
	}, nil
}

func TestManager_DistributedLocker(t *testing.T) {
	locker := &fakeLocker{}
	mgr := NewManager(memory.NewStore(), WithLocker(locker), WithLockTTL(5*time.Second))

	require.NoError(t, mgr.Reset(context.Background(), domain.StateKey{ChatID: 3}))
	assert.Equal(t, int32(1), locker.locked.Load())
	assert.Equal(t, int32(1), locker.unlocked.Load())
	assert.Equal(t, 5*time.Second, locker.ttl)

	locker.err = errors.New("redis down")
	var ran bool
	err := mgr.WithLock(context.Background(), domain.StateKey{ChatID: 3}, func(context.Context) error {
		ran = true
		return nil
	})
	assert.Error(t, err)
	assert.False(t, ran)
}

func TestManager_MalformedUpdateNotLocked(t *testing.T) {
	mgr := NewManager(memory.NewStore(), WithLocker(&fakeLocker{err: errors.New("must not be called")}))
	d := &countingDispatcher{running: make(map[domain.StateKey]int)}

	_, err := mgr.Dispatch(context.Background(), d, &domain.Update{Kind: domain.KindMessage})
	assert.NoError(t, err)
}
