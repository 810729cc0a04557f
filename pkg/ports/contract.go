package ports

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/stater/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunStateStoreContract runs a suite of tests to verify that a StateStore implementation
// adheres to the defined interface contract.
func RunStateStoreContract(t *testing.T, store StateStore) {
	ctx := context.Background()
	// Distinct keys per run so persistent backends can be reused.
	base := time.Now().UnixNano() % 1_000_000_000

	t.Run("Get Unknown Key", func(t *testing.T) {
		state, err := store.Get(ctx, domain.StateKey{ChatID: base + 1})
		require.NoError(t, err, "unknown keys are not an error")
		assert.Equal(t, domain.DefaultState, state)
	})

	t.Run("Set and Get", func(t *testing.T) {
		key := domain.StateKey{ChatID: base + 2}
		require.NoError(t, store.Set(ctx, key, "onboarding"))

		state, err := store.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, domain.StateID("onboarding"), state)

		require.NoError(t, store.Set(ctx, key, "checkout"))
		state, err = store.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, domain.StateID("checkout"), state, "Set overwrites")

		require.NoError(t, store.Set(ctx, key, domain.DefaultState))
	})

	t.Run("Set Default Clears", func(t *testing.T) {
		key := domain.StateKey{ChatID: base + 3}
		require.NoError(t, store.Set(ctx, key, "onboarding"))
		require.NoError(t, store.Set(ctx, key, domain.DefaultState))

		state, err := store.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, domain.DefaultState, state)

		require.NoError(t, store.Set(ctx, key, domain.DefaultState), "clearing twice is fine")
	})

	t.Run("Threads Are Separate", func(t *testing.T) {
		chat := domain.StateKey{ChatID: base + 4}
		topic := domain.StateKey{ChatID: base + 4, ThreadID: 7}
		require.NoError(t, store.Set(ctx, topic, "in-topic"))

		state, err := store.Get(ctx, chat)
		require.NoError(t, err)
		assert.Equal(t, domain.DefaultState, state)

		state, err = store.Get(ctx, topic)
		require.NoError(t, err)
		assert.Equal(t, domain.StateID("in-topic"), state)

		require.NoError(t, store.Set(ctx, topic, domain.DefaultState))
	})

	t.Run("Concurrent Keys", func(t *testing.T) {
		var wg sync.WaitGroup
		for i := int64(0); i < 16; i++ {
			wg.Add(1)
			go func(i int64) {
				defer wg.Done()
				key := domain.StateKey{ChatID: base + 100 + i}
				want := domain.StateID(fmt.Sprintf("s%d", i))
				assert.NoError(t, store.Set(ctx, key, want))
				got, err := store.Get(ctx, key)
				assert.NoError(t, err)
				assert.Equal(t, want, got)
				assert.NoError(t, store.Set(ctx, key, domain.DefaultState))
			}(i)
		}
		wg.Wait()
	})
}
