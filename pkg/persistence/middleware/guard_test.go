package middleware_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/stater/pkg/adapters/memory"
	"github.com/aretw0/stater/pkg/domain"
	"github.com/aretw0/stater/pkg/persistence/middleware"
)

func TestGuardMiddleware(t *testing.T) {
	ctx := context.Background()
	key := domain.StateKey{ChatID: 9}
	store := middleware.NewGuardMiddleware("asking_name", "confirming")(memory.NewStore())

	if err := store.Set(ctx, key, "asking_name"); err != nil {
		t.Fatalf("Set of a known state failed: %v", err)
	}

	err := store.Set(ctx, key, "askng_name")
	if !errors.Is(err, middleware.ErrUnknownState) {
		t.Fatalf("Expected ErrUnknownState, got %v", err)
	}

	state, err := store.Get(ctx, key)
	if err != nil {
		t.Fatal(err)
	}
	if state != "asking_name" {
		t.Errorf("Rejected write must not change the state, got %q", state)
	}

	if err := store.Set(ctx, key, domain.DefaultState); err != nil {
		t.Errorf("Clearing must always be allowed: %v", err)
	}
}

func TestChain_Order(t *testing.T) {
	ctx := context.Background()
	key := domain.StateKey{ChatID: 3}
	backend := memory.NewStore()

	// The guard sees plain states because it is outermost.
	store := middleware.Chain(backend,
		middleware.NewGuardMiddleware("paying"),
		middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)}),
	)

	if err := store.Set(ctx, key, "paying"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	state, err := store.Get(ctx, key)
	if err != nil || state != "paying" {
		t.Fatalf("Get = %q, %v", state, err)
	}
	if raw, _ := backend.Get(ctx, key); raw == "paying" {
		t.Error("Expected the backend to hold ciphertext")
	}
}
