package stater_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/stater"
	"github.com/aretw0/stater/internal/compiler"
	"github.com/aretw0/stater/pkg/adapters/memory"
	"github.com/aretw0/stater/pkg/domain"
	"github.com/aretw0/stater/pkg/dsl"
	"github.com/aretw0/stater/pkg/route"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noop(context.Context, route.Context) error { return nil }

func TestNew_ReportsAllConflicts(t *testing.T) {
	core := dsl.New("core")
	core.Command("help").Named("help").Do(noop)
	core.Callback().Named("cb").Do(noop)

	extra := dsl.New("extra")
	extra.Command("help").Named("help").Do(noop)
	extra.Callback().Named("cb").Do(noop)

	_, err := stater.New(route.Concat(core.MustBuild(), extra.MustBuild()))
	require.Error(t, err)
	assert.True(t, errors.Is(err, stater.ErrAmbiguousRoute))
	assert.Contains(t, err.Error(), "core.help")
	assert.Contains(t, err.Error(), "extra.help")
	assert.Contains(t, err.Error(), "core.cb")
	assert.Contains(t, err.Error(), "extra.cb")

	var amb *compiler.AmbiguityError
	require.True(t, errors.As(err, &amb))
	assert.Contains(t, amb.First.Origin(), "stater_test.go:")
}

func TestNew_DisjointTriggersNeverConflict(t *testing.T) {
	var handlers route.List
	for _, k := range domain.Kinds {
		handlers = append(handlers, route.MustNew(string(k), route.Trigger{Kind: k}, noop))
	}
	for _, cmd := range []string{"start", "help", "settings"} {
		handlers = append(handlers,
			route.MustNew(cmd, route.Trigger{Command: cmd}, noop),
			route.MustNew(cmd+"@a", route.Trigger{Command: cmd, Scope: route.InState, State: "a"}, noop),
			route.MustNew(cmd+"@default", route.Trigger{Command: cmd, Scope: route.DefaultOnly}, noop),
		)
	}

	r, err := stater.New(handlers)
	require.NoError(t, err)
	assert.Equal(t, len(handlers), r.Stats().Handlers)
	assert.Len(t, r.Handlers(), len(handlers))
}

func TestRouter_SpecificBeatsGeneralRegardlessOfOrder(t *testing.T) {
	general := route.MustNew("general", route.Trigger{Kind: domain.KindMessage}, noop)
	specific := route.MustNew("specific", route.Trigger{Command: "start"}, noop)

	for _, order := range []route.List{{general, specific}, {specific, general}} {
		r := stater.MustNew(order)
		u := domain.NewMessage(1, 1, "/start")

		out, err := r.Dispatch(context.Background(), &u, nil)
		require.NoError(t, err)
		assert.Equal(t, "specific", out.Handler)
	}
}

func TestRouter_EarlierWinsAmongEquals(t *testing.T) {
	first := route.MustNew("first", route.Trigger{Kind: domain.KindMessage, When: route.TextPrefix("a")}, noop)
	second := route.MustNew("second", route.Trigger{Kind: domain.KindMessage, When: route.TextPrefix("ab")}, noop)

	r := stater.MustNew(route.List{first, second})
	u := domain.NewMessage(1, 1, "abc")
	out, err := r.Dispatch(context.Background(), &u, memory.NewStore())
	require.NoError(t, err)
	assert.Equal(t, "first", out.Handler)

	r = stater.MustNew(route.List{second, first})
	out, err = r.Dispatch(context.Background(), &u, memory.NewStore())
	require.NoError(t, err)
	assert.Equal(t, "second", out.Handler)
}

func TestRouter_MalformedDeclarations(t *testing.T) {
	_, err := route.New("", route.Trigger{Kind: domain.KindCallbackQuery, Command: "start"}, noop)
	assert.ErrorIs(t, err, stater.ErrMalformedTrigger)

	_, err = stater.New(route.List{nil})
	assert.ErrorIs(t, err, compiler.ErrNilHandler)
}

func TestRouter_UnknownKindWithoutCatchAll(t *testing.T) {
	var fellBack bool
	r := stater.MustNew(
		route.List{route.MustNew("start", route.Trigger{Command: "start"}, noop)},
		stater.WithDefault(func(context.Context, route.Context) error {
			fellBack = true
			return nil
		}),
	)

	u := &domain.Update{Kind: domain.KindShippingQuery, UserID: 9}
	out, err := r.Dispatch(context.Background(), u, nil)
	require.NoError(t, err)
	assert.True(t, out.Fallback)
	assert.Equal(t, stater.DefaultHandlerName, out.Handler)
	assert.True(t, fellBack)
}

func TestRouter_HooksAndMiddleware(t *testing.T) {
	var events int
	var wrapped int
	r := stater.MustNew(
		route.List{route.MustNew("start", route.Trigger{Command: "start"}, noop)},
		stater.WithHooks(domain.Hooks{
			OnDispatch: func(context.Context, *domain.DispatchEvent) { events++ },
		}),
		stater.WithMiddleware(func(next route.Action) route.Action {
			return func(ctx context.Context, c route.Context) error {
				wrapped++
				return next(ctx, c)
			}
		}),
	)

	u := domain.NewMessage(1, 1, "/start")
	_, err := r.Dispatch(context.Background(), &u, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, events)
	assert.Equal(t, 1, wrapped)
}

func TestRouter_Explain(t *testing.T) {
	r := stater.MustNew(route.List{
		route.MustNew("start", route.Trigger{Command: "start", Scope: route.InState, State: "menu"}, noop),
	})

	u := domain.NewMessage(1, 1, "/start")
	assert.Equal(t, "start", r.Explain(&u, "menu").Selected)
	assert.True(t, r.Explain(&u, domain.DefaultState).Fallback)
}
