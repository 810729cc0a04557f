package runtime_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/aretw0/stater/internal/compiler"
	"github.com/aretw0/stater/internal/runtime"
	"github.com/aretw0/stater/pkg/adapters/memory"
	"github.com/aretw0/stater/pkg/domain"
	"github.com/aretw0/stater/pkg/route"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder collects the names of invoked handlers.
type recorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *recorder) action(name string) route.Action {
	return func(ctx context.Context, c route.Context) error {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.calls = append(r.calls, name)
		return nil
	}
}

func (r *recorder) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func newDispatcher(t *testing.T, list route.List, opts ...runtime.DispatcherOption) *runtime.Dispatcher {
	t.Helper()
	tbl, err := compiler.Compile(list)
	require.NoError(t, err)
	return runtime.NewDispatcher(tbl, opts...)
}

func msg(text string) *domain.Update {
	u := domain.NewMessage(100, 7, text)
	return &u
}

func TestDispatch_StartScenario(t *testing.T) {
	rec := &recorder{}
	list := route.List{
		route.MustNew("A", route.Trigger{Command: "start", Scope: route.DefaultOnly}, rec.action("A")),
		route.MustNew("B", route.Trigger{Command: "start", Scope: route.InState, State: "onboarding"}, rec.action("B")),
	}
	d := newDispatcher(t, list, runtime.WithDefault(rec.action("Fallback")))
	store := memory.NewStore()
	ctx := context.Background()

	out, err := d.Dispatch(ctx, msg("/start"), store)
	require.NoError(t, err)
	assert.Equal(t, "A", out.Handler)
	assert.False(t, out.Fallback)
	assert.Equal(t, domain.DefaultState, out.State)

	require.NoError(t, store.Set(ctx, domain.StateKey{ChatID: 100}, "onboarding"))
	out, err = d.Dispatch(ctx, msg("/start"), store)
	require.NoError(t, err)
	assert.Equal(t, "B", out.Handler)
	assert.Equal(t, domain.StateID("onboarding"), out.State)

	out, err = d.Dispatch(ctx, msg("hello"), store)
	require.NoError(t, err)
	assert.Equal(t, runtime.DefaultHandlerName, out.Handler)
	assert.True(t, out.Fallback)

	assert.Equal(t, []string{"A", "B", "Fallback"}, rec.names())
}

func TestDispatch_StartScenarioWithMessageCatchAll(t *testing.T) {
	rec := &recorder{}
	list := route.List{
		route.MustNew("A", route.Trigger{Command: "start", Scope: route.DefaultOnly}, rec.action("A")),
		route.MustNew("B", route.Trigger{Command: "start", Scope: route.InState, State: "onboarding"}, rec.action("B")),
		route.MustNew("Fallback", route.Trigger{Kind: domain.KindMessage}, rec.action("Fallback")),
	}
	d := newDispatcher(t, list)
	store := memory.NewStore()
	ctx := context.Background()

	out, err := d.Dispatch(ctx, msg("/start"), store)
	require.NoError(t, err)
	assert.Equal(t, "A", out.Handler)

	out, err = d.Dispatch(ctx, msg("hello"), store)
	require.NoError(t, err)
	assert.Equal(t, "Fallback", out.Handler)
	assert.False(t, out.Fallback, "a registered catch-all is not the default handler")

	require.NoError(t, store.Set(ctx, domain.StateKey{ChatID: 100}, "onboarding"))
	out, err = d.Dispatch(ctx, msg("/start"), store)
	require.NoError(t, err)
	assert.Equal(t, "B", out.Handler)

	out, err = d.Dispatch(ctx, msg("hello"), store)
	require.NoError(t, err)
	assert.Equal(t, "Fallback", out.Handler)

	assert.Equal(t, []string{"A", "Fallback", "B", "Fallback"}, rec.names())
}

func TestDispatch_GlobalCommandEscapesStateStep(t *testing.T) {
	rec := &recorder{}
	list := route.List{
		route.MustNew("help", route.Trigger{Command: "help"}, rec.action("help")),
		route.MustNew("onboardingText", route.Trigger{Kind: domain.KindMessage, Scope: route.InState, State: "onboarding"}, rec.action("onboardingText")),
	}
	d := newDispatcher(t, list)
	store := memory.NewStore()
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, domain.StateKey{ChatID: 100}, "onboarding"))

	out, err := d.Dispatch(ctx, msg("/help"), store)
	require.NoError(t, err)
	assert.Equal(t, "help", out.Handler)

	out, err = d.Dispatch(ctx, msg("Ada"), store)
	require.NoError(t, err)
	assert.Equal(t, "onboardingText", out.Handler)
}

func TestDispatch_FirstPassingPredicateWins(t *testing.T) {
	rec := &recorder{}
	list := route.List{
		route.MustNew("yes", route.Trigger{Kind: domain.KindMessage, When: route.TextEquals("yes")}, rec.action("yes")),
		route.MustNew("text", route.Trigger{Kind: domain.KindMessage, When: route.HasText()}, rec.action("text")),
		route.MustNew("any", route.Trigger{Kind: domain.KindMessage}, rec.action("any")),
	}
	d := newDispatcher(t, list)
	ctx := context.Background()

	out, _ := d.Dispatch(ctx, msg("yes"), nil)
	assert.Equal(t, "yes", out.Handler)

	out, _ = d.Dispatch(ctx, msg("no"), nil)
	assert.Equal(t, "text", out.Handler)

	photo := &domain.Update{Kind: domain.KindMessage, ChatID: 1, Attachments: []domain.AttachmentKind{domain.AttachmentPhoto}}
	out, _ = d.Dispatch(ctx, photo, nil)
	assert.Equal(t, "any", out.Handler)
}

func TestDispatch_MalformedUpdate(t *testing.T) {
	rec := &recorder{}
	d := newDispatcher(t, route.List{
		route.MustNew("catchall", route.Trigger{}, rec.action("catchall")),
	}, runtime.WithDefault(rec.action("default")))

	for _, u := range []*domain.Update{
		nil,
		{Kind: "boost", ChatID: 1},
		{Kind: domain.KindMessage},
	} {
		out, err := d.Dispatch(context.Background(), u, memory.NewStore())
		assert.ErrorIs(t, err, domain.ErrMalformedUpdate)
		assert.ErrorIs(t, out.Err, domain.ErrMalformedUpdate)
		assert.True(t, out.Fallback)
	}
	assert.Equal(t, []string{"default", "default", "default"}, rec.names(), "malformed updates never reach the catch-all")
}

func TestDispatch_UnhandledKindUsesDefault(t *testing.T) {
	d := newDispatcher(t, route.List{
		route.MustNew("start", route.Trigger{Command: "start"}, func(context.Context, route.Context) error { return nil }),
	})

	u := &domain.Update{Kind: domain.KindPollAnswer, UserID: 3}
	out, err := d.Dispatch(context.Background(), u, nil)
	require.NoError(t, err)
	assert.True(t, out.Fallback)
	assert.Equal(t, runtime.DefaultHandlerName, out.Handler)
}

type failingStore struct{ err error }

func (f failingStore) Get(context.Context, domain.StateKey) (domain.StateID, error) {
	return "", f.err
}

func (f failingStore) Set(context.Context, domain.StateKey, domain.StateID) error {
	return f.err
}

func TestDispatch_StoreFailureSurfacesToHandler(t *testing.T) {
	boom := errors.New("connection refused")
	var seenState domain.StateID
	var seenErr, setErr error

	list := route.List{
		route.MustNew("start", route.Trigger{Command: "start", Scope: route.DefaultOnly}, func(ctx context.Context, c route.Context) error {
			seenState, seenErr = c.State()
			setErr = c.SetState(ctx, "next")
			return nil
		}),
	}
	d := newDispatcher(t, list)

	out, err := d.Dispatch(context.Background(), msg("/start"), failingStore{err: boom})
	require.NoError(t, err, "a failed read is not a dispatch error")
	assert.Equal(t, "start", out.Handler)
	assert.Equal(t, domain.DefaultState, seenState)
	assert.ErrorIs(t, seenErr, domain.ErrStateStore)
	assert.ErrorIs(t, seenErr, boom)
	assert.ErrorIs(t, setErr, domain.ErrStateStore)
}

func TestDispatch_HandlerErrorsAndPanics(t *testing.T) {
	boom := errors.New("boom")
	list := route.List{
		route.MustNew("fails", route.Trigger{Command: "fail"}, func(context.Context, route.Context) error { return boom }),
		route.MustNew("panics", route.Trigger{Command: "panic"}, func(context.Context, route.Context) error { panic("oops") }),
	}
	d := newDispatcher(t, list)
	ctx := context.Background()

	out, err := d.Dispatch(ctx, msg("/fail"), nil)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), `handler "fails"`)
	assert.Equal(t, err, out.Err)

	assert.NotPanics(t, func() {
		out, err = d.Dispatch(ctx, msg("/panic"), nil)
	})
	assert.ErrorIs(t, err, domain.ErrHandlerPanic)
	assert.Equal(t, "panics", out.Handler)
}

func TestDispatch_PanickingPredicateDoesNotMatch(t *testing.T) {
	rec := &recorder{}
	bad := route.NewPredicate("bad", func(*domain.Update) bool { panic("nil map") })
	list := route.List{
		route.MustNew("bad", route.Trigger{Kind: domain.KindMessage, When: bad}, rec.action("bad")),
		route.MustNew("text", route.Trigger{Kind: domain.KindMessage, When: route.HasText()}, rec.action("text")),
	}
	d := newDispatcher(t, list)

	out, err := d.Dispatch(context.Background(), msg("hi"), nil)
	assert.Equal(t, "text", out.Handler)
	assert.ErrorIs(t, err, domain.ErrHandlerPanic)
	assert.Equal(t, []string{"text"}, rec.names())
}

func TestDispatch_SetAndResetState(t *testing.T) {
	store := memory.NewStore()
	list := route.List{
		route.MustNew("begin", route.Trigger{Command: "begin"}, func(ctx context.Context, c route.Context) error {
			if err := c.SetState(ctx, "asking"); err != nil {
				return err
			}
			state, _ := c.State()
			assert.Equal(t, domain.StateID("asking"), state)
			return nil
		}),
		route.MustNew("answer", route.Trigger{Kind: domain.KindMessage, Scope: route.InState, State: "asking"}, func(ctx context.Context, c route.Context) error {
			return c.ResetState(ctx)
		}),
	}
	d := newDispatcher(t, list)
	ctx := context.Background()
	key := domain.StateKey{ChatID: 100}

	_, err := d.Dispatch(ctx, msg("/begin"), store)
	require.NoError(t, err)
	state, _ := store.Get(ctx, key)
	assert.Equal(t, domain.StateID("asking"), state)

	out, err := d.Dispatch(ctx, msg("42"), store)
	require.NoError(t, err)
	assert.Equal(t, "answer", out.Handler)
	state, _ = store.Get(ctx, key)
	assert.Equal(t, domain.DefaultState, state)
}

func TestDispatch_MiddlewareOrder(t *testing.T) {
	var trace []string
	mw := func(name string) route.Middleware {
		return func(next route.Action) route.Action {
			return func(ctx context.Context, c route.Context) error {
				trace = append(trace, name+">")
				err := next(ctx, c)
				trace = append(trace, "<"+name)
				return err
			}
		}
	}
	list := route.List{
		route.MustNew("h", route.Trigger{Command: "go"}, func(context.Context, route.Context) error {
			trace = append(trace, "h")
			return nil
		}),
	}
	d := newDispatcher(t, list, runtime.WithMiddleware(mw("outer"), mw("inner")))

	_, err := d.Dispatch(context.Background(), msg("/go"), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"outer>", "inner>", "h", "<inner", "<outer"}, trace)

	trace = nil
	_, err = d.Dispatch(context.Background(), msg("plain"), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"outer>", "inner>", "<inner", "<outer"}, trace, "middleware wraps the default handler too")
}

func TestDispatch_Hooks(t *testing.T) {
	var dispatched, fallbacks, failures []*domain.DispatchEvent
	hooks := domain.Hooks{
		OnDispatch: func(_ context.Context, e *domain.DispatchEvent) { dispatched = append(dispatched, e) },
		OnFallback: func(_ context.Context, e *domain.DispatchEvent) { fallbacks = append(fallbacks, e) },
		OnError:    func(_ context.Context, e *domain.DispatchEvent) { failures = append(failures, e) },
	}
	list := route.List{
		route.MustNew("ok", route.Trigger{Command: "ok"}, func(context.Context, route.Context) error { return nil }),
		route.MustNew("bad", route.Trigger{Command: "bad"}, func(context.Context, route.Context) error { return errors.New("x") }),
	}
	d := newDispatcher(t, list, runtime.WithHooks(hooks))
	ctx := context.Background()

	_, _ = d.Dispatch(ctx, msg("/ok"), nil)
	_, _ = d.Dispatch(ctx, msg("/bad"), nil)
	_, _ = d.Dispatch(ctx, msg("text"), nil)

	require.Len(t, dispatched, 3)
	assert.Equal(t, "ok", dispatched[0].Handler)
	assert.Equal(t, domain.KindMessage, dispatched[0].Kind)
	assert.Equal(t, domain.StateKey{ChatID: 100}, dispatched[0].Key)

	require.Len(t, failures, 1)
	assert.Equal(t, "bad", failures[0].Handler)
	assert.Error(t, failures[0].Err)

	require.Len(t, fallbacks, 1)
	assert.True(t, fallbacks[0].Fallback)
}

func TestDispatch_IdempotentSelection(t *testing.T) {
	list := route.List{
		route.MustNew("cb", route.Trigger{Kind: domain.KindCallbackQuery, When: route.CallbackPrefix("buy:")}, func(context.Context, route.Context) error { return nil }),
		route.MustNew("any", route.Trigger{}, func(context.Context, route.Context) error { return nil }),
	}
	d := newDispatcher(t, list)
	u := &domain.Update{Kind: domain.KindCallbackQuery, UserID: 5, CallbackData: "buy:1"}

	first, _ := d.Dispatch(context.Background(), u, nil)
	for i := 0; i < 10; i++ {
		out, _ := d.Dispatch(context.Background(), u, nil)
		assert.Equal(t, first.Handler, out.Handler)
	}
	assert.Equal(t, "cb", first.Handler)
}

func TestDispatch_Concurrent(t *testing.T) {
	var count atomic.Int64
	list := route.List{
		route.MustNew("inc", route.Trigger{Kind: domain.KindMessage}, func(ctx context.Context, c route.Context) error {
			count.Add(1)
			return c.SetState(ctx, "seen")
		}),
	}
	d := newDispatcher(t, list)
	store := memory.NewStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			u := domain.NewMessage(int64(i+1), 1, "x")
			_, err := d.Dispatch(context.Background(), &u, store)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int64(50), count.Load())
	assert.Equal(t, 50, store.Len())
}

func TestExplain(t *testing.T) {
	var invoked bool
	action := func(context.Context, route.Context) error { invoked = true; return nil }
	list := route.List{
		route.MustNew("yes", route.Trigger{Kind: domain.KindMessage, When: route.TextEquals("yes")}, action),
		route.MustNew("B", route.Trigger{Command: "start", Scope: route.InState, State: "onboarding"}, action),
		route.MustNew("text", route.Trigger{Kind: domain.KindMessage, When: route.HasText()}, action),
	}
	d := newDispatcher(t, list)

	ex := d.Explain(msg("/start"), "onboarding")
	assert.True(t, ex.Valid)
	assert.Equal(t, "B", ex.Selected)
	assert.False(t, ex.Fallback)
	require.Len(t, ex.Path, 3)
	assert.Equal(t, "start", ex.Path[1].Value)
	require.Len(t, ex.Candidates, 3)
	assert.True(t, ex.Candidates[0].Matched)
	assert.False(t, ex.Candidates[1].Evaluated, "evaluation stops at the first match")

	ex = d.Explain(&domain.Update{Kind: domain.KindInlineQuery, UserID: 1}, domain.DefaultState)
	assert.True(t, ex.Fallback)
	assert.Equal(t, runtime.DefaultHandlerName, ex.Selected)

	ex = d.Explain(&domain.Update{Kind: "nope"}, domain.DefaultState)
	assert.False(t, ex.Valid)
	assert.NotEmpty(t, ex.Error)

	assert.False(t, invoked, "Explain never runs actions")
}
