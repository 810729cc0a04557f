package stater

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/stater/internal/compiler"
	"github.com/aretw0/stater/internal/logging"
	"github.com/aretw0/stater/internal/runtime"
	"github.com/aretw0/stater/pkg/domain"
	"github.com/aretw0/stater/pkg/ports"
	"github.com/aretw0/stater/pkg/route"
)

// Build and dispatch errors, re-exported for errors.Is checks.
var (
	ErrAmbiguousRoute   = compiler.ErrAmbiguousRoute
	ErrMalformedTrigger = route.ErrMalformedTrigger
	ErrMalformedUpdate  = domain.ErrMalformedUpdate
	ErrHandlerPanic     = domain.ErrHandlerPanic
	ErrStateStore       = domain.ErrStateStore
)

// Outcome describes what one Dispatch did.
type Outcome = runtime.Outcome

// Explanation shows how an update would be routed, without running it.
type Explanation = runtime.Explanation

// Stats summarizes the compiled decision tree.
type Stats = compiler.Stats

// DefaultHandlerName is the Outcome.Handler of updates no descriptor matched.
const DefaultHandlerName = runtime.DefaultHandlerName

// Router is the high-level entry point: a compiled, immutable dispatch table.
// A Router is safe for concurrent use. Serializing updates of one conversation is the caller's job.
type Router struct {
	table      *compiler.Table
	dispatcher *runtime.Dispatcher
	logger     *slog.Logger
	opts       []runtime.DispatcherOption
}

// Option defines a functional option for configuring the Router.
type Option func(*Router)

// WithLogger sets a custom structured logger for the router.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Router) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithDefault sets the action invoked when no handler matches or the update is malformed.
// The built-in default ignores the update.
func WithDefault(a route.Action) Option {
	return func(r *Router) {
		r.opts = append(r.opts, runtime.WithDefault(a))
	}
}

// WithHooks registers observability hooks.
func WithHooks(hooks domain.Hooks) Option {
	return func(r *Router) {
		r.opts = append(r.opts, runtime.WithHooks(hooks))
	}
}

// WithMiddleware wraps every action, including the default one. The first middleware is the outermost.
func WithMiddleware(mw ...route.Middleware) Option {
	return func(r *Router) {
		r.opts = append(r.opts, runtime.WithMiddleware(mw...))
	}
}

// New compiles handlers into a Router. Handlers earlier in the list win ties.
//
// It fails with every malformed or ambiguous declaration found; use errors.Is with
// ErrAmbiguousRoute, and errors.As with *compiler.AmbiguityError for details.
func New(handlers route.List, opts ...Option) (*Router, error) {
	r := &Router{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(r)
	}

	table, err := compiler.Compile(handlers)
	if err != nil {
		return nil, fmt.Errorf("failed to compile routes: %w", err)
	}
	r.table = table
	r.dispatcher = runtime.NewDispatcher(table, append([]runtime.DispatcherOption{runtime.WithLogger(r.logger)}, r.opts...)...)

	stats := table.Stats()
	r.logger.Debug("routes compiled",
		"handlers", stats.Handlers,
		"nodes", stats.Nodes,
		"leaves", stats.Leaves)
	return r, nil
}

// MustNew is New that panics on error. Useful for package-level routers built from static declarations.
func MustNew(handlers route.List, opts ...Option) *Router {
	r, err := New(handlers, opts...)
	if err != nil {
		panic(err)
	}
	return r
}

// Dispatch routes one update: it reads the conversation state from store,
// selects the single matching handler (or the default one) and runs it.
// store may be nil for stateless bots.
func (r *Router) Dispatch(ctx context.Context, u *domain.Update, store ports.StateStore) (Outcome, error) {
	return r.dispatcher.Dispatch(ctx, u, store)
}

// Explain reports how u would be routed under state. It runs no action and reads no store.
func (r *Router) Explain(u *domain.Update, state domain.StateID) Explanation {
	return r.dispatcher.Explain(u, state)
}

// Handlers returns the registered handlers in priority order.
func (r *Router) Handlers() route.List {
	return r.table.Handlers()
}

// Stats returns the size of the compiled tree.
func (r *Router) Stats() Stats {
	return r.table.Stats()
}

// Table exposes the compiled tree for introspection tools.
func (r *Router) Table() *compiler.Table {
	return r.table
}
