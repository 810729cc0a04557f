package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/stater/internal/compiler"
	"github.com/aretw0/stater/internal/logging"
	"github.com/aretw0/stater/pkg/domain"
	"github.com/aretw0/stater/pkg/ports"
	"github.com/aretw0/stater/pkg/route"
)

// DefaultHandlerName names the default handler in outcomes, events and logs.
const DefaultHandlerName = "default"

// Outcome describes what one dispatch did.
type Outcome struct {
	// Handler is the name of the invoked descriptor, or DefaultHandlerName.
	Handler string `json:"handler"`
	// Origin is where the invoked descriptor was declared. Empty for the default handler.
	Origin string `json:"origin,omitempty"`
	// Fallback is true when no descriptor matched and the default handler ran.
	Fallback bool `json:"fallback"`
	// State is the state the update was routed with.
	State    domain.StateID `json:"state"`
	Duration time.Duration  `json:"duration"`
	// Err is the error also returned by Dispatch.
	Err error `json:"-"`
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithDefault sets the action run when no descriptor matches.
func WithDefault(a route.Action) DispatcherOption {
	return func(d *Dispatcher) {
		if a != nil {
			d.fallback = a
		}
	}
}

// WithHooks registers observability hooks.
func WithHooks(hooks domain.Hooks) DispatcherOption {
	return func(d *Dispatcher) {
		d.hooks = hooks
	}
}

// WithMiddleware appends middleware. The first one given is the outermost.
func WithMiddleware(mw ...route.Middleware) DispatcherOption {
	return func(d *Dispatcher) {
		d.middleware = append(d.middleware, mw...)
	}
}

// Dispatcher routes updates through a compiled table.
// It holds no per-update state and is safe for concurrent use.
type Dispatcher struct {
	table      *compiler.Table
	logger     *slog.Logger
	fallback   route.Action
	hooks      domain.Hooks
	middleware []route.Middleware

	// actions holds every descriptor's action with middleware applied.
	actions         map[*route.Descriptor]route.Action
	wrappedFallback route.Action
}

// NewDispatcher creates a dispatcher for table.
func NewDispatcher(table *compiler.Table, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		table:  table,
		logger: logging.NewNop(),
	}
	d.fallback = d.ignore
	for _, opt := range opts {
		opt(d)
	}

	handlers := table.Handlers()
	d.actions = make(map[*route.Descriptor]route.Action, len(handlers))
	for _, h := range handlers {
		d.actions[h] = d.wrap(h.Action())
	}
	d.wrappedFallback = d.wrap(d.fallback)
	return d
}

// Table returns the compiled table.
func (d *Dispatcher) Table() *compiler.Table { return d.table }

func (d *Dispatcher) wrap(a route.Action) route.Action {
	for i := len(d.middleware) - 1; i >= 0; i-- {
		a = d.middleware[i](a)
	}
	return a
}

// ignore is the built-in default handler.
func (d *Dispatcher) ignore(ctx context.Context, c route.Context) error {
	c.Logger().DebugContext(ctx, "update not handled")
	return nil
}

// Dispatch routes u and invokes exactly one action: the selected descriptor's or the default handler.
//
// store may be nil, in which case every update routes with domain.DefaultState.
// Dispatch never panics. Malformed updates, failed state reads and unmatched updates
// all reach the default handler. The returned error equals Outcome.Err.
func (d *Dispatcher) Dispatch(ctx context.Context, u *domain.Update, store ports.StateStore) (Outcome, error) {
	start := time.Now()
	dc := &dispatchContext{update: u, store: store, state: domain.DefaultState}

	var errs []error
	var selected *route.Descriptor

	if err := u.Validate(); err != nil {
		errs = append(errs, err)
		d.logger.WarnContext(ctx, "malformed update routed to default handler", "err", err)
	} else {
		dc.key = u.Key()
		if store != nil {
			state, err := store.Get(ctx, dc.key)
			if err != nil {
				dc.stateErr = fmt.Errorf("%w: get %s: %w", domain.ErrStateStore, dc.key, err)
				d.logger.WarnContext(ctx, "state read failed, routing with default state",
					"key", dc.key.String(), "err", err)
			} else {
				dc.state = state
			}
		}

		var perr error
		selected, perr = d.selectHandler(u, dc.state)
		if perr != nil {
			errs = append(errs, perr)
			d.logger.ErrorContext(ctx, "content predicate failed", "key", dc.key.String(), "err", perr)
		}
	}

	out := Outcome{State: dc.state, Handler: DefaultHandlerName, Fallback: selected == nil}
	action := d.wrappedFallback
	if selected != nil {
		out.Handler = selected.Name()
		out.Origin = selected.Origin()
		action = d.actions[selected]
	}
	dc.handler = out.Handler
	dc.logger = d.logger.With("key", dc.key.String(), "handler", out.Handler)

	if err := invoke(ctx, action, dc); err != nil {
		errs = append(errs, fmt.Errorf("handler %q: %w", out.Handler, err))
		d.logger.ErrorContext(ctx, "handler failed", "key", dc.key.String(), "handler", out.Handler, "err", err)
	}

	out.Duration = time.Since(start)
	out.Err = errors.Join(errs...)

	d.logger.DebugContext(ctx, "update dispatched",
		"kind", kindOf(u).String(),
		"key", dc.key.String(),
		"state", dc.state.String(),
		"handler", out.Handler,
		"fallback", out.Fallback,
		"duration", out.Duration)

	d.emit(ctx, u, dc, out)
	return out, out.Err
}

// selectHandler walks the table and returns the first candidate whose predicate passes, or nil.
func (d *Dispatcher) selectHandler(u *domain.Update, state domain.StateID) (*route.Descriptor, error) {
	leaf, _ := d.table.Lookup(u.Kind, u.Command, state)
	if leaf == nil {
		return nil, nil
	}
	var errs []error
	for _, c := range leaf.Candidates() {
		ok, err := match(c.Descriptor, u)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if ok {
			return c.Descriptor, errors.Join(errs...)
		}
	}
	return nil, errors.Join(errs...)
}

// match evaluates a content predicate. A panicking predicate does not match.
func match(desc *route.Descriptor, u *domain.Update) (ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
			err = fmt.Errorf("%w: predicate of %q: %v", domain.ErrHandlerPanic, desc.Name(), r)
		}
	}()
	return desc.Trigger().When.Match(u), nil
}

func invoke(ctx context.Context, a route.Action, c route.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", domain.ErrHandlerPanic, r)
		}
	}()
	return a(ctx, c)
}

func (d *Dispatcher) emit(ctx context.Context, u *domain.Update, dc *dispatchContext, out Outcome) {
	if d.hooks.OnDispatch == nil && d.hooks.OnFallback == nil && d.hooks.OnError == nil {
		return
	}
	ev := &domain.DispatchEvent{
		Timestamp: time.Now(),
		Kind:      kindOf(u),
		Key:       dc.key,
		State:     dc.state,
		Handler:   out.Handler,
		Fallback:  out.Fallback,
		Duration:  out.Duration,
		Err:       out.Err,
	}
	if d.hooks.OnDispatch != nil {
		d.hooks.OnDispatch(ctx, ev)
	}
	if out.Fallback && d.hooks.OnFallback != nil {
		d.hooks.OnFallback(ctx, ev)
	}
	if out.Err != nil && d.hooks.OnError != nil {
		d.hooks.OnError(ctx, ev)
	}
}

func kindOf(u *domain.Update) domain.UpdateKind {
	if u == nil {
		return domain.KindAny
	}
	return u.Kind
}
