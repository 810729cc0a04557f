package route

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/aretw0/stater/pkg/domain"
)

// ErrMalformedTrigger is returned when a descriptor's trigger cannot be compiled.
var ErrMalformedTrigger = errors.New("malformed trigger")

// MalformedError reports every problem found in one declaration.
type MalformedError struct {
	Name    string
	Origin  string
	Reasons []string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("%s: handler %q declared at %s: %s",
		ErrMalformedTrigger, e.Name, e.Origin, strings.Join(e.Reasons, "; "))
}

func (e *MalformedError) Unwrap() error {
	return ErrMalformedTrigger
}

// Context is what an Action sees of the update it handles.
type Context interface {
	// Update returns the update being handled.
	Update() *domain.Update
	// Key returns the state key of the update.
	Key() domain.StateKey
	// State returns the state the update was routed with, and the error of the store read, if it failed.
	State() (domain.StateID, error)
	// SetState requests a transition for this conversation.
	SetState(ctx context.Context, id domain.StateID) error
	// ResetState moves the conversation back to domain.DefaultState.
	ResetState(ctx context.Context) error
	// Handler returns the name of the running descriptor.
	Handler() string
	// Logger returns the router logger enriched with the update's key and handler.
	Logger() *slog.Logger
}

// Action is the code run for a matched update.
type Action func(ctx context.Context, c Context) error

// Middleware wraps an action.
type Middleware func(next Action) Action

// Descriptor is one immutable trigger and action pair.
type Descriptor struct {
	name    string
	origin  string
	trigger Trigger
	action  Action
}

// New validates and freezes a descriptor. The caller's file:line becomes its origin.
// An empty name is replaced by the trigger's rendering.
func New(name string, t Trigger, a Action) (*Descriptor, error) {
	return NewWithOrigin(name, Caller(1), t, a)
}

// MustNew is New that panics on a malformed trigger.
func MustNew(name string, t Trigger, a Action) *Descriptor {
	d, err := NewWithOrigin(name, Caller(1), t, a)
	if err != nil {
		panic(err)
	}
	return d
}

// NewWithOrigin is New with an explicit origin, for declarations that do not come
// from Go source (manifests) or that are wrapped by a builder.
func NewWithOrigin(name, origin string, t Trigger, a Action) (*Descriptor, error) {
	reasons := t.Validate()
	if a == nil {
		reasons = append(reasons, "action is nil")
	}
	t = t.Normalize()
	if name == "" {
		name = t.String()
	}
	if len(reasons) > 0 {
		return nil, &MalformedError{Name: name, Origin: origin, Reasons: reasons}
	}
	return &Descriptor{name: name, origin: origin, trigger: t, action: a}, nil
}

// Name returns the descriptor name.
func (d *Descriptor) Name() string { return d.name }

// Origin returns where the descriptor was declared.
func (d *Descriptor) Origin() string { return d.origin }

// Trigger returns the normalized trigger.
func (d *Descriptor) Trigger() Trigger { return d.trigger }

// Action returns the action.
func (d *Descriptor) Action() Action { return d.action }

func (d *Descriptor) String() string {
	return fmt.Sprintf("%s [%s] (%s)", d.name, d.trigger, d.origin)
}

// Caller returns "file:line" of the function skip frames above the caller of Caller.
func Caller(skip int) string {
	_, file, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return "unknown"
	}
	return fmt.Sprintf("%s:%d", filepath.Base(file), line)
}
