package domain

import (
	"context"
	"time"
)

// DispatchEvent describes one routed update.
type DispatchEvent struct {
	Timestamp time.Time     `json:"timestamp"`
	Kind      UpdateKind    `json:"kind"`
	Key       StateKey      `json:"key"`
	State     StateID       `json:"state"`
	Handler   string        `json:"handler"`
	Fallback  bool          `json:"fallback,omitempty"`
	Duration  time.Duration `json:"duration"`
	Err       error         `json:"-"`
}

// Hooks defines callbacks for router observability.
// Any of them may be nil.
type Hooks struct {
	// OnDispatch fires after every update, whichever handler ran.
	OnDispatch func(context.Context, *DispatchEvent)
	// OnFallback fires when the default handler ran because nothing matched or the update was malformed.
	OnFallback func(context.Context, *DispatchEvent)
	// OnError fires when the selected handler returned an error or panicked.
	OnError func(context.Context, *DispatchEvent)
}
