package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/stater/pkg/domain"
)

// LogHooks logs every dispatch at Info and failures at Error.
func LogHooks(logger *slog.Logger) domain.Hooks {
	return domain.Hooks{
		OnDispatch: func(ctx context.Context, e *domain.DispatchEvent) {
			logger.InfoContext(ctx, "dispatch",
				"kind", e.Kind.String(),
				"key", e.Key.String(),
				"state", e.State.String(),
				"handler", e.Handler,
				"fallback", e.Fallback,
				"duration", e.Duration,
			)
		},
		OnError: func(ctx context.Context, e *domain.DispatchEvent) {
			logger.ErrorContext(ctx, "dispatch failed",
				"key", e.Key.String(),
				"handler", e.Handler,
				"err", e.Err,
			)
		},
	}
}

// Combine calls each set of hooks in order.
func Combine(hooks ...domain.Hooks) domain.Hooks {
	var dispatch, fallback, failure []func(context.Context, *domain.DispatchEvent)
	for _, h := range hooks {
		if h.OnDispatch != nil {
			dispatch = append(dispatch, h.OnDispatch)
		}
		if h.OnFallback != nil {
			fallback = append(fallback, h.OnFallback)
		}
		if h.OnError != nil {
			failure = append(failure, h.OnError)
		}
	}
	return domain.Hooks{
		OnDispatch: fanOut(dispatch),
		OnFallback: fanOut(fallback),
		OnError:    fanOut(failure),
	}
}

func fanOut(fns []func(context.Context, *domain.DispatchEvent)) func(context.Context, *domain.DispatchEvent) {
	if len(fns) == 0 {
		return nil
	}
	return func(ctx context.Context, e *domain.DispatchEvent) {
		for _, fn := range fns {
			fn(ctx, e)
		}
	}
}
