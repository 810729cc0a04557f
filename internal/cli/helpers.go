package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/aretw0/stater/internal/logging"
)

// SignalContext is a context cancelled on SIGINT or SIGTERM that remembers which signal arrived.
type SignalContext struct {
	context.Context
	Cancel context.CancelFunc
	sig    atomic.Value
}

// NewSignalContext works like signal.NotifyContext, and Signal reports the signal afterwards.
func NewSignalContext(parent context.Context) *SignalContext {
	ctx, cancel := context.WithCancel(parent)
	sc := &SignalContext{Context: ctx, Cancel: cancel}

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	go func() {
		defer signal.Stop(ch)
		select {
		case sig := <-ch:
			sc.sig.Store(sig)
			cancel()
		case <-ctx.Done():
		}
	}()
	return sc
}

// Signal returns the signal that cancelled the context, or nil.
func (sc *SignalContext) Signal() os.Signal {
	sig, _ := sc.sig.Load().(os.Signal)
	return sig
}

// NewLogger configures the application logger. It writes to Stderr
// so that stdout stays free for replies and JSON lines.
func NewLogger(cfg LogConfig) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	return logging.NewWriter(os.Stderr, level, cfg.JSON), nil
}

// printSystemMessage prints a standardized system message.
func printSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}
