package runner

import "log/slog"

// DefaultWorkers is the number of workers when WithWorkers is not given.
const DefaultWorkers = 4

// DefaultQueueSize is the per-worker buffer.
const DefaultQueueSize = 64

// Option defines a functional option for configuring the Pool.
type Option func(*Pool)

// WithWorkers sets the number of concurrent workers.
func WithWorkers(n int) Option {
	return func(p *Pool) {
		if n > 0 {
			p.workers = n
		}
	}
}

// WithQueueSize sets how many updates each worker buffers.
func WithQueueSize(n int) Option {
	return func(p *Pool) {
		if n >= 0 {
			p.queueSize = n
		}
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pool) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithResultHandler receives every result. It is called from worker goroutines
// and must be safe for concurrent use.
func WithResultHandler(fn func(Result)) Option {
	return func(p *Pool) {
		p.onResult = fn
	}
}
