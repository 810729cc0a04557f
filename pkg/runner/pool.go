package runner

import (
	"context"
	"hash/maphash"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/aretw0/stater/internal/logging"
	"github.com/aretw0/stater/internal/runtime"
	"github.com/aretw0/stater/pkg/domain"
	"github.com/aretw0/stater/pkg/session"
)

// Result is the outcome of one update handled by the pool.
type Result struct {
	Update  domain.Update
	Outcome runtime.Outcome
	Err     error
}

// Pool dispatches updates concurrently while keeping each conversation sequential.
type Pool struct {
	router    session.Dispatcher
	sessions  *session.Manager
	workers   int
	queueSize int
	logger    *slog.Logger
	onResult  func(Result)
	seed      maphash.Seed
}

// New creates a pool dispatching through router, with state and locks from sessions.
func New(router session.Dispatcher, sessions *session.Manager, opts ...Option) *Pool {
	p := &Pool{
		router:    router,
		sessions:  sessions,
		workers:   DefaultWorkers,
		queueSize: DefaultQueueSize,
		logger:    logging.NewNop(),
		seed:      maphash.MakeSeed(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run consumes updates until the channel is closed or ctx is done.
// It returns ctx's error if cancelled, nil once every received update was handled.
func (p *Pool) Run(ctx context.Context, updates <-chan domain.Update) error {
	g, gctx := errgroup.WithContext(ctx)

	queues := make([]chan domain.Update, p.workers)
	for i := range queues {
		queue := make(chan domain.Update, p.queueSize)
		queues[i] = queue
		g.Go(func() error {
			for u := range queue {
				p.handle(gctx, u)
			}
			return nil
		})
	}

	g.Go(func() error {
		defer func() {
			for _, q := range queues {
				close(q)
			}
		}()
		for {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case u, ok := <-updates:
				if !ok {
					return nil
				}
				select {
				case queues[p.shard(&u)] <- u:
				case <-gctx.Done():
					return gctx.Err()
				}
			}
		}
	})

	return g.Wait()
}

// shard maps a conversation to a worker. Malformed updates all go to worker 0.
func (p *Pool) shard(u *domain.Update) int {
	if u.Validate() != nil {
		return 0
	}
	return int(maphash.String(p.seed, u.Key().String()) % uint64(p.workers))
}

func (p *Pool) handle(ctx context.Context, u domain.Update) {
	out, err := p.sessions.Dispatch(ctx, p.router, &u)
	if err != nil {
		p.logger.WarnContext(ctx, "update failed",
			"update_id", u.ID,
			"key", u.Key().String(),
			"handler", out.Handler,
			"err", err)
	}
	if p.onResult != nil {
		p.onResult(Result{Update: u, Outcome: out, Err: err})
	}
}
