/*
Package runner feeds a stream of updates through a router concurrently.

A Pool runs a fixed number of workers. Updates are assigned to workers by
state key, so the updates of one conversation are handled one at a time and in
arrival order, while different conversations proceed in parallel. Handler
failures are reported and logged; they never stop the pool.

# Usage

	sessions := session.NewManager(redis.NewFromClient(client),
		session.WithLocker(redis.NewLocker(client, "bot:")))

	pool := runner.New(router, sessions, runner.WithWorkers(8))

	updates := make(chan domain.Update)
	go poll(updates) // fill from the platform, close on shutdown

	if err := pool.Run(ctx, updates); err != nil {
		log.Fatal(err)
	}

DecodeUpdates and NewResultEncoder read and write JSON lines, which is how the
stater CLI replays recorded traffic.
*/
package runner
