/*
Package stater is a build-time dispatch engine for conversational bots.

Handlers are declared as immutable descriptors: a trigger (update kind, bot
command, conversation state and an optional content predicate) paired with an
action. New compiles the full list once into a read-only decision tree; each
incoming update then walks at most three levels (kind, command, state) and runs
exactly one handler, or the default handler when nothing matches.

# Key Features

  - Conflicts are build errors: two handlers that would always tie fail New, naming both declaration sites.
  - Specific beats general: a handler bound to a state, a command or a kind is tried before its wildcard counterparts, whatever the declaration order.
  - Bounded dispatch: lookup cost depends on the tree depth, not on the number of handlers.
  - Pluggable state: conversation state lives behind ports.StateStore (memory, file and Redis adapters included).

# Usage

Declare handlers with the dsl package, or with route.New, and dispatch updates
normalized by an adapter such as pkg/adapters/telegram.

	package main

	import (
		"context"
		"log"

		"github.com/aretw0/stater"
		"github.com/aretw0/stater/pkg/adapters/memory"
		"github.com/aretw0/stater/pkg/domain"
		"github.com/aretw0/stater/pkg/dsl"
		"github.com/aretw0/stater/pkg/route"
	)

	func main() {
		bot := dsl.New("bot")
		bot.Command("start").InDefaultState().Do(func(ctx context.Context, c route.Context) error {
			return c.SetState(ctx, "onboarding")
		})
		bot.Message().InState("onboarding").When(route.HasText()).Do(func(ctx context.Context, c route.Context) error {
			c.Logger().Info("got name", "name", c.Update().Text)
			return c.ResetState(ctx)
		})

		router, err := stater.New(bot.MustBuild())
		if err != nil {
			log.Fatal(err)
		}

		store := memory.NewStore()
		u := domain.NewMessage(1, 1, "/start")
		if _, err := router.Dispatch(context.Background(), &u, store); err != nil {
			log.Print(err)
		}
	}

Serializing the updates of one conversation is the caller's job; pkg/runner
does it with per-key locks.
*/
package stater
