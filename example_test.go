package stater_test

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/aretw0/stater"
	"github.com/aretw0/stater/pkg/adapters/memory"
	"github.com/aretw0/stater/pkg/domain"
	"github.com/aretw0/stater/pkg/dsl"
	"github.com/aretw0/stater/pkg/route"
)

// ExampleNew shows a two-step conversation driven by state.
func ExampleNew() {
	reply := func(text string) route.Action {
		return func(ctx context.Context, c route.Context) error {
			fmt.Println(text)
			return nil
		}
	}

	bot := dsl.New("signup")
	bot.Command("start").InDefaultState().Do(func(ctx context.Context, c route.Context) error {
		fmt.Println("What is your name?")
		return c.SetState(ctx, "asking_name")
	})
	bot.Message().InState("asking_name").When(route.HasText()).Do(func(ctx context.Context, c route.Context) error {
		fmt.Printf("Nice to meet you, %s.\n", c.Update().Text)
		return c.ResetState(ctx)
	})
	bot.Command("start").InState("asking_name").Do(reply("Still waiting for your name."))

	router, err := stater.New(bot.MustBuild(), stater.WithDefault(reply("Send /start to begin.")))
	if err != nil {
		log.Fatal(err)
	}

	store := memory.NewStore()
	ctx := context.Background()
	for _, text := range []string{"hi", "/start", "/start", "Ada"} {
		u := domain.NewMessage(1, 1, text)
		if _, err := router.Dispatch(ctx, &u, store); err != nil {
			log.Fatal(err)
		}
	}

	// Output:
	// Send /start to begin.
	// What is your name?
	// Still waiting for your name.
	// Nice to meet you, Ada.
}

// ExampleNew_ambiguous shows a conflict reported at build time.
func ExampleNew_ambiguous() {
	noop := func(context.Context, route.Context) error { return nil }

	handlers := route.List{
		route.MustNew("help", route.Trigger{Command: "help"}, noop),
		route.MustNew("help2", route.Trigger{Command: "help"}, noop),
	}

	_, err := stater.New(handlers)
	fmt.Println(errors.Is(err, stater.ErrAmbiguousRoute))
	// Output: true
}
