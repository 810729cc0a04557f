/*
Package dsl provides a fluent Go DSL for declaring handler modules.

It lets bot authors declare triggers and actions with a type-safe builder
instead of filling route.Trigger literals by hand, and collects every
malformed declaration so Build reports them all at once. Declarations keep
the source location of their Do call, which build failures point back to.

Example usage:

	package main

	import (
		"github.com/aretw0/stater"
		"github.com/aretw0/stater/pkg/dsl"
		"github.com/aretw0/stater/pkg/route"
	)

	func main() {
		m := dsl.New("onboarding")

		m.Command("start").Do(greet)
		m.Command("start").InState("onboarding").Do(resume)
		m.Message().InState("onboarding").When(route.HasText()).Do(saveName)
		m.Message().Do(fallback)

		handlers, err := m.Build()
		if err != nil {
			panic(err)
		}
		router, err := stater.New(handlers)
		// ...
	}
*/
package dsl
