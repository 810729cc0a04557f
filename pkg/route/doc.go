/*
Package route defines handler descriptors and the pure list algebra used to
combine them.

A Descriptor pairs a Trigger (update kind, command, conversational state and
an optional content predicate) with an Action. Descriptors are validated and
frozen when declared; the compiler only ever references them.

Independently authored handler modules are merged with Concat: earlier lists
take precedence over later ones on equally specific triggers.

	start := route.MustNew("start", route.Trigger{Command: "start"}, greet)
	resume := route.MustNew("resume", route.Trigger{
		Command: "start",
		Scope:   route.InState,
		State:   "onboarding",
	}, continueOnboarding)

	handlers := route.Concat(route.List{start, resume}, adminModule)
*/
package route
