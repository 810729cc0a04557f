package dsl

import (
	"github.com/aretw0/stater/pkg/domain"
	"github.com/aretw0/stater/pkg/route"
)

// HandlerBuilder configures one declaration. It is registered by Do.
type HandlerBuilder struct {
	module  *Module
	trigger route.Trigger
	name    string
}

// InState restricts the handler to conversations in state id.
func (b *HandlerBuilder) InState(id domain.StateID) *HandlerBuilder {
	b.trigger.Scope = route.InState
	b.trigger.State = id
	return b
}

// InDefaultState restricts the handler to conversations that are in no explicit state.
func (b *HandlerBuilder) InDefaultState() *HandlerBuilder {
	b.trigger.Scope = route.DefaultOnly
	b.trigger.State = domain.DefaultState
	return b
}

// When adds a content predicate. Several calls are combined with route.And;
// a nil predicate adds nothing.
func (b *HandlerBuilder) When(p *route.Predicate) *HandlerBuilder {
	switch {
	case p == nil:
	case b.trigger.When == nil:
		b.trigger.When = p
	default:
		b.trigger.When = route.And(b.trigger.When, p)
	}
	return b
}

// Named sets the handler name used in reports and outcomes.
func (b *HandlerBuilder) Named(name string) *HandlerBuilder {
	b.name = name
	return b
}

// Do registers the declaration with action a.
func (b *HandlerBuilder) Do(a route.Action) *Module {
	m := b.module
	name := b.name
	if name != "" && m.name != "" {
		name = m.name + "." + name
	}

	d, err := route.NewWithOrigin(name, route.Caller(1), b.trigger, a)
	if err != nil {
		m.errs = append(m.errs, err)
		return m
	}
	m.handlers = append(m.handlers, d)
	return m
}
