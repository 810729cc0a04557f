package dsl

import (
	"errors"
	"fmt"

	"github.com/aretw0/stater/pkg/domain"
	"github.com/aretw0/stater/pkg/route"
)

// Module collects handler declarations in order.
type Module struct {
	name     string
	handlers route.List
	errs     []error
}

// New creates an empty module. The name prefixes handler names in reports.
func New(name string) *Module {
	return &Module{name: name}
}

// Name returns the module name.
func (m *Module) Name() string {
	return m.name
}

// On starts a declaration for updates of kind k.
func (m *Module) On(k domain.UpdateKind) *HandlerBuilder {
	return &HandlerBuilder{module: m, trigger: route.Trigger{Kind: k}}
}

// Any starts a declaration matching every kind.
func (m *Module) Any() *HandlerBuilder {
	return m.On(domain.KindAny)
}

// Message starts a declaration for messages, commands included.
func (m *Module) Message() *HandlerBuilder {
	return m.On(domain.KindMessage)
}

// EditedMessage starts a declaration for message edits.
func (m *Module) EditedMessage() *HandlerBuilder {
	return m.On(domain.KindEditedMessage)
}

// Callback starts a declaration for callback queries.
func (m *Module) Callback() *HandlerBuilder {
	return m.On(domain.KindCallbackQuery)
}

// InlineQuery starts a declaration for inline queries.
func (m *Module) InlineQuery() *HandlerBuilder {
	return m.On(domain.KindInlineQuery)
}

// Command starts a declaration for the bot command cmd ("start" or "/start").
func (m *Module) Command(cmd string) *HandlerBuilder {
	b := m.Message()
	b.trigger.Command = cmd
	return b
}

// UnknownCommand starts a declaration for commands no other handler names.
func (m *Module) UnknownCommand() *HandlerBuilder {
	return m.Command(route.UnknownCommand)
}

// Include appends every declaration of the given modules after the current ones.
func (m *Module) Include(others ...*Module) *Module {
	for _, o := range others {
		m.handlers = route.Concat(m.handlers, o.handlers)
		m.errs = append(m.errs, o.errs...)
	}
	return m
}

// Build returns the declared handlers in declaration order, or every declaration error joined.
func (m *Module) Build() (route.List, error) {
	if len(m.errs) > 0 {
		return nil, fmt.Errorf("module %q: %w", m.name, errors.Join(m.errs...))
	}
	return route.Concat(m.handlers), nil
}

// MustBuild is Build that panics on error.
func (m *Module) MustBuild() route.List {
	l, err := m.Build()
	if err != nil {
		panic(err)
	}
	return l
}
