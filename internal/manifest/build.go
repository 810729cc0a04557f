package manifest

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/aretw0/stater/pkg/domain"
	"github.com/aretw0/stater/pkg/route"
)

// Replier delivers a rendered reply. The CLI prints it, a live bot sends it.
type Replier func(ctx context.Context, c route.Context, text string) error

// Handlers turns the manifest routes into descriptors, in declaration order.
// Every invalid route is reported, joined into one error.
func (m *Manifest) Handlers(reply Replier) (route.List, error) {
	var (
		list route.List
		errs []error
	)
	for i, spec := range m.Routes {
		d, err := spec.descriptor(reply)
		if err != nil {
			errs = append(errs, fmt.Errorf("route %d (%s): %w", i, spec.Origin(), err))
			continue
		}
		list = append(list, d)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return list, nil
}

// DefaultAction returns the action for unmatched updates, or nil when the manifest declares none.
func (m *Manifest) DefaultAction(reply Replier) route.Action {
	if m.Default == (ActionSpec{}) {
		return nil
	}
	return m.Default.action(reply)
}

func (r RouteSpec) descriptor(reply Replier) (*route.Descriptor, error) {
	t := route.Trigger{
		Kind:    parseKind(r.Kind),
		Command: r.Command,
	}
	if r.Command == UnknownToken {
		t.Command = route.UnknownCommand
	}
	switch r.State {
	case "", AnyStateToken:
		t.Scope = route.AnyState
	case DefaultStateToken:
		t.Scope = route.DefaultOnly
	default:
		t.Scope = route.InState
		t.State = domain.StateID(r.State)
	}
	if r.When != nil {
		p, err := r.When.predicate()
		if err != nil {
			return nil, err
		}
		t.When = p
	}
	return route.NewWithOrigin(r.Name, r.origin, t, r.ActionSpec.action(reply))
}

func parseKind(s string) domain.UpdateKind {
	if s == AnyStateToken {
		return domain.KindAny
	}
	return domain.UpdateKind(s)
}

// predicate builds the conjunction of the set fields, in field order.
func (w WhenSpec) predicate() (*route.Predicate, error) {
	var ps []*route.Predicate
	if w.TextEquals != "" {
		ps = append(ps, route.TextEquals(w.TextEquals))
	}
	if w.TextPrefix != "" {
		ps = append(ps, route.TextPrefix(w.TextPrefix))
	}
	if w.TextMatches != "" {
		// route.TextMatches panics on a bad expression.
		if _, err := regexp.Compile(w.TextMatches); err != nil {
			return nil, fmt.Errorf("text_matches: %w", err)
		}
		ps = append(ps, route.TextMatches(w.TextMatches))
	}
	if w.HasText {
		ps = append(ps, route.HasText())
	}
	if w.NotCommand {
		ps = append(ps, route.NotCommand())
	}
	if w.CallbackPrefix != "" {
		ps = append(ps, route.CallbackPrefix(w.CallbackPrefix))
	}
	if w.Attachment != "" {
		ps = append(ps, route.HasAttachment(domain.AttachmentKind(w.Attachment)))
	}
	if w.Reply {
		ps = append(ps, route.IsReply())
	}
	if len(w.Any) > 0 {
		alts := make([]*route.Predicate, 0, len(w.Any))
		for i, a := range w.Any {
			p, err := a.predicate()
			if err != nil {
				return nil, fmt.Errorf("any[%d]: %w", i, err)
			}
			alts = append(alts, p)
		}
		ps = append(ps, route.Or(alts...))
	}
	if w.Not != nil {
		p, err := w.Not.predicate()
		if err != nil {
			return nil, fmt.Errorf("not: %w", err)
		}
		ps = append(ps, route.Not(p))
	}

	switch len(ps) {
	case 0:
		return nil, errors.New("when: no condition set")
	case 1:
		return ps[0], nil
	}
	return route.And(ps...), nil
}

func (a ActionSpec) action(reply Replier) route.Action {
	return func(ctx context.Context, c route.Context) error {
		if a.Reply != "" && reply != nil {
			if err := reply(ctx, c, render(a.Reply, c)); err != nil {
				return err
			}
		}
		switch {
		case a.Reset || a.SetState == DefaultStateToken:
			return c.ResetState(ctx)
		case a.SetState != "":
			return c.SetState(ctx, domain.StateID(a.SetState))
		}
		return nil
	}
}

// render expands the reply placeholders from the handled update.
func render(tmpl string, c route.Context) string {
	u := c.Update()
	if u == nil {
		return tmpl
	}
	state, _ := c.State()
	return strings.NewReplacer(
		"{text}", u.Text,
		"{command}", u.Command,
		"{args}", u.Args,
		"{data}", u.CallbackData,
		"{query}", u.Query,
		"{state}", state.String(),
	).Replace(tmpl)
}

// States returns every explicit state the manifest routes on or moves to, sorted.
func (m *Manifest) States() []domain.StateID {
	seen := make(map[domain.StateID]bool)
	add := func(s string) {
		switch s {
		case "", AnyStateToken, DefaultStateToken:
			return
		}
		seen[domain.StateID(s)] = true
	}
	add(m.Default.SetState)
	for _, r := range m.Routes {
		add(r.State)
		add(r.SetState)
	}
	out := make([]domain.StateID, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	slices.Sort(out)
	return out
}
