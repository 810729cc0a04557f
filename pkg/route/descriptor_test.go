package route_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aretw0/stater/pkg/domain"
	"github.com/aretw0/stater/pkg/route"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noop(context.Context, route.Context) error { return nil }

func TestNew_Malformed(t *testing.T) {
	always := route.NewPredicate("always", func(*domain.Update) bool { return true })

	tests := []struct {
		name    string
		trigger route.Trigger
		action  route.Action
		reason  string
	}{
		{"unknown kind", route.Trigger{Kind: "sticker_set"}, noop, "unknown update kind"},
		{"predicate without kind", route.Trigger{When: always}, noop, "needs an update kind"},
		{"command on callback", route.Trigger{Kind: domain.KindCallbackQuery, Command: "start"}, noop, "never carry commands"},
		{"command with botname", route.Trigger{Command: "start@my_bot"}, noop, "single token"},
		{"command with space", route.Trigger{Command: "start now"}, noop, "single token"},
		{"empty command", route.Trigger{Command: "/"}, noop, "command is empty"},
		{"state scope without state", route.Trigger{Kind: domain.KindMessage, Scope: route.InState}, noop, "requires a state ID"},
		{"state without scope", route.Trigger{Kind: domain.KindMessage, State: "x"}, noop, "given with any scope"},
		{"unnamed predicate", route.Trigger{Kind: domain.KindMessage, When: &route.Predicate{Fn: always.Fn}}, noop, "no name"},
		{"predicate without func", route.Trigger{Kind: domain.KindMessage, When: &route.Predicate{Name: "p"}}, noop, "no function"},
		{"nil action", route.Trigger{Kind: domain.KindMessage}, nil, "action is nil"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := route.New("h", tt.trigger, tt.action)
			require.Error(t, err)
			assert.Nil(t, d)
			assert.ErrorIs(t, err, route.ErrMalformedTrigger)

			var malformed *route.MalformedError
			require.True(t, errors.As(err, &malformed))
			assert.Equal(t, "h", malformed.Name)
			assert.Contains(t, malformed.Origin, "descriptor_test.go:")
			assert.Contains(t, strings.Join(malformed.Reasons, ";"), tt.reason)
		})
	}
}

func TestNew_ReportsAllReasons(t *testing.T) {
	_, err := route.New("bad", route.Trigger{Kind: "nope", Scope: route.InState}, nil)

	var malformed *route.MalformedError
	require.ErrorAs(t, err, &malformed)
	assert.Len(t, malformed.Reasons, 3)
}

func TestNew_NormalizesCommand(t *testing.T) {
	d, err := route.New("", route.Trigger{Command: "/Start"}, noop)
	require.NoError(t, err)

	tr := d.Trigger()
	assert.Equal(t, "start", tr.Command)
	assert.Equal(t, domain.KindMessage, tr.Kind, "commands imply the message kind")
	assert.Equal(t, "message/start@*", d.Name(), "empty names fall back to the trigger rendering")
}

func TestNew_PredicateAllowedWithCommand(t *testing.T) {
	_, err := route.New("", route.Trigger{Command: "buy", When: route.HasText()}, noop)
	assert.NoError(t, err)
}

func TestMustNew_Panics(t *testing.T) {
	assert.Panics(t, func() {
		route.MustNew("bad", route.Trigger{Kind: "nope"}, noop)
	})
}

func TestTrigger_Overlaps(t *testing.T) {
	msg := route.Trigger{Kind: domain.KindMessage}
	start := route.Trigger{Kind: domain.KindMessage, Command: "start"}
	help := route.Trigger{Kind: domain.KindMessage, Command: "help"}
	onboarding := route.Trigger{Kind: domain.KindMessage, Scope: route.InState, State: "onboarding"}
	idle := route.Trigger{Kind: domain.KindMessage, Scope: route.DefaultOnly}
	callback := route.Trigger{Kind: domain.KindCallbackQuery}

	assert.True(t, msg.Overlaps(start))
	assert.True(t, start.Overlaps(onboarding))
	assert.False(t, start.Overlaps(help))
	assert.False(t, onboarding.Overlaps(idle))
	assert.False(t, msg.Overlaps(callback))
	assert.True(t, route.Trigger{}.Overlaps(callback))
}

func TestSpecificity_Rank(t *testing.T) {
	stateOnly := route.Trigger{Kind: domain.KindMessage, Scope: route.InState, State: "s"}.Specificity()
	commandOnly := route.Trigger{Kind: domain.KindMessage, Command: "start"}.Specificity()
	kindOnly := route.Trigger{Kind: domain.KindMessage}.Specificity()
	withPredicate := route.Trigger{Kind: domain.KindMessage, When: route.HasText()}.Specificity()

	assert.Greater(t, commandOnly.Rank(), stateOnly.Rank())
	assert.Greater(t, stateOnly.Rank(), withPredicate.Rank())
	assert.Greater(t, withPredicate.Rank(), kindOnly.Rank())
	assert.Zero(t, route.Trigger{}.Specificity().Rank())
}

func TestTrigger_String(t *testing.T) {
	tr := route.Trigger{Kind: domain.KindMessage, Command: route.UnknownCommand, Scope: route.DefaultOnly, When: route.HasText()}
	assert.Equal(t, "message/<unknown>@<default>?text", tr.String())
	assert.Equal(t, "*/*@*", route.Trigger{}.String())
}
