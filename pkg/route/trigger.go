package route

import (
	"fmt"
	"strings"

	"github.com/aretw0/stater/pkg/domain"
)

// StateScope selects how a trigger constrains the conversation state.
type StateScope uint8

const (
	// AnyState matches every state. Such handlers act as fallbacks for state-specific ones.
	AnyState StateScope = iota
	// InState matches exactly Trigger.State.
	InState
	// DefaultOnly matches only conversations in domain.DefaultState.
	DefaultOnly
)

func (s StateScope) String() string {
	switch s {
	case AnyState:
		return "any"
	case InState:
		return "state"
	case DefaultOnly:
		return "default"
	}
	return fmt.Sprintf("StateScope(%d)", uint8(s))
}

// UnknownCommand is a Command value matching any command that no other descriptor names.
const UnknownCommand = "\x00unknown"

// Predicate is a named boolean check over an update's content.
// The name identifies the predicate in build reports and tree dumps.
type Predicate struct {
	Name string
	Fn   func(u *domain.Update) bool
}

// NewPredicate names fn.
func NewPredicate(name string, fn func(u *domain.Update) bool) *Predicate {
	return &Predicate{Name: name, Fn: fn}
}

// String returns the predicate name; a nil predicate is "true".
func (p *Predicate) String() string {
	if p == nil {
		return "true"
	}
	return p.Name
}

// Match evaluates the predicate. A nil predicate always matches.
func (p *Predicate) Match(u *domain.Update) bool {
	if p == nil {
		return true
	}
	return p.Fn(u)
}

// Trigger is the conjunction of checks deciding whether a handler applies to an update.
// Zero fields are wildcards: the zero Trigger matches every update.
type Trigger struct {
	Kind    domain.UpdateKind
	Command string
	Scope   StateScope
	State   domain.StateID
	When    *Predicate
}

// Specificity records which predicate classes a trigger pins down.
type Specificity struct {
	State     bool
	Command   bool
	Kind      bool
	Predicate bool
}

// Rank orders specificities. Command outranks state, state outranks kind,
// kind outranks the content predicate.
func (s Specificity) Rank() int {
	r := 0
	if s.Command {
		r |= 1 << 3
	}
	if s.State {
		r |= 1 << 2
	}
	if s.Kind {
		r |= 1 << 1
	}
	if s.Predicate {
		r |= 1
	}
	return r
}

// Specificity reports which classes t constrains.
func (t Trigger) Specificity() Specificity {
	return Specificity{
		State:     t.Scope != AnyState,
		Command:   t.Command != "",
		Kind:      t.Kind != domain.KindAny,
		Predicate: t.When != nil,
	}
}

// StateKey returns the value the trigger requires at the state level, and false for AnyState.
func (t Trigger) StateKey() (domain.StateID, bool) {
	switch t.Scope {
	case InState:
		return t.State, true
	case DefaultOnly:
		return domain.DefaultState, true
	}
	return "", false
}

// Overlaps reports whether some update could satisfy both triggers, ignoring content predicates.
func (t Trigger) Overlaps(o Trigger) bool {
	if t.Kind != domain.KindAny && o.Kind != domain.KindAny && t.Kind != o.Kind {
		return false
	}
	if t.Command != "" && o.Command != "" && t.Command != o.Command {
		return false
	}
	ts, tok := t.StateKey()
	oState, ook := o.StateKey()
	if tok && ook && ts != oState {
		return false
	}
	return true
}

// Normalize returns t with a command's "/" prefix stripped, lowercased, and
// the message kind implied for commands without a kind.
func (t Trigger) Normalize() Trigger {
	if t.Command != "" && t.Command != UnknownCommand {
		t.Command = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(t.Command), "/"))
	}
	if t.Command != "" && t.Kind == domain.KindAny {
		t.Kind = domain.KindMessage
	}
	return t
}

// Validate lists every reason t cannot be compiled.
func (t Trigger) Validate() []string {
	var reasons []string

	if t.Kind != domain.KindAny && !t.Kind.Known() {
		reasons = append(reasons, fmt.Sprintf("unknown update kind %q", string(t.Kind)))
	}

	if t.Command != "" && t.Command != UnknownCommand {
		switch {
		case strings.ContainsAny(t.Command, " \t\n@"):
			reasons = append(reasons, fmt.Sprintf("command %q must be a single token without @botname", t.Command))
		case strings.TrimPrefix(t.Command, "/") == "":
			reasons = append(reasons, "command is empty")
		}
	}
	if t.Command != "" && t.Kind != domain.KindAny && t.Kind.Known() && !t.Kind.CarriesCommands() {
		reasons = append(reasons, fmt.Sprintf("%s updates never carry commands", t.Kind))
	}

	if t.When != nil {
		if t.When.Fn == nil {
			reasons = append(reasons, "content predicate has no function")
		}
		if t.When.Name == "" {
			reasons = append(reasons, "content predicate has no name")
		}
		if t.Kind == domain.KindAny && t.Command == "" {
			reasons = append(reasons, "content predicate needs an update kind to apply to")
		}
	}

	switch t.Scope {
	case AnyState, DefaultOnly:
		if t.State != domain.DefaultState {
			reasons = append(reasons, fmt.Sprintf("state %q given with %s scope", string(t.State), t.Scope))
		}
	case InState:
		if t.State == domain.DefaultState {
			reasons = append(reasons, "state scope requires a state ID")
		}
	default:
		reasons = append(reasons, fmt.Sprintf("unknown state scope %s", t.Scope))
	}

	return reasons
}

// String renders the trigger as kind/command@state?predicate, with * for wildcards.
func (t Trigger) String() string {
	var sb strings.Builder
	sb.WriteString(t.Kind.String())
	sb.WriteByte('/')
	switch t.Command {
	case "":
		sb.WriteByte('*')
	case UnknownCommand:
		sb.WriteString("<unknown>")
	default:
		sb.WriteString(t.Command)
	}
	sb.WriteByte('@')
	switch t.Scope {
	case InState:
		sb.WriteString(string(t.State))
	case DefaultOnly:
		sb.WriteString("<default>")
	default:
		sb.WriteByte('*')
	}
	if t.When != nil {
		sb.WriteByte('?')
		sb.WriteString(t.When.Name)
	}
	return sb.String()
}
