package route

import "github.com/aretw0/stater/pkg/domain"

// List is an ordered sequence of descriptors. Position is priority: earlier wins ties.
type List []*Descriptor

// Concat appends the lists in order, keeping each one's internal order.
// Modules registered earlier take precedence.
func Concat(lists ...List) List {
	n := 0
	for _, l := range lists {
		n += len(l)
	}
	out := make(List, 0, n)
	for _, l := range lists {
		out = append(out, l...)
	}
	return out
}

// Filter keeps the descriptors for which keep returns true.
func Filter(l List, keep func(*Descriptor) bool) List {
	out := make(List, 0, len(l))
	for _, d := range l {
		if keep(d) {
			out = append(out, d)
		}
	}
	return out
}

// FilterByKind keeps descriptors of kind k and wildcard-kind descriptors.
func FilterByKind(l List, k domain.UpdateKind) List {
	return Filter(l, func(d *Descriptor) bool {
		kind := d.trigger.Kind
		return kind == k || kind == domain.KindAny
	})
}

// Dedup drops repeated descriptors, keeping the first occurrence.
// Identity is the descriptor pointer: two separately declared identical triggers are not duplicates.
func Dedup(l List) List {
	seen := make(map[*Descriptor]struct{}, len(l))
	return Filter(l, func(d *Descriptor) bool {
		if _, ok := seen[d]; ok {
			return false
		}
		seen[d] = struct{}{}
		return true
	})
}

// StatePartition groups descriptors by the state they require.
type StatePartition struct {
	// ByState holds InState descriptors per state.
	ByState map[domain.StateID]List
	// Default holds DefaultOnly descriptors.
	Default List
	// Fallback holds AnyState descriptors, eligible under every state.
	Fallback List
}

// PartitionByState splits l by state scope, preserving order inside each group.
func PartitionByState(l List) StatePartition {
	p := StatePartition{ByState: make(map[domain.StateID]List)}
	for _, d := range l {
		switch d.trigger.Scope {
		case InState:
			p.ByState[d.trigger.State] = append(p.ByState[d.trigger.State], d)
		case DefaultOnly:
			p.Default = append(p.Default, d)
		default:
			p.Fallback = append(p.Fallback, d)
		}
	}
	return p
}

// For returns the descriptors eligible under state id: the state-specific
// ones first, then the fallbacks.
func (p StatePartition) For(id domain.StateID) List {
	specific := p.ByState[id]
	if id == domain.DefaultState {
		specific = p.Default
	}
	return Concat(specific, p.Fallback)
}

// States lists the explicit states named in the partition, in first-seen order of l.
func States(l List) []domain.StateID {
	var states []domain.StateID
	seen := make(map[domain.StateID]bool)
	for _, d := range l {
		if d.trigger.Scope != InState || seen[d.trigger.State] {
			continue
		}
		seen[d.trigger.State] = true
		states = append(states, d.trigger.State)
	}
	return states
}

// FilterByCommand keeps descriptors naming command c and descriptors with no command.
func FilterByCommand(l List, c string) List {
	return Filter(l, func(d *Descriptor) bool {
		cmd := d.trigger.Command
		return cmd == c || cmd == ""
	})
}

// Commands lists the commands named in l, in first-seen order. UnknownCommand is included if present.
func Commands(l List) []string {
	var cmds []string
	seen := make(map[string]bool)
	for _, d := range l {
		c := d.trigger.Command
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		cmds = append(cmds, c)
	}
	return cmds
}

// Kinds lists the concrete kinds named in l, in first-seen order.
func Kinds(l List) []domain.UpdateKind {
	var kinds []domain.UpdateKind
	seen := make(map[domain.UpdateKind]bool)
	for _, d := range l {
		k := d.trigger.Kind
		if k == domain.KindAny || seen[k] {
			continue
		}
		seen[k] = true
		kinds = append(kinds, k)
	}
	return kinds
}
