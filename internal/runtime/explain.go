package runtime

import (
	"github.com/aretw0/stater/internal/compiler"
	"github.com/aretw0/stater/pkg/domain"
)

// CandidateReport is one leaf candidate as seen by Explain.
type CandidateReport struct {
	Name     string `json:"name"`
	Origin   string `json:"origin"`
	Trigger  string `json:"trigger"`
	Priority int    `json:"priority"`
	// Matched reports the content predicate result. Candidates after the selected one are not evaluated.
	Matched   bool `json:"matched"`
	Evaluated bool `json:"evaluated"`
}

// Explanation shows how an update would be routed.
type Explanation struct {
	Valid      bool              `json:"valid"`
	Error      string            `json:"error,omitempty"`
	Key        string            `json:"key,omitempty"`
	State      domain.StateID    `json:"state"`
	Path       []compiler.Step   `json:"path"`
	Candidates []CandidateReport `json:"candidates"`
	Selected   string            `json:"selected"`
	Fallback   bool              `json:"fallback"`
}

// Explain routes u under state without invoking any action or touching a store.
func (d *Dispatcher) Explain(u *domain.Update, state domain.StateID) Explanation {
	ex := Explanation{State: state, Selected: DefaultHandlerName, Fallback: true, Path: []compiler.Step{}}
	if err := u.Validate(); err != nil {
		ex.Error = err.Error()
		return ex
	}
	ex.Valid = true
	ex.Key = u.Key().String()

	leaf, steps := d.table.Lookup(u.Kind, u.Command, state)
	ex.Path = steps
	if leaf == nil {
		return ex
	}

	for _, c := range leaf.Candidates() {
		r := CandidateReport{
			Name:     c.Descriptor.Name(),
			Origin:   c.Descriptor.Origin(),
			Trigger:  c.Descriptor.Trigger().String(),
			Priority: c.Priority,
		}
		if ex.Fallback {
			r.Evaluated = true
			r.Matched, _ = match(c.Descriptor, u)
			if r.Matched {
				ex.Selected = r.Name
				ex.Fallback = false
			}
		}
		ex.Candidates = append(ex.Candidates, r)
	}
	return ex
}
