package validator

import (
	"fmt"
	"sort"

	"github.com/aretw0/stater/internal/manifest"
)

// Issue is a suspicious state flow found in a manifest. Issues do not stop a router from compiling.
type Issue struct {
	Origin  string
	Message string
}

func (i Issue) String() string {
	if i.Origin == "" {
		return i.Message
	}
	return i.Origin + ": " + i.Message
}

// ValidateStates crawls the state transitions of m, starting from the default state,
// and reports states that are routed on but never entered, and states that are
// entered but have no route scoped to them.
func ValidateStates(m *manifest.Manifest) []Issue {
	// scoped maps each explicit state to the first route declared in it.
	scoped := make(map[string]manifest.RouteSpec)
	for _, r := range m.Routes {
		if explicit(r.State) {
			if _, ok := scoped[r.State]; !ok {
				scoped[r.State] = r
			}
		}
	}

	// entered maps each explicit state to the first route that moves into it.
	entered := make(map[string]string)
	visited := make(map[string]bool)
	queue := []string{""}
	if t := m.Default.SetState; explicit(t) {
		queue = append(queue, t)
		entered[t] = "default"
	}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if visited[current] {
			continue
		}
		visited[current] = true

		for _, r := range m.Routes {
			if !appliesIn(r.State, current) {
				continue
			}
			target := r.SetState
			if r.Reset || !explicit(target) {
				continue // Sink or back to default
			}
			if _, ok := entered[target]; !ok {
				entered[target] = r.Origin()
			}
			if !visited[target] {
				queue = append(queue, target)
			}
		}
	}

	var issues []Issue
	for state, r := range scoped {
		if !visited[state] {
			issues = append(issues, Issue{
				Origin:  r.Origin(),
				Message: fmt.Sprintf("state %q is routed on but never entered", state),
			})
		}
	}
	for state, origin := range entered {
		if _, ok := scoped[state]; !ok {
			issues = append(issues, Issue{
				Origin:  origin,
				Message: fmt.Sprintf("state %q is entered but no route is scoped to it", state),
			})
		}
	}
	sort.Slice(issues, func(i, j int) bool { return issues[i].String() < issues[j].String() })
	return issues
}

func explicit(state string) bool {
	switch state {
	case "", manifest.AnyStateToken, manifest.DefaultStateToken:
		return false
	}
	return true
}

// appliesIn reports whether a route declared with scope can run in state ("" is the default state).
func appliesIn(scope, state string) bool {
	switch scope {
	case "", manifest.AnyStateToken:
		return true
	case manifest.DefaultStateToken:
		return state == ""
	}
	return scope == state
}
