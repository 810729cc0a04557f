package compiler

import (
	"sort"

	"github.com/aretw0/stater/pkg/domain"
	"github.com/aretw0/stater/pkg/route"
)

// Level is the predicate class a node discriminates on.
type Level uint8

const (
	LevelKind Level = iota
	LevelCommand
	LevelState
	LevelLeaf
)

func (l Level) String() string {
	switch l {
	case LevelKind:
		return "kind"
	case LevelCommand:
		return "command"
	case LevelState:
		return "state"
	}
	return "leaf"
}

// Candidate is a descriptor placed in a leaf.
type Candidate struct {
	Descriptor  *route.Descriptor
	Priority    int
	Specificity route.Specificity
}

// Node is one node of the decision tree. Nodes are never modified after Compile returns.
type Node struct {
	level      Level
	children   map[string]*Node
	wildcard   *Node
	candidates []Candidate
}

// Level returns the class this node discriminates on, or LevelLeaf.
func (n *Node) Level() Level { return n.level }

// Child returns the child reached by exact value key.
func (n *Node) Child(key string) (*Node, bool) {
	c, ok := n.children[key]
	return c, ok
}

// Wildcard returns the child for values no exact child matches, or nil.
func (n *Node) Wildcard() *Node { return n.wildcard }

// Candidates returns the leaf's candidates in evaluation order. The slice must not be modified.
func (n *Node) Candidates() []Candidate { return n.candidates }

// Keys returns the exact child keys, sorted.
func (n *Node) Keys() []string {
	keys := make([]string, 0, len(n.children))
	for k := range n.children {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Stats summarizes a compiled table.
type Stats struct {
	Handlers int `json:"handlers"`
	Nodes    int `json:"nodes"`
	Leaves   int `json:"leaves"`
	Depth    int `json:"depth"`
}

// Table is the compiled, read-only decision structure. It is safe for concurrent use.
type Table struct {
	root     *Node
	handlers route.List
	stats    Stats
}

// Root returns the kind-level root, or nil for a table without handlers.
func (t *Table) Root() *Node { return t.root }

// Handlers returns the deduplicated handler list in priority order.
func (t *Table) Handlers() route.List { return route.Concat(t.handlers) }

// Stats returns node and leaf counts.
func (t *Table) Stats() Stats { return t.stats }

// Step records one level of a lookup.
type Step struct {
	Level    Level  `json:"level"`
	Value    string `json:"value"`
	Wildcard bool   `json:"wildcard"`
}

// Lookup walks the tree for the given attributes and returns the leaf, or nil.
// command is empty for updates without a command. Lookup cost depends only on the tree depth.
func (t *Table) Lookup(kind domain.UpdateKind, command string, state domain.StateID) (*Node, []Step) {
	steps := make([]Step, 0, 3)
	n := t.root

	if n == nil {
		return nil, steps
	}
	n, step := descend(n, string(kind), false)
	steps = append(steps, step)
	if n == nil {
		return nil, steps
	}

	n, step = descend(n, command, command != "")
	steps = append(steps, step)
	if n == nil {
		return nil, steps
	}

	n, step = descend(n, string(state), false)
	steps = append(steps, step)
	return n, steps
}

// descend picks the exact child for value, then the unknown-command child when
// allowed, then the wildcard child.
func descend(n *Node, value string, unknownCommand bool) (*Node, Step) {
	step := Step{Level: n.level, Value: value}
	if n.level != LevelCommand || value != "" {
		if c, ok := n.children[value]; ok {
			return c, step
		}
	}
	if unknownCommand {
		if c, ok := n.children[route.UnknownCommand]; ok {
			step.Value = route.UnknownCommand
			return c, step
		}
	}
	step.Wildcard = true
	return n.wildcard, step
}

// Walk visits every node depth-first, exact children in key order before the wildcard.
// path holds the keys leading to n; "*" marks a wildcard edge.
func (t *Table) Walk(fn func(path []string, n *Node)) {
	if t.root == nil {
		return
	}
	walk(nil, t.root, fn)
}

func walk(path []string, n *Node, fn func([]string, *Node)) {
	fn(path, n)
	for _, k := range n.Keys() {
		walk(append(path[:len(path):len(path)], k), n.children[k], fn)
	}
	if n.wildcard != nil {
		walk(append(path[:len(path):len(path)], "*"), n.wildcard, fn)
	}
}
