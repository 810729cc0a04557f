package compiler

import (
	"errors"
	"fmt"
	"sort"

	"github.com/aretw0/stater/pkg/domain"
	"github.com/aretw0/stater/pkg/route"
)

// Compile builds the decision tree for list.
//
// Repeated descriptors are dropped first; a descriptor's priority is its index in
// the remaining list. Every wildcard descriptor is folded into each exact child it
// also matches, so a lookup never backtracks. Compile reports every ambiguity and
// every nil descriptor it finds, joined into one error.
func Compile(list route.List) (*Table, error) {
	list = route.Dedup(list)

	c := &compilation{
		priority: make(map[*route.Descriptor]int, len(list)),
		reported: make(map[[2]*route.Descriptor]bool),
	}
	for i, d := range list {
		if d == nil {
			c.errs = append(c.errs, fmt.Errorf("%w at position %d", ErrNilHandler, i))
			continue
		}
		c.priority[d] = i
	}
	if len(c.errs) > 0 {
		return nil, errors.Join(c.errs...)
	}

	t := &Table{handlers: list}
	t.root = c.kindLevel(list)
	if len(c.errs) > 0 {
		return nil, errors.Join(c.errs...)
	}
	t.stats = c.stats
	t.stats.Handlers = len(list)
	return t, nil
}

// MustCompile is Compile that panics on error.
func MustCompile(list route.List) *Table {
	t, err := Compile(list)
	if err != nil {
		panic(err)
	}
	return t
}

type compilation struct {
	priority map[*route.Descriptor]int
	reported map[[2]*route.Descriptor]bool
	errs     []error
	stats    Stats
}

// path is the position of a leaf, used in conflict reports.
type path struct {
	kind    domain.UpdateKind
	command string
	state   string
}

func (p path) String() string {
	cmd := p.command
	switch cmd {
	case "":
		cmd = "*"
	case route.UnknownCommand:
		cmd = "<unknown>"
	}
	return fmt.Sprintf("%s/%s@%s", p.kind, cmd, p.state)
}

func (c *compilation) newNode(level Level, depth int) *Node {
	c.stats.Nodes++
	if depth > c.stats.Depth {
		c.stats.Depth = depth
	}
	return &Node{level: level, children: make(map[string]*Node)}
}

func (c *compilation) kindLevel(l route.List) *Node {
	if len(l) == 0 {
		return nil
	}
	n := c.newNode(LevelKind, 1)
	for _, k := range route.Kinds(l) {
		n.children[string(k)] = c.commandLevel(path{kind: k}, route.FilterByKind(l, k))
	}
	n.wildcard = c.commandLevel(path{kind: domain.KindAny}, route.Filter(l, func(d *route.Descriptor) bool {
		return d.Trigger().Kind == domain.KindAny
	}))
	return n
}

func (c *compilation) commandLevel(p path, l route.List) *Node {
	if len(l) == 0 {
		return nil
	}
	n := c.newNode(LevelCommand, 2)
	for _, cmd := range route.Commands(l) {
		cp := p
		cp.command = cmd
		n.children[cmd] = c.stateLevel(cp, route.FilterByCommand(l, cmd))
	}
	n.wildcard = c.stateLevel(p, route.Filter(l, func(d *route.Descriptor) bool {
		return d.Trigger().Command == ""
	}))
	return n
}

func (c *compilation) stateLevel(p path, l route.List) *Node {
	if len(l) == 0 {
		return nil
	}
	n := c.newNode(LevelState, 3)
	part := route.PartitionByState(l)
	for _, st := range route.States(l) {
		sp := p
		sp.state = string(st)
		n.children[string(st)] = c.leaf(sp, part.For(st))
	}
	if len(part.Default) > 0 {
		sp := p
		sp.state = domain.DefaultState.String()
		n.children[string(domain.DefaultState)] = c.leaf(sp, part.For(domain.DefaultState))
	}
	p.state = "*"
	n.wildcard = c.leaf(p, part.Fallback)
	return n
}

func (c *compilation) leaf(p path, l route.List) *Node {
	if len(l) == 0 {
		return nil
	}
	n := c.newNode(LevelLeaf, 4)
	c.stats.Leaves++

	n.candidates = make([]Candidate, len(l))
	for i, d := range l {
		n.candidates[i] = Candidate{
			Descriptor:  d,
			Priority:    c.priority[d],
			Specificity: d.Trigger().Specificity(),
		}
	}
	sort.SliceStable(n.candidates, func(i, j int) bool {
		a, b := n.candidates[i], n.candidates[j]
		if ra, rb := a.Specificity.Rank(), b.Specificity.Rank(); ra != rb {
			return ra > rb
		}
		return a.Priority < b.Priority
	})

	c.checkAmbiguity(p, n.candidates)
	return n
}

// checkAmbiguity reports unconditional candidates sharing a specificity. Such
// candidates reached the same leaf through the same constraints, so they match
// exactly the same updates and only declaration order would separate them.
func (c *compilation) checkAmbiguity(p path, cands []Candidate) {
	first := make(map[int]*route.Descriptor)
	for _, cand := range cands {
		if cand.Specificity.Predicate {
			continue
		}
		rank := cand.Specificity.Rank()
		prev, ok := first[rank]
		if !ok {
			first[rank] = cand.Descriptor
			continue
		}
		pair := [2]*route.Descriptor{prev, cand.Descriptor}
		if c.reported[pair] {
			continue
		}
		c.reported[pair] = true
		c.errs = append(c.errs, &AmbiguityError{Path: p.String(), First: prev, Second: cand.Descriptor})
	}
}
