package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/stater/internal/compiler"
	"github.com/aretw0/stater/pkg/route"
)

// Overlay highlights one lookup on the graph, typically taken from an explanation.
type Overlay struct {
	Path []compiler.Step
}

// GenerateMermaid renders the decision tree as a Mermaid flowchart.
// It applies semantic styling:
// - Root: ((Circle))
// - Kind: [Rectangle]
// - Command: [[Subroutine]]
// - Leaf: (Rounded), listing its handlers in evaluation order
// Nodes on the overlay path are styled as visited, its leaf as current.
func GenerateMermaid(t *compiler.Table, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")
	sb.WriteString("    root((\"updates\"))\n")

	ids := map[string]string{"": "root"}
	t.Walk(func(p []string, n *compiler.Node) {
		if len(p) == 0 {
			return
		}
		id := fmt.Sprintf("n%d", len(ids))
		ids[pathKey(p)] = id
		parent := ids[pathKey(p[:len(p)-1])]

		label := escape(edgeLabel(len(p), p[len(p)-1]))
		switch n.Level() {
		case compiler.LevelCommand:
			fmt.Fprintf(&sb, "    %s[\"%s\"]\n", id, label)
		case compiler.LevelState:
			fmt.Fprintf(&sb, "    %s[[\"%s\"]]\n", id, label)
		default:
			fmt.Fprintf(&sb, "    %s(\"%s\")\n", id, leafLabel(label, n))
		}
		fmt.Fprintf(&sb, "    %s --> %s\n", parent, id)
	})

	if overlay != nil && len(overlay.Path) > 0 {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		p := Keys(overlay.Path)
		for i := 1; i <= len(p); i++ {
			id, ok := ids[pathKey(p[:i])]
			if !ok {
				break
			}
			class := "visited"
			if i == len(p) {
				class = "current"
			}
			fmt.Fprintf(&sb, "    class %s %s;\n", id, class)
		}
	}

	return sb.String()
}

// Keys converts lookup steps to the edge keys Walk reports.
func Keys(steps []compiler.Step) []string {
	keys := make([]string, len(steps))
	for i, s := range steps {
		keys[i] = s.Value
		if s.Wildcard {
			keys[i] = "*"
		}
	}
	return keys
}

// edgeLabel names the edge key at depth (1 kind, 2 command, 3 state).
func edgeLabel(depth int, key string) string {
	switch depth {
	case 1:
		if key == "*" {
			return "any kind"
		}
		return key
	case 2:
		switch key {
		case "*":
			return "any command"
		case route.UnknownCommand:
			return "unknown command"
		}
		return "/" + key
	}
	switch key {
	case "*":
		return "any state"
	case "":
		return "default state"
	}
	return "state " + key
}

func leafLabel(label string, n *compiler.Node) string {
	var sb strings.Builder
	sb.WriteString(label)
	for i, c := range n.Candidates() {
		fmt.Fprintf(&sb, "<br/>%d. %s", i+1, escape(c.Descriptor.Name()))
	}
	return sb.String()
}

func pathKey(p []string) string {
	return strings.Join(p, "\x00")
}

var escaper = strings.NewReplacer("\"", "'", "<", "&lt;", ">", "&gt;")

func escape(s string) string {
	return escaper.Replace(s)
}
