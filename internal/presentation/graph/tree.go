package graph

import (
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/stater/internal/compiler"
	"github.com/muesli/termenv"
)

// RenderTree writes the decision tree as an indented outline. Colors follow profile;
// pass termenv.Ascii for plain text.
func RenderTree(w io.Writer, t *compiler.Table, profile termenv.Profile) error {
	if t.Root() == nil {
		_, err := fmt.Fprintln(w, "(no handlers)")
		return err
	}

	var (
		kind    = func(s string) string { return profile.String(s).Foreground(profile.Color("#818cf8")).Bold().String() }
		command = func(s string) string { return profile.String(s).Foreground(profile.Color("#c084fc")).String() }
		state   = func(s string) string { return profile.String(s).Foreground(profile.Color("#f472b6")).String() }
		faint   = func(s string) string { return profile.String(s).Faint().String() }
	)

	var sb strings.Builder
	t.Walk(func(p []string, n *compiler.Node) {
		depth := len(p)
		if depth == 0 {
			return
		}
		indent := strings.Repeat("  ", depth-1)
		label := edgeLabel(depth, p[depth-1])
		switch depth {
		case 1:
			label = kind(label)
		case 2:
			label = command(label)
		default:
			label = state(label)
		}
		fmt.Fprintf(&sb, "%s%s\n", indent, label)

		for i, c := range n.Candidates() {
			fmt.Fprintf(&sb, "%s  %d. %s %s\n", indent, i+1, c.Descriptor.Name(), faint(c.Descriptor.Origin()))
		}
	})
	_, err := io.WriteString(w, sb.String())
	return err
}
