package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/stater/internal/runtime"
)

// ExplanationMarkdown renders an explanation as a markdown report.
func ExplanationMarkdown(ex runtime.Explanation) string {
	var sb strings.Builder
	sb.WriteString("# Routing\n\n")

	if !ex.Valid {
		fmt.Fprintf(&sb, "Malformed update: `%s`\n\nIt goes to the **%s** handler.\n", ex.Error, ex.Selected)
		return sb.String()
	}

	fmt.Fprintf(&sb, "- **Conversation:** `%s`\n", ex.Key)
	fmt.Fprintf(&sb, "- **State:** `%s`\n", ex.State.String())

	path := make([]string, 0, len(ex.Path))
	for _, s := range ex.Path {
		v := s.Value
		switch {
		case s.Wildcard:
			v = "*"
		case v == "":
			v = "<default>"
		}
		path = append(path, fmt.Sprintf("%s=`%s`", s.Level, v))
	}
	fmt.Fprintf(&sb, "- **Path:** %s\n\n", strings.Join(path, " → "))

	if len(ex.Candidates) == 0 {
		sb.WriteString("No candidate handlers.\n\n")
	} else {
		sb.WriteString("| # | Handler | Trigger | Declared at | Result |\n")
		sb.WriteString("|---|---------|---------|-------------|--------|\n")
		for i, c := range ex.Candidates {
			result := "not evaluated"
			if c.Evaluated {
				result = "no match"
				if c.Matched {
					result = "**selected**"
				}
			}
			fmt.Fprintf(&sb, "| %d | %s | `%s` | %s | %s |\n", i+1, c.Name, c.Trigger, c.Origin, result)
		}
		sb.WriteString("\n")
	}

	if ex.Fallback {
		fmt.Fprintf(&sb, "Nothing matched: the **%s** handler runs.\n", ex.Selected)
	} else {
		fmt.Fprintf(&sb, "Selected: **%s**.\n", ex.Selected)
	}
	return sb.String()
}
