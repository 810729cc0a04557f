package graph_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/aretw0/stater/internal/compiler"
	"github.com/aretw0/stater/internal/presentation/graph"
	"github.com/aretw0/stater/pkg/domain"
	"github.com/aretw0/stater/pkg/route"
	"github.com/muesli/termenv"
)

func noop(context.Context, route.Context) error { return nil }

func table(t *testing.T) *compiler.Table {
	t.Helper()
	tbl, err := compiler.Compile(route.List{
		route.MustNew("start", route.Trigger{Command: "start", Scope: route.DefaultOnly}, noop),
		route.MustNew("resume", route.Trigger{Command: "start", Scope: route.InState, State: "onboarding"}, noop),
		route.MustNew("unknown", route.Trigger{Command: route.UnknownCommand}, noop),
		route.MustNew(`say "hi"`, route.Trigger{Kind: domain.KindMessage, When: route.HasText()}, noop),
	})
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	return tbl
}

func TestGenerateMermaid(t *testing.T) {
	got := graph.GenerateMermaid(table(t), nil)

	for _, want := range []string{
		"graph LR\n",
		`root(("updates"))`,
		`["message"]`,
		`[["/start"]]`,
		`[["unknown command"]]`,
		`[["any command"]]`,
		`("default state<br/>1. start<br/>2. say 'hi'")`,
		`("state onboarding<br/>1. resume<br/>2. say 'hi'")`,
		"root --> n1",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("GenerateMermaid() = \n%v\nWant substring: %v", got, want)
		}
	}
	if strings.Contains(got, "classDef") {
		t.Errorf("GenerateMermaid() without overlay should not style nodes:\n%v", got)
	}
}

func TestGenerateMermaid_Overlay(t *testing.T) {
	tbl := table(t)
	_, steps := tbl.Lookup(domain.KindMessage, "start", "onboarding")

	got := graph.GenerateMermaid(tbl, &graph.Overlay{Path: steps})

	if n := strings.Count(got, " visited;"); n != 2 {
		t.Errorf("expected 2 visited nodes, got %d:\n%v", n, got)
	}
	if n := strings.Count(got, " current;"); n != 1 {
		t.Errorf("expected 1 current node, got %d:\n%v", n, got)
	}
}

func TestKeys(t *testing.T) {
	tbl := table(t)
	_, steps := tbl.Lookup(domain.KindMessage, "frobnicate", "checkout")

	got := strings.Join(graph.Keys(steps), "|")
	want := "message|" + route.UnknownCommand + "|*"
	if got != want {
		t.Errorf("Keys() = %q, want %q", got, want)
	}
}

func TestRenderTree(t *testing.T) {
	var buf bytes.Buffer
	if err := graph.RenderTree(&buf, table(t), termenv.Ascii); err != nil {
		t.Fatalf("RenderTree() error = %v", err)
	}
	got := buf.String()

	for _, want := range []string{
		"message\n",
		"  /start\n",
		"    default state\n",
		"      1. start mermaid_test.go:",
		"    state onboarding\n",
		"      1. resume mermaid_test.go:",
		"  unknown command\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("RenderTree() = \n%v\nWant substring: %q", got, want)
		}
	}
}

func TestRenderTree_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := graph.RenderTree(&buf, compiler.MustCompile(nil), termenv.Ascii); err != nil {
		t.Fatalf("RenderTree() error = %v", err)
	}
	if buf.String() != "(no handlers)\n" {
		t.Errorf("RenderTree() = %q", buf.String())
	}
}
