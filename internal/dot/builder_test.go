package dot

import (
	"errors"
	"strings"
	"testing"

	"github.com/gtempel/jiragraph/internal/jira"
	"github.com/gtempel/jiragraph/internal/traverse"
)

func resultWith(issues []*jira.Issue, edges []traverse.Edge) *traverse.Result {
	visited := traverse.NewVisitedSet()
	for i, issue := range issues {
		visited.Add(issue, i)
	}
	return &traverse.Result{Visited: visited, Edges: edges}
}

func TestBuild_NodesAndEdges(t *testing.T) {
	result := resultWith(
		[]*jira.Issue{
			{Key: "JRA-1", Summary: "Login page", Status: "Open", Type: "Story"},
			{Key: "JRA-2", Summary: "Auth service", Status: "Open", Type: "Story"},
		},
		[]traverse.Edge{
			{From: "JRA-1", To: "JRA-2", Label: "relates to", Direction: traverse.Forward},
		},
	)

	out := Build(result, Options{})

	if !strings.HasPrefix(out, "digraph Dependencies {") {
		t.Errorf("missing digraph header: %q", out)
	}
	if !strings.Contains(out, "node [fontname=Helvetica, shape=box];") {
		t.Errorf("default node shape not applied:\n%s", out)
	}
	if !strings.Contains(out, `"JRA-1" [label="JRA-1\nLogin page"`) {
		t.Errorf("node declaration missing:\n%s", out)
	}
	if !strings.Contains(out, `"JRA-1"->"JRA-2" [label="relates to"];`) {
		t.Errorf("edge declaration missing:\n%s", out)
	}
}

func TestBuild_LabelLineBreak(t *testing.T) {
	// The key/summary separator must reach Graphviz as a literal \n
	// escape, not a doubled backslash.
	out := Build(resultWith([]*jira.Issue{
		{Key: "JRA-1", Summary: "Login page", Status: "Open", Type: "Story"},
	}, nil), Options{})

	if !strings.Contains(out, `label="JRA-1\nLogin page"`) {
		t.Errorf("label separator mangled:\n%s", out)
	}
	if strings.Contains(out, `\\n`) {
		t.Errorf("label contains escaped backslash:\n%s", out)
	}
}

func TestBuild_Deterministic(t *testing.T) {
	build := func() string {
		return Build(resultWith(
			[]*jira.Issue{
				{Key: "B", Summary: "b", Status: "Open", Type: "Story"},
				{Key: "A", Summary: "a", Status: "Open", Type: "Story"},
			},
			[]traverse.Edge{
				{From: "B", To: "A", Label: "blocks", Direction: traverse.Forward},
			},
		), Options{})
	}

	first := build()
	second := build()
	if first != second {
		t.Error("identical inputs must produce identical descriptions")
	}

	// Visit order is preserved, not sorted.
	if strings.Index(first, `"B" [`) > strings.Index(first, `"A" [`) {
		t.Errorf("nodes not in visit order:\n%s", first)
	}
}

func TestBuild_InwardEdgeDirection(t *testing.T) {
	out := Build(resultWith(nil, []traverse.Edge{
		{From: "A", To: "B", Label: "is blocked by", Direction: traverse.Back},
	}), Options{})

	if !strings.Contains(out, "dir=back") {
		t.Errorf("inward edge should carry dir=back:\n%s", out)
	}
}

func TestBuild_BlockerHighlighting(t *testing.T) {
	out := Build(resultWith(nil, []traverse.Edge{
		{From: "A", To: "B", Label: "blocks", Direction: traverse.Forward},
	}), Options{})

	if !strings.Contains(out, `color="red", penwidth=2.0`) {
		t.Errorf("blocking edge not highlighted:\n%s", out)
	}
	if !strings.Contains(out, `"A" [color=red, penwidth=2];`) ||
		!strings.Contains(out, `"B" [color=red, penwidth=2];`) {
		t.Errorf("blocking endpoints not outlined:\n%s", out)
	}
}

func TestBuild_StatusFill(t *testing.T) {
	tests := []struct {
		name   string
		issue  jira.Issue
		expect string
	}{
		{"closed", jira.Issue{Key: "A", Status: "Done", Closed: true}, `fillcolor="green"`},
		{"in progress", jira.Issue{Key: "A", Status: "In Progress"}, `fillcolor="yellow"`},
		{"blocked", jira.Issue{Key: "A", Status: "Blocked"}, `fillcolor="red"`},
		{"default", jira.Issue{Key: "A", Status: "Open"}, `fillcolor="white"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issue := tt.issue
			out := Build(resultWith([]*jira.Issue{&issue}, nil), Options{})
			if !strings.Contains(out, tt.expect) {
				t.Errorf("expected %s in:\n%s", tt.expect, out)
			}
		})
	}
}

func TestBuild_SubtaskShape(t *testing.T) {
	out := Build(resultWith([]*jira.Issue{
		{Key: "A-1", Summary: "child", Status: "Open", IsSubtask: true},
	}, nil), Options{})

	if !strings.Contains(out, "shape=ellipse") {
		t.Errorf("subtask node should use a distinct shape:\n%s", out)
	}
}

func TestBuild_SummaryTruncation(t *testing.T) {
	long := strings.Repeat("x", 80)
	out := Build(resultWith([]*jira.Issue{
		{Key: "A", Summary: long, Status: "Open"},
	}, nil), Options{})

	if strings.Contains(out, long) {
		t.Error("long summary was not truncated")
	}
	if !strings.Contains(out, "...") {
		t.Errorf("truncated summary should end with ellipsis:\n%s", out)
	}
}

func TestBuild_QuoteEscaping(t *testing.T) {
	out := Build(resultWith([]*jira.Issue{
		{Key: "A", Summary: `fix "login" flow`, Status: "Open"},
	}, nil), Options{})

	if !strings.Contains(out, "fix 'login' flow") {
		t.Errorf("double quotes in summary should be neutralized:\n%s", out)
	}
}

func TestBuild_ErroredNodesOmitted(t *testing.T) {
	visited := traverse.NewVisitedSet()
	visited.Add(&jira.Issue{Key: "A", Summary: "a", Status: "Open"}, 0)
	visited.AddError("B", 1, errors.New("timeout"))
	result := &traverse.Result{
		Visited: visited,
		Edges:   []traverse.Edge{{From: "A", To: "B", Label: "relates to", Direction: traverse.Forward}},
	}

	out := Build(result, Options{})

	// Anchor to the start of a line so the edge "A"->"B" [...] does not match.
	if strings.Contains(out, "\n\"B\" [") {
		t.Errorf("errored node should have no declaration:\n%s", out)
	}
	if !strings.Contains(out, `"A"->"B"`) {
		t.Errorf("edge to errored node should still appear:\n%s", out)
	}
}

func TestBuild_NodeShapeAndHref(t *testing.T) {
	out := Build(resultWith([]*jira.Issue{
		{Key: "A", Summary: "a", Status: "Open"},
	}, nil), Options{
		NodeShape: "circle",
		BrowseURL: func(key string) string { return "https://jira.example.com/browse/" + key },
	})

	if !strings.Contains(out, "node [fontname=Helvetica, shape=circle];") {
		t.Errorf("custom node shape not applied:\n%s", out)
	}
	if !strings.Contains(out, `href="https://jira.example.com/browse/A"`) {
		t.Errorf("href attribute missing:\n%s", out)
	}
}

func TestBuild_SubtaskEdgeColor(t *testing.T) {
	out := Build(resultWith(nil, []traverse.Edge{
		{From: "A-1", To: "A", Label: traverse.SubtaskLinkLabel, Direction: traverse.Forward},
	}), Options{})

	if !strings.Contains(out, `color="blue"`) {
		t.Errorf("subtask edge should be blue:\n%s", out)
	}
}
