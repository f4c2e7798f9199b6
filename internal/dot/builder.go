// Package dot converts traversal results into Graphviz digraph text.
package dot

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/gtempel/jiragraph/internal/traverse"
)

// MaxSummaryWidth bounds the display width of node summary lines.
const MaxSummaryWidth = 30

// Options control node styling.
type Options struct {
	// NodeShape is the default Graphviz shape; empty means "box".
	NodeShape string
	// BrowseURL maps an issue key to its href attribute. May be nil.
	BrowseURL func(key string) string
}

// Build produces a deterministic Graphviz description of the traversal
// result: one styled node per fetched issue in visit order, one edge per
// discovered relationship in discovery order. Endpoints that were never
// fetched are left undeclared; Graphviz creates bare nodes for them.
func Build(result *traverse.Result, opts Options) string {
	shape := opts.NodeShape
	if shape == "" {
		shape = "box"
	}

	var b strings.Builder
	b.WriteString("digraph Dependencies {\n")
	b.WriteString("graph [fontname=Helvetica, rankdir=LR];\n")
	fmt.Fprintf(&b, "node [fontname=Helvetica, shape=%s];\n", shape)

	b.WriteString("// nodes\n")
	result.Visited.Each(func(key string, entry *traverse.Entry) {
		if entry.Issue == nil {
			// Visited-with-error: no data to style a node with.
			return
		}
		b.WriteString(nodeLine(key, entry, opts))
		b.WriteString(";\n")
	})

	b.WriteString("// edges\n")
	for _, edge := range result.Edges {
		b.WriteString(edgeLine(edge))
		b.WriteString(";\n")
	}

	// Outline every endpoint of a blocking relationship.
	blocked := blockedKeys(result.Edges)
	if len(blocked) > 0 {
		b.WriteString("// blocked\n")
		for _, key := range blocked {
			fmt.Fprintf(&b, "%q [color=red, penwidth=2];\n", key)
		}
	}

	b.WriteString("}\n")
	return b.String()
}

// nodeLine renders one node declaration with label, shape and fill.
func nodeLine(key string, entry *traverse.Entry, opts Options) string {
	issue := entry.Issue

	label := sanitize(key)
	if summary := truncateSummary(issue.Summary); summary != "" {
		label += `\n` + summary
	}

	attrs := []string{
		// The label holds a literal \n line break, so it cannot go
		// through %q, which would escape the backslash.
		fmt.Sprintf(`label="%s"`, label),
		fmt.Sprintf("fillcolor=%q", statusColor(issue.Status, issue.Closed)),
		"style=filled",
	}
	if issue.IsSubtask {
		attrs = append(attrs, "shape=ellipse")
	}
	if opts.BrowseURL != nil {
		attrs = append(attrs, fmt.Sprintf("href=%q", opts.BrowseURL(key)))
	}

	return fmt.Sprintf("%q [%s]", key, strings.Join(attrs, ", "))
}

// edgeLine renders one edge declaration. Inward links carry dir=back so
// the arrowhead sits at the declaring issue; blocking links are
// highlighted.
func edgeLine(edge traverse.Edge) string {
	attrs := []string{fmt.Sprintf("label=%q", edge.Label)}
	if edge.Direction == traverse.Back {
		attrs = append(attrs, "dir=back")
	}
	if isBlocking(edge.Label) {
		attrs = append(attrs, `color="red"`, "penwidth=2.0")
	}
	if edge.Label == traverse.SubtaskLinkLabel {
		attrs = append(attrs, `color="blue"`)
	}
	return fmt.Sprintf("%q->%q [%s]", edge.From, edge.To, strings.Join(attrs, ", "))
}

// sanitize neutralizes double quotes, which would break the dot string.
func sanitize(s string) string {
	return strings.ReplaceAll(s, `"`, "'")
}

// truncateSummary bounds the summary to MaxSummaryWidth display columns.
func truncateSummary(summary string) string {
	return runewidth.Truncate(sanitize(summary), MaxSummaryWidth, "...")
}

// statusColor picks the node fill from issue status.
func statusColor(status string, closed bool) string {
	upper := strings.ToUpper(status)
	switch {
	case strings.Contains(upper, "BLOCK"):
		return "red"
	case closed:
		return "green"
	case strings.Contains(upper, "PROGRESS"):
		return "yellow"
	default:
		return "white"
	}
}

// isBlocking reports whether a link label names a blocking relationship.
func isBlocking(label string) bool {
	return strings.Contains(strings.ToUpper(label), "BLOCK")
}

// blockedKeys returns every endpoint of a blocking edge, first-seen order.
func blockedKeys(edges []traverse.Edge) []string {
	var keys []string
	seen := make(map[string]bool)
	for _, edge := range edges {
		if !isBlocking(edge.Label) {
			continue
		}
		for _, key := range []string{edge.From, edge.To} {
			if !seen[key] {
				seen[key] = true
				keys = append(keys, key)
			}
		}
	}
	return keys
}
