// Package render exports commit graphs as Graphviz diagrams.
//
// Rendering is a diagnostic aid for inspecting rejected histories; the
// acyclicity verdict never depends on it.
package render

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/jmalbrecht/histvet/pkg/dag"
)

// Options configures DOT output.
type Options struct {
	// RankLR lays the graph out left-to-right instead of top-to-bottom,
	// which reads better for long linear histories.
	RankLR bool
}

// ToDOT converts a commit graph to Graphviz DOT format. Edges follow the
// child→parent direction of the graph itself. Implicit nodes (undeclared
// parents admitted under dag.PolicyImplicit) are drawn dashed and grey to
// mark the history's truncation boundary.
func ToDOT(g *dag.DAG, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph commits {\n")
	if opts.RankLR {
		buf.WriteString("  rankdir=LR;\n")
	} else {
		buf.WriteString("  rankdir=TB;\n")
	}
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.15,0.08\"];\n")
	buf.WriteString("\n")

	for _, id := range g.IDs() {
		n, _ := g.Node(id)
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(nodeAttrs(n), ", "))
	}

	buf.WriteString("\n")
	for _, id := range g.IDs() {
		for _, parent := range g.Parents(id) {
			fmt.Fprintf(&buf, "  %q -> %q;\n", id, parent)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeAttrs(n dag.Node) []string {
	attrs := []string{fmt.Sprintf("label=%q", n.ID)}
	if n.IsImplicit() {
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey", "fontcolor=black")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
