package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/DavideDeMarchi/geodash/pkg/hierarchy"
)

// DOTOptions configures DOT generation for hierarchy trees.
type DOTOptions struct {
	// Values includes each node's aggregated value in its label.
	Values bool
}

// ToDOT converts a hierarchy tree to Graphviz DOT format. Nodes appear in
// creation order; edges point from parent to child. The resulting DOT
// string can be rendered with [RenderSVG].
func ToDOT(t *hierarchy.Tree, opts DOTOptions) string {
	var buf bytes.Buffer
	buf.WriteString("digraph hierarchy {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	t.Walk(func(n *hierarchy.Node) {
		label := n.Name
		if opts.Values {
			label = fmt.Sprintf("%s\n%g", n.Name, n.Value)
		}
		fmt.Fprintf(&buf, "  %q [label=%q];\n", n.Name, label)
	})

	buf.WriteString("\n")
	t.Walk(func(n *hierarchy.Node) {
		if n.Parent != nil {
			fmt.Fprintf(&buf, "  %q -> %q;\n", n.Parent.Name, n.Name)
		}
	})

	buf.WriteString("}\n")
	return buf.String()
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
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
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the SVG root element so the view box starts
// at the origin with explicit pixel dimensions, which embeds cleanly.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
