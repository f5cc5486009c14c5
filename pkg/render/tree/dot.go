package tree

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/scenedsl/pkg/core/color"
	"github.com/matzehuels/scenedsl/pkg/core/scene"
)

// Options configures hierarchy rendering.
type Options struct {
	// Detailed adds geometry and color to every leaf label.
	Detailed bool
}

// RootID is the DOT identifier of the synthetic scene root.
const RootID = "scene"

// ToDOT converts a scene hierarchy to Graphviz DOT format.
// Node identifiers are index paths from the root ("n0", "n0.1", ...).
func ToDOT(s scene.Scene, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.4;\n")
	buf.WriteString("  nodesep=0.25;\n")
	buf.WriteString("\n")
	fmt.Fprintf(&buf, "  %q [label=%q, shape=point];\n", RootID, RootID)

	for i, n := range s.Nodes {
		writeNode(&buf, RootID, "n"+strconv.Itoa(i), n, opts)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func writeNode(buf *bytes.Buffer, parent, id string, n scene.Node, opts Options) {
	fmt.Fprintf(buf, "  %q [%s];\n", id, strings.Join(fmtAttrs(n, opts), ", "))
	fmt.Fprintf(buf, "  %q -> %q;\n", parent, id)
	for i, c := range n.Props.Children {
		writeNode(buf, id, id+"."+strconv.Itoa(i), c, opts)
	}
}

func fmtLabel(n scene.Node, detailed bool) string {
	label := n.Name + "\n" + string(n.Kind)
	if !detailed || n.Kind.IsContainer() {
		return label
	}
	p := n.Props
	parts := []string{
		fmt.Sprintf("at %g,%g", p.Position.X, p.Position.Y),
		fmt.Sprintf("%g×%g", p.Width, p.Height),
	}
	if p.Color != nil {
		parts = append(parts, color.Encode(*p.Color))
	}
	return label + "\n" + strings.Join(parts, " ")
}

func fmtAttrs(n scene.Node, opts Options) []string {
	attrs := []string{fmt.Sprintf("label=%q", fmtLabel(n, opts.Detailed))}
	switch {
	case n.Kind.IsContainer():
		attrs = append(attrs, "shape=tab", "fillcolor=lightgrey")
	case n.HasChildren():
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "color=red")
	case n.Kind == scene.KindEllipse:
		attrs = append(attrs, "shape=ellipse")
	case n.Kind == scene.KindText:
		attrs = append(attrs, "shape=plaintext")
	}
	if n.Props.Color != nil && !n.Kind.IsContainer() {
		attrs = append(attrs, fmt.Sprintf("fillcolor=%q", color.Encode(*n.Props.Color)))
		if luminance(*n.Props.Color) < 0.5 {
			attrs = append(attrs, "fontcolor=white")
		}
	}
	return attrs
}

func luminance(c color.RGB) float64 {
	return 0.2126*c.R + 0.7152*c.G + 0.0722*c.B
}

// RenderSVG renders a DOT graph to SVG with the embedded Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	svg, err := render(ctx, dot, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(svg), nil
}

// RenderPNG renders a DOT graph to PNG with the embedded Graphviz. It needs
// no external tools but ignores scaling; callers that have rsvg-convert get
// sharper output by converting the SVG instead.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return render(ctx, dot, graphviz.PNG)
}

func render(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
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
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render %s: %w", format, err)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's point-based svg header with one whose
// viewBox starts at the origin.
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

	header := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(header))
}
