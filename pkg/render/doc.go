// Package render converts rendered scene diagrams between output formats.
//
// Diagrams themselves come from the [tree] subpackage, which draws the node
// hierarchy with the embedded Graphviz. PDF output and scaled PNG output go
// through the external rsvg-convert tool:
//
//	svg, err := tree.RenderSVG(ctx, tree.ToDOT(s, tree.Options{}))
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2)
//
// When rsvg-convert is missing the functions return [ErrNoConverter];
// [tree.RenderPNG] renders an unscaled PNG without it.
//
// [tree]: github.com/matzehuels/scenedsl/pkg/render/tree
package render
