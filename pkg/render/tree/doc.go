// Package tree draws the node hierarchy of a scene.
//
// Two outputs are available:
//
//   - [ToDOT] and [RenderSVG]: a Graphviz diagram with one box per node,
//     filled with the node's color, and containers drawn as folder tabs
//   - [Outline]: an indented, lipgloss-styled text tree for terminals
//
// Leaves that carry children (a shape [repair.Node] would fix) are flagged
// in both outputs.
//
// # Usage
//
//	dot := tree.ToDOT(s, tree.Options{Detailed: true})
//	svg, err := tree.RenderSVG(ctx, dot)
//
//	fmt.Print(tree.Outline(s, tree.Options{}))
//
// [repair.Node]: github.com/matzehuels/scenedsl/pkg/core/repair.Node
package tree
