// Package repair fixes leaves that carry children.
//
// Generated DSL sometimes nests nodes under a RECTANGLE or TEXT node, which
// the design tool cannot represent. Such a leaf is replaced by a GROUP that
// holds the leaf itself (without children) followed by its former children,
// so every node survives and paint order is kept.
package repair

import "github.com/matzehuels/scenedsl/pkg/core/scene"

// GroupSuffix is appended to a leaf's name to name its wrapping group.
const GroupSuffix = " Group"

// Node returns a well-formed copy of n. Applying it twice yields the same
// result as applying it once.
func Node(n scene.Node) scene.Node {
	if n.Kind.IsContainer() {
		out := n.Clone()
		for i, c := range out.Props.Children {
			out.Props.Children[i] = Node(c)
		}
		return out
	}
	if !n.HasChildren() {
		return n.Clone()
	}

	leaf := n.Clone()
	children := leaf.Props.Children
	leaf.Props.Children = nil

	grouped := make([]scene.Node, 0, len(children)+1)
	grouped = append(grouped, leaf)
	for _, c := range children {
		grouped = append(grouped, Node(c))
	}
	return scene.Node{
		Name:  n.Name + GroupSuffix,
		Kind:  scene.KindGroup,
		Props: scene.Props{Children: grouped},
	}
}

// Scene repairs every top-level node of s.
func Scene(s scene.Scene) scene.Scene {
	out := scene.Scene{Single: s.Single}
	if s.Nodes != nil {
		out.Nodes = make([]scene.Node, len(s.Nodes))
		for i, n := range s.Nodes {
			out.Nodes[i] = Node(n)
		}
	}
	return out
}
