// Package scene defines the design-tool scene graph.
//
// A [Scene] is an ordered list of [Node] values, optionally flagged as having
// been supplied as a single node. Container nodes (GROUP, FRAME) hold
// children; every other kind is a leaf positioned in absolute canvas
// coordinates with a width, height, and optional paint and text properties.
//
// # Wire Shape
//
// Scenes travel as generic document trees (decoded JSON or YAML):
//
//	{
//	  "name": "1. Button",
//	  "type": "RECTANGLE",
//	  "node": {
//	    "color": {"r": 1, "g": 0, "b": 0},
//	    "position": {"x": 10, "y": 20},
//	    "width": 120,
//	    "height": 40
//	  }
//	}
//
// [Encode] and [Decode] convert between the typed model and that shape.
// Properties this package does not model are kept in [Props.Extra] so a
// decode/encode cycle never drops data.
//
// All values in this package are plain data. Methods that transform a scene
// return new values and never modify the receiver.
package scene

import "github.com/matzehuels/scenedsl/pkg/core/color"

// Point is a 2D canvas coordinate.
type Point struct {
	X float64
	Y float64
}

// Add returns p translated by q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Props holds the kind-specific payload of a node (the "node" field on the
// wire). Leaves use the geometry and paint fields; containers use Children.
type Props struct {
	Color    *color.RGB
	Position Point
	Width    float64
	Height   float64

	FontSize     *float64
	Opacity      *float64
	CornerRadius *float64
	StrokeWeight *float64
	DropShadow   *float64

	TextAlignHorizontal string
	Characters          *string

	Children []Node

	// Extra holds properties without a typed field, keyed by wire name.
	Extra map[string]any
}

// Node is one visual element.
type Node struct {
	Name  string
	Kind  Kind
	Props Props
}

// HasChildren reports whether n currently carries any children, regardless
// of whether its kind allows them.
func (n Node) HasChildren() bool {
	return len(n.Props.Children) > 0
}

// Scene is the top-level unit exchanged with the design tool.
type Scene struct {
	Nodes []Node
	// Single records that the scene was supplied as one node rather than a
	// sequence; encoding preserves that shape.
	Single bool
}

// SingleNode returns a scene holding only n, encoded as a lone node.
func SingleNode(n Node) Scene {
	return Scene{Nodes: []Node{n.Clone()}, Single: true}
}

// List returns a sequence scene holding copies of nodes.
func List(nodes ...Node) Scene {
	out := make([]Node, len(nodes))
	for i, n := range nodes {
		out[i] = n.Clone()
	}
	return Scene{Nodes: out}
}

// Len returns the number of top-level nodes.
func (s Scene) Len() int {
	return len(s.Nodes)
}

// Count returns the number of nodes in s, including all descendants.
func (s Scene) Count() int {
	total := 0
	s.Walk(func(Node, int) bool {
		total++
		return true
	})
	return total
}

// Walk visits every node depth-first in paint order. Returning false from fn
// skips the node's children.
func (s Scene) Walk(fn func(n Node, depth int) bool) {
	for _, n := range s.Nodes {
		walk(n, 0, fn)
	}
}

func walk(n Node, depth int, fn func(Node, int) bool) {
	if !fn(n, depth) {
		return
	}
	for _, c := range n.Props.Children {
		walk(c, depth+1, fn)
	}
}

// Clone returns a deep copy of s.
func (s Scene) Clone() Scene {
	out := Scene{Single: s.Single}
	if s.Nodes != nil {
		out.Nodes = cloneNodes(s.Nodes)
	}
	return out
}

// AsList returns a copy of s that encodes as a sequence.
func (s Scene) AsList() Scene {
	out := s.Clone()
	out.Single = false
	return out
}

// Clone returns a deep copy of n.
func (n Node) Clone() Node {
	n.Props = n.Props.clone()
	return n
}

func (p Props) clone() Props {
	if p.Color != nil {
		c := *p.Color
		p.Color = &c
	}
	p.FontSize = cloneFloat(p.FontSize)
	p.Opacity = cloneFloat(p.Opacity)
	p.CornerRadius = cloneFloat(p.CornerRadius)
	p.StrokeWeight = cloneFloat(p.StrokeWeight)
	p.DropShadow = cloneFloat(p.DropShadow)
	if p.Characters != nil {
		s := *p.Characters
		p.Characters = &s
	}
	if p.Children != nil {
		p.Children = cloneNodes(p.Children)
	}
	if p.Extra != nil {
		extra := make(map[string]any, len(p.Extra))
		for k, v := range p.Extra {
			extra[k] = cloneValue(v)
		}
		p.Extra = extra
	}
	return p
}

func cloneNodes(nodes []Node) []Node {
	out := make([]Node, len(nodes))
	for i, n := range nodes {
		out[i] = n.Clone()
	}
	return out
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}
