// Package geometry normalizes scene coordinates.
//
// Scenes arrive in absolute canvas coordinates. Before they are shown to a
// text model they are translated so the bounding box starts at the origin and
// scaled so it is [CanonicalWidth] units wide. The [Frame] returned by
// [Normalize] records the original top-left corner and width, which is what
// [Denormalize] needs to place a (possibly modified) scene back on the canvas.
//
// Every transformed coordinate and size is truncated toward zero. The result
// is lossy by up to one unit per operation.
package geometry

import (
	"math"

	"github.com/matzehuels/scenedsl/pkg/core/scene"
	"github.com/matzehuels/scenedsl/pkg/errors"
)

// CanonicalWidth is the width of every normalized scene.
const CanonicalWidth = 100.0

// DefaultFrame returns where brand-new creations are placed: top-left
// (200, 200), 400 units wide.
func DefaultFrame() Frame {
	return Frame{TopLeft: scene.Point{X: 200, Y: 200}, Width: 400}
}

// Box is an axis-aligned bounding box.
type Box struct {
	TopLeft     scene.Point
	BottomRight scene.Point
}

// Width returns the horizontal extent of b.
func (b Box) Width() float64 { return b.BottomRight.X - b.TopLeft.X }

// Height returns the vertical extent of b.
func (b Box) Height() float64 { return b.BottomRight.Y - b.TopLeft.Y }

func (b Box) union(o Box) Box {
	return Box{
		TopLeft:     scene.Point{X: math.Min(b.TopLeft.X, o.TopLeft.X), Y: math.Min(b.TopLeft.Y, o.TopLeft.Y)},
		BottomRight: scene.Point{X: math.Max(b.BottomRight.X, o.BottomRight.X), Y: math.Max(b.BottomRight.Y, o.BottomRight.Y)},
	}
}

// Frame positions a normalized scene on the canvas.
type Frame struct {
	TopLeft scene.Point
	Width   float64
}

// BoundingBox returns the smallest box enclosing every leaf in s.
// Containers contribute only through their descendants. Children of a leaf
// count as well, matching the group repair.Node would make of it. A scene
// without any leaf fails with DEGENERATE_SCENE.
func BoundingBox(s scene.Scene) (Box, error) {
	var (
		box   Box
		found bool
	)
	s.Walk(func(n scene.Node, _ int) bool {
		if n.Kind.IsContainer() {
			return true
		}
		b := leafBox(n)
		if !found {
			box, found = b, true
		} else {
			box = box.union(b)
		}
		return true
	})
	if !found {
		return Box{}, errors.New(errors.ErrCodeDegenerateScene, "scene has no leaf nodes")
	}
	return box, nil
}

func leafBox(n scene.Node) Box {
	p := n.Props.Position
	return Box{
		TopLeft:     p,
		BottomRight: scene.Point{X: p.X + n.Props.Width, Y: p.Y + n.Props.Height},
	}
}

// AffineTransform returns a copy of s with every leaf translated by (dx, dy)
// and then scaled by scale. Font sizes scale with the geometry. Children of
// leaves are moved along with everything else.
func AffineTransform(s scene.Scene, dx, dy, scale float64) scene.Scene {
	out := s.Clone()
	for i := range out.Nodes {
		transformNode(&out.Nodes[i], dx, dy, scale)
	}
	return out
}

func transformNode(n *scene.Node, dx, dy, scale float64) {
	if !n.Kind.IsContainer() {
		p := &n.Props
		p.Position = scene.Point{
			X: math.Trunc((p.Position.X + dx) * scale),
			Y: math.Trunc((p.Position.Y + dy) * scale),
		}
		p.Width = math.Trunc(p.Width * scale)
		p.Height = math.Trunc(p.Height * scale)
		if p.FontSize != nil {
			fs := math.Trunc(*p.FontSize * scale)
			p.FontSize = &fs
		}
	}
	for i := range n.Props.Children {
		transformNode(&n.Props.Children[i], dx, dy, scale)
	}
}

// FrameOf returns the frame s occupies on the canvas.
func FrameOf(s scene.Scene) (Frame, error) {
	box, err := BoundingBox(s)
	if err != nil {
		return Frame{}, err
	}
	if box.Width() == 0 {
		return Frame{}, errors.New(errors.ErrCodeDegenerateScene, "scene bounding box has zero width")
	}
	return Frame{TopLeft: box.TopLeft, Width: box.Width()}, nil
}

// Normalize moves s to the origin and scales it to CanonicalWidth.
// The returned frame restores the original placement via Denormalize.
func Normalize(s scene.Scene) (scene.Scene, Frame, error) {
	frame, err := FrameOf(s)
	if err != nil {
		return scene.Scene{}, Frame{}, err
	}
	// Translation and scaling truncate separately.
	moved := AffineTransform(s, -frame.TopLeft.X, -frame.TopLeft.Y, 1)
	return AffineTransform(moved, 0, 0, CanonicalWidth/frame.Width), frame, nil
}

// Denormalize scales a normalized scene to frame.Width and moves it to
// frame.TopLeft.
func Denormalize(s scene.Scene, frame Frame) scene.Scene {
	scaled := AffineTransform(s, 0, 0, frame.Width/CanonicalWidth)
	return AffineTransform(scaled, frame.TopLeft.X, frame.TopLeft.Y, 1)
}
