package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/scenedsl/pkg/core/scene"
	"github.com/matzehuels/scenedsl/pkg/errors"
)

func rect(name string, x, y, w, h float64) scene.Node {
	return scene.Node{
		Name: name,
		Kind: scene.KindRectangle,
		Props: scene.Props{
			Position: scene.Point{X: x, Y: y},
			Width:    w,
			Height:   h,
		},
	}
}

func group(name string, children ...scene.Node) scene.Node {
	return scene.Node{Name: name, Kind: scene.KindGroup, Props: scene.Props{Children: children}}
}

func twoSquares() scene.Scene {
	return scene.List(rect("a", 0, 0, 50, 50), rect("b", 150, 50, 50, 50))
}

func TestBoundingBox(t *testing.T) {
	box, err := BoundingBox(twoSquares())
	require.NoError(t, err)
	assert.Equal(t, Box{TopLeft: scene.Point{}, BottomRight: scene.Point{X: 200, Y: 100}}, box)
	assert.Equal(t, 200.0, box.Width())
	assert.Equal(t, 100.0, box.Height())
}

func TestBoundingBoxRecursesContainers(t *testing.T) {
	s := scene.List(
		group("outer", rect("a", 10, 20, 5, 5), group("inner", rect("b", -5, 40, 10, 10))),
		group("empty"),
	)
	box, err := BoundingBox(s)
	require.NoError(t, err)
	assert.Equal(t, scene.Point{X: -5, Y: 20}, box.TopLeft)
	assert.Equal(t, scene.Point{X: 15, Y: 50}, box.BottomRight)
}

func TestBoundingBoxNoLeaves(t *testing.T) {
	_, err := BoundingBox(scene.List(group("g")))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeDegenerateScene))

	_, err = BoundingBox(scene.Scene{})
	assert.True(t, errors.Is(err, errors.ErrCodeDegenerateScene))
}

func TestNormalize(t *testing.T) {
	out, frame, err := Normalize(twoSquares())
	require.NoError(t, err)
	assert.Equal(t, Frame{TopLeft: scene.Point{}, Width: 200}, frame)

	require.Len(t, out.Nodes, 2)
	assert.Equal(t, scene.Point{X: 0, Y: 0}, out.Nodes[0].Props.Position)
	assert.Equal(t, scene.Point{X: 75, Y: 25}, out.Nodes[1].Props.Position)
	for _, n := range out.Nodes {
		assert.Equal(t, 25.0, n.Props.Width)
		assert.Equal(t, 25.0, n.Props.Height)
	}
}

func TestNormalizeZeroWidth(t *testing.T) {
	_, _, err := Normalize(scene.List(rect("line", 10, 10, 0, 50)))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeDegenerateScene))
}

func TestNormalizeDoesNotMutateInput(t *testing.T) {
	in := twoSquares()
	_, _, err := Normalize(in)
	require.NoError(t, err)
	assert.Equal(t, scene.Point{X: 150, Y: 50}, in.Nodes[1].Props.Position)
	assert.Equal(t, 50.0, in.Nodes[1].Props.Width)
}

func TestAffineTransformTruncates(t *testing.T) {
	fs := 15.0
	n := rect("t", 3, -3, 7, 9)
	n.Kind = scene.KindText
	n.Props.FontSize = &fs

	out := AffineTransform(scene.SingleNode(n), 0.5, 0, 0.5)
	p := out.Nodes[0].Props
	assert.Equal(t, scene.Point{X: 1, Y: -1}, p.Position)
	assert.Equal(t, 3.0, p.Width)
	assert.Equal(t, 4.0, p.Height)
	assert.Equal(t, 7.0, *p.FontSize)
	assert.Equal(t, 15.0, fs)
	assert.True(t, out.Single)
}

func TestDenormalizeRoundTrip(t *testing.T) {
	in := scene.List(rect("a", 200, 300, 100, 40), group("g", rect("b", 400, 340, 200, 60)))

	norm, frame, err := Normalize(in)
	require.NoError(t, err)
	assert.Equal(t, Frame{TopLeft: scene.Point{X: 200, Y: 300}, Width: 400}, frame)

	back := Denormalize(norm, frame)
	assert.Equal(t, in, back)
}

func TestDenormalizeWithinTruncation(t *testing.T) {
	in := scene.List(rect("a", 13, 17, 33, 21), rect("b", 101, 57, 29, 11))

	norm, frame, err := Normalize(in)
	require.NoError(t, err)
	back := Denormalize(norm, frame)

	scale := frame.Width / CanonicalWidth
	for i := range in.Nodes {
		want, got := in.Nodes[i].Props, back.Nodes[i].Props
		assert.InDelta(t, want.Position.X, got.Position.X, scale+1)
		assert.InDelta(t, want.Position.Y, got.Position.Y, scale+1)
		assert.InDelta(t, want.Width, got.Width, scale+1)
		assert.InDelta(t, want.Height, got.Height, scale+1)
	}
}

func TestDenormalizeDefaultFrame(t *testing.T) {
	out := Denormalize(scene.List(rect("a", 0, 0, 100, 50)), DefaultFrame())
	p := out.Nodes[0].Props
	assert.Equal(t, scene.Point{X: 200, Y: 200}, p.Position)
	assert.Equal(t, 400.0, p.Width)
	assert.Equal(t, 200.0, p.Height)
}

func TestNormalizeMovesChildrenOfLeaves(t *testing.T) {
	parent := rect("p", 100, 100, 100, 100)
	parent.Props.Children = []scene.Node{rect("c", 200, 200, 100, 100)}

	box, err := BoundingBox(scene.List(parent))
	require.NoError(t, err)
	assert.Equal(t, scene.Point{X: 300, Y: 300}, box.BottomRight)

	norm, frame, err := Normalize(scene.List(parent))
	require.NoError(t, err)
	child := norm.Nodes[0].Props.Children[0]
	assert.Equal(t, scene.Point{X: 50, Y: 50}, child.Props.Position)
	assert.Equal(t, 50.0, child.Props.Width)

	back := Denormalize(norm, frame)
	assert.Equal(t, scene.Point{X: 200, Y: 200}, back.Nodes[0].Props.Children[0].Props.Position)
}

func TestDefaultFrameIsFresh(t *testing.T) {
	f := DefaultFrame()
	f.Width = 1
	assert.Equal(t, 400.0, DefaultFrame().Width)
}
