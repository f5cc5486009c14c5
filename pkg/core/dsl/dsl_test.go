package dsl

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/scenedsl/pkg/core/color"
	"github.com/matzehuels/scenedsl/pkg/core/geometry"
	"github.com/matzehuels/scenedsl/pkg/core/scene"
	"github.com/matzehuels/scenedsl/pkg/core/shape"
	"github.com/matzehuels/scenedsl/pkg/errors"
)

func ptr[T any](v T) *T { return &v }

func sampleScene() scene.Scene {
	return scene.List(
		scene.Node{
			Name: "1. Background",
			Kind: scene.KindRectangle,
			Props: scene.Props{
				Color:    &color.RGB{R: 1},
				Position: scene.Point{X: 200, Y: 300},
				Width:    100,
				Height:   40,
				Extra:    map[string]any{"effects": []any{"blur"}},
			},
		},
		scene.Node{
			Name: "Header",
			Kind: scene.KindGroup,
			Props: scene.Props{Children: []scene.Node{{
				Name: "Title",
				Kind: scene.KindText,
				Props: scene.Props{
					Color:               &color.RGB{B: 1},
					Position:            scene.Point{X: 400, Y: 340},
					Width:               200,
					Height:              60,
					FontSize:            ptr(40.0),
					Characters:          ptr("Hi"),
					TextAlignHorizontal: "CENTER",
				},
			}}},
		},
	)
}

func TestToDSL(t *testing.T) {
	doc, frame, err := ToDSL(sampleScene())
	require.NoError(t, err)
	assert.Equal(t, geometry.Frame{TopLeft: scene.Point{X: 200, Y: 300}, Width: 400}, frame)

	want := map[string]any{
		"0": map[string]any{
			"name": "1. Background",
			"type": "RECTANGLE",
			"node": map[string]any{
				"color":    "#ff0000",
				"position": map[string]any{"x": 0.0, "y": 0.0},
				"width":    25.0,
				"height":   10.0,
				"effects":  map[string]any{"0": "blur"},
			},
		},
		"1": map[string]any{
			"name": "Header",
			"type": "GROUP",
			"node": map[string]any{
				"children": map[string]any{
					"0": map[string]any{
						"name": "Title",
						"type": "TEXT",
						"node": map[string]any{
							"color":               "#0000ff",
							"position":            map[string]any{"x": 50.0, "y": 10.0},
							"width":               50.0,
							"height":              15.0,
							"fontSize":            10.0,
							"characters":          "Hi",
							"textAlignHorizontal": "CENTER",
						},
					},
				},
			},
		},
	}
	assert.Equal(t, want, doc)
}

func TestToDSLDegenerate(t *testing.T) {
	_, _, err := ToDSL(scene.List(scene.Node{Name: "g", Kind: scene.KindGroup}))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeDegenerateScene))
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	in := sampleScene()

	text, frame, err := Encode(in)
	require.NoError(t, err)

	out, err := Decode(text, frame)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestEncodeSingleNode(t *testing.T) {
	in := scene.SingleNode(scene.Node{
		Name:  "Solo",
		Kind:  scene.KindEllipse,
		Props: scene.Props{Position: scene.Point{X: 10, Y: 10}, Width: 50, Height: 50},
	})

	text, frame, err := Encode(in)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(text, "name: Solo\n"), text)

	out, err := Decode(text, frame)
	require.NoError(t, err)
	assert.True(t, out.Single)
	assert.Equal(t, in, out)
}

func TestMarshalLayout(t *testing.T) {
	doc := map[string]any{
		"0": map[string]any{
			"node": map[string]any{
				"height":   25.0,
				"width":    25.0,
				"position": map[string]any{"y": 0.0, "x": 0.0},
				"color":    "#ff0000",
			},
			"type": "RECTANGLE",
			"name": "a",
		},
	}

	data, err := Marshal(doc)
	require.NoError(t, err)

	want := strings.Join([]string{
		"0:",
		"  name: a",
		"  type: RECTANGLE",
		"  node:",
		"    color: '#ff0000'",
		"    position:",
		"      x: 0",
		"      y: 0",
		"    width: 25",
		"    height: 25",
		"",
	}, "\n")
	assert.Equal(t, want, string(data))
}

func TestMarshalIndexKeysSortNumerically(t *testing.T) {
	doc := map[string]any{"name": "after"}
	for i := 0; i < 12; i++ {
		doc[strconv.Itoa(i)] = float64(i)
	}
	data, err := Marshal(doc)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 13)
	assert.Equal(t, "0: 0", lines[0])
	assert.Equal(t, "2: 2", lines[2])
	assert.Equal(t, "10: 10", lines[10])
	assert.Equal(t, "11: 11", lines[11])
	assert.Equal(t, "name: after", lines[12])
}

func TestMarshalUnmarshalPreservesTypes(t *testing.T) {
	doc := map[string]any{
		"name":     "123",
		"flag":     "true",
		"nothing":  "null",
		"hash":     "#abc",
		"multi":    "line one\nline two",
		"real":     true,
		"none":     nil,
		"ratio":    0.125,
		"tiny":     1e-7,
		"huge":     1e300,
		"negative": -42.0,
		"list":     []any{"a", 1.0},
		"empty":    map[string]any{},
		"0":        "index",
	}

	data, err := Marshal(doc)
	require.NoError(t, err)

	got, err := Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, doc, got)
}

func TestMarshalRejectsUnsupported(t *testing.T) {
	_, err := Marshal(map[string]any{"x": struct{}{}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeMalformedSceneShape))
}

func TestUnmarshal(t *testing.T) {
	text := `
base: &b
  x: 1
  y: 2.5
0: *b
'1': hello
2: ~
`
	got, err := Unmarshal([]byte(text))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"base": map[string]any{"x": 1.0, "y": 2.5},
		"0":    map[string]any{"x": 1.0, "y": 2.5},
		"1":    "hello",
		"2":    nil,
	}, got)
}

func TestUnmarshalEmpty(t *testing.T) {
	got, err := Unmarshal(nil)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestUnmarshalMalformed(t *testing.T) {
	for _, text := range []string{
		"a: [1, 2",
		"key: value\n  bad indent: x\n",
		"{[1]: x}",
		strings.Repeat("[", 400) + strings.Repeat("]", 400),
		"0:\n  name: a\n  name: b\n  type: RECTANGLE\n",
		"0: {name: a}\n'0': {name: b}\n",
	} {
		_, err := Unmarshal([]byte(text))
		require.Error(t, err, text)
		assert.True(t, errors.Is(err, errors.ErrCodeMalformedSceneShape), "%q: %v", text, err)
	}
}

func TestUnmarshalDuplicateKeyLine(t *testing.T) {
	_, err := Unmarshal([]byte("0:\n  name: a\n  type: RECTANGLE\n  name: b\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `line 4: duplicate key "name"`)
}

func TestDecodeRepairsAndPlaces(t *testing.T) {
	text := `
0:
  name: Card
  type: RECTANGLE
  node:
    color: '#ffffff'
    position: {x: 0, y: 0}
    width: 50
    height: 25
    children:
      0:
        name: Label
        type: TEXT
        node:
          characters: OK
          position: {x: 10, y: 5}
          width: 30
          height: 10
          fontSize: 8
`
	s, err := Decode(text, geometry.DefaultFrame())
	require.NoError(t, err)
	require.Len(t, s.Nodes, 1)

	g := s.Nodes[0]
	assert.Equal(t, "Card Group", g.Name)
	assert.Equal(t, scene.KindGroup, g.Kind)
	require.Len(t, g.Props.Children, 2)

	card := g.Props.Children[0]
	assert.Equal(t, &color.RGB{R: 1, G: 1, B: 1}, card.Props.Color)
	assert.Equal(t, scene.Point{X: 200, Y: 200}, card.Props.Position)
	assert.Equal(t, 200.0, card.Props.Width)
	assert.Equal(t, 100.0, card.Props.Height)

	label := g.Props.Children[1]
	assert.Equal(t, scene.Point{X: 240, Y: 220}, label.Props.Position)
	assert.Equal(t, ptr(32.0), label.Props.FontSize)
}

func TestDecodeEmptyChildren(t *testing.T) {
	text := `
0:
  name: Empty
  type: FRAME
  node:
    children: {}
`
	s, err := Decode(text, geometry.DefaultFrame())
	require.NoError(t, err)
	require.Len(t, s.Nodes, 1)
	assert.Empty(t, s.Nodes[0].Props.Children)
}

func TestDecodeMalformedShape(t *testing.T) {
	_, err := Decode("0:\n  name: x\n  node: [1, 2]\n", geometry.DefaultFrame())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeMalformedSceneShape))

	_, err = Decode("0:\n  name: x\n  node:\n    color: '#abcd'\n", geometry.DefaultFrame())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeMalformedColor))
}

func TestToDSLOutputSurvivesText(t *testing.T) {
	doc, _, err := ToDSL(sampleScene())
	require.NoError(t, err)

	data, err := Marshal(doc)
	require.NoError(t, err)
	back, err := Unmarshal(data)
	require.NoError(t, err)
	assert.True(t, shape.Equal(doc, back))
}
