package scene

import (
	"encoding/json"
	"fmt"

	"github.com/matzehuels/scenedsl/pkg/core/color"
	"github.com/matzehuels/scenedsl/pkg/core/shape"
	"github.com/matzehuels/scenedsl/pkg/errors"
)

// Wire keys.
const (
	KeyName     = "name"
	KeyType     = "type"
	KeyNode     = "node"
	KeyChildren = "children"

	KeyColor               = "color"
	KeyPosition            = "position"
	KeyX                   = "x"
	KeyY                   = "y"
	KeyWidth               = "width"
	KeyHeight              = "height"
	KeyFontSize            = "fontSize"
	KeyOpacity             = "opacity"
	KeyCornerRadius        = "cornerRadius"
	KeyStrokeWeight        = "strokeWeight"
	KeyDropShadow          = "dropShadow"
	KeyTextAlignHorizontal = "textAlignHorizontal"
	KeyCharacters          = "characters"
)

// FieldOrder lists wire keys in the order serializers should emit them.
// Keys not listed sort after these, alphabetically.
var FieldOrder = []string{
	KeyName, KeyType, KeyNode,
	KeyCharacters, KeyColor, KeyPosition, KeyX, KeyY, KeyWidth, KeyHeight,
	KeyFontSize, KeyOpacity, KeyCornerRadius, KeyStrokeWeight, KeyDropShadow,
	KeyTextAlignHorizontal,
	"r", "g", "b",
	KeyChildren,
}

// ColorMode selects how Encode writes the color property.
type ColorMode int

const (
	// ColorRGB writes {"r", "g", "b"} channel mappings.
	ColorRGB ColorMode = iota
	// ColorHex writes "#rrggbb" strings.
	ColorHex
)

// Encode converts s to a generic document tree: a mapping when s.Single is
// set, otherwise a sequence.
func Encode(s Scene, mode ColorMode) any {
	if s.Single && len(s.Nodes) == 1 {
		return EncodeNode(s.Nodes[0], mode)
	}
	out := make([]any, len(s.Nodes))
	for i, n := range s.Nodes {
		out[i] = EncodeNode(n, mode)
	}
	return out
}

// EncodeNode converts n to its {name, type, node} mapping.
func EncodeNode(n Node, mode ColorMode) map[string]any {
	return map[string]any{
		KeyName: n.Name,
		KeyType: string(n.Kind),
		KeyNode: encodeProps(n.Kind, n.Props, mode),
	}
}

func encodeProps(kind Kind, p Props, mode ColorMode) map[string]any {
	out := make(map[string]any, len(p.Extra)+8)
	for k, v := range p.Extra {
		out[k] = shape.Clone(v)
	}

	switch kind.Class() {
	case ClassContainer:
		children := make([]any, len(p.Children))
		for i, c := range p.Children {
			children[i] = EncodeNode(c, mode)
		}
		out[KeyChildren] = children
		return out
	default:
		if p.Color != nil {
			out[KeyColor] = encodeColor(*p.Color, mode)
		}
		out[KeyPosition] = map[string]any{KeyX: p.Position.X, KeyY: p.Position.Y}
		out[KeyWidth] = p.Width
		out[KeyHeight] = p.Height
		putFloat(out, KeyFontSize, p.FontSize)
		putFloat(out, KeyOpacity, p.Opacity)
		putFloat(out, KeyCornerRadius, p.CornerRadius)
		putFloat(out, KeyStrokeWeight, p.StrokeWeight)
		putFloat(out, KeyDropShadow, p.DropShadow)
		if p.TextAlignHorizontal != "" {
			out[KeyTextAlignHorizontal] = p.TextAlignHorizontal
		}
		if p.Characters != nil {
			out[KeyCharacters] = *p.Characters
		}
		// Only reachable for malformed input that has not been repaired yet.
		if len(p.Children) > 0 {
			children := make([]any, len(p.Children))
			for i, c := range p.Children {
				children[i] = EncodeNode(c, mode)
			}
			out[KeyChildren] = children
		}
		return out
	}
}

func encodeColor(c color.RGB, mode ColorMode) any {
	if mode == ColorHex {
		return color.Encode(c)
	}
	return map[string]any{"r": c.R, "g": c.G, "b": c.B}
}

func putFloat(m map[string]any, key string, f *float64) {
	if f != nil {
		m[key] = *f
	}
}

// Decode converts a generic document tree into a Scene.
//
// The root may be a single node mapping, a sequence of nodes, or an index
// mapping ({"0": ..., "1": ...}). An empty mapping is read as an empty scene.
// Colors are accepted both as channel mappings and hex strings.
func Decode(v any) (Scene, error) {
	if d := shape.Depth(v); d > shape.MaxDepth {
		return Scene{}, errors.New(errors.ErrCodeMalformedSceneShape,
			"scene nesting depth %d exceeds limit %d", d, shape.MaxDepth)
	}
	if m, ok := v.(map[string]any); ok {
		if _, isIndex := shape.IndexKeys(m); !isIndex && len(m) > 0 {
			n, err := decodeNode(m, "$")
			if err != nil {
				return Scene{}, err
			}
			return Scene{Nodes: []Node{n}, Single: true}, nil
		}
	}
	items, err := asSequence(v, "$")
	if err != nil {
		return Scene{}, err
	}
	nodes := make([]Node, len(items))
	for i, item := range items {
		n, err := decodeNode(item, fmt.Sprintf("$[%d]", i))
		if err != nil {
			return Scene{}, err
		}
		nodes[i] = n
	}
	return Scene{Nodes: nodes}, nil
}

// DecodeNode converts a single {name, type, node} mapping into a Node.
func DecodeNode(v any) (Node, error) {
	if d := shape.Depth(v); d > shape.MaxDepth {
		return Node{}, errors.New(errors.ErrCodeMalformedSceneShape,
			"node nesting depth %d exceeds limit %d", d, shape.MaxDepth)
	}
	return decodeNode(v, "$")
}

func decodeNode(v any, path string) (Node, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return Node{}, malformed(path, "expected node mapping, got %s", typeName(v))
	}

	var n Node
	if raw, ok := m[KeyName]; ok && raw != nil {
		s, ok := raw.(string)
		if !ok {
			return Node{}, malformed(path+"."+KeyName, "expected string, got %s", typeName(raw))
		}
		n.Name = s
	}
	if raw, ok := m[KeyType]; ok && raw != nil {
		s, ok := raw.(string)
		if !ok {
			return Node{}, malformed(path+"."+KeyType, "expected string, got %s", typeName(raw))
		}
		n.Kind = Kind(s)
	}

	props := map[string]any{}
	if raw, ok := m[KeyNode]; ok && raw != nil {
		pm, ok := raw.(map[string]any)
		if !ok {
			return Node{}, malformed(path+"."+KeyNode, "expected mapping, got %s", typeName(raw))
		}
		props = pm
	}

	p, err := decodeProps(n.Kind, props, path+"."+KeyNode)
	if err != nil {
		return Node{}, err
	}
	n.Props = p
	return n, nil
}

func decodeProps(kind Kind, m map[string]any, path string) (Props, error) {
	var p Props
	extra := make(map[string]any)

	leaf := kind.Class() == ClassLeaf
	for key, raw := range m {
		field := path + "." + key
		var err error
		switch {
		case key == KeyChildren:
			p.Children, err = decodeChildren(raw, field)
		case !leaf:
			extra[key] = shape.Clone(raw)
		case key == KeyColor:
			if raw == nil {
				continue
			}
			var c color.RGB
			c, err = decodeColor(raw, field)
			p.Color = &c
		case key == KeyPosition:
			p.Position, err = decodePoint(raw, field)
		case key == KeyWidth:
			p.Width, err = requireNumber(raw, field)
		case key == KeyHeight:
			p.Height, err = requireNumber(raw, field)
		case key == KeyFontSize:
			p.FontSize, err = optionalNumber(raw, field)
		case key == KeyOpacity:
			p.Opacity, err = optionalNumber(raw, field)
		case key == KeyCornerRadius:
			p.CornerRadius, err = optionalNumber(raw, field)
		case key == KeyStrokeWeight:
			p.StrokeWeight, err = optionalNumber(raw, field)
		case key == KeyDropShadow:
			p.DropShadow, err = optionalNumber(raw, field)
		case key == KeyTextAlignHorizontal:
			if s, ok := raw.(string); ok {
				p.TextAlignHorizontal = s
			} else {
				extra[key] = shape.Clone(raw)
			}
		case key == KeyCharacters:
			if s, ok := raw.(string); ok {
				p.Characters = &s
			} else {
				extra[key] = shape.Clone(raw)
			}
		default:
			extra[key] = shape.Clone(raw)
		}
		if err != nil {
			return Props{}, err
		}
	}
	if len(extra) > 0 {
		p.Extra = extra
	}
	return p, nil
}

func decodeChildren(raw any, path string) ([]Node, error) {
	if raw == nil {
		return nil, nil
	}
	items, err := asSequence(raw, path)
	if err != nil {
		return nil, err
	}
	children := make([]Node, len(items))
	for i, item := range items {
		c, err := decodeNode(item, fmt.Sprintf("%s[%d]", path, i))
		if err != nil {
			return nil, err
		}
		children[i] = c
	}
	return children, nil
}

// asSequence accepts a sequence, an index mapping, or an empty mapping.
func asSequence(v any, path string) ([]any, error) {
	switch t := v.(type) {
	case []any:
		return t, nil
	case map[string]any:
		if len(t) == 0 {
			return []any{}, nil
		}
		keys, ok := shape.IndexKeys(t)
		if !ok {
			return nil, malformed(path, "expected sequence, got mapping")
		}
		out := make([]any, len(keys))
		for i, k := range keys {
			out[i] = t[k]
		}
		return out, nil
	case nil:
		return []any{}, nil
	default:
		return nil, malformed(path, "expected sequence, got %s", typeName(v))
	}
}

func decodeColor(raw any, path string) (color.RGB, error) {
	switch t := raw.(type) {
	case string:
		c, err := color.Decode(t)
		if err != nil {
			return color.RGB{}, fmt.Errorf("%s: %w", path, err)
		}
		return c, nil
	case map[string]any:
		var c color.RGB
		var err error
		if c.R, err = channel(t, "r", path); err != nil {
			return color.RGB{}, err
		}
		if c.G, err = channel(t, "g", path); err != nil {
			return color.RGB{}, err
		}
		if c.B, err = channel(t, "b", path); err != nil {
			return color.RGB{}, err
		}
		return c, nil
	default:
		return color.RGB{}, malformed(path, "expected hex string or {r, g, b}, got %s", typeName(raw))
	}
}

func channel(m map[string]any, key, path string) (float64, error) {
	raw, ok := m[key]
	if !ok || raw == nil {
		return 0, nil
	}
	return requireNumber(raw, path+"."+key)
}

func decodePoint(raw any, path string) (Point, error) {
	if raw == nil {
		return Point{}, nil
	}
	m, ok := raw.(map[string]any)
	if !ok {
		return Point{}, malformed(path, "expected {x, y}, got %s", typeName(raw))
	}
	var p Point
	var err error
	if v, ok := m[KeyX]; ok && v != nil {
		if p.X, err = requireNumber(v, path+"."+KeyX); err != nil {
			return Point{}, err
		}
	}
	if v, ok := m[KeyY]; ok && v != nil {
		if p.Y, err = requireNumber(v, path+"."+KeyY); err != nil {
			return Point{}, err
		}
	}
	return p, nil
}

func requireNumber(raw any, path string) (float64, error) {
	f, ok := toFloat(raw)
	if !ok {
		return 0, malformed(path, "expected number, got %s", typeName(raw))
	}
	return f, nil
}

func optionalNumber(raw any, path string) (*float64, error) {
	if raw == nil {
		return nil, nil
	}
	f, err := requireNumber(raw, path)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case float64:
		return n, true
	}
	f, ok := shape.Clone(v).(float64)
	return f, ok
}

func cloneValue(v any) any {
	return shape.Clone(v)
}

func malformed(path, format string, args ...any) error {
	return errors.New(errors.ErrCodeMalformedSceneShape, "%s: %s", path, fmt.Sprintf(format, args...))
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "mapping"
	case []any:
		return "sequence"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64, float32, int, int64, int32:
		return "number"
	default:
		return fmt.Sprintf("%T", v)
	}
}
