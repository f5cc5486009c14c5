package dsl

import (
	"bytes"
	"math"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/scenedsl/pkg/core/scene"
	"github.com/matzehuels/scenedsl/pkg/core/shape"
	"github.com/matzehuels/scenedsl/pkg/errors"
)

// maxExactInt is the largest magnitude written as a plain integer.
const maxExactInt = 1e15

var fieldRank = func() map[string]int {
	m := make(map[string]int, len(scene.FieldOrder))
	for i, k := range scene.FieldOrder {
		m[k] = i
	}
	return m
}()

// Marshal writes a document tree as YAML block text.
//
// Mapping keys are ordered index keys first (numerically), then scene fields
// in schema order, then everything else alphabetically. Integral numbers are
// written without a fraction.
func Marshal(v any) ([]byte, error) {
	node, err := toNode(v, 0)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(node); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode YAML")
	}
	if err := enc.Close(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode YAML")
	}
	return buf.Bytes(), nil
}

func toNode(v any, depth int) (*yaml.Node, error) {
	if depth > shape.MaxDepth {
		return nil, errors.New(errors.ErrCodeMalformedSceneShape, "document nesting exceeds limit %d", shape.MaxDepth)
	}
	switch t := v.(type) {
	case map[string]any:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, k := range sortKeys(t) {
			val, err := toNode(t[k], depth+1)
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, keyNode(k), val)
		}
		return n, nil
	case []any:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, el := range t {
			val, err := toNode(el, depth+1)
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, val)
		}
		return n, nil
	case string:
		return scalar("!!str", t), nil
	case bool:
		return scalar("!!bool", strconv.FormatBool(t)), nil
	case nil:
		return scalar("!!null", "null"), nil
	default:
		if f, ok := shape.Clone(v).(float64); ok {
			return numberNode(f), nil
		}
		return nil, errors.New(errors.ErrCodeMalformedSceneShape, "unsupported document value of type %T", v)
	}
}

func scalar(tag, value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
}

func keyNode(k string) *yaml.Node {
	if i, ok := index(k); ok && strconv.Itoa(i) == k {
		return scalar("!!int", k)
	}
	return scalar("!!str", k)
}

func numberNode(f float64) *yaml.Node {
	switch {
	case math.IsNaN(f):
		return scalar("!!float", ".nan")
	case math.IsInf(f, 1):
		return scalar("!!float", ".inf")
	case math.IsInf(f, -1):
		return scalar("!!float", "-.inf")
	case f == math.Trunc(f) && math.Abs(f) < maxExactInt:
		return scalar("!!int", strconv.FormatFloat(f, 'f', -1, 64))
	default:
		return scalar("!!float", strconv.FormatFloat(f, 'g', -1, 64))
	}
}

func index(k string) (int, bool) {
	if k == "" || len(k) > 9 {
		return 0, false
	}
	for i := 0; i < len(k); i++ {
		if k[i] < '0' || k[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(k)
	return n, err == nil
}

func sortKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keyLess(keys[i], keys[j])
	})
	return keys
}

func keyLess(a, b string) bool {
	ia, aIdx := index(a)
	ib, bIdx := index(b)
	switch {
	case aIdx && bIdx:
		if ia != ib {
			return ia < ib
		}
		return a < b
	case aIdx != bIdx:
		return aIdx
	}
	ra, aField := fieldRank[a]
	rb, bField := fieldRank[b]
	switch {
	case aField && bField:
		return ra < rb
	case aField != bField:
		return aField
	}
	return a < b
}

// Unmarshal parses YAML text into a document tree.
//
// Mapping keys are always read as strings, so "0:" and "'0':" are the same
// key. Numbers become float64. Aliases are expanded. Empty input yields nil.
func Unmarshal(data []byte) (any, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeMalformedSceneShape, err, "parse DSL")
	}
	root := &doc
	if doc.Kind == yaml.DocumentNode {
		if len(doc.Content) == 0 {
			return nil, nil
		}
		root = doc.Content[0]
	}
	if root.Kind == 0 {
		return nil, nil
	}
	return fromNode(root, 0)
}

func fromNode(n *yaml.Node, depth int) (any, error) {
	if depth > shape.MaxDepth {
		return nil, errors.New(errors.ErrCodeMalformedSceneShape, "document nesting exceeds limit %d", shape.MaxDepth)
	}
	switch n.Kind {
	case yaml.AliasNode:
		if n.Alias == nil {
			return nil, errors.New(errors.ErrCodeMalformedSceneShape, "line %d: unresolved alias", n.Line)
		}
		return fromNode(n.Alias, depth+1)
	case yaml.MappingNode:
		out := make(map[string]any, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			k := n.Content[i]
			if k.Kind == yaml.AliasNode && k.Alias != nil {
				k = k.Alias
			}
			if k.Kind != yaml.ScalarNode {
				return nil, errors.New(errors.ErrCodeMalformedSceneShape, "line %d: mapping key must be a scalar", k.Line)
			}
			if _, dup := out[k.Value]; dup {
				return nil, errors.New(errors.ErrCodeMalformedSceneShape, "line %d: duplicate key %q", k.Line, k.Value)
			}
			v, err := fromNode(n.Content[i+1], depth+1)
			if err != nil {
				return nil, err
			}
			out[k.Value] = v
		}
		return out, nil
	case yaml.SequenceNode:
		out := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := fromNode(c, depth+1)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case yaml.ScalarNode:
		return fromScalar(n)
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return fromNode(n.Content[0], depth+1)
	default:
		return nil, errors.New(errors.ErrCodeMalformedSceneShape, "line %d: unexpected YAML node", n.Line)
	}
}

func fromScalar(n *yaml.Node) (any, error) {
	switch n.ShortTag() {
	case "!!null":
		return nil, nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, errors.Wrap(errors.ErrCodeMalformedSceneShape, err, "line %d", n.Line)
		}
		return b, nil
	case "!!int", "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, errors.Wrap(errors.ErrCodeMalformedSceneShape, err, "line %d", n.Line)
		}
		return f, nil
	default:
		return n.Value, nil
	}
}
