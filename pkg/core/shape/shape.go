// Package shape reshapes generic document trees between sequence and
// index-mapping form.
//
// A document tree is built from map[string]any, []any and scalars (string,
// float64, bool, nil), the shape produced by decoding JSON or YAML. Keyed
// structural diffs only understand mappings and scalars, so before diffing
// every sequence is rewritten as a mapping from decimal index strings to
// elements:
//
//	["a", "b"]  ->  {"0": "a", "1": "b"}
//
// [MappingToSequence] reverses the rewrite. Functions in this package never
// modify their input; every result is a fresh tree.
package shape

import (
	"reflect"
	"sort"
	"strconv"
)

// MaxDepth bounds the nesting of documents accepted from outside the process.
// Scenes are trees without back-references, so the only risk is adversarial
// or runaway generated input.
const MaxDepth = 256

// SequenceToMapping returns a copy of v in which every []any has been
// replaced by a map keyed by the decimal index of each element.
func SequenceToMapping(v any) any {
	switch t := v.(type) {
	case []any:
		out := make(map[string]any, len(t))
		for i, el := range t {
			out[strconv.Itoa(i)] = SequenceToMapping(el)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, el := range t {
			out[k] = SequenceToMapping(el)
		}
		return out
	default:
		return normalizeScalar(v)
	}
}

// MappingToSequence returns a copy of v in which every non-empty mapping whose
// keys are all non-negative decimal integers has been replaced by a sequence
// ordered by numeric key. Gaps in the key set are closed up.
//
// Empty mappings stay mappings: on their own they cannot be told apart from
// an empty sequence, so the decision is left to a caller that knows what the
// schema expects at that position.
func MappingToSequence(v any) any {
	switch t := v.(type) {
	case map[string]any:
		if keys, ok := IndexKeys(t); ok {
			out := make([]any, len(keys))
			for i, k := range keys {
				out[i] = MappingToSequence(t[k])
			}
			return out
		}
		out := make(map[string]any, len(t))
		for k, el := range t {
			out[k] = MappingToSequence(el)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, el := range t {
			out[i] = MappingToSequence(el)
		}
		return out
	default:
		return normalizeScalar(v)
	}
}

// IndexKeys reports whether m is a non-empty index mapping and, if so,
// returns its keys sorted by numeric value.
func IndexKeys(m map[string]any) ([]string, bool) {
	if len(m) == 0 {
		return nil, false
	}
	type entry struct {
		key string
		idx int
	}
	entries := make([]entry, 0, len(m))
	for k := range m {
		idx, ok := parseIndex(k)
		if !ok {
			return nil, false
		}
		entries = append(entries, entry{k, idx})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].idx != entries[j].idx {
			return entries[i].idx < entries[j].idx
		}
		return entries[i].key < entries[j].key
	})
	keys := make([]string, len(entries))
	for i, e := range entries {
		keys[i] = e.key
	}
	return keys, true
}

// parseIndex accepts plain decimal digits only: no sign, no spaces.
func parseIndex(k string) (int, bool) {
	if k == "" {
		return 0, false
	}
	for i := 0; i < len(k); i++ {
		if k[i] < '0' || k[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(k)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Clone returns a deep copy of v with numeric scalars normalized to float64.
func Clone(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, el := range t {
			out[k] = Clone(el)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, el := range t {
			out[i] = Clone(el)
		}
		return out
	default:
		return normalizeScalar(v)
	}
}

// Equal reports whether a and b are the same tree. Numbers compare by value
// regardless of their Go numeric type.
func Equal(a, b any) bool {
	return reflect.DeepEqual(Clone(a), Clone(b))
}

// Depth returns the nesting depth of v. Scalars have depth 0.
func Depth(v any) int {
	d := 0
	switch t := v.(type) {
	case map[string]any:
		for _, el := range t {
			if c := Depth(el) + 1; c > d {
				d = c
			}
		}
		if d == 0 {
			d = 1
		}
	case []any:
		for _, el := range t {
			if c := Depth(el) + 1; c > d {
				d = c
			}
		}
		if d == 0 {
			d = 1
		}
	}
	return d
}

func normalizeScalar(v any) any {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int8:
		return float64(n)
	case int16:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case uint:
		return float64(n)
	case uint8:
		return float64(n)
	case uint16:
		return float64(n)
	case uint32:
		return float64(n)
	case uint64:
		return float64(n)
	case float32:
		return float64(n)
	}
	return v
}
