// Package diff computes and replays structural patches between DSL trees.
//
// Both sides of a diff are document trees in DSL form (see package dsl), in
// which every sequence has already been rewritten as an index mapping. The
// diff is therefore a plain keyed-mapping diff. A [Patch] is itself a
// mapping, so it serializes with the same YAML codec as the DSL:
//
//	0:
//	  node:
//	    color: '#00ff00'
//	1:
//	  name: Renamed
//	$delete:
//	- "2"
//
// Patch vocabulary:
//
//	key: value          set or overwrite key
//	key: {patch}        apply a nested patch to the mapping at key
//	$delete: [keys]     remove keys
//	$replace: value     replace the whole value
//
// $replace is only emitted when a value cannot be expressed otherwise: when
// the roots are not both mappings, or when a new mapping itself uses a key
// starting with "$".
package diff

import (
	"sort"
	"strconv"
	"strings"

	"github.com/matzehuels/scenedsl/pkg/core/shape"
)

// Reserved patch keys.
const (
	DeleteKey  = "$delete"
	ReplaceKey = "$replace"
)

// Patch is a structural patch.
type Patch map[string]any

// IsEmpty reports whether applying p changes nothing.
func (p Patch) IsEmpty() bool {
	return len(p) == 0
}

// Compute returns the patch that turns a into b. Keys are visited in sorted
// order, so equal inputs always produce equal patches.
func Compute(a, b any) Patch {
	am, aok := a.(map[string]any)
	bm, bok := b.(map[string]any)
	if !aok || !bok {
		return Patch{ReplaceKey: shape.Clone(b)}
	}
	return computeMap(am, bm)
}

func computeMap(a, b map[string]any) Patch {
	if hasReservedKey(a) || hasReservedKey(b) {
		return Patch{ReplaceKey: shape.Clone(b)}
	}

	p := Patch{}
	var deleted []any
	for _, k := range sortedKeys(a) {
		if _, ok := b[k]; !ok {
			deleted = append(deleted, k)
		}
	}
	for _, k := range sortedKeys(b) {
		bv := b[k]
		av, had := a[k]
		if had && shape.Equal(av, bv) {
			continue
		}
		bsub, bIsMap := bv.(map[string]any)
		asub, aIsMap := av.(map[string]any)
		switch {
		case had && aIsMap && bIsMap:
			p[k] = map[string]any(computeMap(asub, bsub))
		case bIsMap && containsReservedKey(bsub):
			p[k] = map[string]any{ReplaceKey: shape.Clone(bv)}
		default:
			p[k] = shape.Clone(bv)
		}
	}
	if len(deleted) > 0 {
		p[DeleteKey] = deleted
	}
	return p
}

// ApplyTo returns a with p applied. a is not modified.
//
// A mapping patch applied to something that is not a mapping, including a
// missing value, is applied to an empty mapping.
func (p Patch) ApplyTo(a any) any {
	return apply(a, p)
}

func apply(target any, patch map[string]any) any {
	if r, ok := patch[ReplaceKey]; ok {
		return shape.Clone(r)
	}

	out := make(map[string]any)
	if base, ok := target.(map[string]any); ok {
		for k, v := range base {
			out[k] = shape.Clone(v)
		}
	}
	if del, ok := patch[DeleteKey]; ok {
		for _, k := range deleteKeys(del) {
			delete(out, k)
		}
	}
	for k, v := range patch {
		if k == DeleteKey {
			continue
		}
		if sub, ok := v.(map[string]any); ok {
			out[k] = apply(out[k], sub)
			continue
		}
		out[k] = shape.Clone(v)
	}
	return out
}

// deleteItems lists the entries of a $delete value: a sequence, an index
// mapping (a sequence after shape.SequenceToMapping) or a single entry. A
// mapping with other keys is not a $delete value.
func deleteItems(v any) ([]any, bool) {
	switch t := v.(type) {
	case []any:
		return t, true
	case []string:
		items := make([]any, len(t))
		for i, s := range t {
			items[i] = s
		}
		return items, true
	case map[string]any:
		keys, ok := shape.IndexKeys(t)
		if !ok && len(t) > 0 {
			return nil, false
		}
		items := make([]any, len(keys))
		for i, k := range keys {
			items[i] = t[k]
		}
		return items, true
	}
	return []any{v}, true
}

// deleteKeys returns the key names a $delete value removes. Invalid entries
// are skipped; FromValue rejects them up front.
func deleteKeys(v any) []string {
	items, _ := deleteItems(v)
	keys := make([]string, 0, len(items))
	for _, it := range items {
		if k, ok := deleteKey(it); ok {
			keys = append(keys, k)
		}
	}
	return keys
}

func deleteKey(v any) (string, bool) {
	switch t := shape.Clone(v).(type) {
	case string:
		return t, true
	case float64:
		if t >= 0 && t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10), true
		}
	}
	return "", false
}

func hasReservedKey(m map[string]any) bool {
	for k := range m {
		if strings.HasPrefix(k, "$") {
			return true
		}
	}
	return false
}

// containsReservedKey reports whether any mapping nested in v uses a
// reserved key.
func containsReservedKey(v any) bool {
	switch t := v.(type) {
	case map[string]any:
		if hasReservedKey(t) {
			return true
		}
		for _, el := range t {
			if containsReservedKey(el) {
				return true
			}
		}
	case []any:
		for _, el := range t {
			if containsReservedKey(el) {
				return true
			}
		}
	}
	return false
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
