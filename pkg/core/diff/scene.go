package diff

import (
	"sort"

	"github.com/matzehuels/scenedsl/pkg/core/dsl"
	"github.com/matzehuels/scenedsl/pkg/core/scene"
	"github.com/matzehuels/scenedsl/pkg/errors"
)

// Diff returns the patch between the DSL forms of a and b. Each scene is
// normalized against its own bounding box.
func Diff(a, b scene.Scene) (Patch, error) {
	da, _, err := dsl.ToDSL(a)
	if err != nil {
		return nil, err
	}
	db, _, err := dsl.ToDSL(b)
	if err != nil {
		return nil, err
	}
	return Compute(da, db), nil
}

// Apply patches the DSL form of a and places the result in a's frame.
func Apply(a scene.Scene, p Patch) (scene.Scene, error) {
	da, frame, err := dsl.ToDSL(a)
	if err != nil {
		return scene.Scene{}, err
	}
	return dsl.FromDSL(p.ApplyTo(da), frame)
}

// Marshal writes p as YAML text.
func Marshal(p Patch) ([]byte, error) {
	return dsl.Marshal(map[string]any(p))
}

// Unmarshal parses a patch from YAML text. The document must be a mapping
// and every $delete entry a key name or non-negative integer.
func Unmarshal(data []byte) (Patch, error) {
	v, err := dsl.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return FromValue(v)
}

// FromValue checks that a decoded document is a well-formed patch. It
// accepts the output of dsl.Unmarshal or encoding/json.
func FromValue(v any) (Patch, error) {
	if v == nil {
		return Patch{}, nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, errors.New(errors.ErrCodeMalformedSceneShape, "patch must be a mapping, got %T", v)
	}
	if err := validate(m, "$"); err != nil {
		return nil, err
	}
	return Patch(m), nil
}

func validate(m map[string]any, path string) error {
	if _, ok := m[ReplaceKey]; ok {
		return nil
	}
	if del, ok := m[DeleteKey]; ok {
		items, ok := deleteItems(del)
		if !ok {
			return errors.New(errors.ErrCodeMalformedSceneShape,
				"%s.%s: must be a list of keys", path, DeleteKey)
		}
		for _, it := range items {
			if _, ok := deleteKey(it); !ok {
				return errors.New(errors.ErrCodeMalformedSceneShape,
					"%s.%s: invalid key %v", path, DeleteKey, it)
			}
		}
	}
	for k, v := range m {
		if sub, ok := v.(map[string]any); ok && k != DeleteKey {
			if err := validate(sub, path+"."+k); err != nil {
				return err
			}
		}
	}
	return nil
}

// Summary counts the operations in a patch.
type Summary struct {
	Set      int `json:"set"`
	Deleted  int `json:"deleted"`
	Replaced int `json:"replaced"`
	// Paths lists every touched key path in sorted order.
	Paths []string `json:"paths"`
}

// Summarize walks p and counts its leaf operations.
func (p Patch) Summarize() Summary {
	var s Summary
	summarize(p, "", &s)
	sort.Strings(s.Paths)
	return s
}

func summarize(m map[string]any, prefix string, s *Summary) {
	join := func(k string) string {
		if prefix == "" {
			return k
		}
		return prefix + "." + k
	}
	for k, v := range m {
		switch k {
		case ReplaceKey:
			s.Replaced++
			s.Paths = append(s.Paths, prefixOrRoot(prefix))
			continue
		case DeleteKey:
			for _, dk := range deleteKeys(v) {
				s.Deleted++
				s.Paths = append(s.Paths, join(dk))
			}
			continue
		}
		if sub, ok := v.(map[string]any); ok {
			summarize(sub, join(k), s)
			continue
		}
		s.Set++
		s.Paths = append(s.Paths, join(k))
	}
}

func prefixOrRoot(prefix string) string {
	if prefix == "" {
		return "."
	}
	return prefix
}
