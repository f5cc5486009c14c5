package io

import (
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/scenedsl/pkg/core/scene"
)

// ReadJSON decodes a JSON scene from r.
//
// The input may be a single node object or an array of nodes. The returned
// scene remembers which shape it was read from so [WriteJSON] reproduces it.
// ReadJSON does not close r.
func ReadJSON(r io.Reader) (scene.Scene, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return scene.Scene{}, fmt.Errorf("read: %w", err)
	}
	var s scene.Scene
	if err := s.UnmarshalJSON(data); err != nil {
		return scene.Scene{}, err
	}
	return s, nil
}

// ImportJSON reads a JSON scene file at path.
func ImportJSON(path string) (scene.Scene, error) {
	f, err := os.Open(path)
	if err != nil {
		return scene.Scene{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	s, err := ReadJSON(f)
	if err != nil {
		return scene.Scene{}, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}
