// Package dsl converts scenes to and from the normalized text form shown to
// text models.
//
// A DSL document is a scene that has been normalized to the canonical width
// (see package geometry), had its colors rewritten as hex strings, and had
// every sequence rewritten as an index mapping (see package shape). The
// result is a tree of plain mappings which diffs cleanly and reads well as
// YAML:
//
//	0:
//	  name: 1. Button
//	  type: RECTANGLE
//	  node:
//	    color: '#ff0000'
//	    position:
//	      x: 0
//	      y: 0
//	    width: 100
//	    height: 33
//
// [ToDSL] and [FromDSL] convert between scenes and document trees;
// [Marshal] and [Unmarshal] convert between document trees and text;
// [Encode] and [Decode] do both.
package dsl

import (
	"github.com/matzehuels/scenedsl/pkg/core/geometry"
	"github.com/matzehuels/scenedsl/pkg/core/repair"
	"github.com/matzehuels/scenedsl/pkg/core/scene"
	"github.com/matzehuels/scenedsl/pkg/core/shape"
	"github.com/matzehuels/scenedsl/pkg/errors"
)

// ToDSL repairs and normalizes s and returns its document tree together
// with the frame needed to place it back on the canvas.
func ToDSL(s scene.Scene) (any, geometry.Frame, error) {
	norm, frame, err := geometry.Normalize(repair.Scene(s))
	if err != nil {
		return nil, geometry.Frame{}, err
	}
	return shape.SequenceToMapping(scene.Encode(norm, scene.ColorHex)), frame, nil
}

// FromDSL decodes a document tree, repairs leaves that carry children and
// places the result in frame.
func FromDSL(v any, frame geometry.Frame) (scene.Scene, error) {
	if d := shape.Depth(v); d > shape.MaxDepth {
		return scene.Scene{}, errors.New(errors.ErrCodeMalformedSceneShape,
			"document nesting depth %d exceeds limit %d", d, shape.MaxDepth)
	}
	s, err := scene.Decode(shape.MappingToSequence(v))
	if err != nil {
		return scene.Scene{}, err
	}
	return geometry.Denormalize(repair.Scene(s), frame), nil
}

// Encode converts s to DSL text.
func Encode(s scene.Scene) (string, geometry.Frame, error) {
	doc, frame, err := ToDSL(s)
	if err != nil {
		return "", geometry.Frame{}, err
	}
	data, err := Marshal(doc)
	if err != nil {
		return "", geometry.Frame{}, err
	}
	return string(data), frame, nil
}

// Decode parses DSL text and places the scene in frame.
func Decode(text string, frame geometry.Frame) (scene.Scene, error) {
	doc, err := Unmarshal([]byte(text))
	if err != nil {
		return scene.Scene{}, err
	}
	return FromDSL(doc, frame)
}
