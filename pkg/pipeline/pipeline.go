// Package pipeline runs scene conversions for the CLI and the HTTP service.
//
// The core packages under pkg/core are pure functions. This package adds the
// parts a deployed service needs around them: session lookup, prompt
// assembly, text generation, logging and observability hooks. By
// centralizing this logic both entry points behave identically.
//
// # Operations
//
//  1. SaveScene: derive prompt prefixes from a training scene and store them
//     in a new session
//  2. ConvertPrimary: generate a brand-new scene from a text request
//  3. ConvertEdit: generate a patch for an existing scene and apply it
//  4. Encode, Decode, Diff, Apply: direct access to the DSL and diff engine
//
// # Usage
//
//	runner := pipeline.NewRunner(store, gen, logger)
//	sess, err := runner.SaveScene(ctx, training)
//	if err != nil {
//	    return err
//	}
//	out, err := runner.ConvertPrimary(ctx, sess.ID, "a red button")
package pipeline

import (
	"github.com/matzehuels/scenedsl/pkg/core/diff"
	"github.com/matzehuels/scenedsl/pkg/core/geometry"
	"github.com/matzehuels/scenedsl/pkg/core/scene"
)

// Operation names reported to observability hooks and logs.
const (
	OpEncode  = "encode"
	OpDecode  = "decode"
	OpDiff    = "diff"
	OpApply   = "apply"
	OpPrimary = "convert_primary"
	OpEdit    = "convert_edit"
)

// EncodeResult is a scene in DSL form together with the frame it was
// normalized from.
type EncodeResult struct {
	DSL   string
	Frame geometry.Frame
}

// EditResult is the outcome of ConvertEdit.
type EditResult struct {
	// Scene holds the edited node, always as a list.
	Scene scene.Scene
	// Origin is the top-left corner of the input node's bounding box.
	Origin scene.Point
	// Patch is the change the model proposed.
	Patch diff.Patch
}
