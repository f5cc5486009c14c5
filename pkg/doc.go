// Package pkg provides the libraries behind scenedsl.
//
// # Overview
//
// scenedsl sits between a design tool and a text model. Scenes (trees of
// frames, groups, rectangles, text and ellipses) are normalized and written as
// a compact YAML DSL the model can read; the model's answers are parsed back
// into scenes and placed on the canvas. Edits travel as structural patches
// rather than whole documents. The pkg directory is organized into four main
// areas:
//
//  1. [core] - Domain logic (scene model, colors, geometry, DSL, diffs)
//  2. [prompt], [generate] - Few-shot prompts and text model clients
//  3. [pipeline], [server] - Orchestration and the HTTP service
//  4. [session], [cache], [config], [observability] - Infrastructure
//
// # Architecture
//
// The typical data flow for an edit:
//
//	Scene JSON from the design tool
//	         ↓
//	    [core/geometry] (normalize to the canonical width)
//	         ↓
//	    [core/dsl] (hex colors, index mappings, YAML text)
//	         ↓
//	    [prompt] + [generate] (few-shot prompt → patch text)
//	         ↓
//	    [core/diff] (apply the patch)
//	         ↓
//	    [core/repair] + [core/geometry] (fix nesting, place back in frame)
//	         ↓
//	Scene JSON for the design tool
//
// # Quick Start
//
// Round-trip a scene through the DSL:
//
//	import (
//	    "github.com/matzehuels/scenedsl/pkg/core/dsl"
//	    sceneio "github.com/matzehuels/scenedsl/pkg/io"
//	)
//
//	s, _ := sceneio.ImportJSON("scene.json")
//	text, frame, _ := dsl.Encode(s)
//	back, _ := dsl.Decode(text, frame)
//
// Diff two scenes and replay the patch:
//
//	p, _ := diff.Diff(before, after)
//	patched, _ := diff.Apply(before, p)
//
// # Main Packages
//
// ## Core Domain Logic
//
// [core/scene] - The scene model and its generic document codec.
//
// [core/color] - Hex color codec for unit RGB channels.
//
// [core/geometry] - Bounding boxes, normalization to the canonical width and
// denormalization into a frame. Every coordinate is truncated toward zero.
//
// [core/shape] - Sequence to index-mapping conversion and back.
//
// [core/repair] - Wraps leaves that carry children in groups.
//
// [core/dsl] - Scene to DSL text and back.
//
// [core/diff] - Structural patches with $delete and $replace directives.
//
// ## Text Generation
//
// [prompt] - Few-shot prompt prefixes built from a training scene.
//
// [generate] - The Generator interface, an Anthropic messages client, a
// completion cache and a rate limiter.
//
// ## Service
//
// [pipeline] - Encode, decode, diff, apply and generator-backed conversions
// used by the CLI and the HTTP server alike.
//
// [server] - chi-based HTTP API for the design tool plugin.
//
// ## Infrastructure
//
// [session] - Training-scene sessions with memory, file, Redis and MongoDB
// backends.
//
// [cache] - Completion cache with file, Redis and null backends, plus retry
// helpers.
//
// [config] - TOML configuration.
//
// [observability] - Hooks for conversions, generator calls, cache activity
// and HTTP calls, with a charmbracelet/log implementation.
//
// [render/tree] - Scene hierarchy as an outline, DOT or SVG.
//
// # Testing
//
// Run tests:
//
//	go test ./...                                        # All tests
//	SCENEDSL_TEST_REDIS_ADDR=localhost:6379 go test ./pkg/session/redis
//	SCENEDSL_TEST_MONGO_URI=mongodb://localhost go test ./pkg/session/mongo
//
// [core]: https://pkg.go.dev/github.com/matzehuels/scenedsl/pkg/core
// [core/scene]: https://pkg.go.dev/github.com/matzehuels/scenedsl/pkg/core/scene
// [core/color]: https://pkg.go.dev/github.com/matzehuels/scenedsl/pkg/core/color
// [core/geometry]: https://pkg.go.dev/github.com/matzehuels/scenedsl/pkg/core/geometry
// [core/shape]: https://pkg.go.dev/github.com/matzehuels/scenedsl/pkg/core/shape
// [core/repair]: https://pkg.go.dev/github.com/matzehuels/scenedsl/pkg/core/repair
// [core/dsl]: https://pkg.go.dev/github.com/matzehuels/scenedsl/pkg/core/dsl
// [core/diff]: https://pkg.go.dev/github.com/matzehuels/scenedsl/pkg/core/diff
// [prompt]: https://pkg.go.dev/github.com/matzehuels/scenedsl/pkg/prompt
// [generate]: https://pkg.go.dev/github.com/matzehuels/scenedsl/pkg/generate
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/scenedsl/pkg/pipeline
// [server]: https://pkg.go.dev/github.com/matzehuels/scenedsl/pkg/server
// [session]: https://pkg.go.dev/github.com/matzehuels/scenedsl/pkg/session
// [cache]: https://pkg.go.dev/github.com/matzehuels/scenedsl/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/scenedsl/pkg/config
// [observability]: https://pkg.go.dev/github.com/matzehuels/scenedsl/pkg/observability
// [render/tree]: https://pkg.go.dev/github.com/matzehuels/scenedsl/pkg/render/tree
package pkg
