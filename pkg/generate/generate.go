// Package generate produces DSL text from prompts using a text model.
//
// [Generator] is the only thing the rest of the module depends on. The
// Anthropic Messages API client is the production implementation; [Cached]
// and [RateLimited] wrap any generator, and [Func] adapts a plain function
// for tests and offline use.
//
// A typical stack, outermost first:
//
//	gen := generate.NewRateLimited(
//	    generate.NewCached(client, fileCache, cache.NewDefaultKeyer(), client.Model(), client.KeyOpts()),
//	    2, 4,
//	)
package generate

import (
	"context"
	"time"
)

// Generator completes a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Func adapts a function to the Generator interface.
type Func func(ctx context.Context, prompt string) (string, error)

// Generate calls f.
func (f Func) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// Defaults for Config.
const (
	DefaultModel     = "claude-sonnet-4-5"
	DefaultMaxTokens = 1000
	DefaultBaseURL   = "https://api.anthropic.com"
	DefaultTimeout   = 2 * time.Minute

	// StopSequence ends generation at the closing code fence.
	StopSequence = "```"
)

// DefaultSystem frames the few-shot prompt as a document to continue.
const DefaultSystem = "You continue documents. Reply with only the text that comes next in the document, without commentary."
