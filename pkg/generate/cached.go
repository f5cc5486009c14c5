package generate

import (
	"context"

	"github.com/matzehuels/scenedsl/pkg/cache"
	"github.com/matzehuels/scenedsl/pkg/observability"
)

// Cached serves repeated prompts from a cache. Cache failures never fail a
// generation: a read error counts as a miss and a write error is dropped.
type Cached struct {
	inner Generator
	cache cache.Cache
	keyer cache.Keyer
	model string
	opts  cache.CompletionKeyOpts
}

// NewCached wraps inner. model and opts identify inner's output and become
// part of every cache key.
func NewCached(inner Generator, c cache.Cache, keyer cache.Keyer, model string, opts cache.CompletionKeyOpts) *Cached {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	return &Cached{inner: inner, cache: c, keyer: keyer, model: model, opts: opts}
}

// Generate returns the cached completion for prompt, calling the wrapped
// generator on a miss. Only successful completions are stored.
func (g *Cached) Generate(ctx context.Context, prompt string) (string, error) {
	key := g.keyer.CompletionKey(g.model, prompt, g.opts)
	hooks := observability.Cache()

	if data, ok, err := g.cache.Get(ctx, key); err == nil && ok {
		hooks.OnCacheHit(ctx, "completion")
		return string(data), nil
	}
	hooks.OnCacheMiss(ctx, "completion")

	text, err := g.inner.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	if err := g.cache.Set(ctx, key, []byte(text), cache.TTLCompletion); err == nil {
		hooks.OnCacheSet(ctx, "completion", len(text))
	}
	return text, nil
}
