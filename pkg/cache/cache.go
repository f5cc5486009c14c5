// Package cache stores generated text-model completions.
//
// Completions are deterministic for a given model, prompt and sampling
// options (generation runs at temperature 0), so repeating a request can be
// served from cache instead of the model API. Backends:
//   - [FileCache]: one JSON file per entry, for the CLI
//   - [RedisCache]: shared cache for multi-instance service deployments
//   - [NullCache]: disables caching
//
// Keys are built by a [Keyer] so callers never hand-assemble them; a
// [ScopedKeyer] adds a namespace prefix when several deployments share one
// backend.
//
// [Backoff] retries calls to remote backends and model APIs that fail with
// errors marked [Retryable].
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry expiry.
type Cache interface {
	// Get returns the cached value and whether it was found. Expired
	// entries are reported as misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Default entry lifetimes.
const (
	// TTLCompletion bounds how long a model completion is reused.
	TTLCompletion = 7 * 24 * time.Hour
)

// CompletionKeyOpts are the sampling options that change a completion.
type CompletionKeyOpts struct {
	MaxTokens   int      `json:"max_tokens"`
	Temperature float64  `json:"temperature"`
	Stop        []string `json:"stop,omitempty"`
}

// Keyer builds cache keys.
type Keyer interface {
	// CompletionKey identifies a completion of prompt by model.
	CompletionKey(model, prompt string, opts CompletionKeyOpts) string
}

// DefaultKeyer hashes key components with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// CompletionKey returns "completion:<sha256>" over model, prompt and opts.
func (DefaultKeyer) CompletionKey(model, prompt string, opts CompletionKeyOpts) string {
	parts, _ := json.Marshal([]any{model, prompt, opts})
	return "completion:" + Hash(parts)
}

// ScopedKeyer namespaces the keys of another Keyer, so deployments sharing
// one Redis do not read each other's completions.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer returns a keyer that prefixes inner's keys with namespace
// and a colon. A nil inner uses the DefaultKeyer.
func NewScopedKeyer(inner Keyer, namespace string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	if !strings.HasSuffix(namespace, ":") {
		namespace += ":"
	}
	return &ScopedKeyer{inner: inner, prefix: namespace}
}

func (k *ScopedKeyer) CompletionKey(model, prompt string, opts CompletionKeyOpts) string {
	return k.prefix + k.inner.CompletionKey(model, prompt, opts)
}

// Hash returns the hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// NullCache stores nothing; every Get misses. It stands in for a cache when
// caching is disabled.
type NullCache struct{}

func NewNullCache() *NullCache { return &NullCache{} }

func (NullCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NullCache) Delete(context.Context, string) error { return nil }
func (NullCache) Close() error { return nil }

var _ Cache = (*NullCache)(nil)
