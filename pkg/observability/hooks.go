// Package observability lets the binary watch conversions, model calls and
// cache traffic.
//
// Libraries in this module never log on their own behalf. Instead they emit
// events through hook interfaces; the binary decides at startup whether and
// where those events go. [LogHooks] forwards every event to a
// charmbracelet/log logger, which is what the CLI installs in verbose mode.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    hooks := observability.NewLogHooks(logger)
//	    observability.SetConversionHooks(hooks)
//	    observability.SetGenerateHooks(hooks)
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Conversion().OnConvertStart(ctx, "encode", nodeCount)
//	// ... convert ...
//	observability.Conversion().OnConvertComplete(ctx, "encode", nodeCount, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// ConversionHooks receives events from scene conversions (encode, decode,
// diff, apply, repair).
type ConversionHooks interface {
	OnConvertStart(ctx context.Context, op string, nodeCount int)
	OnConvertComplete(ctx context.Context, op string, nodeCount int, duration time.Duration, err error)
}

// GenerateHooks receives events from text-model calls.
type GenerateHooks interface {
	OnGenerateStart(ctx context.Context, model string, promptBytes int)
	OnGenerateComplete(ctx context.Context, model string, outputBytes int, duration time.Duration, err error)
}

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	// OnCacheSet reports a write of size bytes.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// HTTPHooks receives events from requests to the model API. OnError fires
// when no response arrived at all; any status, 5xx included, goes to
// OnResponse.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, host, path string)
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)
	OnError(ctx context.Context, method, host, path string, err error)
}

// NoopConversionHooks is a no-op implementation of ConversionHooks.
type NoopConversionHooks struct{}

func (NoopConversionHooks) OnConvertStart(context.Context, string, int) {}
func (NoopConversionHooks) OnConvertComplete(context.Context, string, int, time.Duration, error) {
}

// NoopGenerateHooks is a no-op implementation of GenerateHooks.
type NoopGenerateHooks struct{}

func (NoopGenerateHooks) OnGenerateStart(context.Context, string, int) {}
func (NoopGenerateHooks) OnGenerateComplete(context.Context, string, int, time.Duration, error) {
}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

// slot holds the registered hooks of one kind.
type slot[T any] struct {
	mu    sync.RWMutex
	hooks T
}

func (s *slot[T]) load() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hooks
}

func (s *slot[T]) store(h T) {
	if any(h) == nil {
		return
	}
	s.mu.Lock()
	s.hooks = h
	s.mu.Unlock()
}

var (
	conversionSlot = &slot[ConversionHooks]{hooks: NoopConversionHooks{}}
	generateSlot   = &slot[GenerateHooks]{hooks: NoopGenerateHooks{}}
	cacheSlot      = &slot[CacheHooks]{hooks: NoopCacheHooks{}}
	httpSlot       = &slot[HTTPHooks]{hooks: NoopHTTPHooks{}}
)

// SetConversionHooks registers conversion hooks. Nil is ignored.
func SetConversionHooks(h ConversionHooks) { conversionSlot.store(h) }

// SetGenerateHooks registers text-model hooks. Nil is ignored.
func SetGenerateHooks(h GenerateHooks) { generateSlot.store(h) }

// SetCacheHooks registers cache hooks. Nil is ignored.
func SetCacheHooks(h CacheHooks) { cacheSlot.store(h) }

// SetHTTPHooks registers HTTP client hooks. Nil is ignored.
func SetHTTPHooks(h HTTPHooks) { httpSlot.store(h) }

// Conversion returns the registered conversion hooks.
func Conversion() ConversionHooks { return conversionSlot.load() }

// Generate returns the registered text-model hooks.
func Generate() GenerateHooks { return generateSlot.load() }

// Cache returns the registered cache hooks.
func Cache() CacheHooks { return cacheSlot.load() }

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks { return httpSlot.load() }

// Reset puts back the no-op hooks. Tests call it in cleanup.
func Reset() {
	conversionSlot.store(NoopConversionHooks{})
	generateSlot.store(NoopGenerateHooks{})
	cacheSlot.store(NoopCacheHooks{})
	httpSlot.store(NoopHTTPHooks{})
}
