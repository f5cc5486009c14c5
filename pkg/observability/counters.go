package observability

import (
	"context"
	"sync/atomic"
	"time"
)

// Counters tallies conversion, generation and cache events for a running
// service. Each event is also passed to the hooks that were registered
// before Install, so counting composes with [LogHooks].
type Counters struct {
	conversions      atomic.Int64
	conversionErrors atomic.Int64
	generations      atomic.Int64
	generationErrors atomic.Int64
	generateNanos    atomic.Int64
	cacheHits        atomic.Int64
	cacheMisses      atomic.Int64
	cacheSets        atomic.Int64

	nextConversion ConversionHooks
	nextGenerate   GenerateHooks
	nextCache      CacheHooks
}

// NewCounters returns zeroed counters that forward nowhere until installed.
func NewCounters() *Counters {
	return &Counters{
		nextConversion: NoopConversionHooks{},
		nextGenerate:   NoopGenerateHooks{},
		nextCache:      NoopCacheHooks{},
	}
}

// Install registers c for conversion, generation and cache events, chaining
// to the hooks registered so far.
func (c *Counters) Install() {
	c.nextConversion = Conversion()
	c.nextGenerate = Generate()
	c.nextCache = Cache()
	SetConversionHooks(c)
	SetGenerateHooks(c)
	SetCacheHooks(c)
}

func (c *Counters) OnConvertStart(ctx context.Context, op string, nodeCount int) {
	c.nextConversion.OnConvertStart(ctx, op, nodeCount)
}

func (c *Counters) OnConvertComplete(ctx context.Context, op string, nodeCount int, d time.Duration, err error) {
	c.conversions.Add(1)
	if err != nil {
		c.conversionErrors.Add(1)
	}
	c.nextConversion.OnConvertComplete(ctx, op, nodeCount, d, err)
}

func (c *Counters) OnGenerateStart(ctx context.Context, model string, promptBytes int) {
	c.nextGenerate.OnGenerateStart(ctx, model, promptBytes)
}

func (c *Counters) OnGenerateComplete(ctx context.Context, model string, outputBytes int, d time.Duration, err error) {
	c.generations.Add(1)
	c.generateNanos.Add(int64(d))
	if err != nil {
		c.generationErrors.Add(1)
	}
	c.nextGenerate.OnGenerateComplete(ctx, model, outputBytes, d, err)
}

func (c *Counters) OnCacheHit(ctx context.Context, keyType string) {
	c.cacheHits.Add(1)
	c.nextCache.OnCacheHit(ctx, keyType)
}

func (c *Counters) OnCacheMiss(ctx context.Context, keyType string) {
	c.cacheMisses.Add(1)
	c.nextCache.OnCacheMiss(ctx, keyType)
}

func (c *Counters) OnCacheSet(ctx context.Context, keyType string, size int) {
	c.cacheSets.Add(1)
	c.nextCache.OnCacheSet(ctx, keyType, size)
}

// Stats is a point-in-time copy of Counters.
type Stats struct {
	Conversions      int64 `json:"conversions"`
	ConversionErrors int64 `json:"conversionErrors"`
	Generations      int64 `json:"generations"`
	GenerationErrors int64 `json:"generationErrors"`
	// GenerateMillis is the mean model call latency.
	GenerateMillis int64 `json:"generateMillis"`
	CacheHits      int64 `json:"cacheHits"`
	CacheMisses    int64 `json:"cacheMisses"`
	CacheSets      int64 `json:"cacheSets"`
}

// Snapshot reads the counters. Fields are read one at a time, so a snapshot
// taken under load may mix adjacent events.
func (c *Counters) Snapshot() Stats {
	st := Stats{
		Conversions:      c.conversions.Load(),
		ConversionErrors: c.conversionErrors.Load(),
		Generations:      c.generations.Load(),
		GenerationErrors: c.generationErrors.Load(),
		CacheHits:        c.cacheHits.Load(),
		CacheMisses:      c.cacheMisses.Load(),
		CacheSets:        c.cacheSets.Load(),
	}
	if st.Generations > 0 {
		st.GenerateMillis = time.Duration(c.generateNanos.Load() / st.Generations).Milliseconds()
	}
	return st
}

var (
	_ ConversionHooks = (*Counters)(nil)
	_ GenerateHooks   = (*Counters)(nil)
	_ CacheHooks      = (*Counters)(nil)
)
