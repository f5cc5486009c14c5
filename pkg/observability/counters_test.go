package observability

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestCountersSnapshot(t *testing.T) {
	ctx := context.Background()
	c := NewCounters()

	c.OnConvertComplete(ctx, "encode", 3, time.Millisecond, nil)
	c.OnConvertComplete(ctx, "decode", 0, time.Millisecond, errors.New("bad color"))
	c.OnGenerateComplete(ctx, "m", 10, 100*time.Millisecond, nil)
	c.OnGenerateComplete(ctx, "m", 0, 300*time.Millisecond, errors.New("429"))
	c.OnCacheMiss(ctx, "completion")
	c.OnCacheSet(ctx, "completion", 10)
	c.OnCacheHit(ctx, "completion")

	want := Stats{
		Conversions:      2,
		ConversionErrors: 1,
		Generations:      2,
		GenerationErrors: 1,
		GenerateMillis:   200,
		CacheHits:        1,
		CacheMisses:      1,
		CacheSets:        1,
	}
	if got := c.Snapshot(); got != want {
		t.Errorf("Snapshot() = %+v, want %+v", got, want)
	}
}

func TestCountersChainToPreviousHooks(t *testing.T) {
	Reset()
	defer Reset()

	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
	NewLogHooks(logger).Install()

	c := NewCounters()
	c.Install()
	if Conversion() != ConversionHooks(c) || Generate() != GenerateHooks(c) || Cache() != CacheHooks(c) {
		t.Fatal("Install did not register the counters")
	}

	Cache().OnCacheHit(context.Background(), "completion")
	if c.Snapshot().CacheHits != 1 {
		t.Error("hit not counted")
	}
	if !strings.Contains(buf.String(), "cache hit") {
		t.Errorf("event not forwarded to the log hooks: %q", buf.String())
	}
}
