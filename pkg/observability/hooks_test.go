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

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	c := NoopConversionHooks{}
	c.OnConvertStart(ctx, "encode", 3)
	c.OnConvertComplete(ctx, "encode", 3, time.Second, nil)

	g := NoopGenerateHooks{}
	g.OnGenerateStart(ctx, "model", 100)
	g.OnGenerateComplete(ctx, "model", 50, time.Second, nil)

	ca := NoopCacheHooks{}
	ca.OnCacheHit(ctx, "completion")
	ca.OnCacheMiss(ctx, "completion")
	ca.OnCacheSet(ctx, "completion", 1024)

	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "POST", "api.anthropic.com", "/v1/messages")
	h.OnResponse(ctx, "POST", "api.anthropic.com", "/v1/messages", 200, time.Second)
	h.OnError(ctx, "POST", "api.anthropic.com", "/v1/messages", nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()
	defer Reset()

	if _, ok := Conversion().(NoopConversionHooks); !ok {
		t.Error("Conversion() should return NoopConversionHooks by default")
	}
	if _, ok := Generate().(NoopGenerateHooks); !ok {
		t.Error("Generate() should return NoopGenerateHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	customConversion := &testConversionHooks{}
	SetConversionHooks(customConversion)
	if Conversion() != customConversion {
		t.Error("SetConversionHooks should set custom hooks")
	}

	customGenerate := &testGenerateHooks{}
	SetGenerateHooks(customGenerate)
	if Generate() != customGenerate {
		t.Error("SetGenerateHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	Reset()
	if _, ok := Conversion().(NoopConversionHooks); !ok {
		t.Error("Reset() should restore NoopConversionHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()
	defer Reset()

	custom := &testConversionHooks{}
	SetConversionHooks(custom)
	SetConversionHooks(nil)

	if Conversion() != custom {
		t.Error("SetConversionHooks(nil) should be ignored")
	}
}

func TestLogHooks(t *testing.T) {
	Reset()
	defer Reset()

	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
	hooks := NewLogHooks(logger)
	hooks.Install()

	ctx := context.Background()
	Conversion().OnConvertComplete(ctx, "encode", 4, time.Millisecond, nil)
	Generate().OnGenerateComplete(ctx, "m", 10, time.Millisecond, errors.New("boom"))
	Cache().OnCacheHit(ctx, "completion")

	out := buf.String()
	for _, want := range []string{"convert done", "op=encode", "generate failed", "boom", "cache hit"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

type testConversionHooks struct{ NoopConversionHooks }
type testGenerateHooks struct{ NoopGenerateHooks }
type testCacheHooks struct{ NoopCacheHooks }
