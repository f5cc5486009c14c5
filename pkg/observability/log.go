package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks writes every event to a logger at debug level; failures are
// logged as warnings.
type LogHooks struct {
	logger *log.Logger
}

// NewLogHooks returns hooks that log through logger.
func NewLogHooks(logger *log.Logger) *LogHooks {
	return &LogHooks{logger: logger.WithPrefix("obs")}
}

// Install registers h for every hook category.
func (h *LogHooks) Install() {
	SetConversionHooks(h)
	SetGenerateHooks(h)
	SetCacheHooks(h)
	SetHTTPHooks(h)
}

func (h *LogHooks) OnConvertStart(_ context.Context, op string, nodeCount int) {
	h.logger.Debug("convert start", "op", op, "nodes", nodeCount)
}

func (h *LogHooks) OnConvertComplete(_ context.Context, op string, nodeCount int, d time.Duration, err error) {
	if err != nil {
		h.logger.Warn("convert failed", "op", op, "nodes", nodeCount, "duration", d, "error", err)
		return
	}
	h.logger.Debug("convert done", "op", op, "nodes", nodeCount, "duration", d)
}

func (h *LogHooks) OnGenerateStart(_ context.Context, model string, promptBytes int) {
	h.logger.Debug("generate start", "model", model, "prompt_bytes", promptBytes)
}

func (h *LogHooks) OnGenerateComplete(_ context.Context, model string, outputBytes int, d time.Duration, err error) {
	if err != nil {
		h.logger.Warn("generate failed", "model", model, "duration", d, "error", err)
		return
	}
	h.logger.Debug("generate done", "model", model, "output_bytes", outputBytes, "duration", d)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *LogHooks) OnRequest(_ context.Context, method, host, path string) {
	h.logger.Debug("http request", "method", method, "host", host, "path", path)
}

func (h *LogHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.logger.Debug("http response", "method", method, "host", host, "path", path, "status", status, "duration", d)
}

func (h *LogHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.logger.Warn("http error", "method", method, "host", host, "path", path, "error", err)
}

var (
	_ ConversionHooks = (*LogHooks)(nil)
	_ GenerateHooks   = (*LogHooks)(nil)
	_ CacheHooks      = (*LogHooks)(nil)
	_ HTTPHooks       = (*LogHooks)(nil)
)
