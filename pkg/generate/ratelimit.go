package generate

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/matzehuels/scenedsl/pkg/errors"
)

// RateLimited throttles calls to a generator with a token bucket. After the
// wrapped generator reports a 429, further calls also wait out the
// Retry-After period.
type RateLimited struct {
	inner   Generator
	limiter *rate.Limiter

	mu      sync.Mutex
	retryAt time.Time
}

// NewRateLimited allows rps sustained calls per second with bursts of burst.
// A non-positive rps disables the token bucket.
func NewRateLimited(inner Generator, rps float64, burst int) *RateLimited {
	limit := rate.Limit(rps)
	if rps <= 0 {
		limit = rate.Inf
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimited{inner: inner, limiter: rate.NewLimiter(limit, burst)}
}

// Generate waits for a token, then calls the wrapped generator.
func (g *RateLimited) Generate(ctx context.Context, prompt string) (string, error) {
	if err := g.wait(ctx); err != nil {
		return "", err
	}
	text, err := g.inner.Generate(ctx, prompt)
	var rl *errors.RateLimitedError
	if errors.As(err, &rl) {
		g.backoff(time.Duration(rl.RetryAfter) * time.Second)
	}
	return text, err
}

func (g *RateLimited) wait(ctx context.Context) error {
	g.mu.Lock()
	retryAt := g.retryAt
	g.mu.Unlock()

	if d := time.Until(retryAt); d > 0 {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
	return g.limiter.Wait(ctx)
}

func (g *RateLimited) backoff(d time.Duration) {
	if d <= 0 {
		d = time.Second
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if at := time.Now().Add(d); at.After(g.retryAt) {
		g.retryAt = at
	}
}
