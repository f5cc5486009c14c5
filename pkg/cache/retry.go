package cache

import (
	"context"
	"errors"
	"time"
)

// ErrNetwork marks transport failures from remote backends and model APIs:
// timeouts, refused connections and 5xx responses.
var ErrNetwork = errors.New("network error")

type retryable struct{ err error }

func (r retryable) Error() string { return r.err.Error() }
func (r retryable) Unwrap() error { return r.err }

// Retryable marks err as worth another attempt under a [Backoff].
// A nil err stays nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return retryable{err}
}

// IsRetryable reports whether err, or anything it wraps, was marked with
// [Retryable].
func IsRetryable(err error) bool {
	var r retryable
	return errors.As(err, &r)
}

// Backoff retries a call with doubling delays.
type Backoff struct {
	// Attempts counts every call, the first one included.
	Attempts int
	// Delay is the wait before the second call.
	Delay time.Duration
	// MaxDelay caps the wait between calls. Zero means no cap.
	MaxDelay time.Duration
	// OnRetry, if set, is told about each failed attempt before the wait.
	OnRetry func(attempt int, wait time.Duration, err error)
}

// DefaultBackoff makes 3 attempts, waiting 1s and then 2s.
var DefaultBackoff = Backoff{Attempts: 3, Delay: time.Second, MaxDelay: 10 * time.Second}

// wait returns the pause after the given failed attempt, counted from 1.
func (b Backoff) wait(attempt int) time.Duration {
	d := b.Delay
	for i := 1; i < attempt; i++ {
		d *= 2
		if b.MaxDelay > 0 && d >= b.MaxDelay {
			return b.MaxDelay
		}
	}
	if b.MaxDelay > 0 && d > b.MaxDelay {
		return b.MaxDelay
	}
	return d
}

// Do calls fn until it returns nil or an error not marked [Retryable], or
// until the attempts run out, in which case the last error is returned.
// Cancelling ctx during a wait returns ctx.Err().
func (b Backoff) Do(ctx context.Context, fn func() error) error {
	attempts := max(b.Attempts, 1)
	for attempt := 1; ; attempt++ {
		err := fn()
		if err == nil || !IsRetryable(err) || attempt == attempts {
			return err
		}

		d := b.wait(attempt)
		if b.OnRetry != nil {
			b.OnRetry(attempt, d, err)
		}
		t := time.NewTimer(d)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
}
