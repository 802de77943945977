package apierr

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"
)

// RetryConfig controls RetryWithBackoff. Out of range values are clamped:
// a negative MaxRetries means one attempt, a non-positive BaseDelay is 1ms
// and a MaxDelay below BaseDelay is BaseDelay.
type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	// Jitter draws each wait uniformly from [d/2, d] instead of d.
	Jitter bool
}

// schedule yields the wait before each retry: BaseDelay doubling up to
// MaxDelay.
type schedule struct {
	next   time.Duration
	max    time.Duration
	jitter bool
}

func (c RetryConfig) schedule() schedule {
	base := max(c.BaseDelay, time.Millisecond)
	return schedule{next: base, max: max(c.MaxDelay, base), jitter: c.Jitter}
}

func (s *schedule) wait() time.Duration {
	d := s.next
	s.next = min(s.next*2, s.max)
	if s.jitter && d > 1 {
		half := d / 2
		d = half + rand.N(d-half+1) // #nosec G404 -- backoff jitter
	}
	return d
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// RetryWithBackoff calls fn until it succeeds, shouldRetry rejects the
// error, the retries run out or ctx is done. Only the LLM providers use it;
// hh requests are never replayed here.
func RetryWithBackoff[T any](
	ctx context.Context,
	cfg RetryConfig,
	fn func() (T, error),
	shouldRetry func(error) bool,
) (T, error) {
	var zero T
	retries := max(cfg.MaxRetries, 0)
	sched := cfg.schedule()

	result, err := fn()
	for attempt := 0; err != nil; attempt++ {
		if !shouldRetry(err) {
			return zero, err
		}
		if attempt == retries {
			return zero, fmt.Errorf("max retries (%d) exceeded: %w", retries, err)
		}
		if serr := sleep(ctx, sched.wait()); serr != nil {
			return zero, serr
		}
		result, err = fn()
	}
	return result, nil
}

// Retryable reports whether err is a transient LLM provider failure: a
// rate limit or a timeout, unless the caller canceled.
func Retryable(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	return errors.Is(err, ErrRateLimit) || errors.Is(err, ErrTimeout)
}
