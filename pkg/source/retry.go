package source

import (
	"context"
	"errors"
	"time"

	"github.com/matzehuels/chronoline/pkg/cache"
	errs "github.com/matzehuels/chronoline/pkg/errors"
)

// Retry defaults for [HTTP].
const (
	DefaultAttempts = 3
	DefaultDelay    = time.Second
	DefaultMaxDelay = 30 * time.Second
)

type retryPolicy struct {
	attempts int
	delay    time.Duration
	maxDelay time.Duration
}

// do calls fn until it succeeds, fails with an error not marked
// [cache.Retryable], or runs out of attempts. The wait doubles after each
// failure; a rate-limited response waits for its Retry-After instead. Every
// wait is capped at maxDelay.
func (p retryPolicy) do(ctx context.Context, fn func() error) error {
	delay := p.delay
	var err error
	for i := range max(1, p.attempts) {
		if i > 0 {
			if werr := sleep(ctx, p.wait(err, delay)); werr != nil {
				return werr
			}
			delay *= 2
		}
		if err = fn(); err == nil || !cache.IsRetryable(err) {
			return err
		}
	}
	return err
}

func (p retryPolicy) wait(err error, delay time.Duration) time.Duration {
	var rl *errs.RateLimitedError
	if errors.As(err, &rl) && rl.RetryAfter > 0 {
		delay = time.Duration(rl.RetryAfter) * time.Second
	}
	if p.maxDelay > 0 {
		delay = min(delay, p.maxDelay)
	}
	return delay
}

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
