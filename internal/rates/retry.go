package rates

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	"currencyconverter/internal/domain"

	"github.com/sethvargo/go-retry"
)

// Retryer runs fn, possibly more than once, according to some backoff policy.
// Injected into the orchestrator so environments and tests can swap it out.
type Retryer func(ctx context.Context, fn func(ctx context.Context) error) error

// NoRetry runs fn exactly once.
func NoRetry(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// Backoff maps a retry attempt number (1-based) to the delay before it.
type Backoff func(attempt int) time.Duration

// ExponentialBackoff waits 2^n seconds before attempt n, plus up to a second
// of jitter so simultaneously failing clients do not retry in lockstep.
func ExponentialBackoff(attempt int) time.Duration {
	jitter := time.Duration(rand.Float64() * float64(time.Second))
	return time.Duration(1<<attempt)*time.Second + jitter
}

// TransientUpstream accepts failures worth retrying: transport errors,
// timeouts and 5xx answers. Other 4xx means the request itself is wrong.
func TransientUpstream(err error) bool {
	var ue *domain.UpstreamError
	return errors.As(err, &ue) && ue.Transient()
}

// NewBackoffRetryer builds a Retryer doing up to maxRetries extra attempts,
// waiting backoff(n) before retry n, retrying only errors the predicate
// accepts. When attempts run out the last failure is returned as-is.
func NewBackoffRetryer(maxRetries int, backoff Backoff, retryable func(error) bool) Retryer {
	return func(ctx context.Context, fn func(ctx context.Context) error) error {
		attempt := 0
		next := retry.BackoffFunc(func() (time.Duration, bool) {
			attempt++
			if attempt > maxRetries {
				return 0, true
			}
			return backoff(attempt), false
		})

		return retry.Do(ctx, next, func(ctx context.Context) error {
			err := fn(ctx)
			if err != nil && retryable(err) {
				return retry.RetryableError(err)
			}
			return err
		})
	}
}
