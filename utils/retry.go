package utils

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/stacksbridge/sbtc-bridge-api/types"
)

// Retry runs fn up to attempts times with exponential backoff and jitter.
// Only transport failures (NetworkError) are retried; validation and
// protocol rejections return immediately since repeating them cannot
// succeed. Intended only for read-only calls; state-changing calls
// (broadcast, notify, withdrawal) must never be wrapped, since a duplicate
// submission has real monetary effect.
func Retry[T any](ctx context.Context, attempts int, baseDelay time.Duration, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error

	for i := 0; i < attempts; i++ {
		v, err := fn(ctx)
		if err == nil {
			return v, nil
		}
		lastErr = err

		var netErr *types.NetworkError
		if !errors.As(err, &netErr) {
			return zero, err
		}
		if i == attempts-1 {
			break
		}

		delay := baseDelay << uint(i)
		delay += time.Duration(rand.Int63n(int64(baseDelay)))

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(delay):
		}
	}

	return zero, lastErr
}
