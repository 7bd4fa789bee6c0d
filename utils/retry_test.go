package utils

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacksbridge/sbtc-bridge-api/types"
)

func TestRetrySucceedsFirstAttempt(t *testing.T) {
	calls := 0
	v, err := Retry(context.Background(), 3, time.Millisecond, func(ctx context.Context) (int, error) {
		calls++
		return 42, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.Equal(t, 1, calls)
}

func TestRetryRecoversFromNetworkError(t *testing.T) {
	calls := 0
	v, err := Retry(context.Background(), 3, time.Millisecond, func(ctx context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", &types.NetworkError{Op: "fee-estimate", Cause: context.DeadlineExceeded}
		}
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", v)
	assert.Equal(t, 3, calls)
}

func TestRetryExhaustsAttempts(t *testing.T) {
	calls := 0
	netErr := &types.NetworkError{Op: "fee-estimate", Cause: context.DeadlineExceeded}
	_, err := Retry(context.Background(), 3, time.Millisecond, func(ctx context.Context) (int, error) {
		calls++
		return 0, netErr
	})

	assert.ErrorIs(t, err, netErr)
	assert.Equal(t, 3, calls)
}

func TestRetryDoesNotRetryProtocolErrors(t *testing.T) {
	calls := 0
	_, err := Retry(context.Background(), 5, time.Millisecond, func(ctx context.Context) (int, error) {
		calls++
		return 0, &types.ProtocolError{Op: "fee-estimate", StatusCode: 400, Message: "bad request"}
	})

	assert.Error(t, err)
	assert.Equal(t, 1, calls, "non-transport errors must fail fast")
}

func TestRetryHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	_, err := Retry(ctx, 10, 50*time.Millisecond, func(ctx context.Context) (int, error) {
		calls++
		cancel()
		return 0, &types.NetworkError{Op: "fee-estimate", Cause: context.DeadlineExceeded}
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}
