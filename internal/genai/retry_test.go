package genai

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsQuotaExceeded(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"status 429", errors.New("request failed: 429 Too Many Requests"), true},
		{"resource exhausted", errors.New("RESOURCE_EXHAUSTED: try later"), true},
		{"quota", errors.New("monthly quota exceeded"), true},
		{"rate limit", errors.New("rate limit hit"), true},
		{"rate_limit", errors.New("rate_limit_error"), true},
		{"hard failure", errors.New("invalid api key"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isQuotaExceeded(tt.err))
		})
	}
}

func TestWithRetrySuccess(t *testing.T) {
	calls := 0

	result, err := withRetry(context.Background(), func() (string, error) {
		calls++
		return "done", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "done", result)
	assert.Equal(t, 1, calls)
}

func TestWithRetryHardErrorDoesNotRetry(t *testing.T) {
	calls := 0
	hard := errors.New("invalid api key")

	_, err := withRetry(context.Background(), func() (string, error) {
		calls++
		return "", hard
	})
	require.ErrorIs(t, err, hard)
	assert.Equal(t, 1, calls)
}

func TestWithRetryStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()

	_, err := withRetry(ctx, func() (string, error) {
		return "", errors.New("429 too many requests")
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Second, "cancelled retry must not sleep out the backoff")
}
