package genai

import (
	"context"
	"strings"
	"time"
)

const maxAttempts = 5

// isQuotaExceeded mirrors the substring checks provider SDK
// adapters use to tell a transient quota/rate-limit error apart from a
// hard failure.
func isQuotaExceeded(err error) bool {
	if err == nil {
		return false
	}

	errStr := strings.ToLower(err.Error())

	return strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "resource_exhausted") ||
		strings.Contains(errStr, "quota") ||
		strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "rate_limit")
}

// withRetry retries fn on quota/rate-limit errors with additive
// backoff, giving up after maxAttempts or when ctx is done.
func withRetry(ctx context.Context, fn func() (string, error)) (string, error) {
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}

		lastErr = err

		if !isQuotaExceeded(err) || attempt == maxAttempts {
			return "", err
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(time.Duration(5+attempt) * time.Second):
		}
	}

	return "", lastErr
}
