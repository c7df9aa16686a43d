package util

import (
	"context"
	"fmt"
	"time"
)

// Backoff configures RetryWithBackoff.
type Backoff struct {
	MaxRetries int
	// Base is the delay before the first retry; it doubles on every attempt.
	Base time.Duration
	// Retryable decides whether an error is worth another attempt. Nil retries everything.
	Retryable func(error) bool
}

// RetryWithBackoff calls fn up to MaxRetries+1 times with exponential backoff.
// fn receives the current attempt number (0-indexed). Errors rejected by Retryable
// are returned immediately and unwrapped. If the context is cancelled,
// RetryWithBackoff returns the context error.
func RetryWithBackoff(ctx context.Context, b Backoff, fn func(attempt int) error) error {
	var lastErr error
	for attempt := 0; attempt <= b.MaxRetries; attempt++ {
		lastErr = fn(attempt)
		if lastErr == nil {
			return nil
		}
		if b.Retryable != nil && !b.Retryable(lastErr) {
			return lastErr
		}

		// Don't wait after the last attempt
		if attempt == b.MaxRetries {
			break
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(b.Base << attempt):
		}
	}
	if b.MaxRetries == 0 {
		return lastErr
	}
	return fmt.Errorf("failed after %d retries: %w", b.MaxRetries, lastErr)
}
