package util

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var errTransient = errors.New("transient error")

func TestRetryWithBackoff_SuccessFirstTry(t *testing.T) {
	calls := 0
	err := RetryWithBackoff(context.Background(), Backoff{MaxRetries: 3}, func(attempt int) error {
		calls++
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetryWithBackoff_SuccessAfterRetries(t *testing.T) {
	calls := 0
	err := RetryWithBackoff(context.Background(), Backoff{MaxRetries: 3, Base: time.Millisecond}, func(attempt int) error {
		calls++
		if attempt < 2 {
			return errTransient
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, calls, "2 failures + 1 success")
}

func TestRetryWithBackoff_AllAttemptsExhausted(t *testing.T) {
	calls := 0
	err := RetryWithBackoff(context.Background(), Backoff{MaxRetries: 2, Base: time.Millisecond}, func(attempt int) error {
		calls++
		return errTransient
	})
	assert.ErrorIs(t, err, errTransient)
	assert.Equal(t, 3, calls)
}

func TestRetryWithBackoff_NonRetryableReturnsImmediately(t *testing.T) {
	permanent := errors.New("not found")
	calls := 0
	err := RetryWithBackoff(context.Background(), Backoff{
		MaxRetries: 5,
		Base:       time.Millisecond,
		Retryable:  func(err error) bool { return errors.Is(err, errTransient) },
	}, func(attempt int) error {
		calls++
		return permanent
	})
	assert.Same(t, permanent, err)
	assert.Equal(t, 1, calls)
}

func TestRetryWithBackoff_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := RetryWithBackoff(ctx, Backoff{MaxRetries: 3, Base: time.Second}, func(attempt int) error {
		calls++
		return errTransient
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestRetryWithBackoff_ZeroRetries(t *testing.T) {
	calls := 0
	err := RetryWithBackoff(context.Background(), Backoff{}, func(attempt int) error {
		calls++
		return errTransient
	})
	assert.Same(t, errTransient, err)
	assert.Equal(t, 1, calls)
}

func TestRetryWithBackoff_BackoffIncreases(t *testing.T) {
	start := time.Now()
	_ = RetryWithBackoff(context.Background(), Backoff{MaxRetries: 2, Base: 20 * time.Millisecond}, func(attempt int) error {
		return errTransient
	})
	// 20ms + 40ms
	assert.GreaterOrEqual(t, time.Since(start), 55*time.Millisecond)
}
