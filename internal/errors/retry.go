package errors

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/cklxx-labs/agentcore/internal/logging"
)

// RetryConfig configures exponential backoff retry.
type RetryConfig struct {
	MaxAttempts int           // total attempts including the first (default 3)
	BaseDelay   time.Duration // initial backoff interval (default 1s)
	MaxDelay    time.Duration // ceiling on any single backoff interval (default 30s)
}

// DefaultRetryConfig returns the teacher's historical defaults.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{MaxAttempts: 3, BaseDelay: 1 * time.Second, MaxDelay: 30 * time.Second}
}

// RetryableFunc is a unit of work that may be retried.
type RetryableFunc func(ctx context.Context) error

// Retry runs fn with exponential backoff, stopping early on any error
// that IsTransient does not classify as transient.
func Retry(ctx context.Context, cfg RetryConfig, fn RetryableFunc) error {
	_, err := RetryWithResult(ctx, cfg, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// RetryWithResult runs fn with exponential backoff and returns its result.
func RetryWithResult[T any](ctx context.Context, cfg RetryConfig, fn func(ctx context.Context) (T, error)) (T, error) {
	logger := logging.NewComponentLogger(logging.ComponentLoggerConfig{ComponentName: "RETRY"})

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = cfg.BaseDelay
	bo.MaxInterval = cfg.MaxDelay
	bo.Multiplier = 2.0

	attempt := 0
	op := func() (T, error) {
		attempt++
		result, err := fn(ctx)
		if err == nil {
			if attempt > 1 {
				logger.Info("retry succeeded after %d attempts", attempt)
			}
			return result, nil
		}
		if !IsTransient(err) {
			logger.Debug("error is not transient, stopping retries: %v", err)
			return result, backoff.Permanent(err)
		}
		logger.Debug("attempt %d failed: %v", attempt, err)
		return result, err
	}

	result, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(bo),
		backoff.WithMaxTries(uint(maxInt(cfg.MaxAttempts, 1))),
	)
	if err != nil {
		return result, fmt.Errorf("max retries exceeded: %w", err)
	}
	return result, nil
}

// ShouldRetry reports whether another attempt is warranted for err.
func ShouldRetry(err error, attemptNumber, maxAttempts int) bool {
	if err == nil || attemptNumber >= maxAttempts {
		return false
	}
	return IsTransient(err)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
