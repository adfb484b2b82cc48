package errors

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"
)

// RetryLogger defines the interface for logging retry operations
type RetryLogger interface {
	Printf(format string, v ...interface{})
}

// RetryConfig holds configuration for retry logic
type RetryConfig struct {
	MaxAttempts     int           // Maximum number of attempts, including the first
	InitialDelay    time.Duration // Initial delay between attempts
	MaxDelay        time.Duration // Maximum delay between attempts
	BackoffFactor   float64       // Exponential backoff factor
	Jitter          bool          // Whether to add jitter to delays
	RetryableErrors []ErrorCode   // Specific error codes to retry
}

// Package-level logger variable that can be set by callers
var retryLogger RetryLogger

// DefaultRetryConfig returns a retry configuration with sensible defaults.
// Only foreground activation is ever transient, so it is the only code retried.
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts:   3,
		InitialDelay:  50 * time.Millisecond,
		MaxDelay:      time.Second,
		BackoffFactor: 2.0,
		Jitter:        true,
		RetryableErrors: []ErrorCode{
			ErrCodeActivation,
		},
	}
}

// ActivationRetryConfig builds the retry policy the command layer applies to
// foreground activation. attempts <= 1 disables retrying.
func ActivationRetryConfig(attempts int, delay time.Duration) *RetryConfig {
	if attempts < 1 {
		attempts = 1
	}
	return &RetryConfig{
		MaxAttempts:     attempts,
		InitialDelay:    delay,
		MaxDelay:        10 * delay,
		BackoffFactor:   2.0,
		Jitter:          false,
		RetryableErrors: []ErrorCode{ErrCodeActivation},
	}
}

// RetryableOperation represents an operation that can be retried
type RetryableOperation func() error

// SetRetryLogger sets the package-level logger for retry operations
func SetRetryLogger(logger RetryLogger) {
	retryLogger = logger
}

func logRetryMessage(format string, v ...interface{}) {
	if retryLogger != nil {
		retryLogger.Printf(format, v...)
	}
}

func withRetryImpl(ctx context.Context, config *RetryConfig, operation RetryableOperation, operationName string) error {
	if config == nil {
		config = DefaultRetryConfig()
	}
	maxAttempts := max(config.MaxAttempts, 1)

	var lastErr error

	for attempt := 0; attempt < maxAttempts; attempt++ {
		err := operation()
		if err == nil {
			if attempt > 0 && operationName != "" {
				logRetryMessage("Operation '%s' succeeded after %d attempts", operationName, attempt+1)
			}
			return nil
		}

		lastErr = err

		if !shouldRetry(err, config) {
			return err
		}

		if attempt == maxAttempts-1 {
			break
		}

		delay := calculateDelay(attempt, config)

		if operationName != "" {
			logRetryMessage("Operation '%s' failed (attempt %d/%d), retrying in %v: %v",
				operationName, attempt+1, maxAttempts, delay, err)
		} else {
			logRetryMessage("Operation failed (attempt %d/%d), retrying in %v: %v",
				attempt+1, maxAttempts, delay, err)
		}

		select {
		case <-ctx.Done():
			if operationName != "" {
				return fmt.Errorf("operation '%s' cancelled during retry: %w", operationName, ctx.Err())
			}
			return ctx.Err()
		case <-time.After(delay):
		}
	}

	// A single attempt is not a retry; hand the error back untouched
	if maxAttempts == 1 {
		return lastErr
	}
	if operationName != "" {
		return fmt.Errorf("operation '%s' failed after %d attempts: %w", operationName, maxAttempts, lastErr)
	}
	return fmt.Errorf("operation failed after %d attempts: %w", maxAttempts, lastErr)
}

// WithRetry executes an operation with retry logic
func WithRetry(ctx context.Context, config *RetryConfig, operation RetryableOperation) error {
	return withRetryImpl(ctx, config, operation, "")
}

// WithRetryContext executes an operation with retry logic and logs progress under operationName
func WithRetryContext(ctx context.Context, config *RetryConfig, operation RetryableOperation, operationName string) error {
	return withRetryImpl(ctx, config, operation, operationName)
}

func shouldRetry(err error, config *RetryConfig) bool {
	var opErr *OperationError
	if !errors.As(err, &opErr) {
		return false
	}

	if !opErr.IsRetryable() {
		return false
	}

	return slices.Contains(config.RetryableErrors, opErr.Code)
}

func calculateDelay(attempt int, config *RetryConfig) time.Duration {
	multiplier := 1.0
	for i := 0; i < attempt; i++ {
		multiplier *= config.BackoffFactor
	}

	delay := time.Duration(float64(config.InitialDelay) * multiplier)

	// Up to 25% jitter, applied before the cap
	if config.Jitter && delay > 0 {
		jitterAmount := time.Duration(float64(delay) * 0.25)
		if jitterAmount > 0 {
			delay += time.Duration(time.Now().UnixNano() % int64(jitterAmount))
		}
	}

	if config.MaxDelay > 0 {
		delay = min(delay, config.MaxDelay)
	}

	return delay
}
