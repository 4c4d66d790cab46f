// Package retry provides the shared retry policy used for outbound
// provider calls and backend webhook notifications. Only errors marked
// transient are retried; everything else surfaces immediately.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Default policy values: attempts 1s and 1.5s apart before giving up.
const (
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = 1 * time.Second
	DefaultMultiplier  = 1.5
)

// Policy describes a bounded exponential backoff schedule.
type Policy struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int
	// BaseDelay is the wait before the second attempt.
	BaseDelay time.Duration
	// Multiplier scales the delay after each failed attempt.
	Multiplier float64
}

// DefaultPolicy returns the policy used across the service:
// 3 attempts with delays of roughly 1s and 1.5s.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: DefaultMaxAttempts,
		BaseDelay:   DefaultBaseDelay,
		Multiplier:  DefaultMultiplier,
	}
}

// ExhaustedError is returned when every attempt failed with a
// transient error. It wraps the last cause.
type ExhaustedError struct {
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("retry: %d attempts exhausted: %v", e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Err
}

// transientError marks an error as eligible for retry.
type transientError struct {
	err error
}

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

// Transient wraps err so Do will retry it. Returns nil for a nil err.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &transientError{err: err}
}

// IsTransient reports whether err was marked with Transient.
func IsTransient(err error) bool {
	var te *transientError
	return errors.As(err, &te)
}

// Do runs op until it succeeds, fails with a non-transient error, the
// policy is exhausted, or the context ends. Waits between attempts
// follow the backoff schedule; a cancelled context aborts the wait.
func (p Policy) Do(ctx context.Context, op func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	delay := p.BaseDelay

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return fmt.Errorf("retry: context cancelled: %w", ctx.Err())
			case <-time.After(delay):
				delay = time.Duration(float64(delay) * p.Multiplier)
			}
		}

		err := op(ctx)
		if err == nil {
			return nil
		}
		if !IsTransient(err) {
			return err
		}
		lastErr = errors.Unwrap(err)
	}

	return &ExhaustedError{Attempts: attempts, Err: lastErr}
}
