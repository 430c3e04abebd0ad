package utils

import (
	"errors"
	"fmt"
	"math/rand"
	"time"
)

type permanentError struct {
	err error
}

func (p *permanentError) Error() string { return p.err.Error() }
func (p *permanentError) Unwrap() error { return p.err }

// Permanent marks err as non-retryable: RetryWithBackoff returns it
// immediately instead of attempting again. Used for permission and
// no-data responses, which never change on retry.
func Permanent(err error) error {
	return &permanentError{err: err}
}

// RetryWithBackoff retries fn up to maxAttempts times with quadratic
// backoff from base, plus ~20% jitter to avoid synchronized retries.
func RetryWithBackoff(maxAttempts int, base time.Duration, fn func() error, logger *Logger) error {
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt*attempt) * base
			backoff += time.Duration((rand.Float64()*0.4 - 0.2) * float64(backoff))
			logger.Warn("Retrying (attempt %d/%d) after %v...", attempt+1, maxAttempts, backoff)
			time.Sleep(backoff)
		}
		err := fn()
		if err == nil {
			return nil
		}
		var pe *permanentError
		if errors.As(err, &pe) {
			return pe.err
		}
		lastErr = err
		logger.Debug("Attempt %d failed: %v", attempt+1, err)
	}
	return fmt.Errorf("all %d attempts failed, last error: %w", maxAttempts, lastErr)
}
