package util

import (
	"context"
	"fmt"
	"time"
)

// RetryWithBackoff runs fn up to maxRetries times with exponential backoff
// (1s, 2s, 4s, ...). The attempt number passed to fn starts at 1. Returns the
// last error when all attempts fail, or the context error if cancelled while
// waiting between attempts.
func RetryWithBackoff(ctx context.Context, maxRetries int, fn func(attempt int) error) error {
	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		if err := fn(attempt); err == nil {
			return nil
		} else {
			lastErr = err
		}

		if attempt == maxRetries {
			break
		}

		backoff := time.Duration(1<<uint(attempt-1)) * time.Second
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
	return fmt.Errorf("all %d attempts failed: %w", maxRetries, lastErr)
}

// RetryFixed runs fn up to maxAttempts times, sleeping delay between failed
// attempts. Extraction tasks use this with a long delay so a marketplace that
// is briefly unreachable gets a second chance without hammering it.
func RetryFixed(ctx context.Context, maxAttempts int, delay time.Duration, fn func(attempt int) error) error {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := fn(attempt); err == nil {
			return nil
		} else {
			lastErr = err
		}

		if attempt == maxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return fmt.Errorf("all %d attempts failed: %w", maxAttempts, lastErr)
}
