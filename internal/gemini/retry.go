// Copyright (c) 2025 NexuBible
// SPDX-License-Identifier: AGPL-3.0-or-later

package gemini

import (
	"context"
	"errors"
	"time"

	"golang.org/x/time/rate"
)

// Retry defaults.
const (
	// DefaultMaxAttempts bounds attempts, first call included.
	DefaultMaxAttempts = 3

	// retryBaseDelay is the backoff for the first retry.
	retryBaseDelay = 500 * time.Millisecond

	// retryMaxDelay caps the backoff growth.
	retryMaxDelay = 8 * time.Second
)

// RetryPolicy retries transient gateway failures on the caller's behalf.
// The gateway itself never retries; callers that want retries wrap their
// calls explicitly. Only Timeout and ServerUnavailable failures are
// retried: auth, configuration, rate-limit and format failures come back
// on the first attempt.
type RetryPolicy struct {
	maxAttempts int
	limiter     *rate.Limiter
	sleep       func(context.Context, time.Duration) error
}

// NewRetryPolicy builds a policy with maxAttempts total attempts, pacing
// all attempts through limiter. A nil limiter disables pacing.
func NewRetryPolicy(maxAttempts int, limiter *rate.Limiter) *RetryPolicy {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &RetryPolicy{
		maxAttempts: maxAttempts,
		limiter:     limiter,
		sleep:       sleepCtx,
	}
}

// Do runs fn until it succeeds, fails non-retryably, or attempts run out.
// The last failure is returned unchanged so callers keep the classified
// kind and message.
func (p *RetryPolicy) Do(ctx context.Context, fn func(context.Context) error) error {
	var lastErr error

	for attempt := 0; attempt < p.maxAttempts; attempt++ {
		if attempt > 0 {
			if err := p.sleep(ctx, backoffDelay(attempt)); err != nil {
				return lastErr
			}
		}
		if p.limiter != nil {
			if err := p.limiter.Wait(ctx); err != nil {
				if lastErr != nil {
					return lastErr
				}
				return err
			}
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}

		var gerr *Error
		if !errors.As(lastErr, &gerr) || !gerr.Retryable() {
			return lastErr
		}
	}
	return lastErr
}

// backoffDelay doubles the base delay per retry, capped at retryMaxDelay.
func backoffDelay(attempt int) time.Duration {
	if attempt > 10 {
		return retryMaxDelay
	}
	delay := retryBaseDelay << (attempt - 1)
	if delay > retryMaxDelay {
		return retryMaxDelay
	}
	return delay
}

// sleepCtx sleeps for d or until ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
