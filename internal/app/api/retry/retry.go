package retry

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"time"
)

// Policy controls retries against flaky remote collaborators. Retries belong
// here, at the client edge; validation rejections are terminal and never
// retried.
type Policy struct {
	// MaxAttempts is the total number of tries, including the first.
	MaxAttempts int

	// InitialBackoff is the delay before the first retry; each subsequent
	// retry doubles it up to MaxBackoff.
	InitialBackoff time.Duration
	MaxBackoff     time.Duration

	// RetryableStatus reports whether an HTTP status code is worth
	// retrying. Nil means DefaultRetryableStatus.
	RetryableStatus func(status int) bool
}

// DefaultPolicy retries up to three times with 1s..8s exponential backoff on
// rate limiting and server errors.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:    3,
		InitialBackoff: time.Second,
		MaxBackoff:     8 * time.Second,
	}
}

// DefaultRetryableStatus retries on 429 and all 5xx.
func DefaultRetryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

// Retryable marks an error as transient so Do will retry it.
type Retryable struct {
	Err error
}

func (r *Retryable) Error() string { return r.Err.Error() }
func (r *Retryable) Unwrap() error { return r.Err }

// MarkRetryable wraps err so the policy treats it as transient.
func MarkRetryable(err error) error {
	if err == nil {
		return nil
	}
	return &Retryable{Err: err}
}

// StatusError carries an HTTP status so the policy's predicate can decide.
type StatusError struct {
	Status int
	Err    error
}

func (s *StatusError) Error() string { return s.Err.Error() }
func (s *StatusError) Unwrap() error { return s.Err }

// Do runs fn until it succeeds, returns a non-retryable error, the attempts
// are exhausted, or the context is cancelled. The last error is returned
// unwrapped.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	retryableStatus := p.RetryableStatus
	if retryableStatus == nil {
		retryableStatus = DefaultRetryableStatus
	}

	backoff := p.InitialBackoff
	if backoff <= 0 {
		backoff = time.Second
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}

		if !p.shouldRetry(lastErr, retryableStatus) || attempt == attempts {
			break
		}

		// Full jitter keeps concurrent clients from thundering in sync.
		delay := time.Duration(rand.Int63n(int64(backoff)) + 1)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}

		backoff *= 2
		if p.MaxBackoff > 0 && backoff > p.MaxBackoff {
			backoff = p.MaxBackoff
		}
	}

	var r *Retryable
	if errors.As(lastErr, &r) {
		return r.Err
	}
	return lastErr
}

func (p Policy) shouldRetry(err error, retryableStatus func(int) bool) bool {
	var s *StatusError
	if errors.As(err, &s) {
		return retryableStatus(s.Status)
	}

	var r *Retryable
	return errors.As(err, &r)
}
