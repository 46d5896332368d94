// Package retry implements a data-driven retry policy for transient failures.
//
// A Policy carries the maximum number of retries and the fixed delay schedule.
// Do runs an operation and retries it only while the supplied predicate reports
// the error as transient.
package retry

import (
	"context"
	"fmt"
	"time"
)

// Policy describes how many times an operation may be retried and how long
// to wait before each retry. When there are more retries than delays the
// last delay is reused.
type Policy struct {
	MaxRetries int
	Delays     []time.Duration
}

// DefaultPolicy mirrors the upstream provider schedule: three retries
// at 1s, 2s and 4s.
var DefaultPolicy = Policy{
	MaxRetries: 3,
	Delays:     []time.Duration{time.Second, 2 * time.Second, 4 * time.Second},
}

// AttemptsError wraps the final error of an operation together with the
// total number of attempts that were made.
type AttemptsError struct {
	Attempts int
	Err      error
}

func (e *AttemptsError) Error() string {
	return fmt.Sprintf("after %d attempt(s): %s", e.Attempts, e.Err)
}

func (e *AttemptsError) Unwrap() error {
	return e.Err
}

// Do runs fn and retries it according to the policy while isRetryable
// reports the returned error as transient. Any other error propagates
// immediately. The returned error is always an *AttemptsError.
//
// Waiting between attempts is aborted when ctx is done.
func Do(ctx context.Context, p Policy, fn func() error, isRetryable func(error) bool) error {
	attempts := 0
	for {
		attempts++
		err := fn()
		if err == nil {
			return nil
		}
		if attempts > p.MaxRetries || !isRetryable(err) {
			return &AttemptsError{Attempts: attempts, Err: err}
		}

		delay := p.Delays[len(p.Delays)-1]
		if attempts-1 < len(p.Delays) {
			delay = p.Delays[attempts-1]
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return &AttemptsError{Attempts: attempts, Err: ctx.Err()}
		}
	}
}
