// Package retry provides the retry policy shared by every outbound call of an
// ingestion run.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	DefaultAttempts = 2
	DefaultStep     = 2 * time.Second
)

// Policy retries an operation a fixed number of times, waiting Step×n before
// attempt n+1.
type Policy struct {
	Attempts int
	Step     time.Duration

	// Timer replaces the wall clock between attempts; nil uses real timers.
	Timer backoff.Timer
	// OnRetry is called after a failed attempt that will be retried.
	OnRetry func(attempt int, err error, wait time.Duration)
}

// Default returns the policy used for source fetches.
func Default() Policy {
	return Policy{Attempts: DefaultAttempts, Step: DefaultStep}
}

// Wait returns the delay before the attempt following attempt n (1-based).
func (p Policy) Wait(n int) time.Duration {
	if n < 1 {
		return 0
	}
	return p.Step * time.Duration(n)
}

// Do runs op until it succeeds, returns a permanent error, the context is
// cancelled, or the attempts are exhausted. The last error is returned.
func (p Policy) Do(ctx context.Context, op func(ctx context.Context) error) error {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}

	attempt := 0
	operation := func() error {
		attempt++
		return op(ctx)
	}
	notify := func(err error, wait time.Duration) {
		if p.OnRetry != nil {
			p.OnRetry(attempt, err, wait)
		}
	}

	b := backoff.WithContext(backoff.WithMaxRetries(&linear{policy: p}, uint64(attempts-1)), ctx)
	return backoff.RetryNotifyWithTimer(operation, b, notify, p.Timer)
}

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

// linear is a backoff.BackOff whose delay grows by Step per attempt.
type linear struct {
	policy  Policy
	attempt int
}

func (l *linear) NextBackOff() time.Duration {
	l.attempt++
	return l.policy.Wait(l.attempt)
}

func (l *linear) Reset() {
	l.attempt = 0
}
