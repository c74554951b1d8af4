package resilience

import (
	"context"
	"errors"
	"math/rand"
	"time"
)

// Permanent marks an error that must not be retried.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return permanentError{err: err}
}

type permanentError struct{ err error }

func (p permanentError) Error() string { return p.err.Error() }
func (p permanentError) Unwrap() error { return p.err }

// IsPermanent reports whether err was wrapped with Permanent.
func IsPermanent(err error) bool {
	var p permanentError
	return errors.As(err, &p)
}

// Retry runs calls with exponential backoff behind an optional breaker.
type Retry struct {
	Breaker     *Breaker
	MaxAttempts int
	BaseBackoff time.Duration
	Jitter      float64
	// Sleep waits between attempts; nil uses a timer bound to ctx.
	Sleep func(context.Context, time.Duration) error
}

// Do calls fn until it succeeds, returns a permanent error, the attempts run
// out or the breaker opens. Permanent errors count as successes for the
// breaker since the target did answer.
func (r Retry) Do(ctx context.Context, fn func(context.Context) error) error {
	attempts := r.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	sleep := r.Sleep
	if sleep == nil {
		sleep = sleepContext
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if r.Breaker != nil && !r.Breaker.Allow(ctx) {
			if lastErr != nil {
				return errors.Join(ErrOpenCircuit, lastErr)
			}
			return ErrOpenCircuit
		}
		err := fn(ctx)
		if r.Breaker != nil {
			r.Breaker.Report(ctx, err == nil || IsPermanent(err))
		}
		if err == nil {
			return nil
		}
		if IsPermanent(err) {
			return err
		}
		lastErr = err
		if attempt == attempts {
			break
		}
		if err := sleep(ctx, Backoff(r.BaseBackoff, attempt, r.Jitter)); err != nil {
			return err
		}
	}
	return lastErr
}

// Backoff returns an exponential delay for the given attempt. Jitter is a
// fraction of the delay, e.g. 0.2 for 20%.
func Backoff(base time.Duration, attempt int, jitterPct float64) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if base <= 0 {
		base = 100 * time.Millisecond
	}
	d := base * time.Duration(1<<uint(attempt-1))
	if jitterPct <= 0 {
		return d
	}
	jitter := float64(d) * jitterPct
	return d + time.Duration((rand.Float64()*2-1)*jitter)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
