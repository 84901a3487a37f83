package retry

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"
)

// Policy describes how an operation is retried. Every attempt, including the
// first one, is preceded by a random pause in [JitterMin, JitterMax) and is
// bounded by Timeout.
type Policy struct {
	MaxAttempts int
	Timeout     time.Duration
	JitterMin   time.Duration
	JitterMax   time.Duration
}

// DefaultPolicy is three attempts of 30 seconds each with 200-800ms jitter.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 3,
		Timeout:     30 * time.Second,
		JitterMin:   200 * time.Millisecond,
		JitterMax:   800 * time.Millisecond,
	}
}

// Jitter returns a random duration in [JitterMin, JitterMax).
func (p Policy) Jitter() time.Duration {
	if p.JitterMax <= p.JitterMin {
		return p.JitterMin
	}
	return p.JitterMin + rand.N(p.JitterMax-p.JitterMin)
}

// Do runs fn until it returns a nil error or the attempts are exhausted. The
// error of the last attempt is returned as is. Attempts stop early when ctx is
// done.
func Do[T any](ctx context.Context, p Policy, fn func(ctx context.Context, attempt int) (T, error)) (T, error) {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}

	rp := retrypolicy.NewBuilder[T]().
		HandleIf(func(_ T, err error) bool {
			return err != nil && ctx.Err() == nil
		}).
		WithMaxRetries(p.MaxAttempts - 1).
		ReturnLastFailure().
		Build()

	attempt := 0
	return failsafe.With[T](rp).WithContext(ctx).Get(func() (T, error) {
		attempt++
		if err := Sleep(ctx, p.Jitter()); err != nil {
			var zero T
			return zero, err
		}

		attemptCtx, cancel := ctx, context.CancelFunc(func() {})
		if p.Timeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, p.Timeout)
		}
		defer cancel()

		return fn(attemptCtx, attempt)
	})
}

// Sleep pauses for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
