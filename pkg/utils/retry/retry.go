package retry

import (
	"context"
	"errors"
	"time"
)

// returned by a task to ask for another attempt.
var ErrRetry = errors.New("retry")

// Backoff is a blocking function returning when the next attempt may start.
//
// It returns nil to go ahead, or ctx.Err() when the context ended first.
type Backoff func(context.Context) error

// StaticBackoff waits a fixed interval between attempts.
func StaticBackoff(interval time.Duration) Backoff {
	return LinearBackoff(interval, 0)
}

// LinearBackoff waits `initial` before the first retry, growing by `step`
// per attempt: initial, initial+step, initial+2*step, ...
//
// The first call (before the first attempt) does not wait.
func LinearBackoff(initial, step time.Duration) Backoff {
	interval := time.Duration(0)
	next := initial
	return func(ctx context.Context) error {
		if interval == 0 {
			interval = next
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
				return nil
			}
		}

		timer := time.NewTimer(interval)
		defer func() {
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
		}()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			interval += step
			return nil
		}
	}
}

// Retriable marks err as asking for a retry, without hiding it.
//
// The returned error matches ErrRetry for the retry machinery and unwraps
// to err for everyone else.
func Retriable(err error) error {
	return retriable{err: err}
}

type retriable struct {
	err error
}

func (r retriable) Error() string {
	return r.err.Error()
}

func (r retriable) Is(target error) bool {
	return target == ErrRetry
}

func (r retriable) Unwrap() error {
	return r.err
}

// Blocking calls f until it succeeds or fails with a non-retry error.
//
// When f returns an error wrapping ErrRetry, f is called again after the
// backoff. Bound the number of attempts with WithLimit.
func Blocking[T any](ctx context.Context, b Backoff, f func() (T, error)) (T, error) {
	last := *new(T)
	for {
		if err := b(ctx); err != nil {
			return last, err
		}

		var err error
		last, err = f()
		if err == nil {
			return last, nil
		}
		if errors.Is(err, ErrRetry) {
			continue
		}
		return last, err
	}
}

// attempts were exhausted before f succeeded. Wraps the last attempt's error.
type ErrExhausted struct {
	Attempts int
	Last     error
}

func (e ErrExhausted) Error() string {
	return e.Last.Error()
}

func (e ErrExhausted) Unwrap() error {
	return e.Last
}

// WithLimit caps retries of f at `retries` (so, 1+retries attempts in total).
//
// When the bound is hit, the returned function stops asking for retries and
// fails with ErrExhausted wrapping the last error.
func WithLimit[T any](retries int, f func() (T, error)) func() (T, error) {
	attempt := 0
	return func() (T, error) {
		attempt += 1
		v, err := f()
		if err == nil || !errors.Is(err, ErrRetry) {
			return v, err
		}
		if retries < attempt {
			last := errors.Unwrap(err)
			if last == nil {
				last = err
			}
			return v, ErrExhausted{Attempts: attempt, Last: last}
		}
		return v, err
	}
}
