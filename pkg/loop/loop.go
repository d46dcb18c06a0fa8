package loop

import (
	"context"
	"fmt"
	"time"
)

// what a Task wants the loop to do next.
type Next struct {
	// if not nil, break with error
	err error

	// if quit == true and err == nil, break without error
	quit bool

	// otherwise, run again after interval.
	interval time.Duration
}

func (n Next) String() string {
	if n.err != nil {
		return fmt.Sprintf("[break] with error: %v", n.err)
	}
	if n.quit {
		return "[break] without error"
	}
	return fmt.Sprintf("[continue] interval: %s", n.interval)
}

// run the task once more, after sleeping interval (can be 0).
func Continue(interval time.Duration) Next {
	return Next{interval: interval}
}

// stop looping. err may be nil.
func Break(err error) Next {
	return Next{quit: true, err: err}
}

// one cycle of a loop.
//
// Receives the value the previous cycle returned (the seed on the first
// cycle) and decides whether and when to go on.
type Task[T any] func(context.Context, T) (T, Next)

// Start runs task in a loop until it breaks or ctx is done.
//
// The task is first called as task(ctx, seed); each later cycle receives the
// value of the one before. Returns the last value together with the Break
// error (nil for Break(nil)), or ctx.Err() when the context ended the loop.
func Start[T any](ctx context.Context, seed T, task Task[T], options ...Option) (T, error) {
	select {
	case <-ctx.Done():
		return seed, ctx.Err()
	default:
	}

	value := seed
	for {
		conf := &config{ctx: ctx}
		for _, opt := range options {
			conf = opt(conf)
		}

		v, next := func() (T, Next) {
			ctx := conf.ctx
			if conf.deferred != nil {
				defer conf.deferred()
			}
			return task(ctx, value)
		}()

		if next.err != nil {
			return v, next.err
		}
		if next.quit {
			return v, nil
		}
		value = v

		timer := time.NewTimer(next.interval)
		select {
		case <-ctx.Done():
			// shutting down wins over the timer.
			if !timer.Stop() {
				<-timer.C
			}
			return value, ctx.Err()
		case <-timer.C:
		}
	}
}

type config struct {
	ctx      context.Context
	deferred func()
}

type Option func(*config) *config

// WithTimeout bounds each cycle: the context passed to the task is
// cancelled after d.
func WithTimeout(d time.Duration) Option {
	return func(c *config) *config {
		ctx, cancel := context.WithTimeout(c.ctx, d)
		return &config{
			ctx: ctx,
			deferred: func() {
				if c.deferred != nil {
					defer c.deferred()
				}
				cancel()
			},
		}
	}
}
