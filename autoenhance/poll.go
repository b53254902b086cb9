package autoenhance

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrPollTimeout means the poll budget's wall-clock timeout elapsed.
	ErrPollTimeout = errors.New("polling timed out")
	// ErrPollMaxAttempts means every allowed attempt was used.
	ErrPollMaxAttempts = errors.New("polling reached max attempts")
)

// PollOptions bound a wait for an asynchronous job.
type PollOptions struct {
	// Interval is the pause between attempts.
	Interval time.Duration
	// MaxAttempts caps the number of fetches, the first one included.
	MaxAttempts int
	// Timeout caps the total time spent polling.
	Timeout time.Duration
}

// DefaultPollOptions polls every 1.5s, at most 10 times, for at most 20s.
func DefaultPollOptions() PollOptions {
	return PollOptions{
		Interval:    1500 * time.Millisecond,
		MaxAttempts: 10,
		Timeout:     20 * time.Second,
	}
}

func (o PollOptions) withDefaults() PollOptions {
	d := DefaultPollOptions()
	if o.Interval <= 0 {
		o.Interval = d.Interval
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = d.MaxAttempts
	}
	if o.Timeout <= 0 {
		o.Timeout = d.Timeout
	}
	return o
}

// PollError is returned when polling stops before the done predicate held.
// It wraps ErrPollTimeout or ErrPollMaxAttempts.
type PollError struct {
	Attempts int
	Elapsed  time.Duration
	// Last is the most recent value fetched, if any.
	Last interface{}
	Err  error
}

func (e *PollError) Error() string {
	return fmt.Sprintf("%v after %d attempt(s) in %s", e.Err, e.Attempts, e.Elapsed.Round(time.Millisecond))
}

func (e *PollError) Unwrap() error {
	return e.Err
}

// Poll calls fetch until done returns true for its result, the options'
// attempt or time budget is spent, fetch fails, or ctx is cancelled.
//
// The first fetch happens immediately. The time budget also bounds an
// in-flight fetch. On failure the zero T is returned.
func Poll[T any](ctx context.Context, opts PollOptions, fetch func(context.Context) (T, error), done func(T) bool) (T, error) {
	var zero T
	opts = opts.withDefaults()

	start := time.Now()
	pollCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	var (
		last    T
		fetched bool
	)
	timedOut := func(attempts int) error {
		pe := &PollError{Attempts: attempts, Elapsed: time.Since(start), Err: ErrPollTimeout}
		if fetched {
			pe.Last = last
		}
		return pe
	}

	for attempt := 1; ; attempt++ {
		v, err := fetch(pollCtx)
		if err != nil {
			if ctx.Err() != nil {
				return zero, ctx.Err()
			}
			if pollCtx.Err() != nil {
				return zero, timedOut(attempt)
			}
			return zero, err
		}
		last, fetched = v, true

		if done(v) {
			return v, nil
		}
		if attempt >= opts.MaxAttempts {
			return zero, &PollError{Attempts: attempt, Elapsed: time.Since(start), Last: v, Err: ErrPollMaxAttempts}
		}
		if pollCtx.Err() != nil {
			if ctx.Err() != nil {
				return zero, ctx.Err()
			}
			return zero, timedOut(attempt)
		}

		timer := time.NewTimer(opts.Interval)
		select {
		case <-pollCtx.Done():
			timer.Stop()
			if ctx.Err() != nil {
				return zero, ctx.Err()
			}
			return zero, timedOut(attempt)
		case <-timer.C:
		}
	}
}
