// SPDX-License-Identifier: MIT

// Package retry re-runs fallible operations until a condition says stop.
//
// A Retryer pairs an IntervalFunc, which decides how long to wait between
// attempts, with a RetryableFunc, which decides whether the last attempt
// warrants another one. Both sides are small composable constructors, so a
// caller can combine them freely:
//
//	r := retry.New(
//		retry.WithInterval(retry.ExponentialBackoff(time.Second, 32*time.Second, 2, true)),
//		retry.WithRetryable(retry.All(
//			retry.MaxAttempts(5),
//			retry.Any(retry.OnResults(nil, ""), retry.OnErrors(io.ErrUnexpectedEOF)),
//		)),
//	)
//	err := r.Do(ctx, fetch)
package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"reflect"
	"time"

	"github.com/pwt/go-utils/internal/textutil"
	"github.com/pwt/go-utils/log"
)

// State carries the bookkeeping of one retried operation. The retryable and
// interval callbacks inspect it after every attempt.
type State struct {
	// Attempts counts the retries scheduled so far, starting at 0 for the
	// first execution.
	Attempts int

	// Delay is the wait computed before the upcoming attempt.
	Delay time.Duration

	// Result holds the value returned by the last attempt.
	Result any

	// Err holds the error returned by the last attempt, nil on success.
	Err error
}

func (s *State) String() string {
	return fmt.Sprintf("attempts: %d, delay: %s, result: %s, err: %v",
		s.Attempts, s.Delay, textutil.TruncateMiddle(s.Result, 150), s.Err)
}

// IntervalFunc computes the wait before the next attempt.
type IntervalFunc func(*State) time.Duration

// RetryableFunc reports whether the operation should run again.
type RetryableFunc func(*State) bool

// FixedInterval waits the same delay between every attempt.
func FixedInterval(delay time.Duration) IntervalFunc {
	return func(*State) time.Duration { return delay }
}

// ExponentialBackoff grows the delay as factor*base^attempts, capped at
// maximum. With jitter enabled the delay is drawn uniformly between
// attempts*factor and the computed value.
func ExponentialBackoff(factor, maximum time.Duration, base float64, jitter bool) IntervalFunc {
	return func(s *State) time.Duration {
		delay := time.Duration(math.Pow(base, float64(s.Attempts)) * float64(factor))
		if delay < 0 || delay > maximum {
			delay = maximum
		}
		if jitter {
			low := time.Duration(s.Attempts) * factor
			if low > delay {
				low, delay = delay, low
			}
			delay = low + rand.N(delay-low+1)
		}
		return max(delay, 0)
	}
}

// MaxAttempts allows up to n retries after the initial execution.
func MaxAttempts(n int) RetryableFunc {
	return func(s *State) bool { return s.Attempts < n }
}

// OnErrors retries when the attempt's error matches one of targets via
// errors.Is. With no targets, any non-nil error qualifies.
func OnErrors(targets ...error) RetryableFunc {
	return func(s *State) bool {
		if s.Err == nil {
			return false
		}
		if len(targets) == 0 {
			return true
		}
		for _, target := range targets {
			if errors.Is(s.Err, target) {
				return true
			}
		}
		return false
	}
}

// OnResults retries when the attempt's result deep-equals one of values.
func OnResults(values ...any) RetryableFunc {
	return func(s *State) bool {
		for _, v := range values {
			if reflect.DeepEqual(s.Result, v) {
				return true
			}
		}
		return false
	}
}

// All combines conditions so that every one must hold.
func All(conditions ...RetryableFunc) RetryableFunc {
	return func(s *State) bool {
		for _, cond := range conditions {
			if !cond(s) {
				return false
			}
		}
		return true
	}
}

// Any combines conditions so that a single match suffices.
func Any(conditions ...RetryableFunc) RetryableFunc {
	return func(s *State) bool {
		for _, cond := range conditions {
			if cond(s) {
				return true
			}
		}
		return false
	}
}

// Standard is the usual attempts-and-triggers policy: retry while fewer than
// retries attempts were made and the last attempt either errored with one of
// errs (any error when errs is empty) or returned one of results.
func Standard(retries int, errs []error, results []any) RetryableFunc {
	return All(MaxAttempts(retries), Any(OnErrors(errs...), OnResults(results...)))
}

// Retryer executes operations under a retry policy.
type Retryer struct {
	interval  IntervalFunc
	retryable RetryableFunc
}

// Option adjusts a Retryer under construction.
type Option func(*Retryer)

// WithInterval replaces the delay strategy.
func WithInterval(interval IntervalFunc) Option {
	return func(r *Retryer) { r.interval = interval }
}

// WithRetryable replaces the retry condition.
func WithRetryable(retryable RetryableFunc) Option {
	return func(r *Retryer) { r.retryable = retryable }
}

// New builds a Retryer with a fixed 1s delay and up to 3 retries on any
// error.
func New(opts ...Option) *Retryer {
	r := &Retryer{
		interval:  FixedInterval(time.Second),
		retryable: Standard(3, nil, nil),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NewBackoff builds a Retryer with exponential backoff (base 2, capped at
// 64s) and up to 3 retries on any error.
func NewBackoff(opts ...Option) *Retryer {
	base := []Option{WithInterval(ExponentialBackoff(time.Second, 64*time.Second, 2, false))}
	return New(append(base, opts...)...)
}

// Do runs fn until the policy declines another attempt, returning the last
// error. Context cancellation interrupts the wait between attempts and
// surfaces as ctx.Err().
func (r *Retryer) Do(ctx context.Context, fn func(context.Context) error) error {
	_, err := DoValue(ctx, r, func(ctx context.Context) (any, error) {
		return nil, fn(ctx)
	})
	return err
}

// DoValue runs fn under r's policy and returns the last result and error.
func DoValue[T any](ctx context.Context, r *Retryer, fn func(context.Context) (T, error)) (T, error) {
	logger := log.FromContext(ctx).With().Str(log.FieldComponent, "retry").Logger()
	state := &State{}
	for {
		v, err := fn(ctx)
		state.Result, state.Err = v, err
		if !r.retryable(state) {
			logger.Debug().
				Int(log.FieldAttempts, state.Attempts).
				Msgf("settled: %s", state)
			return v, err
		}
		state.Attempts++
		state.Delay = r.interval(state)
		logger.Debug().
			Int(log.FieldAttempts, state.Attempts).
			Dur(log.FieldDelay, state.Delay).
			Msgf("retrying: %s", state)
		if err := sleep(ctx, state.Delay); err != nil {
			return v, err
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
