// SPDX-License-Identifier: MIT

// Package timeout bounds the wall-clock time of a function call.
//
// The wrapped function receives a context carrying the deadline and should
// observe it; when it does not return in time the caller gets ErrTimeout
// while the function keeps running on its own goroutine until it finishes.
package timeout

import (
	"context"
	"errors"
	"time"
)

// ErrTimeout reports that the call did not finish within its limit.
var ErrTimeout = errors.New("timeout: call did not finish in time")

// Call runs fn with at most d of wall-clock time. A non-positive d imposes
// no limit beyond whatever deadline ctx already carries.
func Call(ctx context.Context, d time.Duration, fn func(context.Context) error) error {
	_, err := CallValue(ctx, d, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// CallValue is Call for functions that return a value. On timeout the zero
// value is returned together with ErrTimeout.
func CallValue[T any](ctx context.Context, d time.Duration, fn func(context.Context) (T, error)) (T, error) {
	if d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeoutCause(ctx, d, ErrTimeout)
		defer cancel()
	}

	type outcome struct {
		v   T
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		v, err := fn(ctx)
		done <- outcome{v, err}
	}()

	select {
	case out := <-done:
		if err := causeFor(ctx, out.err); err != out.err { //nolint:errorlint
			var zero T
			return zero, err
		}
		return out.v, out.err
	case <-ctx.Done():
		var zero T
		return zero, causeFor(ctx, ctx.Err())
	}
}

// causeFor rewrites a deadline error into the cancellation cause, so a
// function that surfaces ctx.Err() still yields ErrTimeout to the caller.
func causeFor(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	cause := context.Cause(ctx)
	if cause != nil && !errors.Is(cause, err) && errors.Is(err, context.DeadlineExceeded) {
		return cause
	}
	return err
}
