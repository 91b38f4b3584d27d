// SPDX-License-Identifier: MIT

package eventcycle

import (
	"errors"
	"fmt"
)

var (
	// ErrClosed reports use of a closed cycle.
	ErrClosed = errors.New("eventcycle: closed")

	// ErrRunning reports a second concurrent Run or RunOnce call.
	ErrRunning = errors.New("eventcycle: already running")

	// ErrUnsupported reports that the platform has no poll implementation.
	ErrUnsupported = errors.New("eventcycle: unsupported platform")
)

// PollError wraps a failure of the underlying poll call.
type PollError struct {
	Op  string
	Err error
}

func (e *PollError) Error() string {
	return fmt.Sprintf("eventcycle: %s: %v", e.Op, e.Err)
}

func (e *PollError) Unwrap() error { return e.Err }

// ReadHandlerError wraps an error returned by a read handler.
type ReadHandlerError struct {
	Err error
}

func (e *ReadHandlerError) Error() string {
	return fmt.Sprintf("eventcycle: read handler: %v", e.Err)
}

func (e *ReadHandlerError) Unwrap() error { return e.Err }

// WriteHandlerError wraps an error returned by a write handler.
type WriteHandlerError struct {
	Err error
}

func (e *WriteHandlerError) Error() string {
	return fmt.Sprintf("eventcycle: write handler: %v", e.Err)
}

func (e *WriteHandlerError) Unwrap() error { return e.Err }
