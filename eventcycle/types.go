// SPDX-License-Identifier: MIT

// Package eventcycle schedules I/O readiness callbacks over a set of file
// descriptors.
//
// A Cycle polls the descriptors of watched Sources and invokes the read or
// write handler registered for each one when it becomes ready. Watch and
// Unwatch requests from other goroutines are injected through an internal
// self-pipe, so all handler execution stays on the goroutine running the
// cycle. Handlers may finish synchronously or hand their completion off to
// another goroutine via the DoneFunc they receive; a descriptor with a
// pending handler is excluded from polling until the handler reports back.
//
// The poll-based implementation is available on unix platforms. Elsewhere
// New returns ErrUnsupported.
package eventcycle

// Source is a pollable resource. *os.File satisfies it directly; network
// connections can expose their descriptor through a small adapter.
type Source interface {
	Fd() uintptr
}

// Events is a bit mask of I/O readiness directions.
type Events uint8

const (
	// Read marks interest in read readiness.
	Read Events = 1 << iota
	// Write marks interest in write readiness.
	Write
)

// Action tells the cycle what to do with a handler after it returned.
type Action int

const (
	// Continue keeps the handler armed for the next readiness event.
	Continue Action = iota
	// Detach removes the handler from its direction.
	Detach
	// Async marks the handler as still running. The descriptor stays out
	// of the poll set until the handler's DoneFunc is called.
	Async
)

// DoneFunc reports completion of an Async handler. With resume true the
// handler is rearmed, with false it is detached.
type DoneFunc func(resume bool)

// Handler reacts to a readiness event. It receives the watched source, the
// extra value given at Watch time and a DoneFunc for asynchronous
// completion.
type Handler func(target Source, extra any, done DoneFunc) (Action, error)

// ErrorFunc decides whether the cycle survives err. Returning true resumes
// the loop, false stops it without surfacing the error. target is nil for
// errors not tied to a single source.
type ErrorFunc func(err error, contexts *Contexts, target Source) bool
