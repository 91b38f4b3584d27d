// SPDX-License-Identifier: MIT

//go:build !unix

package eventcycle

import (
	"context"
	"time"
)

// Cycle is unavailable on this platform.
type Cycle struct {
	OnError ErrorFunc
}

// WatchOption configures a Watch request.
type WatchOption func(*watchConfig)

type watchConfig struct{}

// WithExtra attaches an opaque value passed to the source's handlers.
func WithExtra(any) WatchOption { return func(*watchConfig) {} }

// OnRead installs the read readiness handler.
func OnRead(Handler) WatchOption { return func(*watchConfig) {} }

// OnWrite installs the write readiness handler.
func OnWrite(Handler) WatchOption { return func(*watchConfig) {} }

// OnError installs a per-source error handler.
func OnError(ErrorFunc) WatchOption { return func(*watchConfig) {} }

// New reports ErrUnsupported on platforms without a poll implementation.
func New() (*Cycle, error) { return nil, ErrUnsupported }

func (c *Cycle) Watch(Source, ...WatchOption) error { return ErrUnsupported }

func (c *Cycle) Unwatch(Source) error { return ErrUnsupported }

func (c *Cycle) Run(context.Context) error { return ErrUnsupported }

func (c *Cycle) RunOnce(time.Duration) error { return ErrUnsupported }

func (c *Cycle) Close() error { return nil }
