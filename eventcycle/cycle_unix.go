// SPDX-License-Identifier: MIT

//go:build unix

package eventcycle

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sys/unix"

	"github.com/pwt/go-utils/log"
)

// Error and hangup conditions count as readiness in both directions so a
// broken descriptor reaches its handler instead of spinning in the poll
// set.
const (
	readinessIn  = unix.POLLIN | unix.POLLHUP | unix.POLLERR
	readinessOut = unix.POLLOUT | unix.POLLHUP | unix.POLLERR
)

// Cycle dispatches readiness events of watched sources to their handlers.
// Watch, Unwatch and Close are safe to call from any goroutine; handlers and
// error callbacks run on the goroutine driving Run or RunOnce.
type Cycle struct {
	// OnError handles errors of sources without their own ErrorFunc. Set
	// it before starting the cycle. When nil, the first unhandled error
	// stops the loop and is returned from Run.
	OnError ErrorFunc

	mu      sync.Mutex
	closed  bool
	running bool

	contexts *Contexts
	notifier *notifier
	logger   zerolog.Logger
}

// New builds an idle cycle. The caller must Close it to release the wakeup
// pipe.
func New() (*Cycle, error) {
	n, err := newNotifier()
	if err != nil {
		return nil, err
	}
	return &Cycle{
		contexts: newContexts(),
		notifier: n,
		logger:   log.WithComponent("eventcycle"),
	}, nil
}

type watchConfig struct {
	extra   any
	onRead  Handler
	onWrite Handler
	onError ErrorFunc
}

// WatchOption configures a Watch request.
type WatchOption func(*watchConfig)

// WithExtra attaches an opaque value passed to the source's handlers.
func WithExtra(extra any) WatchOption {
	return func(cfg *watchConfig) { cfg.extra = extra }
}

// OnRead installs the read readiness handler.
func OnRead(h Handler) WatchOption {
	return func(cfg *watchConfig) { cfg.onRead = h }
}

// OnWrite installs the write readiness handler.
func OnWrite(h Handler) WatchOption {
	return func(cfg *watchConfig) { cfg.onWrite = h }
}

// OnError installs a per-source error handler overriding Cycle.OnError.
func OnError(f ErrorFunc) WatchOption {
	return func(cfg *watchConfig) { cfg.onError = f }
}

// Watch registers target or, when already watched, replaces its
// configuration. The request takes effect on the next scheduling pass.
func (c *Cycle) Watch(target Source, opts ...WatchOption) error {
	if c.isClosed() {
		return ErrClosed
	}
	var cfg watchConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	c.notifier.notify(command{
		kind:    cmdWatch,
		fd:      int(target.Fd()),
		target:  target,
		extra:   cfg.extra,
		onRead:  cfg.onRead,
		onWrite: cfg.onWrite,
		onError: cfg.onError,
	})
	return nil
}

// Unwatch removes target from the cycle. Sources with a handler still in
// flight are detached once it completes. Unknown targets are ignored.
func (c *Cycle) Unwatch(target Source) error {
	if c.isClosed() {
		return ErrClosed
	}
	c.notifier.notify(command{kind: cmdUnwatch, fd: int(target.Fd())})
	return nil
}

// Run drives the cycle until ctx is done, Close is called or an unhandled
// error occurs.
func (c *Cycle) Run(ctx context.Context) error {
	if err := c.beginRun(); err != nil {
		return err
	}
	defer c.endRun()

	stop := context.AfterFunc(ctx, func() {
		c.notifier.notify(command{kind: cmdShutdown})
	})
	defer stop()

	if err := c.loop(false, -1); err != nil {
		return err
	}
	return ctx.Err()
}

// RunOnce performs a single scheduling pass. A negative timeout blocks until
// an event arrives, zero polls without waiting.
func (c *Cycle) RunOnce(timeout time.Duration) error {
	if err := c.beginRun(); err != nil {
		return err
	}
	defer c.endRun()
	return c.loop(true, timeout)
}

// Close shuts the cycle down. A running loop terminates on its next pass;
// the wakeup pipe is released once no loop uses it anymore.
func (c *Cycle) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	running := c.running
	c.mu.Unlock()

	c.notifier.notify(command{kind: cmdShutdown})
	if !running {
		c.notifier.close()
	}
	return nil
}

func (c *Cycle) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *Cycle) beginRun() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if c.running {
		return ErrRunning
	}
	c.running = true
	return nil
}

func (c *Cycle) endRun() {
	c.mu.Lock()
	c.running = false
	closed := c.closed
	c.mu.Unlock()
	if closed {
		c.notifier.close()
	}
}

func (c *Cycle) loop(runOnce bool, timeout time.Duration) error {
	timeoutMs := -1
	if timeout >= 0 {
		timeoutMs = int(timeout.Milliseconds())
	}

	for {
		fds := c.pollSet()
		n, err := unix.Poll(fds, timeoutMs)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			perr := &PollError{Op: "poll", Err: err}
			if cont, ferr := c.handleError(perr, nil); !cont {
				return ferr
			}
			continue
		}

		if n > 0 && fds[0].Revents&readinessIn != 0 {
			for _, cmd := range c.notifier.drain() {
				if cmd.kind == cmdShutdown {
					return nil
				}
				c.apply(cmd)
			}
		}

		for i := 1; i < len(fds); i++ {
			revents := fds[i].Revents
			if revents == 0 {
				continue
			}
			fd := int(fds[i].Fd)
			if c.contexts.isInvalid(fd) {
				c.contexts.markChanged(fd)
				continue
			}
			if revents&readinessIn != 0 {
				if cont, ferr := c.dispatch(fd, Read); !cont {
					return ferr
				}
			}
			if revents&readinessOut != 0 {
				if cont, ferr := c.dispatch(fd, Write); !cont {
					return ferr
				}
			}
		}

		for _, fd := range c.contexts.drainChanged() {
			c.contexts.discardStale(fd)
		}

		if runOnce {
			return nil
		}
	}
}

// pollSet builds the poll descriptor list. Index 0 is always the wakeup
// pipe.
func (c *Cycle) pollSet() []unix.PollFd {
	fds := make([]unix.PollFd, 1, len(c.contexts.states)+1)
	fds[0] = unix.PollFd{Fd: int32(c.notifier.fd()), Events: unix.POLLIN}
	for fd := range c.contexts.states {
		ev := c.contexts.events(fd)
		if ev == 0 {
			continue
		}
		var events int16
		if ev&Read != 0 {
			events |= unix.POLLIN
		}
		if ev&Write != 0 {
			events |= unix.POLLOUT
		}
		fds = append(fds, unix.PollFd{Fd: int32(fd), Events: events})
	}
	return fds
}

// apply executes one injected command on the cycle goroutine.
func (c *Cycle) apply(cmd command) {
	switch cmd.kind {
	case cmdWatch:
		c.logger.Debug().Int("fd", cmd.fd).Msg("watch")
		c.contexts.create(cmd.fd, cmd.target, cmd.extra, cmd.onRead, cmd.onWrite, cmd.onError)
	case cmdUnwatch:
		c.logger.Debug().Int("fd", cmd.fd).Msg("unwatch")
		c.contexts.remove(cmd.fd)
	case cmdReadDone:
		if s, ok := c.contexts.states[cmd.fd]; ok {
			s.pendingRead = false
			if !cmd.resume {
				s.onRead = nil
			}
			c.contexts.markChanged(cmd.fd)
		}
	case cmdWriteDone:
		if s, ok := c.contexts.states[cmd.fd]; ok {
			s.pendingWrite = false
			if !cmd.resume {
				s.onWrite = nil
			}
			c.contexts.markChanged(cmd.fd)
		}
	}
}

// dispatch invokes the handler armed for fd in the given direction.
func (c *Cycle) dispatch(fd int, dir Events) (bool, error) {
	s, ok := c.contexts.states[fd]
	if !ok {
		return true, nil
	}
	var handler Handler
	var doneKind commandKind
	switch dir {
	case Read:
		if s.onRead == nil || s.pendingRead {
			return true, nil
		}
		handler, doneKind = s.onRead, cmdReadDone
	case Write:
		if s.onWrite == nil || s.pendingWrite {
			return true, nil
		}
		handler, doneKind = s.onWrite, cmdWriteDone
	default:
		return true, nil
	}

	done := func(resume bool) {
		if c.isClosed() {
			return
		}
		c.notifier.notify(command{kind: doneKind, fd: fd, resume: resume})
	}

	action, err := handler(s.target, s.extra, done)
	if err != nil {
		var werr error
		if dir == Read {
			werr = &ReadHandlerError{Err: err}
		} else {
			werr = &WriteHandlerError{Err: err}
		}
		return c.handleError(werr, s)
	}

	switch action {
	case Detach:
		if dir == Read {
			s.onRead = nil
		} else {
			s.onWrite = nil
		}
	case Async:
		if dir == Read {
			s.pendingRead = true
		} else {
			s.pendingWrite = true
		}
	}
	c.contexts.markChanged(fd)
	return true, nil
}

// handleError routes err through the per-source handler, then the cycle
// fallback. Without any handler the loop stops and Run returns err.
func (c *Cycle) handleError(err error, s *state) (bool, error) {
	if s != nil && s.onError != nil {
		return s.onError(err, c.contexts, s.target), nil
	}
	if c.OnError != nil {
		var target Source
		if s != nil {
			target = s.target
		}
		return c.OnError(err, c.contexts, target), nil
	}
	c.logger.Error().Err(err).Msg("unhandled cycle error")
	return false, err
}
