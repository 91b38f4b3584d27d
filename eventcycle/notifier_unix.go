// SPDX-License-Identifier: MIT

//go:build unix

package eventcycle

import (
	"sync"

	"golang.org/x/sys/unix"
)

type commandKind int

const (
	cmdWatch commandKind = iota
	cmdUnwatch
	cmdReadDone
	cmdWriteDone
	cmdShutdown
)

// command is one scheduling request injected into the cycle goroutine.
type command struct {
	kind    commandKind
	fd      int
	target  Source
	extra   any
	onRead  Handler
	onWrite Handler
	onError ErrorFunc
	resume  bool
}

// notifier queues commands from arbitrary goroutines and wakes the poll loop
// through a self-pipe. Both pipe ends are non-blocking: a full pipe means a
// wakeup is already pending, so the write error can be ignored.
type notifier struct {
	mu      sync.Mutex
	queue   []command
	closed  bool
	readFd  int
	writeFd int

	closeOnce sync.Once
}

func newNotifier() (*notifier, error) {
	var fds [2]int
	if err := unix.Pipe(fds[:]); err != nil {
		return nil, &PollError{Op: "pipe", Err: err}
	}
	unix.SetNonblock(fds[0], true) //nolint:errcheck
	unix.SetNonblock(fds[1], true) //nolint:errcheck
	return &notifier{readFd: fds[0], writeFd: fds[1]}, nil
}

func (n *notifier) fd() int { return n.readFd }

func (n *notifier) notify(cmd command) {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return
	}
	n.queue = append(n.queue, cmd)
	n.mu.Unlock()
	unix.Write(n.writeFd, []byte{'x'}) //nolint:errcheck
}

// drain resets the wakeup pipe and hands out every queued command.
func (n *notifier) drain() []command {
	buf := make([]byte, 1024)
	for {
		c, err := unix.Read(n.readFd, buf)
		if c <= 0 || err != nil {
			break
		}
	}
	n.mu.Lock()
	cmds := n.queue
	n.queue = nil
	n.mu.Unlock()
	return cmds
}

func (n *notifier) close() {
	n.mu.Lock()
	n.closed = true
	n.queue = nil
	n.mu.Unlock()
	n.closeOnce.Do(func() {
		unix.Close(n.readFd)  //nolint:errcheck
		unix.Close(n.writeFd) //nolint:errcheck
	})
}
