// SPDX-License-Identifier: MIT

package eventcycle

// state tracks one watched source: its handlers, the extra value handed to
// them and the flags steering the scheduler. pending flags keep a source out
// of the poll set while an Async handler runs; stale marks a source whose
// removal waits for pending handlers to finish.
type state struct {
	target       Source
	extra        any
	onRead       Handler
	onWrite      Handler
	onError      ErrorFunc
	pendingRead  bool
	pendingWrite bool
	stale        bool
}

// Contexts holds the per-source scheduling state of a cycle. Error handlers
// receive it to inspect or adjust watched sources; its methods must only be
// called from the cycle goroutine.
type Contexts struct {
	states  map[int]*state
	changed map[int]struct{}
}

func newContexts() *Contexts {
	return &Contexts{
		states:  map[int]*state{},
		changed: map[int]struct{}{},
	}
}

// ensure returns the state for fd, creating a stale placeholder when the fd
// is unknown.
func (c *Contexts) ensure(fd int, target Source) *state {
	s, ok := c.states[fd]
	if !ok {
		s = &state{target: target, stale: true}
		c.states[fd] = s
		c.markChanged(fd)
	}
	return s
}

func (c *Contexts) markChanged(fd int) {
	c.changed[fd] = struct{}{}
}

func (c *Contexts) drainChanged() []int {
	fds := make([]int, 0, len(c.changed))
	for fd := range c.changed {
		fds = append(fds, fd)
	}
	clear(c.changed)
	return fds
}

// create registers or reconfigures a source.
func (c *Contexts) create(fd int, target Source, extra any, onRead, onWrite Handler, onError ErrorFunc) {
	s := c.ensure(fd, target)
	s.target = target
	s.extra = extra
	s.onRead = onRead
	s.onWrite = onWrite
	s.onError = onError
	s.stale = false
	c.markChanged(fd)
}

// remove marks a source stale. It leaves the state behind until pending
// handlers finish; discardStale reaps it afterwards.
func (c *Contexts) remove(fd int) {
	if s, ok := c.states[fd]; ok {
		s.stale = true
		c.markChanged(fd)
	}
}

// discardStale drops fd's state once it is stale and no handler is pending.
func (c *Contexts) discardStale(fd int) {
	s, ok := c.states[fd]
	if ok && s.stale && !s.pendingRead && !s.pendingWrite {
		delete(c.states, fd)
	}
}

// isInvalid reports whether fd is unknown or marked stale.
func (c *Contexts) isInvalid(fd int) bool {
	s, ok := c.states[fd]
	return !ok || s.stale
}

// events computes the poll interest mask for fd. A direction is armed only
// while it has a handler and no pending invocation.
func (c *Contexts) events(fd int) Events {
	s, ok := c.states[fd]
	if !ok || s.stale {
		return 0
	}
	var ev Events
	if s.onRead != nil && !s.pendingRead {
		ev |= Read
	}
	if s.onWrite != nil && !s.pendingWrite {
		ev |= Write
	}
	return ev
}

// Has reports whether target is currently registered.
func (c *Contexts) Has(target Source) bool {
	_, ok := c.states[int(target.Fd())]
	return ok
}

// Extra returns the extra value registered for target, nil when unknown.
func (c *Contexts) Extra(target Source) any {
	if s, ok := c.states[int(target.Fd())]; ok {
		return s.extra
	}
	return nil
}

// SetExtra replaces the extra value of a registered target.
func (c *Contexts) SetExtra(target Source, extra any) {
	if s, ok := c.states[int(target.Fd())]; ok {
		s.extra = extra
	}
}

// Remove marks target for removal, like Cycle.Unwatch but effective
// immediately within the current dispatch.
func (c *Contexts) Remove(target Source) {
	c.remove(int(target.Fd()))
}

// Info is a snapshot of one watched source's scheduling state.
type Info struct {
	Target       Source
	Extra        any
	HasRead      bool
	HasWrite     bool
	PendingRead  bool
	PendingWrite bool
	Stale        bool
}

// Inspect returns a copy of target's state, with ok false for unknown
// targets.
func (c *Contexts) Inspect(target Source) (Info, bool) {
	s, ok := c.states[int(target.Fd())]
	if !ok {
		return Info{}, false
	}
	return Info{
		Target:       s.target,
		Extra:        s.extra,
		HasRead:      s.onRead != nil,
		HasWrite:     s.onWrite != nil,
		PendingRead:  s.pendingRead,
		PendingWrite: s.pendingWrite,
		Stale:        s.stale,
	}, true
}

// Targets lists the currently registered sources.
func (c *Contexts) Targets() []Source {
	out := make([]Source, 0, len(c.states))
	for _, s := range c.states {
		out = append(out, s.target)
	}
	return out
}
