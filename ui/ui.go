// SPDX-License-Identifier: MIT

// Package ui abstracts how command line tools present output. Renderers
// register themselves by name so hosts can pick a frontend at startup
// without linking against every implementation.
package ui

import (
	"fmt"
	"io"
	"os"
	"sort"
	"sync"
)

// Message is a deferred format string; rendering resolves it.
type Message struct {
	Format string
	Args   []any
}

// Msg builds a Message.
func Msg(format string, args ...any) Message {
	return Message{Format: format, Args: args}
}

func (m Message) String() string {
	if len(m.Args) == 0 {
		return m.Format
	}
	return fmt.Sprintf(m.Format, m.Args...)
}

// Renderer presents output to the user.
type Renderer interface {
	// Render writes a regular message.
	Render(m Message)
	// Error writes an error message.
	Error(m Message)
}

// Console renders to a pair of writers, stdout and stderr by default.
type Console struct {
	Out io.Writer
	Err io.Writer
}

// NewConsole returns a Console bound to the process streams.
func NewConsole() *Console {
	return &Console{Out: os.Stdout, Err: os.Stderr}
}

func (c *Console) Render(m Message) { fmt.Fprintln(c.Out, m) }
func (c *Console) Error(m Message)  { fmt.Fprintln(c.Err, m) }

var (
	mu          sync.RWMutex
	renderers   = map[string]func() Renderer{}
	defaultName string
)

// Register adds a renderer constructor under name. When asDefault is set the
// name also becomes the default. Later registrations under the same name
// win.
func Register(name string, create func() Renderer, asDefault bool) {
	mu.Lock()
	defer mu.Unlock()
	renderers[name] = create
	if asDefault {
		defaultName = name
	}
}

// Get returns the renderer registered under name, or nil.
func Get(name string) Renderer {
	mu.RLock()
	create := renderers[name]
	mu.RUnlock()
	if create == nil {
		return nil
	}
	return create()
}

// SetDefault switches the default renderer name.
func SetDefault(name string) {
	mu.Lock()
	defaultName = name
	mu.Unlock()
}

// Default returns the default renderer, falling back to a Console when
// nothing suitable was registered.
func Default() Renderer {
	mu.RLock()
	create := renderers[defaultName]
	mu.RUnlock()
	if create == nil {
		return NewConsole()
	}
	return create()
}

// Available lists the registered renderer names, sorted.
func Available() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(renderers))
	for name := range renderers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
