// SPDX-License-Identifier: MIT

// Package plugin implements a small host/extension mechanism. Extensions
// register a factory under a group and name at init time; hosts look them up
// by name across one or more groups and instantiate them with host-defined
// configuration.
package plugin

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrNotFound reports that no group held a plugin under the requested name.
var ErrNotFound = errors.New("plugin: not found")

// InitError wraps a failure inside a plugin factory.
type InitError struct {
	Group string
	Name  string
	Err   error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("plugin: init %s/%s: %v", e.Group, e.Name, e.Err)
}

func (e *InitError) Unwrap() error { return e.Err }

// Plugin is the contract between a host and its extensions. The meaning of
// input and the returned value are agreed per group.
type Plugin interface {
	Execute(ctx context.Context, input any) (any, error)
}

// Factory builds a plugin instance from host-supplied configuration.
type Factory func(config any) (Plugin, error)

// Func adapts a plain function to the Plugin interface.
type Func func(ctx context.Context, input any) (any, error)

func (f Func) Execute(ctx context.Context, input any) (any, error) {
	return f(ctx, input)
}

// Registry holds plugin factories grouped by purpose.
type Registry struct {
	mu     sync.RWMutex
	groups map[string]map[string]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{groups: map[string]map[string]Factory{}}
}

// Register adds a factory under group and name. It panics on a nil factory
// or a duplicate registration, mirroring database/sql.Register.
func (r *Registry) Register(group, name string, factory Factory) {
	if factory == nil {
		panic("plugin: Register factory is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.groups[group]
	if !ok {
		g = map[string]Factory{}
		r.groups[group] = g
	}
	if _, dup := g[name]; dup {
		panic(fmt.Sprintf("plugin: Register called twice for %s/%s", group, name))
	}
	g[name] = factory
}

// Load instantiates the plugin registered under group and name. A missing
// registration is reported as ErrNotFound, a failing factory as *InitError.
func (r *Registry) Load(group, name string, config any) (Plugin, error) {
	return r.LoadAny([]string{group}, name, config)
}

// LoadAny searches groups in order for a plugin with the given name and
// instantiates the first match.
func (r *Registry) LoadAny(groups []string, name string, config any) (Plugin, error) {
	r.mu.RLock()
	var (
		factory Factory
		group   string
	)
	for _, g := range groups {
		if f, ok := r.groups[g][name]; ok {
			factory, group = f, g
			break
		}
	}
	r.mu.RUnlock()

	if factory == nil {
		return nil, fmt.Errorf("%w: %q in groups %v", ErrNotFound, name, groups)
	}
	p, err := factory(config)
	if err != nil {
		return nil, &InitError{Group: group, Name: name, Err: err}
	}
	return p, nil
}

// Names lists the plugins registered under group, sorted.
func (r *Registry) Names(group string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.groups[group]))
	for name := range r.groups[group] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var defaultRegistry = NewRegistry()

// Register adds a factory to the default registry.
func Register(group, name string, factory Factory) {
	defaultRegistry.Register(group, name, factory)
}

// Load instantiates a plugin from the default registry.
func Load(group, name string, config any) (Plugin, error) {
	return defaultRegistry.Load(group, name, config)
}

// LoadAny searches several groups of the default registry.
func LoadAny(groups []string, name string, config any) (Plugin, error) {
	return defaultRegistry.LoadAny(groups, name, config)
}

// Names lists the default registry's plugins under group.
func Names(group string) []string {
	return defaultRegistry.Names(group)
}
