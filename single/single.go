// SPDX-License-Identifier: MIT

// Package single provides lazily initialised, process-wide singletons.
package single

import "sync"

// Holder hands out exactly one instance of T, constructed on first use.
// All methods are safe for concurrent use.
type Holder[T any] struct {
	once sync.Once
	init func() T
	v    T
}

// New returns a Holder that builds its instance with init on the first call
// to Get. init runs at most once, even under concurrent access.
func New[T any](init func() T) *Holder[T] {
	return &Holder[T]{init: init}
}

// Get returns the singleton instance, constructing it on first call.
func (h *Holder[T]) Get() T {
	h.once.Do(func() {
		h.v = h.init()
		h.init = nil
	})
	return h.v
}

// Instance is a readability alias for Get.
func (h *Holder[T]) Instance() T { return h.Get() }
