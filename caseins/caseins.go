// SPDX-License-Identifier: MIT

// Package caseins provides a map with case-insensitive string keys.
package caseins

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
)

// fold normalizes a key using Unicode case folding, giving consistent
// case-insensitive behaviour across languages (not just ASCII). A Caser
// carries transform state, so each call gets its own.
func fold(key string) string {
	return cases.Fold().String(key)
}

// Map is a map keyed by case-insensitive strings. Lookups treat "PATH",
// "Path" and "path" as the same logical key. The key form of the last write
// wins: after overwriting "PATH" with "Path", iteration yields "Path".
//
// The zero value is not usable; construct with New.
type Map[V any] struct {
	data map[string]V      // original key -> value
	keys map[string]string // folded key -> original key
}

// New returns an empty Map, optionally seeded from the given maps in order.
// Later maps overwrite earlier entries that share a logical key.
func New[V any](seed ...map[string]V) *Map[V] {
	m := &Map[V]{
		data: make(map[string]V),
		keys: make(map[string]string),
	}
	for _, s := range seed {
		for k, v := range s {
			m.Set(k, v)
		}
	}
	return m
}

// Set stores value under key. An existing entry with the same logical key is
// replaced, and the stored key form becomes the one supplied here.
func (m *Map[V]) Set(key string, value V) {
	fk := fold(key)
	if orig, ok := m.keys[fk]; ok {
		delete(m.data, orig)
	}
	m.data[key] = value
	m.keys[fk] = key
}

// Get returns the value for key and whether it was present.
func (m *Map[V]) Get(key string) (V, bool) {
	orig, ok := m.keys[fold(key)]
	if !ok {
		var zero V
		return zero, false
	}
	v, ok := m.data[orig]
	return v, ok
}

// GetDefault returns the value for key, or def when absent.
func (m *Map[V]) GetDefault(key string, def V) V {
	if v, ok := m.Get(key); ok {
		return v
	}
	return def
}

// Has reports whether key is present.
func (m *Map[V]) Has(key string) bool {
	_, ok := m.keys[fold(key)]
	return ok
}

// Delete removes key and reports whether an entry was removed.
func (m *Map[V]) Delete(key string) bool {
	fk := fold(key)
	orig, ok := m.keys[fk]
	if !ok {
		return false
	}
	delete(m.keys, fk)
	delete(m.data, orig)
	return true
}

// Len returns the number of entries.
func (m *Map[V]) Len() int {
	return len(m.data)
}

// Keys returns the stored key forms. Order is unspecified.
func (m *Map[V]) Keys() []string {
	out := make([]string, 0, len(m.data))
	for k := range m.data {
		out = append(out, k)
	}
	return out
}

// Values returns all values. Order is unspecified.
func (m *Map[V]) Values() []V {
	out := make([]V, 0, len(m.data))
	for _, v := range m.data {
		out = append(out, v)
	}
	return out
}

// Each calls fn for every entry until fn returns false.
func (m *Map[V]) Each(fn func(key string, value V) bool) {
	for k, v := range m.data {
		if !fn(k, v) {
			return
		}
	}
}

// Clone returns a shallow copy of the map.
func (m *Map[V]) Clone() *Map[V] {
	out := New[V]()
	for k, v := range m.data {
		out.data[k] = v
	}
	for fk, k := range m.keys {
		out.keys[fk] = k
	}
	return out
}

func (m *Map[V]) String() string {
	var b strings.Builder
	b.WriteString("caseins.Map{")
	first := true
	for k, v := range m.data {
		if !first {
			b.WriteString(", ")
		}
		first = false
		fmt.Fprintf(&b, "%q: %v", k, v)
	}
	b.WriteString("}")
	return b.String()
}
