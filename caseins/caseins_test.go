// SPDX-License-Identifier: MIT

package caseins

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMap_CaseInsensitiveLookup(t *testing.T) {
	m := New[string]()
	m.Set("PATH", "A")

	v, ok := m.Get("path")
	require.True(t, ok)
	assert.Equal(t, "A", v)

	v, ok = m.Get("PaTh")
	require.True(t, ok)
	assert.Equal(t, "A", v)

	assert.True(t, m.Has("Path"))
	assert.False(t, m.Has("HOME"))
}

func TestMap_LastWriteWinsKeyForm(t *testing.T) {
	m := New[string]()
	m.Set("PATH", "A")
	m.Set("Path", "B")
	m.Set("Home", "C")

	v, ok := m.Get("path")
	require.True(t, ok)
	assert.Equal(t, "B", v)

	assert.Equal(t, 2, m.Len())
	assert.ElementsMatch(t, []string{"Path", "Home"}, m.Keys())
}

func TestMap_SeedMapsApplyInOrder(t *testing.T) {
	m := New(
		map[string]string{"PATH": "A"},
		map[string]string{"Path": "B"},
		map[string]string{"Home": "C"},
	)

	v, _ := m.Get("path")
	assert.Equal(t, "B", v)
	assert.Equal(t, 2, m.Len())
}

func TestMap_Delete(t *testing.T) {
	m := New[int]()
	m.Set("Key", 1)

	require.True(t, m.Delete("KEY"))
	assert.False(t, m.Has("key"))
	assert.Equal(t, 0, m.Len())

	assert.False(t, m.Delete("key"), "deleting a missing key reports false")
}

func TestMap_GetDefault(t *testing.T) {
	m := New[int]()
	m.Set("answer", 42)

	assert.Equal(t, 42, m.GetDefault("ANSWER", 0))
	assert.Equal(t, 7, m.GetDefault("missing", 7))
}

func TestMap_UnicodeFolding(t *testing.T) {
	m := New[string]()
	m.Set("Straße", "street")

	// Case folding maps ß and SS to the same form.
	v, ok := m.Get("STRASSE")
	require.True(t, ok)
	assert.Equal(t, "street", v)
}

func TestMap_CloneIsIndependent(t *testing.T) {
	m := New[string]()
	m.Set("a", "1")

	c := m.Clone()
	c.Set("b", "2")

	assert.Equal(t, 1, m.Len())
	assert.Equal(t, 2, c.Len())

	v, ok := c.Get("A")
	require.True(t, ok)
	assert.Equal(t, "1", v)
}

func TestMap_Each(t *testing.T) {
	m := New[int]()
	m.Set("a", 1)
	m.Set("b", 2)
	m.Set("c", 3)

	seen := map[string]int{}
	m.Each(func(k string, v int) bool {
		seen[k] = v
		return true
	})
	assert.Len(t, seen, 3)

	count := 0
	m.Each(func(string, int) bool {
		count++
		return false
	})
	assert.Equal(t, 1, count, "Each stops when fn returns false")
}
