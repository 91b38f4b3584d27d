// SPDX-License-Identifier: MIT

// Package dlist implements a doubly linked list built around a sentinel
// node, with index access, node-level insertion and removal, and iterator
// support.
package dlist

import (
	"errors"
	"fmt"
	"iter"
	"strings"
)

var (
	// ErrIndex is returned for index operations outside [-Len, Len).
	ErrIndex = errors.New("dlist: index out of range")
	// ErrEmpty is returned when removing from an empty list.
	ErrEmpty = errors.New("dlist: list is empty")
)

// Node is a list element. A Node belongs to at most one List; after removal
// it is detached and must not be passed back to list operations.
type Node[T any] struct {
	Value T

	prev, next *Node[T]
	list       *List[T]
}

// Prev returns the previous node, or nil at the head or when detached.
func (n *Node[T]) Prev() *Node[T] {
	if n.list == nil || n.prev == &n.list.sentinel {
		return nil
	}
	return n.prev
}

// Next returns the next node, or nil at the tail or when detached.
func (n *Node[T]) Next() *Node[T] {
	if n.list == nil || n.next == &n.list.sentinel {
		return nil
	}
	return n.next
}

// List is a doubly linked list. The zero value is ready to use.
type List[T any] struct {
	sentinel Node[T]
	length   int
}

// New returns a list seeded with the given items in order.
func New[T any](items ...T) *List[T] {
	l := &List[T]{}
	l.lazyInit()
	for _, v := range items {
		l.PushTail(v)
	}
	return l
}

func (l *List[T]) lazyInit() {
	if l.sentinel.next == nil {
		l.sentinel.prev = &l.sentinel
		l.sentinel.next = &l.sentinel
		l.sentinel.list = l
	}
}

// Len returns the number of elements.
func (l *List[T]) Len() int { return l.length }

// Empty reports whether the list has no elements.
func (l *List[T]) Empty() bool { return l.length == 0 }

// PushHead inserts v at the front and returns its node.
func (l *List[T]) PushHead(v T) *Node[T] {
	l.lazyInit()
	return l.insertAfter(&l.sentinel, v)
}

// PushTail inserts v at the back and returns its node.
func (l *List[T]) PushTail(v T) *Node[T] {
	l.lazyInit()
	return l.insertBefore(&l.sentinel, v)
}

// ExtendHead pushes items onto the front one by one, so the last item ends
// up first.
func (l *List[T]) ExtendHead(items ...T) {
	for _, v := range items {
		l.PushHead(v)
	}
}

// ExtendTail appends items in order.
func (l *List[T]) ExtendTail(items ...T) {
	for _, v := range items {
		l.PushTail(v)
	}
}

// InsertBefore inserts v before node and returns the new node.
// It panics if node does not belong to this list.
func (l *List[T]) InsertBefore(node *Node[T], v T) *Node[T] {
	l.checkOwned(node)
	return l.insertBefore(node, v)
}

// InsertAfter inserts v after node and returns the new node.
// It panics if node does not belong to this list.
func (l *List[T]) InsertAfter(node *Node[T], v T) *Node[T] {
	l.checkOwned(node)
	return l.insertAfter(node, v)
}

// InsertAt inserts v before the element at index, which may be negative to
// count from the tail.
func (l *List[T]) InsertAt(index int, v T) (*Node[T], error) {
	node, err := l.NodeAt(index)
	if err != nil {
		return nil, err
	}
	return l.insertBefore(node, v), nil
}

// PopHead removes and returns the first element.
func (l *List[T]) PopHead() (T, error) {
	return l.pop(true)
}

// PopTail removes and returns the last element.
func (l *List[T]) PopTail() (T, error) {
	return l.pop(false)
}

func (l *List[T]) pop(first bool) (T, error) {
	if l.length == 0 {
		var zero T
		return zero, ErrEmpty
	}
	node := l.sentinel.prev
	if first {
		node = l.sentinel.next
	}
	return l.Remove(node), nil
}

// Remove detaches node from the list and returns its value.
// It panics if node does not belong to this list.
func (l *List[T]) Remove(node *Node[T]) T {
	l.checkOwned(node)
	node.prev.next = node.next
	node.next.prev = node.prev
	node.prev = nil
	node.next = nil
	node.list = nil
	l.length--
	return node.Value
}

// RemoveAt removes and returns the element at index.
func (l *List[T]) RemoveAt(index int) (T, error) {
	node, err := l.NodeAt(index)
	if err != nil {
		var zero T
		return zero, err
	}
	return l.Remove(node), nil
}

// Head returns the first element without removing it.
func (l *List[T]) Head() (T, bool) {
	if n := l.HeadNode(); n != nil {
		return n.Value, true
	}
	var zero T
	return zero, false
}

// Tail returns the last element without removing it.
func (l *List[T]) Tail() (T, bool) {
	if n := l.TailNode(); n != nil {
		return n.Value, true
	}
	var zero T
	return zero, false
}

// HeadNode returns the first node, or nil when empty.
func (l *List[T]) HeadNode() *Node[T] {
	if l.length == 0 {
		return nil
	}
	return l.sentinel.next
}

// TailNode returns the last node, or nil when empty.
func (l *List[T]) TailNode() *Node[T] {
	if l.length == 0 {
		return nil
	}
	return l.sentinel.prev
}

// At returns the element at index. Negative indexes count from the tail,
// so -1 is the last element.
func (l *List[T]) At(index int) (T, error) {
	node, err := l.NodeAt(index)
	if err != nil {
		var zero T
		return zero, err
	}
	return node.Value, nil
}

// SetAt replaces the element at index.
func (l *List[T]) SetAt(index int, v T) error {
	node, err := l.NodeAt(index)
	if err != nil {
		return err
	}
	node.Value = v
	return nil
}

// NodeAt returns the node at index, walking from whichever end is closer.
func (l *List[T]) NodeAt(index int) (*Node[T], error) {
	if index < 0 {
		index += l.length
	}
	if index < 0 || index >= l.length {
		return nil, fmt.Errorf("%w: %d", ErrIndex, index)
	}
	var node *Node[T]
	if index < l.length/2 {
		node = l.sentinel.next
		for i := 0; i < index; i++ {
			node = node.next
		}
	} else {
		node = l.sentinel.prev
		for i := 0; i < l.length-index-1; i++ {
			node = node.prev
		}
	}
	return node, nil
}

// IndexFunc returns the index of the first element matched by pred, or -1.
func (l *List[T]) IndexFunc(pred func(T) bool) int {
	i := 0
	for node := l.sentinel.next; node != nil && node != &l.sentinel; node = node.next {
		if pred(node.Value) {
			return i
		}
		i++
	}
	return -1
}

// Find returns the first node matched by pred, or nil.
func (l *List[T]) Find(pred func(T) bool) *Node[T] {
	for node := l.sentinel.next; node != nil && node != &l.sentinel; node = node.next {
		if pred(node.Value) {
			return node
		}
	}
	return nil
}

// All iterates elements from head to tail.
func (l *List[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for node := l.sentinel.next; node != nil && node != &l.sentinel; node = node.next {
			if !yield(node.Value) {
				return
			}
		}
	}
}

// Backward iterates elements from tail to head.
func (l *List[T]) Backward() iter.Seq[T] {
	return func(yield func(T) bool) {
		for node := l.sentinel.prev; node != nil && node != &l.sentinel; node = node.prev {
			if !yield(node.Value) {
				return
			}
		}
	}
}

// Nodes iterates nodes from head to tail. The current node may be removed
// during iteration; the walk continues from its former successor.
func (l *List[T]) Nodes() iter.Seq[*Node[T]] {
	return func(yield func(*Node[T]) bool) {
		node := l.sentinel.next
		for node != nil && node != &l.sentinel {
			next := node.next
			if !yield(node) {
				return
			}
			node = next
		}
	}
}

// Slice copies the elements into a new slice.
func (l *List[T]) Slice() []T {
	out := make([]T, 0, l.length)
	for v := range l.All() {
		out = append(out, v)
	}
	return out
}

// Cut returns a new list holding the elements in [from, to). Negative bounds
// count from the tail; out-of-range bounds are clamped like slice expressions
// on a full copy.
func (l *List[T]) Cut(from, to int) *List[T] {
	if from < 0 {
		from += l.length
	}
	if to < 0 {
		to += l.length
	}
	from = max(from, 0)
	to = min(to, l.length)
	out := New[T]()
	i := 0
	for v := range l.All() {
		if i >= to {
			break
		}
		if i >= from {
			out.PushTail(v)
		}
		i++
	}
	return out
}

// Clear detaches every node and resets the list.
func (l *List[T]) Clear() {
	l.lazyInit()
	node := l.sentinel.next
	for node != &l.sentinel {
		next := node.next
		node.prev = nil
		node.next = nil
		node.list = nil
		node = next
	}
	l.sentinel.next = &l.sentinel
	l.sentinel.prev = &l.sentinel
	l.length = 0
}

func (l *List[T]) String() string {
	var b strings.Builder
	b.WriteString("dlist.List[")
	first := true
	for v := range l.All() {
		if !first {
			b.WriteString(", ")
		}
		first = false
		fmt.Fprintf(&b, "%v", v)
	}
	b.WriteString("]")
	return b.String()
}

func (l *List[T]) insertBefore(node *Node[T], v T) *Node[T] {
	nn := &Node[T]{Value: v, prev: node.prev, next: node, list: l}
	node.prev.next = nn
	node.prev = nn
	l.length++
	return nn
}

func (l *List[T]) insertAfter(node *Node[T], v T) *Node[T] {
	nn := &Node[T]{Value: v, prev: node, next: node.next, list: l}
	node.next.prev = nn
	node.next = nn
	l.length++
	return nn
}

func (l *List[T]) checkOwned(node *Node[T]) {
	if node == nil || node.list != l {
		panic("dlist: node does not belong to this list")
	}
	if node == &l.sentinel {
		panic("dlist: cannot operate on sentinel node")
	}
}

// Index returns the index of the first element equal to v, or -1.
func Index[T comparable](l *List[T], v T) int {
	return l.IndexFunc(func(x T) bool { return x == v })
}

// Contains reports whether the list has an element equal to v.
func Contains[T comparable](l *List[T], v T) bool {
	return Index(l, v) >= 0
}

// Equal reports whether two lists hold equal elements in the same order.
func Equal[T comparable](a, b *List[T]) bool {
	if a.Len() != b.Len() {
		return false
	}
	bs := b.Slice()
	i := 0
	for v := range a.All() {
		if v != bs[i] {
			return false
		}
		i++
	}
	return true
}
