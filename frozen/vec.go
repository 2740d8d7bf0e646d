// Package frozen provides a fixed-capacity, append-only collection. It is the
// storage substrate for the executable state graph: slots are written exactly
// once by Push and never moved, overwritten, or removed afterwards, so
// pointers handed out by Get and At stay valid for the life of the
// collection, even while more elements are appended.
//
// A Vec must only be mutated from a single goroutine. Interleaving Push and
// reads from that same goroutine is well-defined: a reader observes exactly
// the elements pushed before the read.
package frozen

import (
	"errors"
	"log"
)

// ErrFull is returned by Push when the collection is at capacity. The
// rejected element is left untouched in the caller's hands.
var ErrFull = errors.New("frozen: collection is at capacity")

// A Vec is an append-only collection with a capacity fixed at construction.
// The backing array is allocated once and never reallocated.
type Vec[T any] struct {
	slots []T
	len   int
}

// NewVec creates an empty Vec that can hold at most capacity elements.
func NewVec[T any](capacity int) *Vec[T] {
	if capacity < 0 {
		log.Panic("capacity cannot be negative")
	}

	return &Vec[T]{slots: make([]T, capacity)}
}

// Push appends an element. It returns ErrFull, without modifying the
// collection, if the capacity is already reached.
func (v *Vec[T]) Push(item T) error {
	if v.len >= len(v.slots) {
		return ErrFull
	}

	v.slots[v.len] = item
	v.len++

	return nil
}

// Get returns a pointer to the element at index i, or nil if i is out of
// range. The pointer stays valid across later pushes.
func (v *Vec[T]) Get(i int) *T {
	if i < 0 || i >= v.len {
		return nil
	}

	return &v.slots[i]
}

// At returns a pointer to the element at index i. It panics if i is out of
// range.
func (v *Vec[T]) At(i int) *T {
	if i < 0 || i >= v.len {
		log.Panicf("index %d out of range [0, %d)", i, v.len)
	}

	return &v.slots[i]
}

// Len returns the number of elements pushed so far.
func (v *Vec[T]) Len() int {
	return v.len
}

// Capacity returns the fixed capacity of the collection.
func (v *Vec[T]) Capacity() int {
	return len(v.slots)
}

// IsEmpty reports whether no element has been pushed yet.
func (v *Vec[T]) IsEmpty() bool {
	return v.len == 0
}

// IsFull reports whether the collection is at capacity.
func (v *Vec[T]) IsFull() bool {
	return v.len == len(v.slots)
}

// Each calls f for every element currently present, in insertion order.
// Elements pushed by f itself are visited too, once the iteration reaches
// their index.
func (v *Vec[T]) Each(f func(*T)) {
	for i := 0; i < v.len; i++ {
		f(&v.slots[i])
	}
}
