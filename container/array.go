// Copyright 2025 The Stockpile Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package container

import "fmt"

// arrayMinCapacity is the smallest buffer an Array will ever hold. Shrinking
// never goes below the capacity the Array was created with.
const arrayMinCapacity = 4

// Array is a growable ordered sequence backed by a contiguous buffer with
// explicit size and capacity management. The capacity doubles when an append
// finds the buffer full and halves when a removal leaves the buffer at most a
// quarter full, so appends are amortized O(1). Indexing follows list
// conventions: negative indices count from the end.
//
// An Array is NOT goroutine-safe.
type Array[T comparable] struct {
	// buf is the owned backing buffer; len(buf) is the capacity. Every slot
	// below size holds a live element, slots at or above size are zeroed so
	// the GC can reclaim what they referenced.
	buf []T
	// size is the number of live elements, 0 <= size <= len(buf).
	size int
	// minCap is the initial capacity, the floor for shrinking.
	minCap int
}

// NewArray constructs an Array holding the given values in order.
func NewArray[T comparable](values ...T) *Array[T] {
	a := NewArrayWithCapacity[T](len(values))
	a.Extend(values...)
	return a
}

// NewArrayWithCapacity constructs an empty Array with the given initial
// capacity. Non-positive capacities are normalized up to a small minimum.
func NewArrayWithCapacity[T comparable](capacity int) *Array[T] {
	if capacity < arrayMinCapacity {
		capacity = arrayMinCapacity
	}
	return &Array[T]{
		buf:    make([]T, capacity),
		minCap: capacity,
	}
}

// resize replaces the backing buffer with one of newCapacity slots, copying
// the live elements across. newCapacity must be >= size.
func (a *Array[T]) resize(newCapacity int) {
	newBuf := make([]T, newCapacity)
	copy(newBuf, a.buf[:a.size])
	a.buf = newBuf
}

// growIfFull doubles the capacity when the buffer is full.
func (a *Array[T]) growIfFull() {
	if a.size == len(a.buf) {
		a.resize(2 * len(a.buf))
	}
}

// maybeShrink halves the capacity when the Array is at most a quarter full,
// never dropping below the initial capacity.
func (a *Array[T]) maybeShrink() {
	if c := len(a.buf); c > a.minCap && a.size <= c/4 {
		half := c / 2
		if half < a.minCap {
			half = a.minCap
		}
		a.resize(half)
	}
}

// normalizeIndex maps negative indices and validates bounds, returning the
// non-negative index in [0, size).
func (a *Array[T]) normalizeIndex(idx int) (int, error) {
	i := idx
	if i < 0 {
		i += a.size
	}
	if i < 0 || i >= a.size {
		return 0, withIndex(ErrIndexOutOfRange, idx, a.size)
	}
	return i, nil
}

// Len returns the number of stored elements.
func (a *Array[T]) Len() int {
	return a.size
}

// Cap returns the current capacity of the backing buffer.
func (a *Array[T]) Cap() int {
	return len(a.buf)
}

// Append adds value at the end. Amortized O(1).
func (a *Array[T]) Append(value T) {
	a.growIfFull()
	a.buf[a.size] = value
	a.size++
	a.checkInvariants()
}

// Extend appends each value in order.
func (a *Array[T]) Extend(values ...T) {
	for _, v := range values {
		a.Append(v)
	}
}

// Pop removes and returns the last element. It returns ErrEmptyContainer if
// the Array is empty.
func (a *Array[T]) Pop() (T, error) {
	return a.PopAt(-1)
}

// PopAt removes and returns the element at idx (negative indices allowed),
// shifting all trailing elements left by one: O(size-idx). It returns
// ErrEmptyContainer if the Array is empty and ErrIndexOutOfRange if the
// normalized index falls outside [0, size).
func (a *Array[T]) PopAt(idx int) (T, error) {
	var zero T
	if a.size == 0 {
		return zero, withOp(ErrEmptyContainer, "pop")
	}
	i, err := a.normalizeIndex(idx)
	if err != nil {
		return zero, err
	}
	v := a.buf[i]
	copy(a.buf[i:a.size-1], a.buf[i+1:a.size])
	a.buf[a.size-1] = zero
	a.size--
	a.maybeShrink()
	a.checkInvariants()
	return v, nil
}

// Remove deletes the first occurrence of value, preserving the order of the
// remaining elements: O(n). It returns ErrValueNotFound if value is absent.
func (a *Array[T]) Remove(value T) error {
	for i := 0; i < a.size; i++ {
		if a.buf[i] == value {
			_, err := a.PopAt(i)
			return err
		}
	}
	return ErrValueNotFound
}

// RemoveUnordered deletes the first occurrence of value by swapping the last
// element into its slot instead of shifting, giving O(1) removal after the
// O(n) scan. The relative order of the remaining elements is NOT preserved;
// use Remove when order matters. It returns ErrValueNotFound if value is
// absent.
func (a *Array[T]) RemoveUnordered(value T) error {
	var zero T
	for i := 0; i < a.size; i++ {
		if a.buf[i] == value {
			a.buf[i] = a.buf[a.size-1]
			a.buf[a.size-1] = zero
			a.size--
			a.maybeShrink()
			a.checkInvariants()
			return nil
		}
	}
	return ErrValueNotFound
}

// Get returns the element at idx, or def when the normalized index is out of
// range. It never fails. Negative indices count from the end.
func (a *Array[T]) Get(idx int, def T) T {
	i, err := a.normalizeIndex(idx)
	if err != nil {
		return def
	}
	return a.buf[i]
}

// At returns the element at idx (negative indices allowed), or
// ErrIndexOutOfRange.
func (a *Array[T]) At(idx int) (T, error) {
	i, err := a.normalizeIndex(idx)
	if err != nil {
		var zero T
		return zero, err
	}
	return a.buf[i], nil
}

// Set replaces the element at idx (negative indices allowed), or returns
// ErrIndexOutOfRange.
func (a *Array[T]) Set(idx int, value T) error {
	i, err := a.normalizeIndex(idx)
	if err != nil {
		return err
	}
	a.buf[i] = value
	return nil
}

// Index returns the index of the first occurrence of value, or
// ErrValueNotFound.
func (a *Array[T]) Index(value T) (int, error) {
	for i := 0; i < a.size; i++ {
		if a.buf[i] == value {
			return i, nil
		}
	}
	return 0, ErrValueNotFound
}

// Contains reports whether value is present: O(n) linear scan.
func (a *Array[T]) Contains(value T) bool {
	_, err := a.Index(value)
	return err == nil
}

// Equal reports whether a and other hold equal elements in the same order.
func (a *Array[T]) Equal(other *Array[T]) bool {
	if a.size != other.size {
		return false
	}
	for i := 0; i < a.size; i++ {
		if a.buf[i] != other.buf[i] {
			return false
		}
	}
	return true
}

// Clear removes all elements. The capacity is retained to avoid churn when
// the Array is reused.
func (a *Array[T]) Clear() {
	var zero T
	for i := 0; i < a.size; i++ {
		a.buf[i] = zero
	}
	a.size = 0
	a.checkInvariants()
}

// Slice returns a new Array holding the elements selected by [start:stop:step]
// under standard slice normalization: negative bounds count from the end,
// out-of-range bounds are clamped, and a negative step walks backwards. A
// zero step returns ErrInvalidArgument.
func (a *Array[T]) Slice(start, stop, step int) (*Array[T], error) {
	if step == 0 {
		return nil, withOp(ErrInvalidArgument, "slice step cannot be zero")
	}
	n := a.size
	clamp := func(v, lo, hi int) int {
		if v < 0 {
			v += n
			if v < lo {
				v = lo
			}
		} else if v > hi {
			v = hi
		}
		return v
	}

	out := NewArrayWithCapacity[T](0)
	if step > 0 {
		start = clamp(start, 0, n)
		stop = clamp(stop, 0, n)
		for i := start; i < stop; i += step {
			out.Append(a.buf[i])
		}
	} else {
		start = clamp(start, -1, n-1)
		stop = clamp(stop, -1, n-1)
		for i := start; i > stop; i += step {
			out.Append(a.buf[i])
		}
	}
	return out, nil
}

// All calls yield for each (index, element) pair front to back. If yield
// returns false, iteration stops.
func (a *Array[T]) All(yield func(i int, value T) bool) {
	for i := 0; i < a.size; i++ {
		if !yield(i, a.buf[i]) {
			return
		}
	}
}

// ToSlice returns a copy of the live elements as a plain slice.
func (a *Array[T]) ToSlice() []T {
	out := make([]T, a.size)
	copy(out, a.buf[:a.size])
	return out
}

// Convert materializes the Array as a []any, converting any element that
// implements Converter. It implements Converter.
func (a *Array[T]) Convert() any {
	out := make([]any, a.size)
	for i := 0; i < a.size; i++ {
		out[i] = convertValue(a.buf[i])
	}
	return out
}

func (a *Array[T]) checkInvariants() {
	if invariants {
		if a.size < 0 || a.size > len(a.buf) {
			panic(fmt.Sprintf("invariant failed: size=%d outside [0, %d]", a.size, len(a.buf)))
		}
		if len(a.buf) < a.minCap {
			panic(fmt.Sprintf("invariant failed: capacity=%d below minimum %d", len(a.buf), a.minCap))
		}
		var zero T
		for i := a.size; i < len(a.buf); i++ {
			if a.buf[i] != zero {
				panic(fmt.Sprintf("invariant failed: slot %d past size %d not cleared", i, a.size))
			}
		}
	}
}
