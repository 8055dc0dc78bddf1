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

import (
	"cmp"
	"fmt"
)

// Heap is a binary min-heap over an array-encoded complete binary tree:
// node i's children live at 2i+1 and 2i+2, and no element is smaller than
// its parent under the heap's less function. Push and Pop are O(log n);
// bulk construction via Heapify is O(n).
//
// Heap operations are implemented directly rather than through
// container/heap to avoid the interface indirection on every sift step.
//
// A Heap is NOT goroutine-safe.
type Heap[T any] struct {
	// data is the owned backing array, a valid heap at all times.
	data []T
	less func(a, b T) bool
}

// NewHeap constructs an empty min-heap ordered by <.
func NewHeap[T cmp.Ordered]() *Heap[T] {
	return NewHeapFunc[T](cmp.Less[T])
}

// NewHeapFunc constructs an empty min-heap ordered by less. Ties broken by
// less reporting false both ways keep their insertion-dependent positions.
func NewHeapFunc[T any](less func(a, b T) bool) *Heap[T] {
	return &Heap[T]{less: less}
}

// Heapify bulk-builds a heap from values in O(n) by sifting down every
// internal node from the last parent back to the root - strictly faster than
// n sequential pushes. The input slice is copied, not aliased.
func Heapify[T cmp.Ordered](values []T) *Heap[T] {
	return HeapifyFunc(values, cmp.Less[T])
}

// HeapifyFunc is Heapify with an explicit less function.
func HeapifyFunc[T any](values []T, less func(a, b T) bool) *Heap[T] {
	h := &Heap[T]{
		data: append([]T(nil), values...),
		less: less,
	}
	for i := len(h.data)/2 - 1; i >= 0; i-- {
		h.siftDown(i)
	}
	h.checkInvariants()
	return h
}

// siftUp swaps the element at idx toward the root while it is smaller than
// its parent.
func (h *Heap[T]) siftUp(idx int) {
	for idx > 0 {
		parent := (idx - 1) / 2
		if !h.less(h.data[idx], h.data[parent]) {
			break
		}
		h.data[parent], h.data[idx] = h.data[idx], h.data[parent]
		idx = parent
	}
}

// siftDown swaps the element at idx with the smaller of its children while it
// violates the heap property.
func (h *Heap[T]) siftDown(idx int) {
	n := len(h.data)
	for {
		left, right := 2*idx+1, 2*idx+2
		smallest := idx
		if left < n && h.less(h.data[left], h.data[smallest]) {
			smallest = left
		}
		if right < n && h.less(h.data[right], h.data[smallest]) {
			smallest = right
		}
		if smallest == idx {
			return
		}
		h.data[idx], h.data[smallest] = h.data[smallest], h.data[idx]
		idx = smallest
	}
}

// Push adds item to the heap: O(log n).
func (h *Heap[T]) Push(item T) {
	h.data = append(h.data, item)
	h.siftUp(len(h.data) - 1)
	h.checkInvariants()
}

// Pop removes and returns the minimum element. It returns ErrEmptyContainer
// if the heap is empty.
func (h *Heap[T]) Pop() (T, error) {
	var zero T
	if len(h.data) == 0 {
		return zero, withOp(ErrEmptyContainer, "pop")
	}
	top := h.data[0]
	n := len(h.data) - 1
	last := h.data[n]
	h.data[n] = zero
	h.data = h.data[:n]
	if n > 0 {
		h.data[0] = last
		h.siftDown(0)
	}
	h.checkInvariants()
	return top, nil
}

// Peek returns the minimum element without removing it, with ok=false if the
// heap is empty. O(1).
func (h *Heap[T]) Peek() (item T, ok bool) {
	if len(h.data) == 0 {
		return item, false
	}
	return h.data[0], true
}

// Replace pops the minimum and pushes item in a single sift-down pass,
// returning the old minimum. It returns ErrEmptyContainer if the heap is
// empty.
func (h *Heap[T]) Replace(item T) (T, error) {
	var zero T
	if len(h.data) == 0 {
		return zero, withOp(ErrEmptyContainer, "replace")
	}
	top := h.data[0]
	h.data[0] = item
	h.siftDown(0)
	h.checkInvariants()
	return top, nil
}

// PushPop pushes item and pops the minimum in a single O(log n) operation,
// returning the smaller of item and the previous contents. When item is not
// larger than the current root the heap is left untouched and item comes
// straight back, avoiding a wasted push+pop.
func (h *Heap[T]) PushPop(item T) T {
	if len(h.data) > 0 && h.less(h.data[0], item) {
		item, h.data[0] = h.data[0], item
		h.siftDown(0)
		h.checkInvariants()
	}
	return item
}

// Len returns the number of elements in the heap.
func (h *Heap[T]) Len() int {
	return len(h.data)
}

// ToSlice returns a copy of the backing array in heap order, not sorted
// order.
func (h *Heap[T]) ToSlice() []T {
	return append([]T(nil), h.data...)
}

// Convert materializes the backing array as a []any, converting any element
// that implements Converter. It implements Converter.
func (h *Heap[T]) Convert() any {
	out := make([]any, len(h.data))
	for i, v := range h.data {
		out[i] = convertValue(v)
	}
	return out
}

func (h *Heap[T]) checkInvariants() {
	if invariants {
		for i := 1; i < len(h.data); i++ {
			parent := (i - 1) / 2
			if h.less(h.data[i], h.data[parent]) {
				panic(fmt.Sprintf("invariant failed: data[%d] smaller than its parent data[%d]", i, parent))
			}
		}
	}
}
