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
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

func drain[T any](t *testing.T, h *Heap[T]) []T {
	var out []T
	for h.Len() > 0 {
		v, err := h.Pop()
		require.NoError(t, err)
		out = append(out, v)
	}
	return out
}

func TestHeapBasic(t *testing.T) {
	h := NewHeap[int]()
	for _, v := range []int{5, 2, 9, 1} {
		h.Push(v)
	}

	top, ok := h.Peek()
	require.True(t, ok)
	require.Equal(t, 1, top)
	require.Equal(t, 4, h.Len())

	require.Equal(t, []int{1, 2, 5, 9}, drain(t, h))

	_, ok = h.Peek()
	require.False(t, ok)
	_, err := h.Pop()
	require.ErrorIs(t, err, ErrEmptyContainer)
}

func TestHeapRandomOrdering(t *testing.T) {
	h := NewHeap[int]()
	e := make([]int, 1000)
	for i := range e {
		e[i] = rand.Intn(10000)
		h.Push(e[i])
	}

	// Pops come out in non-decreasing order regardless of push order.
	got := drain(t, h)
	sort.Ints(e)
	require.Equal(t, e, got)
}

func TestHeapify(t *testing.T) {
	values := make([]int, 500)
	for i := range values {
		values[i] = rand.Intn(1000)
	}

	// Bulk construction and n sequential pushes yield the same pop
	// sequence.
	a := Heapify(values)
	b := NewHeap[int]()
	for _, v := range values {
		b.Push(v)
	}
	require.Equal(t, drain(t, a), drain(t, b))

	// The input slice is copied, not aliased.
	c := Heapify(values)
	values[0] = -1
	top, ok := c.Peek()
	require.True(t, ok)
	require.NotEqual(t, -1, top)
}

func TestHeapReplace(t *testing.T) {
	h := Heapify([]int{3, 7, 5})

	old, err := h.Replace(10)
	require.NoError(t, err)
	require.Equal(t, 3, old)
	require.Equal(t, 3, h.Len())
	require.Equal(t, []int{5, 7, 10}, drain(t, h))

	_, err = h.Replace(1)
	require.ErrorIs(t, err, ErrEmptyContainer)
}

func TestHeapPushPop(t *testing.T) {
	// Empty heap: the item comes straight back and the heap stays empty.
	h := NewHeap[int]()
	require.Equal(t, 7, h.PushPop(7))
	require.Equal(t, 0, h.Len())

	// Item smaller than the root: no mutation.
	h = Heapify([]int{5, 8, 6})
	require.Equal(t, 2, h.PushPop(2))
	require.Equal(t, []int{5, 6, 8}, drain(t, h))

	// Item larger than the root: the old root comes back, the item stays.
	h = Heapify([]int{5, 8, 6})
	require.Equal(t, 5, h.PushPop(9))
	require.Equal(t, []int{6, 8, 9}, drain(t, h))
}

func TestHeapFunc(t *testing.T) {
	type task struct {
		priority int
		name     string
	}
	// Equal priorities break ties by name so the pop order is total.
	h := NewHeapFunc(func(a, b task) bool {
		if a.priority != b.priority {
			return a.priority < b.priority
		}
		return a.name < b.name
	})

	h.Push(task{2, "b"})
	h.Push(task{1, "z"})
	h.Push(task{2, "a"})
	h.Push(task{1, "y"})

	require.Equal(t, []task{
		{1, "y"}, {1, "z"}, {2, "a"}, {2, "b"},
	}, drain(t, h))
}

func TestHeapToSliceConvert(t *testing.T) {
	h := Heapify([]int{4, 1, 3})

	// ToSlice is heap order: the root first, the rest a valid heap layout.
	s := h.ToSlice()
	require.Len(t, s, 3)
	require.Equal(t, 1, s[0])

	// The copy does not alias the heap.
	s[0] = 100
	top, _ := h.Peek()
	require.Equal(t, 1, top)

	out, ok := h.Convert().([]any)
	require.True(t, ok)
	require.Len(t, out, 3)
	require.Equal(t, 1, out[0])
}
