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
	"fmt"
	"math/rand"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
)

func TestArrayAppendGet(t *testing.T) {
	const count = 100

	a := NewArray[int]()
	for i := 0; i < count; i++ {
		a.Append(i)
		require.Equal(t, i+1, a.Len())
	}

	// Every valid index, positive and negative, behaves like a builtin
	// slice indexed from the front or the back.
	for i := 0; i < count; i++ {
		require.Equal(t, i, a.Get(i, -1))
		require.Equal(t, count+(i-count), a.Get(i-count, -1))
		v, err := a.At(i)
		require.NoError(t, err)
		require.Equal(t, i, v)
	}
	require.Equal(t, -1, a.Get(count, -1))
	require.Equal(t, -1, a.Get(-count-1, -1))
}

func TestArrayGetDefault(t *testing.T) {
	a := NewArray(10, 20, 30, 40)
	require.Equal(t, 40, a.Get(-1, 0))
	require.Equal(t, 10, a.Get(-4, 0))
	require.Equal(t, 99, a.Get(4, 99))
	require.Equal(t, 99, a.Get(-5, 99))
}

func TestArrayGrowShrink(t *testing.T) {
	a := NewArray[int]()
	require.Equal(t, arrayMinCapacity, a.Cap())

	// Capacity stays a power-of-two multiple of the initial capacity along
	// the doubling path.
	for i := 0; i < 100; i++ {
		a.Append(i)
		c := a.Cap()
		require.LessOrEqual(t, a.Len(), c)
		require.Zero(t, c&(c-1), "capacity %d not a power of two", c)
	}
	require.Equal(t, 128, a.Cap())

	// Pops halve the capacity at quarter-full, down to the initial
	// capacity but never below it.
	for a.Len() > 0 {
		_, err := a.Pop()
		require.NoError(t, err)
		c := a.Cap()
		require.LessOrEqual(t, a.Len(), c)
		require.Zero(t, c&(c-1))
		require.GreaterOrEqual(t, c, arrayMinCapacity)
	}
	require.Equal(t, arrayMinCapacity, a.Cap())
}

func TestArrayPop(t *testing.T) {
	a := NewArray(1, 2, 3, 4)

	v, err := a.PopAt(1)
	require.NoError(t, err)
	require.Equal(t, 2, v)
	require.Equal(t, []int{1, 3, 4}, a.ToSlice())

	v, err = a.PopAt(-3)
	require.NoError(t, err)
	require.Equal(t, 1, v)
	require.Equal(t, []int{3, 4}, a.ToSlice())

	v, err = a.Pop()
	require.NoError(t, err)
	require.Equal(t, 4, v)

	_, err = a.PopAt(1)
	require.ErrorIs(t, err, ErrIndexOutOfRange)
	_, err = a.PopAt(-2)
	require.ErrorIs(t, err, ErrIndexOutOfRange)

	_, err = a.Pop()
	require.NoError(t, err)
	_, err = a.Pop()
	require.ErrorIs(t, err, ErrEmptyContainer)
}

func TestArrayRemove(t *testing.T) {
	a := NewArray(5, 6, 7, 6)
	require.NoError(t, a.Remove(6))
	require.Equal(t, []int{5, 7, 6}, a.ToSlice())
	require.ErrorIs(t, a.Remove(42), ErrValueNotFound)
}

func TestArrayRemoveUnordered(t *testing.T) {
	a := NewArray(1, 2, 3, 4)
	// The last element is swapped into the removed slot, so relative order
	// is not preserved.
	require.NoError(t, a.RemoveUnordered(2))
	require.Equal(t, []int{1, 4, 3}, a.ToSlice())
	require.ErrorIs(t, a.RemoveUnordered(42), ErrValueNotFound)
}

func TestArrayIndexContains(t *testing.T) {
	a := NewArray("x", "y", "x")

	i, err := a.Index("x")
	require.NoError(t, err)
	require.Equal(t, 0, i)

	_, err = a.Index("z")
	require.ErrorIs(t, err, ErrValueNotFound)

	require.True(t, a.Contains("y"))
	require.False(t, a.Contains("z"))
}

func TestArraySlice(t *testing.T) {
	base := NewArray(0, 1, 2, 3, 4, 5, 6, 7, 8, 9)

	testCases := []struct {
		start, stop, step int
		expected          []int
	}{
		{0, 10, 1, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}},
		{2, 5, 1, []int{2, 3, 4}},
		{-3, 10, 1, []int{7, 8, 9}},
		{0, 10, 3, []int{0, 3, 6, 9}},
		{5, 100, 1, []int{5, 6, 7, 8, 9}},
		{9, -1, -1, nil},
		{-1, -11, -1, []int{9, 8, 7, 6, 5, 4, 3, 2, 1, 0}},
		{8, 2, -2, []int{8, 6, 4}},
		{3, 3, 1, nil},
	}
	for _, c := range testCases {
		t.Run(fmt.Sprintf("%d:%d:%d", c.start, c.stop, c.step), func(t *testing.T) {
			out, err := base.Slice(c.start, c.stop, c.step)
			require.NoError(t, err)
			require.Equal(t, len(c.expected), out.Len())
			require.Equal(t, append([]int(nil), c.expected...), append([]int(nil), out.ToSlice()...))
		})
	}

	_, err := base.Slice(0, 10, 0)
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestArrayEqualClear(t *testing.T) {
	a := NewArray(1, 2, 3)
	b := NewArray(1, 2, 3)
	require.True(t, a.Equal(b))

	require.NoError(t, b.Set(-1, 4))
	require.False(t, a.Equal(b))
	require.False(t, a.Equal(NewArray(1, 2)))

	c := a.Cap()
	a.Clear()
	require.Equal(t, 0, a.Len())
	require.Equal(t, c, a.Cap())
	a.All(func(int, int) bool {
		require.Fail(t, "should not iterate")
		return true
	})
}

func TestArrayExtendAll(t *testing.T) {
	a := NewArray[int]()
	a.Extend(1, 2)
	a.Extend(3)

	var got []int
	a.All(func(i, v int) bool {
		require.Equal(t, len(got), i)
		got = append(got, v)
		return true
	})
	require.Equal(t, []int{1, 2, 3}, got)

	// Early stop.
	var n int
	a.All(func(_, _ int) bool {
		n++
		return false
	})
	require.Equal(t, 1, n)
}

func TestArrayConvert(t *testing.T) {
	a := NewArray(1, 2, 3)
	require.Equal(t, []any{1, 2, 3}, a.Convert())

	// Conversion recurses into elements that implement Converter.
	nested := NewArray(NewArray(1), NewArray(2, 3))
	require.Equal(t, []any{[]any{1}, []any{2, 3}}, nested.Convert())
}

func TestArrayRandom(t *testing.T) {
	a := NewArray[int]()
	var e []int

	for i := 0; i < 10000; i++ {
		switch r := rand.Float64(); {
		case r < 0.45: // 45% appends
			v := rand.Intn(1000)
			a.Append(v)
			e = append(e, v)
		case r < 0.65: // 20% pops at random (possibly negative) index
			if len(e) == 0 {
				_, err := a.Pop()
				require.ErrorIs(t, err, ErrEmptyContainer)
				break
			}
			idx := rand.Intn(2*len(e)) - len(e)
			v, err := a.PopAt(idx)
			require.NoError(t, err)
			j := idx
			if j < 0 {
				j += len(e)
			}
			require.Equal(t, e[j], v)
			e = append(e[:j], e[j+1:]...)
		case r < 0.75: // 10% removes
			if len(e) == 0 {
				break
			}
			v := e[rand.Intn(len(e))]
			require.NoError(t, a.Remove(v))
			for j := range e {
				if e[j] == v {
					e = append(e[:j], e[j+1:]...)
					break
				}
			}
		case r < 0.98: // 23% lookups
			idx := rand.Intn(2*(len(e)+1)) - (len(e) + 1)
			j := idx
			if j < 0 {
				j += len(e)
			}
			if j < 0 || j >= len(e) {
				require.Equal(t, -1, a.Get(idx, -1))
			} else {
				require.Equal(t, e[j], a.Get(idx, -1))
			}
		default: // 2% clears
			a.Clear()
			e = e[:0]
		}

		require.Equal(t, len(e), a.Len())
		require.LessOrEqual(t, a.Len(), a.Cap())
	}
	require.Equal(t, append([]int{}, e...), append([]int{}, a.ToSlice()...))
}

func TestArrayErrorDetail(t *testing.T) {
	a := NewArray(1)
	_, err := a.PopAt(7)
	require.ErrorIs(t, err, ErrIndexOutOfRange)
	require.True(t, errors.Is(err, ErrIndexOutOfRange))
	require.Contains(t, err.Error(), "index 7")
}
