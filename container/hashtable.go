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

// Package container provides four generic single-threaded containers: a
// growable ordered sequence (Array), a separate-chaining hash table
// (HashTable) with its collision chain, a key/value facade over the table
// (Dict), and a binary min-heap (Heap).
//
// All four manage their backing storage explicitly - capacity doubling with
// full rehash for the table, geometric growth and optional shrink for the
// array - and surface errors synchronously to the caller without logging or
// retrying. None of them is goroutine-safe; callers needing concurrent access
// must wrap an instance in their own mutual exclusion.
package container

import (
	"fmt"
	"math"
	"unsafe"
)

const (
	// minTableCapacity is the floor applied to requested capacities.
	minTableCapacity = 4
	// defaultTableCapacity is used when no capacity is requested.
	defaultTableCapacity = 16
	// defaultLoadFactor is the default maximum ratio of entries to capacity.
	defaultLoadFactor = 0.75
)

// Pair is a (key, value) entry, used for bulk insertion and iteration
// materialization.
type Pair[K comparable, V any] struct {
	Key   K
	Value V
}

// HashTable is a separate-chaining hash table. Collisions land in per-bucket
// singly-linked chains; bucket chains are allocated lazily on first insertion
// into their slot, which is a memory optimization for sparse tables, not a
// semantic state. When an insertion pushes size/capacity above the load
// factor the table doubles its capacity and rehashes every entry, so
// insertion cost amortizes to O(1). Deletion never shrinks the table.
//
// By default a HashTable[K,V] uses the same hash function as Go's builtin
// map[K]V, with a per-table random seed; a different hash function can be
// specified using the WithHash option.
//
// A HashTable is NOT goroutine-safe.
type HashTable[K comparable, V any] struct {
	// The hash function applied to keys of type K, extracted from the Go
	// runtime's implementation of map[K]struct{}.
	hash hashFn
	seed uintptr
	// buckets[i] is nil until the first insertion hashes to slot i. The
	// table owns every chain and, transitively, every node.
	buckets []*chain[K, V]
	// The number of live entries across all chains.
	size int
	// The maximum tolerated size/capacity ratio before a resize, in
	// [0.1, 1.0).
	loadFactor float64
}

// NewHashTable constructs a HashTable with the given initial capacity.
// Non-positive or tiny capacities are normalized up to a small minimum.
// Construction fails with ErrInvalidArgument if a load factor outside
// [0.1, 1.0) is supplied via WithLoadFactor.
func NewHashTable[K comparable, V any](
	initialCapacity int, options ...TableOption[K, V],
) (*HashTable[K, V], error) {
	if initialCapacity < minTableCapacity {
		initialCapacity = minTableCapacity
	}
	t := &HashTable[K, V]{
		hash:       getRuntimeHasher[K](),
		seed:       newSeed(),
		buckets:    make([]*chain[K, V], initialCapacity),
		loadFactor: defaultLoadFactor,
	}
	for _, op := range options {
		op.apply(t)
	}
	if t.loadFactor < 0.1 || t.loadFactor >= 1.0 {
		return nil, withOp(ErrInvalidArgument,
			fmt.Sprintf("load factor %v outside [0.1, 1.0)", t.loadFactor))
	}
	return t, nil
}

// bucketIndex maps a hash value to a bucket slot, using a bitmask when the
// capacity is a power of two and modulo otherwise.
func (t *HashTable[K, V]) bucketIndex(h uintptr) int {
	c := uintptr(len(t.buckets))
	if c&(c-1) == 0 {
		return int(h & (c - 1))
	}
	return int(h % c)
}

func (t *HashTable[K, V]) hashKey(key *K) uintptr {
	return t.hash(noescape(unsafe.Pointer(key)), t.seed)
}

// Set inserts an entry, overwriting the existing value in place if key is
// already present. An actual insertion that pushes size/capacity above the
// load factor triggers a capacity-doubling rehash.
func (t *HashTable[K, V]) Set(key K, value V) {
	i := t.bucketIndex(t.hashKey(&key))
	b := t.buckets[i]
	if b == nil {
		b = &chain[K, V]{}
		t.buckets[i] = b
	}
	if b.insertOrReplace(key, value) {
		t.size++
		if float64(t.size) > t.loadFactor*float64(len(t.buckets)) {
			t.resize(2 * len(t.buckets))
		}
	}
	t.checkInvariants()
}

// Lookup returns the value stored for key, with ok=false if key is absent.
// O(1) average.
func (t *HashTable[K, V]) Lookup(key K) (value V, ok bool) {
	b := t.buckets[t.bucketIndex(t.hashKey(&key))]
	if b == nil {
		return value, false
	}
	return b.find(key)
}

// Get returns the value stored for key, or def if key is absent.
func (t *HashTable[K, V]) Get(key K, def V) V {
	if v, ok := t.Lookup(key); ok {
		return v
	}
	return def
}

// Contains reports whether key is present.
func (t *HashTable[K, V]) Contains(key K) bool {
	_, ok := t.Lookup(key)
	return ok
}

// Delete removes the entry for key, reporting whether an entry was removed.
// The table never shrinks on deletion.
func (t *HashTable[K, V]) Delete(key K) bool {
	b := t.buckets[t.bucketIndex(t.hashKey(&key))]
	if b == nil || !b.delete(key) {
		return false
	}
	t.size--
	t.checkInvariants()
	return true
}

// BulkInsert inserts all pairs, growing the table once up front to
// ceil(len(pairs)/loadFactor) rounded up along the doubling path. This avoids
// the repeated incremental rehashes that feeding the pairs through Set one at
// a time would trigger.
func (t *HashTable[K, V]) BulkInsert(pairs []Pair[K, V]) {
	target := int(math.Ceil(float64(len(pairs)) / t.loadFactor))
	newCapacity := len(t.buckets)
	for newCapacity < target {
		newCapacity *= 2
	}
	if newCapacity > len(t.buckets) {
		t.resize(newCapacity)
	}
	for _, p := range pairs {
		t.Set(p.Key, p.Value)
	}
}

// resize rehashes every entry into a fresh bucket array of newCapacity slots.
func (t *HashTable[K, V]) resize(newCapacity int) {
	old := t.buckets
	t.buckets = make([]*chain[K, V], newCapacity)
	for _, b := range old {
		if b == nil {
			continue
		}
		b.all(func(k K, v V) bool {
			i := t.bucketIndex(t.hashKey(&k))
			nb := t.buckets[i]
			if nb == nil {
				nb = &chain[K, V]{}
				t.buckets[i] = nb
			}
			// Keys are distinct across the old chains so this never
			// replaces, and size is unchanged.
			nb.insertOrReplace(k, v)
			return true
		})
	}
	t.checkInvariants()
}

// All calls yield for each entry, walking the bucket chains in bucket-index
// order and each chain most-recently-inserted first. No ordering guarantee
// holds across keys beyond that, and none survives a resize. If yield returns
// false, iteration stops.
func (t *HashTable[K, V]) All(yield func(key K, value V) bool) {
	// Snapshot the bucket array so that iteration remains valid if the
	// table is resized during iteration.
	buckets := t.buckets
	for _, b := range buckets {
		if b == nil {
			continue
		}
		stopped := false
		b.all(func(k K, v V) bool {
			if !yield(k, v) {
				stopped = true
				return false
			}
			return true
		})
		if stopped {
			return
		}
	}
}

// Keys calls yield for each key, in All order.
func (t *HashTable[K, V]) Keys(yield func(key K) bool) {
	t.All(func(k K, _ V) bool {
		return yield(k)
	})
}

// Values calls yield for each value, in All order.
func (t *HashTable[K, V]) Values(yield func(value V) bool) {
	t.All(func(_ K, v V) bool {
		return yield(v)
	})
}

// Len returns the number of entries in the table.
func (t *HashTable[K, V]) Len() int {
	return t.size
}

// Cap returns the current bucket capacity.
func (t *HashTable[K, V]) Cap() int {
	return len(t.buckets)
}

func (t *HashTable[K, V]) checkInvariants() {
	if invariants {
		var n int
		for _, b := range t.buckets {
			if b == nil {
				continue
			}
			n += b.len()
			b.all(func(k K, _ V) bool {
				if _, ok := t.Lookup(k); !ok {
					panic(fmt.Sprintf("invariant failed: key %v in chain but not retrievable", k))
				}
				return true
			})
		}
		if n != t.size {
			panic(fmt.Sprintf("invariant failed: found %d chained entries, but size is %d", n, t.size))
		}
	}
}
