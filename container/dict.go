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

// Dict is a thin key/value facade owning exactly one HashTable. It adds no
// state of its own; every operation delegates to the table. It exists to give
// mapping consumers a strict lookup (MustGet) and plain-collection
// materialization on top of the table's API.
//
// A Dict is NOT goroutine-safe.
type Dict[K comparable, V any] struct {
	table *HashTable[K, V]
}

// NewDict constructs a Dict holding the given pairs. Later pairs overwrite
// earlier ones with the same key.
func NewDict[K comparable, V any](pairs ...Pair[K, V]) *Dict[K, V] {
	t, err := NewHashTable[K, V](defaultTableCapacity)
	if err != nil {
		// Unreachable: the default load factor is always valid.
		panic(err)
	}
	d := &Dict[K, V]{table: t}
	if len(pairs) > 0 {
		t.BulkInsert(pairs)
	}
	return d
}

// NewDictFromMap constructs a Dict holding the entries of m.
func NewDictFromMap[K comparable, V any](m map[K]V) *Dict[K, V] {
	pairs := make([]Pair[K, V], 0, len(m))
	for k, v := range m {
		pairs = append(pairs, Pair[K, V]{Key: k, Value: v})
	}
	return NewDict(pairs...)
}

// Set inserts or updates key with value.
func (d *Dict[K, V]) Set(key K, value V) {
	d.table.Set(key, value)
}

// Get returns the value for key, or def if key is absent.
func (d *Dict[K, V]) Get(key K, def V) V {
	return d.table.Get(key, def)
}

// Lookup returns the value for key, with ok=false if key is absent. The ok
// result distinguishes an absent key from a present key holding the zero
// value.
func (d *Dict[K, V]) Lookup(key K) (V, bool) {
	return d.table.Lookup(key)
}

// MustGet returns the value for key, or ErrKeyNotFound if key is absent.
func (d *Dict[K, V]) MustGet(key K) (V, error) {
	v, ok := d.table.Lookup(key)
	if !ok {
		return v, ErrKeyNotFound
	}
	return v, nil
}

// Contains reports whether key is present.
func (d *Dict[K, V]) Contains(key K) bool {
	return d.table.Contains(key)
}

// Delete removes the entry for key, reporting whether an entry was removed.
func (d *Dict[K, V]) Delete(key K) bool {
	return d.table.Delete(key)
}

// Len returns the number of entries.
func (d *Dict[K, V]) Len() int {
	return d.table.Len()
}

// All calls yield for each entry, in the underlying table's iteration order.
func (d *Dict[K, V]) All(yield func(key K, value V) bool) {
	d.table.All(yield)
}

// Keys calls yield for each key, in All order.
func (d *Dict[K, V]) Keys(yield func(key K) bool) {
	d.table.Keys(yield)
}

// Values calls yield for each value, in All order.
func (d *Dict[K, V]) Values(yield func(value V) bool) {
	d.table.Values(yield)
}

// KeysArray materializes the keys into an Array, in All order.
func (d *Dict[K, V]) KeysArray() *Array[K] {
	out := NewArrayWithCapacity[K](d.table.Len())
	d.table.Keys(func(k K) bool {
		out.Append(k)
		return true
	})
	return out
}

// Items materializes the entries into a slice of pairs, in All order.
func (d *Dict[K, V]) Items() []Pair[K, V] {
	out := make([]Pair[K, V], 0, d.table.Len())
	d.table.All(func(k K, v V) bool {
		out = append(out, Pair[K, V]{Key: k, Value: v})
		return true
	})
	return out
}

// ToMap materializes the entries as a builtin map.
func (d *Dict[K, V]) ToMap() map[K]V {
	out := make(map[K]V, d.table.Len())
	d.table.All(func(k K, v V) bool {
		out[k] = v
		return true
	})
	return out
}

// Convert materializes the Dict as a map[K]any, converting any value that
// implements Converter. It implements Converter.
func (d *Dict[K, V]) Convert() any {
	out := make(map[K]any, d.table.Len())
	d.table.All(func(k K, v V) bool {
		out[k] = convertValue(v)
		return true
	})
	return out
}
