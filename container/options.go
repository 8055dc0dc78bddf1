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

import "unsafe"

// TableOption provides an interface to do work on a HashTable while it is
// being created.
type TableOption[K comparable, V any] interface {
	apply(t *HashTable[K, V])
}

type loadFactorOption[K comparable, V any] struct {
	loadFactor float64
}

func (op loadFactorOption[K, V]) apply(t *HashTable[K, V]) {
	t.loadFactor = op.loadFactor
}

// WithLoadFactor is an option to specify the maximum tolerated ratio of
// entries to capacity before a resize is triggered. Values outside [0.1, 1.0)
// cause NewHashTable to fail with ErrInvalidArgument.
func WithLoadFactor[K comparable, V any](loadFactor float64) TableOption[K, V] {
	return loadFactorOption[K, V]{loadFactor}
}

type hashOption[K comparable, V any] struct {
	hash func(key *K, seed uintptr) uintptr
}

func (op hashOption[K, V]) apply(t *HashTable[K, V]) {
	t.hash = *(*hashFn)(noescape(unsafe.Pointer(&op.hash)))
}

// WithHash is an option to specify the hash function to use for a
// HashTable[K,V] in place of the runtime-extracted one.
func WithHash[K comparable, V any](hash func(key *K, seed uintptr) uintptr) TableOption[K, V] {
	return hashOption[K, V]{hash}
}
