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
	"math/rand/v2"
	"unsafe"
)

// hashFn hashes the key it is pointed at, mixing in a per-table seed.
type hashFn func(key unsafe.Pointer, seed uintptr) uintptr

// getRuntimeHasher extracts the hash function from Go's implementation of
// map[K]struct{} by reaching into the internals of the type descriptor. This
// gives a HashTable the same hash quality as the builtin map for arbitrary
// comparable keys. (This might break in a future version of Go, but is likely
// fixable unless the runtime does something drastic.)
func getRuntimeHasher[K comparable]() hashFn {
	a := any(make(map[K]struct{}))
	return (*rtEface)(unsafe.Pointer(&a)).typ.hasher
}

// rtEface mirrors the runtime layout of an empty interface holding a map
// value.
type rtEface struct {
	typ *rtMapType
	val unsafe.Pointer
}

// rtMapType mirrors the leading fields of the runtime's map type descriptor
// (internal/abi.MapType). Only hasher is consulted; the fields before it
// exist to pin its offset.
type rtMapType struct {
	rtType
	key    *rtType
	elem   *rtType
	bucket *rtType
	hasher hashFn
}

// rtType mirrors internal/abi.Type.
type rtType struct {
	size       uintptr
	ptrBytes   uintptr
	hash       uint32
	tflag      uint8
	align      uint8
	fieldAlign uint8
	kind       uint8
	equal      func(unsafe.Pointer, unsafe.Pointer) bool
	gcData     *byte
	str        int32
	ptrToThis  int32
}

// newSeed returns a random per-table hash seed.
func newSeed() uintptr {
	return uintptr(rand.Uint64())
}

// noescape hides a pointer from escape analysis.  noescape is
// the identity function but escape analysis doesn't think the
// output depends on the input.  noescape is inlined and currently
// compiles down to zero instructions.
// USE CAREFULLY!
//
//go:nosplit
//go:nocheckptr
func noescape(p unsafe.Pointer) unsafe.Pointer {
	x := uintptr(p)
	return unsafe.Pointer(x ^ 0)
}
