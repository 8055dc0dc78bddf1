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

import "github.com/cockroachdb/errors"

// Sentinel errors returned by the containers in this package. Callers match
// them with errors.Is; the concrete error carries positional context (index,
// size, etc). The containers never retry, suppress, or log: every error is
// surfaced synchronously to the immediate caller, which decides whether it is
// fatal.
var (
	// ErrIndexOutOfRange is returned when a normalized index falls outside
	// [0, size) for positional access on an Array.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrEmptyContainer is returned by pop-style operations on an empty
	// Array or Heap.
	ErrEmptyContainer = errors.New("empty container")

	// ErrValueNotFound is returned by Array.Remove and Array.Index when the
	// value is not present.
	ErrValueNotFound = errors.New("value not found")

	// ErrKeyNotFound is returned by strict mapping lookups (Dict.MustGet)
	// when the key is absent.
	ErrKeyNotFound = errors.New("key not found")

	// ErrInvalidArgument is returned for an out-of-range load factor at
	// construction or a zero slice step.
	ErrInvalidArgument = errors.New("invalid argument")
)

// withIndex annotates a sentinel with the offending index and current size.
func withIndex(err error, idx, size int) error {
	return errors.Wrapf(err, "index %d with size %d", idx, size)
}

// withOp annotates a sentinel with the failing operation or detail.
func withOp(err error, detail string) error {
	return errors.Wrap(err, detail)
}
