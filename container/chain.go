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

// node is a singly-linked (key, value) node. Nodes are exclusively owned by
// their chain; there is no sharing and no cycles.
type node[K comparable, V any] struct {
	key   K
	value V
	next  *node[K, V]
}

// chain is a singly-linked sequence of (key, value) nodes used exclusively as
// a HashTable collision bucket. New keys are inserted at the head, so
// iteration visits the most recently inserted entries first. All operations
// are O(chain length).
type chain[K comparable, V any] struct {
	head *node[K, V]
}

// insertOrReplace inserts (key, value) at the head if key is not present, and
// otherwise overwrites the existing node's value in place. It reports whether
// a new node was created.
func (c *chain[K, V]) insertOrReplace(key K, value V) bool {
	for n := c.head; n != nil; n = n.next {
		if n.key == key {
			n.value = value
			return false
		}
	}
	c.head = &node[K, V]{key: key, value: value, next: c.head}
	return true
}

// find returns the value stored for key, with ok=false if key is absent.
func (c *chain[K, V]) find(key K) (value V, ok bool) {
	for n := c.head; n != nil; n = n.next {
		if n.key == key {
			return n.value, true
		}
	}
	return value, false
}

// delete unlinks the node for key, reporting whether a node was removed.
func (c *chain[K, V]) delete(key K) bool {
	var prev *node[K, V]
	for n := c.head; n != nil; prev, n = n, n.next {
		if n.key == key {
			if prev != nil {
				prev.next = n.next
			} else {
				c.head = n.next
			}
			return true
		}
	}
	return false
}

// all calls yield for each (key, value) pair in head-to-tail order. Each call
// restarts from the head. If yield returns false, iteration stops.
func (c *chain[K, V]) all(yield func(key K, value V) bool) {
	for n := c.head; n != nil; n = n.next {
		if !yield(n.key, n.value) {
			return
		}
	}
}

// len returns the number of nodes in the chain.
func (c *chain[K, V]) len() int {
	var n int
	for e := c.head; e != nil; e = e.next {
		n++
	}
	return n
}
