/*
 * Copyright 2024 CloudWeGo Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package ring is a GC friendly, fixed-size sequence. tracebench uses it
// to hold the per-op utilization samples recorded during a trace replay:
// the sample count is known up front from the trace length, so the whole
// backing array is allocated once by NewFromSlice instead of growing.
package ring

// Ring holds a fixed sequence of samples in one backing array.
// type V must NOT contain pointer for performance concern.
type Ring[V any] struct {
	items []Item[V]
}

// Item is the element stored in the Ring
type Item[V any] struct {
	value V
	idx   int
}

func NewFromSlice[V any](vv []V) *Ring[V] {
	r := &Ring[V]{}
	r.items = make([]Item[V], len(vv))
	for i := 0; i < len(vv); i++ {
		r.items[i].value = vv[i]
		r.items[i].idx = i
	}
	return r
}

// Get returns the ith item.
func (r *Ring[V]) Get(i int) (*Item[V], bool) {
	if i < 0 || i >= len(r.items) {
		return nil, false
	}
	return &r.items[i], true
}

// Len returns the length of the ring.
func (r *Ring[V]) Len() int {
	return len(r.items)
}

// Value returns the value of the item.
func (it *Item[V]) Value() V {
	return it.value
}
