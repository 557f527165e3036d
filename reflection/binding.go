// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package reflection

// Category is an independent binding-number sequence. Native registers of
// different classes (b, t, s, u) never share descriptor sets.
type Category uint8

const (
	CategoryBuffer Category = iota
	CategoryTexture
	CategorySampler
	CategoryStorage

	categoryCount
)

// String returns the register class letter of the category.
func (c Category) String() string {
	switch c {
	case CategoryBuffer:
		return "b"
	case CategoryTexture:
		return "t"
	case CategorySampler:
		return "s"
	case CategoryStorage:
		return "u"
	default:
		return "?"
	}
}

// BindingAllocator partitions raw register numbers of one category into
// descriptor sets.
//
// Resources are assigned in enumeration order. A raw binding that is not
// strictly greater than the last binding of the current set, or that already
// appears in it, opens a new set. Within a set raw bindings are strictly
// increasing; the allocator never reorders or drops bindings.
type BindingAllocator struct {
	buckets [][]uint32
}

// Assign places raw into a descriptor set and returns the set index and the
// binding, which is raw unchanged.
func (a *BindingAllocator) Assign(raw uint32) (set, binding uint32) {
	if n := len(a.buckets); n > 0 && fits(a.buckets[n-1], raw) {
		a.buckets[n-1] = append(a.buckets[n-1], raw)
	} else {
		a.buckets = append(a.buckets, []uint32{raw})
	}
	return uint32(len(a.buckets) - 1), raw
}

func fits(bucket []uint32, raw uint32) bool {
	for _, b := range bucket {
		if b == raw {
			return false
		}
	}
	return raw > bucket[len(bucket)-1]
}

// Buckets returns the raw bindings placed in each set so far.
func (a *BindingAllocator) Buckets() [][]uint32 {
	out := make([][]uint32, len(a.buckets))
	for i, b := range a.buckets {
		out[i] = append([]uint32(nil), b...)
	}
	return out
}

// Sets returns the number of descriptor sets opened so far.
func (a *BindingAllocator) Sets() int {
	return len(a.buckets)
}

// BindingSpace holds one allocator per category for one shader stage.
type BindingSpace struct {
	allocators [categoryCount]BindingAllocator
}

// Assign places raw into the given category's sequence.
func (s *BindingSpace) Assign(c Category, raw uint32) (set, binding uint32) {
	return s.allocators[c].Assign(raw)
}

// Allocator returns the allocator of a category.
func (s *BindingSpace) Allocator(c Category) *BindingAllocator {
	return &s.allocators[c]
}
