// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package rtostmr

import "testing"

func TestWheelBucketKeying(t *testing.T) {
	p := newPool(5)
	wh := newWheel(4)
	matches := []uint32{3, 7, 11, 100, 4}
	var idxs []int32
	for _, mv := range matches {
		idx, _ := p.alloc()
		p.arena[idx].match = NewTicks(mv)
		wh.insert(p.arena, idx)
		idxs = append(idxs, idx)
	}
	for i, idx := range idxs {
		b := wh.bucketOf(p.arena[idx].match)
		if b != matches[i]%4 {
			t.Fatalf("bucketOf(%d) = %d, want %d", matches[i], b, matches[i]%4)
		}
	}
}

func TestWheelBucketOrdering(t *testing.T) {
	p := newPool(5)
	wh := newWheel(10)
	for _, mv := range []uint32{25, 5, 15, 45} {
		idx, _ := p.alloc()
		p.arena[idx].match = NewTicks(mv)
		wh.insert(p.arena, idx)
	}
	b := &wh.buckets[5]
	var seen []uint32
	for idx := b.head; idx != nilIdx; idx = p.arena[idx].next {
		seen = append(seen, p.arena[idx].match.Val())
	}
	want := []uint32{5, 15, 25, 45}
	if len(seen) != len(want) {
		t.Fatalf("bucket contents = %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("bucket contents = %v, want %v", seen, want)
		}
	}
}

func TestWheelEqualMatchTieBreak(t *testing.T) {
	p := newPool(3)
	wh := newWheel(10)
	var idxs []int32
	for i := 0; i < 3; i++ {
		idx, _ := p.alloc()
		p.arena[idx].match = NewTicks(7)
		wh.insert(p.arena, idx)
		idxs = append(idxs, idx)
	}
	b := &wh.buckets[7]
	var order []int32
	for idx := b.head; idx != nilIdx; idx = p.arena[idx].next {
		order = append(order, idx)
	}
	// insertSorted splices each new equal-match entry in front of existing
	// ones, so the most recently inserted ends up at the head.
	want := []int32{idxs[2], idxs[1], idxs[0]}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("bucket order = %v, want %v", order, want)
		}
	}
}

func TestWheelRemove(t *testing.T) {
	p := newPool(3)
	wh := newWheel(10)
	idx0, _ := p.alloc()
	idx1, _ := p.alloc()
	p.arena[idx0].match = NewTicks(2)
	p.arena[idx1].match = NewTicks(13)
	wh.insert(p.arena, idx0)
	wh.insert(p.arena, idx1)

	wh.remove(p.arena, idx0)
	b := &wh.buckets[2]
	if !b.isEmpty() {
		t.Fatalf("bucket 2 should be empty after removing its only entry")
	}
	if p.arena[idx1].prev != nilIdx || p.arena[idx1].next != nilIdx {
		t.Fatalf("unrelated entry disturbed by remove: prev=%d next=%d",
			p.arena[idx1].prev, p.arena[idx1].next)
	}
}
