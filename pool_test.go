// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package rtostmr

import "testing"

func TestPoolAllocExhaustAndRelease(t *testing.T) {
	p := newPool(3)
	if p.freeCount() != 3 {
		t.Fatalf("freeCount = %d, want 3", p.freeCount())
	}

	var got []int32
	for i := 0; i < 3; i++ {
		idx, ok := p.alloc()
		if !ok {
			t.Fatalf("alloc %d failed unexpectedly", i)
		}
		got = append(got, idx)
	}
	if p.freeCount() != 0 {
		t.Fatalf("freeCount after exhausting pool = %d, want 0", p.freeCount())
	}
	if _, ok := p.alloc(); ok {
		t.Fatalf("alloc on exhausted pool should fail")
	}

	seen := map[int32]bool{}
	for _, idx := range got {
		if seen[idx] {
			t.Fatalf("duplicate index %d allocated", idx)
		}
		seen[idx] = true
	}

	p.release(got[0])
	if p.freeCount() != 1 {
		t.Fatalf("freeCount after one release = %d, want 1", p.freeCount())
	}
	idx, ok := p.alloc()
	if !ok || idx != got[0] {
		t.Fatalf("alloc after release = (%d, %v), want (%d, true)", idx, ok, got[0])
	}
}

func TestPoolReleaseClearsRecord(t *testing.T) {
	p := newPool(1)
	idx, _ := p.alloc()
	r := &p.arena[idx]
	r.state = Stopped
	r.opt = OneShot
	r.delay = 7
	r.period = 2
	r.name = "x"
	r.callback = func(interface{}) {}
	r.arg = 42
	gen := r.generation

	p.release(idx)

	if r.state != Unused || r.opt != 0 || r.delay != 0 || r.period != 0 ||
		r.name != "" || r.callback != nil || r.arg != nil {
		t.Fatalf("record not fully cleared: %+v", r)
	}
	if r.generation != gen+1 {
		t.Fatalf("generation = %d, want %d", r.generation, gen+1)
	}
}
