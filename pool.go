// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package rtostmr

import "sync"

// pool is the fixed-size preallocated timer arena (spec §3/§4.1). It is
// built once at Init with N records and never grows; alloc/free only move
// records between the free-list and the caller, exactly like the
// original's Create_Timer_Pool/alloc_timer_obj/free_timer_obj.
type pool struct {
	mu       sync.Mutex
	arena    []record
	freeList idxList
}

func newPool(n int) *pool {
	p := &pool{
		arena:    make([]record, n),
		freeList: newIdxList(),
	}
	for i := range p.arena {
		p.arena[i].state = Unused
		p.arena[i].prev = nilIdx
		p.arena[i].next = nilIdx
	}
	// Build the free-list tail-to-head so slot 0 ends up at the head: pure
	// cosmetic, alloc order is unspecified by spec §4.1.
	for i := len(p.arena) - 1; i >= 0; i-- {
		p.freeList.pushFront(p.arena, int32(i))
	}
	return p
}

// alloc pops a record off the free-list. It returns (nilIdx, false) if the
// pool is exhausted (spec §4.1: "alloc returning null is reported upstream
// as 'no timer available'").
func (p *pool) alloc() (int32, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	idx := p.freeList.popFront(p.arena)
	if idx == nilIdx {
		return nilIdx, false
	}
	return idx, true
}

// release clears a record's fields and returns it to the free-list,
// bumping its generation so stale Handles are rejected afterwards.
func (p *pool) release(idx int32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	r := &p.arena[idx]
	r.callback = nil
	r.arg = nil
	r.delay = 0
	r.period = 0
	r.match = Ticks{}
	r.name = ""
	r.opt = 0
	r.state = Unused
	r.generation++
	p.freeList.pushFront(p.arena, idx)
}

// freeCount returns the number of records currently on the free-list,
// invariant-checked against N in tests (spec §8 "Pool accounting").
func (p *pool) freeCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for i := p.freeList.head; i != nilIdx; i = p.arena[i].next {
		n++
	}
	return n
}

// size returns N, the fixed pool capacity.
func (p *pool) size() int {
	return len(p.arena)
}
