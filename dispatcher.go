// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package rtostmr

// dispatchLoop is the single dispatcher goroutine (spec §4.3): wake on
// every tick-source wakeup, catch up on however many whole ticks elapsed,
// and run each one in order. It never touches the wheel directly outside of
// runTick, following the teacher's own run()/runqListen() split between
// "wake up" and "do the work".
func (m *Manager) dispatchLoop() {
	defer m.wg.Done()
	ticker := m.clk.Ticker(m.cfg.TickRate)
	defer ticker.Stop()
	for {
		select {
		case <-m.cancel:
			return
		case <-ticker.C:
			n := m.ts.ticksDue()
			for i := uint32(0); i < n; i++ {
				m.runTick()
			}
		}
	}
}

// runTick processes exactly one tick: scan the bucket for the current tick
// counter value, fire every record whose match equals it (in bucket order,
// which is non-decreasing by match so the first mismatch ends the scan),
// then advance the tick counter. Advancing only at the end, after the
// bucket has been fully drained, matches RTOSTmrTask's "increment
// tick_ctr only after the scan" ordering from the original (spec §4.3 step
// 5) - advancing first would let a timer armed for exactly this tick from
// within a callback miss its own bucket pass.
func (m *Manager) runTick() {
	tick := m.now()
	b := tick.Mod(m.wheel.w)

	m.wheel.mu.Lock()
	bucket := &m.wheel.buckets[b]
	for {
		idx := bucket.head
		if idx == nilIdx {
			break
		}
		r := &m.pool.arena[idx]
		if r.match.NE(tick) {
			break
		}
		bucket.remove(m.pool.arena, idx)
		r.state = Completed
		cb := r.callback
		arg := r.arg
		opt := r.opt
		period := r.period
		m.wheel.mu.Unlock()

		m.invokeCallback(cb, arg, idx)

		m.wheel.mu.Lock()
		// Only rearm/free if the callback didn't itself leave the record in
		// some other state. Spec §5 forbids a callback from calling Start,
		// Stop, or Delete on its own timer; this check means such a
		// violation leaves the record however the offending call left it
		// instead of being clobbered back to RUNNING or UNUSED afterwards.
		if r.state == Completed {
			switch opt {
			case OneShot:
				r.state = Unused
				m.wheel.mu.Unlock()
				m.pool.release(idx)
				m.wheel.mu.Lock()
			case Periodic:
				r.match = tick.AddUint32(period)
				r.state = Running
				m.wheel.insert(m.pool.arena, idx)
			default:
				BUG("record %d completed with neither ONE_SHOT nor PERIODIC opt (%v)\n", idx, opt)
			}
		}
	}
	m.wheel.mu.Unlock()

	m.tickCtr.Store(tick.AddUint32(1).Val())
}

// invokeCallback runs cb, recovering from any panic so one misbehaving
// timer can't take down the dispatcher goroutine and every other timer with
// it (spec §7's panic-isolation requirement - absent from both the teacher
// and the original C reference, which has no notion of a recoverable
// callback).
func (m *Manager) invokeCallback(cb CallbackFunc, arg interface{}, idx int32) {
	if cb == nil {
		return
	}
	defer func() {
		if rec := recover(); rec != nil {
			ERR("timer callback panicked, record %d: %v\n", idx, rec)
		}
	}()
	cb(arg)
}
