// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package rtostmr

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/benbjohnson/clock"
)

// Manager owns one timer pool, one wheel, and the single dispatcher
// goroutine that drives both (spec §4, §7). It replaces the teacher's WTimer
// (hierarchical 4-wheel, 8-worker run-queue fan-out) with the single
// flat-wheel, single-dispatcher design the spec actually calls for, while
// keeping the teacher's lock+channel goroutine lifecycle shape
// (wtimer_run.go's Start/Shutdown pair).
type Manager struct {
	cfg Config

	pool  *pool
	wheel *wheel

	tickCtr atomic.Uint32

	clk clock.Clock
	ts  *tickSource

	cancel chan struct{}
	wg     sync.WaitGroup
}

// Init builds the pool and wheel per cfg and prepares the tick source, but
// does not start the dispatcher; call (*Manager).Start for that. Allocation
// failure here is fatal to the caller, per spec §7.
func Init(cfg Config) (*Manager, error) {
	return initWithClock(cfg, clock.New())
}

func initWithClock(cfg Config, clk clock.Clock) (*Manager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	m := &Manager{
		cfg:   cfg,
		pool:  newPool(cfg.PoolSize),
		wheel: newWheel(cfg.Buckets),
		clk:   clk,
	}
	m.ts = newTickSource(clk, cfg.TickRate)
	return m, nil
}

// Start launches the dispatcher goroutine. Calling Start twice without an
// intervening Shutdown leaks the first goroutine; callers own the pairing,
// same as the teacher's own Start/Shutdown contract.
func (m *Manager) Start() {
	m.ts.arm()
	m.cancel = make(chan struct{})
	m.wg.Add(1)
	go m.dispatchLoop()
}

// Shutdown stops the dispatcher goroutine and waits for it to exit, or
// returns ctx's error if it doesn't exit in time. Pending RUNNING timers are
// left untouched in the wheel; they are not fired and not returned to the
// pool. STOPPED records likewise stay allocated.
func (m *Manager) Shutdown(ctx context.Context) error {
	if m.cancel == nil {
		return nil
	}
	close(m.cancel)
	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// AdvanceForTesting fires n dispatcher ticks synchronously on the calling
// goroutine, bypassing the tick source and dispatcher goroutine entirely.
// It exists so tests can drive the wheel deterministically instead of
// sleeping real time, the way the teacher's own tests call advanceTimeTo
// directly rather than waiting on the wall clock.
func (m *Manager) AdvanceForTesting(n uint32) {
	for i := uint32(0); i < n; i++ {
		m.runTick()
	}
}

func (m *Manager) now() Ticks {
	return NewTicks(m.tickCtr.Load())
}

// resolve validates a Handle against the current arena bounds and
// generation, returning the record it names. The generation read is taken
// under the pool lock since release() is the only writer of that field;
// everything else about the record (state, match, ...) is validated again
// by the caller under the wheel lock, matching the original's two-lock
// model (spec §5) rather than adding a third lock just for this check.
func (m *Manager) resolve(h Handle) (int32, *record, error) {
	if !h.valid() || int(h.index) >= len(m.pool.arena) {
		return nilIdx, nil, ErrInvalid
	}
	m.pool.mu.Lock()
	gen := m.pool.arena[h.index].generation
	m.pool.mu.Unlock()
	if gen != h.generation {
		return nilIdx, nil, ErrInvalidType
	}
	return h.index, &m.pool.arena[h.index], nil
}

// Create allocates a timer record from the pool and fills it in, leaving it
// STOPPED (spec §4.1/§4.4 "Create"). The timer is not armed until Start is
// called.
func (m *Manager) Create(delay, period uint32, opt Opt, cb CallbackFunc, arg interface{}, name string) (Handle, error) {
	switch opt {
	case OneShot:
		if delay == 0 {
			return Handle{}, ErrInvalidDelay
		}
	case Periodic:
		if period == 0 {
			return Handle{}, ErrInvalidPeriod
		}
	default:
		return Handle{}, ErrInvalidOpt
	}

	idx, ok := m.pool.alloc()
	if !ok {
		return Handle{}, ErrNonAvail
	}

	r := &m.pool.arena[idx]
	r.opt = opt
	r.delay = delay
	r.period = period
	r.callback = cb
	r.arg = arg
	r.name = name
	r.match = Ticks{}
	r.state = Stopped

	return Handle{index: idx, generation: r.generation}, nil
}

// Start arms h, computing match = now + delay and inserting it into the
// wheel. It is valid from STOPPED and COMPLETED; a stale/deleted handle is
// rejected with ErrInvalidType. Per spec §9's redesign, restarting an
// already-RUNNING timer is rejected with ErrInvalidState instead of
// silently relocating it, unlike the original's RTOSTmrStart.
func (m *Manager) Start(h Handle) error {
	idx, r, err := m.resolve(h)
	if err != nil {
		return err
	}
	m.wheel.mu.Lock()
	defer m.wheel.mu.Unlock()
	if r.generation != h.generation {
		return ErrInvalidType
	}
	if r.state == Running {
		return ErrInvalidState
	}
	r.match = m.now().AddUint32(r.delay)
	r.state = Running
	m.wheel.insert(m.pool.arena, idx)
	return nil
}

// Stop disarms h if RUNNING, unlinking it from the wheel, and optionally
// invokes its callback (spec §4.4). Stopping an already-STOPPED timer is
// reported as ErrStopped rather than treated as a no-op, so callers can
// detect a race against expiry.
func (m *Manager) Stop(h Handle, opt StopOpt, arg interface{}) error {
	idx, r, err := m.resolve(h)
	if err != nil {
		return err
	}
	m.wheel.mu.Lock()
	if r.generation != h.generation {
		m.wheel.mu.Unlock()
		return ErrInvalidType
	}
	if r.state == Stopped {
		m.wheel.mu.Unlock()
		return ErrStopped
	}
	if r.state == Running {
		m.wheel.remove(m.pool.arena, idx)
	}
	r.state = Stopped
	cb := r.callback
	cbArg := r.arg
	m.wheel.mu.Unlock()

	switch opt {
	case StopCallback:
		if cb == nil {
			return ErrNoCallback
		}
		m.invokeCallback(cb, cbArg, idx)
	case StopCallbackArg:
		if cb == nil {
			return ErrNoCallback
		}
		m.invokeCallback(cb, arg, idx)
	}
	return nil
}

// Delete unlinks h from whatever list it is on (if any) and returns it to
// the pool. Deleting an already-UNUSED (i.e. already deleted) handle
// succeeds as a no-op, per spec §8's idempotent-delete scenario, as long as
// its slot has not been handed out again by Create; once it has, the stale
// handle is rejected with ErrInvalidType.
func (m *Manager) Delete(h Handle) error {
	idx, r, err := m.resolve(h)
	if err == ErrInvalidType {
		m.pool.mu.Lock()
		unused := m.pool.arena[h.index].state == Unused
		m.pool.mu.Unlock()
		if unused {
			return nil
		}
	}
	if err != nil {
		return err
	}
	m.wheel.mu.Lock()
	if r.generation != h.generation {
		m.wheel.mu.Unlock()
		return ErrInvalidType
	}
	switch r.state {
	case Unused:
		m.wheel.mu.Unlock()
		return nil
	case Running:
		m.wheel.remove(m.pool.arena, idx)
	case Stopped, Completed:
		// Not linked into any bucket; nothing to unlink.
	}
	m.wheel.mu.Unlock()
	m.pool.release(idx)
	return nil
}

// NameGet returns the name given at Create. Once the record has been
// returned to the pool (deleted, or a completed one-shot), the handle's
// generation no longer matches and ErrInvalidType is returned.
func (m *Manager) NameGet(h Handle) (string, error) {
	_, r, err := m.resolve(h)
	if err != nil {
		return "", err
	}
	m.wheel.mu.Lock()
	defer m.wheel.mu.Unlock()
	if r.generation != h.generation {
		return "", ErrInvalidType
	}
	if r.state == Unused {
		return "", ErrInactive
	}
	return r.name, nil
}

// StateGet returns h's current lifecycle state. This is the one operation
// spec §5 permits a callback to call on its own (currently COMPLETED)
// timer.
func (m *Manager) StateGet(h Handle) (State, error) {
	_, r, err := m.resolve(h)
	if err != nil {
		return Unused, err
	}
	m.wheel.mu.Lock()
	defer m.wheel.mu.Unlock()
	if r.generation != h.generation {
		return Unused, ErrInvalidType
	}
	return r.state, nil
}

// RemainGet returns the number of ticks left before h next fires, computed
// as match - now in wraparound-safe unsigned arithmetic (spec §4.4). The
// result is meaningless (but returned without error) for a STOPPED timer
// whose match has already passed, matching the original's
// RTOSTmrMatch-tick_ctr arithmetic. A one-shot that already expired has
// been returned to the pool, so its handle is rejected with ErrInvalidType.
func (m *Manager) RemainGet(h Handle) (uint32, error) {
	_, r, err := m.resolve(h)
	if err != nil {
		return 0, err
	}
	m.wheel.mu.Lock()
	defer m.wheel.mu.Unlock()
	if r.generation != h.generation {
		return 0, ErrInvalidType
	}
	if r.state == Unused {
		return 0, ErrInactive
	}
	return r.match.Sub(m.now()).Val(), nil
}
