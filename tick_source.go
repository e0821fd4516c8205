// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package rtostmr

import (
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/intuitivelabs/timestamp"
)

// driftWarnTicks is how many whole ticks the wall clock (timestamp.Now,
// independent of the testable clock.Clock) may run ahead of the logical
// tick count before ticksDue logs a drift warning, following
// wtimer_ticker.go's own "lost ticks since start-up" diagnostic.
const driftWarnTicks = 20

// tickSource turns wall-clock time into whole tick counts for the
// dispatcher. Per spec §4.5/§9 ("implementers SHOULD choose (b) [a
// monotonic clock read on each wake with a catch-up loop] ... treat tick
// loss as a correctness issue to detect"), it never relies on a
// per-tick semaphore post that could be missed under scheduling delay: a
// late wakeup simply catches up on however many whole ticks elapsed,
// following the teacher's own wtimer_ticker.go catch-up arithmetic.
//
// clock.Clock (github.com/benbjohnson/clock) stands in for the wall clock
// so tests can drive ticks deterministically with a *clock.Mock instead of
// sleeping real time, the way the teacher instead advances its ticks
// programmatically in wtimer_test.go. refTS/delivered track the same drift
// the teacher guards against in ticker() (runTime vs. runTicks), but
// against timestamp.Now() instead of clk.Now(), so the diagnostic reflects
// real wall-clock time elapsed even if the dispatcher's own clock.Clock is
// a mock.
type tickSource struct {
	clk  clock.Clock
	rate atomic.Int64 // time.Duration, swapped on a config reload

	lastTick time.Time // clk.Now() at the last ticksDue call, advanced by whole ticks

	refTS     timestamp.TS // wall-clock reading taken when the source was (re-)armed
	delivered uint64       // ticks handed out since refTS, for drift detection
}

func newTickSource(clk clock.Clock, rate time.Duration) *tickSource {
	ts := &tickSource{clk: clk}
	ts.rate.Store(int64(rate))
	ts.arm()
	return ts
}

// arm resets the tick source's reference point to now. Manager.Start calls
// this immediately before the dispatcher's ticker is armed (spec §4.6's
// Init order places "arm the host periodic clock" last), so a wall-clock
// gap between Init and Start is never mistaken for a burst of ticks that
// need catching up - the first ticksDue call after Start always measures
// elapsed time from Start, not from Init.
func (ts *tickSource) arm() {
	ts.lastTick = ts.clk.Now()
	ts.refTS = timestamp.Now()
	ts.delivered = 0
}

// setRate swaps the tick interval used by future ticksDue calls. Safe to
// call concurrently with ticksDue (config_watch.go's reload path runs on
// the fsnotify goroutine while ticksDue runs on the dispatcher goroutine).
func (ts *tickSource) setRate(rate time.Duration) {
	ts.rate.Store(int64(rate))
}

// ticksDue returns how many whole tick intervals elapsed since the last
// call (0 if less than one tick's worth of time has passed), advancing the
// internal reference so fractional remainders carry over instead of being
// dropped (mirrors wtimer_ticker.go's "wt.lastTickT = now.Add(-rest)").
// Must not be called concurrently with itself, same restriction as the
// teacher's own ticker().
func (ts *tickSource) ticksDue() uint32 {
	rate := time.Duration(ts.rate.Load())
	now := ts.clk.Now()
	diff := now.Sub(ts.lastTick)
	if diff < rate {
		return 0
	}
	n := diff / rate
	rest := diff % rate
	ts.lastTick = now.Add(-rest)
	ts.delivered += uint64(n)

	if n > 1 && DBGon() {
		DBG("tick source catching up %d ticks after a %s gap (rate %s)\n",
			n, diff, rate)
	}

	wall := timestamp.Now().Sub(ts.refTS)
	logical := time.Duration(ts.delivered) * rate
	if wall > logical+time.Duration(driftWarnTicks)*rate {
		if WARNon() {
			WARN("tick source drift: %d ticks delivered (%s logical) but %s"+
				" of wall-clock time elapsed since arming -> ~%d ticks behind\n",
				ts.delivered, logical, wall, int64((wall-logical)/rate))
		}
	}
	return uint32(n)
}
