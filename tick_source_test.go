// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package rtostmr

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
)

func TestTickSourceBasic(t *testing.T) {
	mock := clock.NewMock()
	ts := newTickSource(mock, 10*time.Millisecond)

	if n := ts.ticksDue(); n != 0 {
		t.Fatalf("ticksDue with no elapsed time = %d, want 0", n)
	}

	mock.Add(9 * time.Millisecond)
	if n := ts.ticksDue(); n != 0 {
		t.Fatalf("ticksDue at 9ms/10ms rate = %d, want 0", n)
	}

	mock.Add(1 * time.Millisecond)
	if n := ts.ticksDue(); n != 1 {
		t.Fatalf("ticksDue at 10ms/10ms rate = %d, want 1", n)
	}
}

func TestTickSourceCatchUp(t *testing.T) {
	mock := clock.NewMock()
	ts := newTickSource(mock, 10*time.Millisecond)

	// A late wakeup (e.g. the dispatcher goroutine got descheduled) must be
	// reported as multiple ticks due, not silently dropped.
	mock.Add(35 * time.Millisecond)
	if n := ts.ticksDue(); n != 3 {
		t.Fatalf("ticksDue after 35ms gap = %d, want 3", n)
	}

	// The 5ms remainder must carry over instead of being discarded.
	mock.Add(5 * time.Millisecond)
	if n := ts.ticksDue(); n != 1 {
		t.Fatalf("ticksDue after remainder carry = %d, want 1", n)
	}
}

func TestTickSourceArmResetsReference(t *testing.T) {
	mock := clock.NewMock()
	ts := newTickSource(mock, 10*time.Millisecond)

	// Time passes between construction (Init) and arm (Start) - e.g. the
	// caller did other setup work in between. That gap must not be reported
	// as ticks needing to be caught up once the dispatcher actually starts.
	mock.Add(500 * time.Millisecond)
	ts.arm()
	if n := ts.ticksDue(); n != 0 {
		t.Fatalf("ticksDue right after arm = %d, want 0 (pre-arm gap leaked through)", n)
	}

	mock.Add(10 * time.Millisecond)
	if n := ts.ticksDue(); n != 1 {
		t.Fatalf("ticksDue after one tick post-arm = %d, want 1", n)
	}
}

func TestTickSourceSetRate(t *testing.T) {
	mock := clock.NewMock()
	ts := newTickSource(mock, 10*time.Millisecond)
	ts.setRate(5 * time.Millisecond)

	mock.Add(12 * time.Millisecond)
	if n := ts.ticksDue(); n != 2 {
		t.Fatalf("ticksDue after rate change = %d, want 2", n)
	}
}
