// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package rtostmr

// Opt selects one-shot vs periodic re-arming (spec §3's "opt" field,
// RTOS_TMR_ONE_SHOT / RTOS_TMR_PERIODIC in the original).
type Opt uint8

const (
	OneShot Opt = iota + 1
	Periodic
)

func (o Opt) String() string {
	switch o {
	case OneShot:
		return "ONE_SHOT"
	case Periodic:
		return "PERIODIC"
	default:
		return "INVALID_OPT"
	}
}

// State is a timer record's lifecycle state (spec §3).
type State uint8

const (
	Unused State = iota
	Stopped
	Running
	Completed
)

func (s State) String() string {
	switch s {
	case Unused:
		return "UNUSED"
	case Stopped:
		return "STOPPED"
	case Running:
		return "RUNNING"
	case Completed:
		return "COMPLETED"
	default:
		return "INVALID_STATE"
	}
}

// StopOpt controls whether/with what argument Stop invokes the callback
// (spec §4.4).
type StopOpt uint8

const (
	StopNone StopOpt = iota
	StopCallback
	StopCallbackArg
)

// CallbackFunc is invoked by the dispatcher when a timer expires, and
// optionally by Stop. It must be non-blocking and must not call back into
// the manager for anything but a state query on its own timer (spec §5).
type CallbackFunc func(arg interface{})

// record is a single preallocated timer slot. Records live in a fixed-size
// arena (see pool.go) and are never individually allocated/freed by the Go
// runtime after Init; "allocation" and "free" only move a record between
// the pool free-list and a wheel bucket, exactly as spec §3's Lifecycle
// describes. prev/next thread whichever idxList currently owns the record.
type record struct {
	state State
	opt   Opt

	delay  uint32
	period uint32
	match  Ticks

	callback CallbackFunc
	arg      interface{}
	name     string

	prev, next int32

	// generation is bumped every time the record returns to the pool, so a
	// stale Handle captured before a Delete/realloc is rejected instead of
	// silently operating on a reused slot (DESIGN.md's handle-vs-pointer
	// note, replacing the original's RTOSTmrType sentinel check).
	generation uint32
}

// Handle is an opaque reference to a timer record, returned by Create.
// It deliberately carries no pointer so handles are safe to copy, compare,
// and hold past a Delete/Stop without risking a dangling reference.
type Handle struct {
	index      int32
	generation uint32
}

// valid reports whether h looks like it could reference a real slot. It
// doesn't check generation or state; callers resolve through
// Manager.resolve for that.
func (h Handle) valid() bool {
	return h.index >= 0
}
