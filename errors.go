// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package rtostmr

import "errors"

// Sentinel errors returned by the public API. Names mirror the numeric
// error surface from the original timer manager (RTOS_ERR_TMR_*) so callers
// migrating from it can map one to one; see ErrCode/CodeOf for the numeric
// form itself.
var (
	ErrInvalid       = errors.New("rtostmr: invalid timer handle")
	ErrInvalidType   = errors.New("rtostmr: handle does not refer to a timer record")
	ErrInvalidOpt    = errors.New("rtostmr: invalid timer option")
	ErrInvalidDelay  = errors.New("rtostmr: one-shot timer requires delay > 0")
	ErrInvalidPeriod = errors.New("rtostmr: periodic timer requires period > 0")
	ErrInvalidState  = errors.New("rtostmr: operation not valid in current timer state")
	ErrInactive      = errors.New("rtostmr: operation requires an armed timer")
	ErrStopped       = errors.New("rtostmr: timer already stopped")
	ErrNoCallback    = errors.New("rtostmr: stop callback requested but timer has no callback")
	ErrNonAvail      = errors.New("rtostmr: no timer available in pool")
	ErrMalloc        = errors.New("rtostmr: pool allocation failed at init")
)

// ErrCode is the numeric error surface named in spec §6, kept for callers
// that want to switch on a code instead of an error value, following the
// original RTOS_ERR_TMR_* surface.
type ErrCode uint8

const (
	CodeNone ErrCode = iota
	CodeSuccess
	CodeInvalid
	CodeInvalidType
	CodeInvalidOpt
	CodeInvalidDelay
	CodeInvalidPeriod
	CodeInvalidState
	CodeInactive
	CodeStopped
	CodeNoCallback
	CodeNonAvail
	CodeMalloc
)

// CodeOf maps an error returned by this package to its numeric ErrCode.
// nil maps to CodeSuccess, unrecognized errors map to CodeNone. Wrapped
// errors (such as Init's config validation errors, which wrap ErrMalloc)
// are matched by their innermost error.
func CodeOf(err error) ErrCode {
	for u := errors.Unwrap(err); u != nil; u = errors.Unwrap(err) {
		err = u
	}
	switch err {
	case nil:
		return CodeSuccess
	case ErrInvalid:
		return CodeInvalid
	case ErrInvalidType:
		return CodeInvalidType
	case ErrInvalidOpt:
		return CodeInvalidOpt
	case ErrInvalidDelay:
		return CodeInvalidDelay
	case ErrInvalidPeriod:
		return CodeInvalidPeriod
	case ErrInvalidState:
		return CodeInvalidState
	case ErrInactive:
		return CodeInactive
	case ErrStopped:
		return CodeStopped
	case ErrNoCallback:
		return CodeNoCallback
	case ErrNonAvail:
		return CodeNonAvail
	case ErrMalloc:
		return CodeMalloc
	default:
		return CodeNone
	}
}
