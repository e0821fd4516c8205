// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package rtostmr

import (
	"fmt"

	"github.com/intuitivelabs/slog"
)

// NAME identifies this package in logs and is used as the slog logger
// prefix, mirroring the teacher's own wtimer.NAME constant.
const NAME = "rtostmr"

// Log is the package-wide logger. Its call shape (SetLevel taking a
// pointer) is pinned by the commented-out slog.SetLevel(&Log, slog.LWARN)
// left in the teacher's own tests; the teacher's debug.go that builds it
// was not part of the retrieved sources, so this reconstructs it following
// that fragment.
var Log slog.Log

func init() {
	Log.Init(NAME)
	slog.SetLevel(&Log, slog.LWARN)
}

// DBGon reports whether debug-level logging is enabled.
func DBGon() bool { return Log.DBGon() }

// ERRon reports whether error-level logging is enabled.
func ERRon() bool { return Log.ERRon() }

// WARNon reports whether warning-level logging is enabled.
func WARNon() bool { return Log.WARNon() }

// DBG logs a debug message.
func DBG(f string, v ...interface{}) { Log.DBG(f, v...) }

// ERR logs an error message.
func ERR(f string, v ...interface{}) { Log.ERR(f, v...) }

// WARN logs a warning message.
func WARN(f string, v ...interface{}) { Log.WARN(f, v...) }

// BUG logs an invariant violation. Unlike PANIC it does not abort: some
// invariant breaches (spec §9's remove_hash_entry null-traversal case) are
// defended against rather than treated as fatal.
func BUG(f string, v ...interface{}) { Log.BUG(f, v...) }

// PANIC logs a fatal invariant violation and aborts the process. Reserved
// for corruption of the pool/wheel data structures themselves (a timer on
// two lists, a bucket whose match doesn't key to its own index); never used
// for a misbehaving callback, which the dispatcher isolates instead
// (see invokeCallback in dispatcher.go).
func PANIC(f string, v ...interface{}) {
	Log.PANIC(f, v...)
	panic(fmt.Sprintf(f, v...))
}
