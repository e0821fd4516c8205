// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package rtostmr

import (
	"context"
	"sync"
)

var (
	defaultOnce sync.Once
	defaultMgr  *Manager
	defaultErr  error
)

// Default returns a process-wide Manager built from DefaultConfig() and
// started on first use (DESIGN NOTES §9's "init-once wrapper" suggestion).
// Most callers that care about pool size or tick rate should build their
// own Manager via Init/Start instead; Default exists for callers that
// genuinely want a single shared instance and don't care how it's sized.
func Default() (*Manager, error) {
	defaultOnce.Do(func() {
		defaultMgr, defaultErr = Init(DefaultConfig())
		if defaultErr == nil {
			defaultMgr.Start()
		}
	})
	return defaultMgr, defaultErr
}

// SetDefault overrides the process-wide Manager returned by Default,
// shutting down whatever it previously held (if it had already been
// initialized via Default()). Intended for tests and for programs that
// build their own Manager but still want Default() to resolve to it.
func SetDefault(m *Manager) {
	defaultOnce.Do(func() {})
	if defaultMgr != nil && defaultMgr != m {
		_ = defaultMgr.Shutdown(context.Background())
	}
	defaultMgr = m
	defaultErr = nil
}
