// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package rtostmr

import (
	"github.com/fsnotify/fsnotify"
)

// WatchConfig watches path for changes and hot-reloads only TickRate into
// m (spec §6: pool_size and buckets are fixed for the manager's lifetime
// once Init has run, since the pool and wheel are preallocated to them; a
// changed tick_rate just reshapes how the dispatcher paces itself). The
// returned *fsnotify.Watcher must be closed by the caller to stop watching.
func WatchConfig(m *Manager, path string) (*fsnotify.Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(path); err != nil {
		w.Close()
		return nil, err
	}
	go func() {
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				m.reloadTickRate(path)
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				ERR("config watcher error on %s: %v\n", path, err)
			}
		}
	}()
	return w, nil
}

func (m *Manager) reloadTickRate(path string) {
	cfg, err := LoadConfig(path)
	if err != nil {
		WARN("config reload of %s failed, keeping current tick_rate: %v\n", path, err)
		return
	}
	if cfg.PoolSize != m.cfg.PoolSize || cfg.Buckets != m.cfg.Buckets {
		WARN("config reload of %s ignored pool_size/buckets change (fixed at Init)\n", path)
	}
	if cfg.TickRate <= 0 || cfg.TickRate == m.cfg.TickRate {
		return
	}
	old := m.cfg.TickRate
	m.cfg.TickRate = cfg.TickRate
	m.ts.setRate(cfg.TickRate)
	if DBGon() {
		DBG("tick_rate reloaded from %s: %s -> %s\n", path, old, cfg.TickRate)
	}
}
