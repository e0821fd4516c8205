// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

// Command rtostmrdemo runs the three-timer scenario used throughout
// rtostmr's own tests: a fast periodic timer, a slower periodic timer, and
// a one-shot, all started together. It exists to exercise the package end
// to end, not as a feature of the core timer manager itself.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/intuitivelabs/rtostmr"
)

func main() {
	cfgPath := flag.String("config", "", "path to a YAML config file (pool_size, buckets, tick_rate)")
	flag.Parse()

	cfg := rtostmr.DefaultConfig()
	if *cfgPath != "" {
		loaded, err := rtostmr.LoadConfig(*cfgPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "rtostmrdemo: %v\n", err)
			os.Exit(1)
		}
		cfg = *loaded
	}

	m, err := rtostmr.Init(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "rtostmrdemo: init failed: %v\n", err)
		os.Exit(1)
	}
	m.Start()

	named := func(name string) rtostmr.CallbackFunc {
		return func(arg interface{}) {
			fmt.Printf("%s fired, arg=%v\n", name, arg)
		}
	}

	t1, err := m.Create(50, 50, rtostmr.Periodic, named("T1"), nil, "T1")
	if err != nil {
		fmt.Fprintf(os.Stderr, "rtostmrdemo: create T1: %v\n", err)
		os.Exit(1)
	}
	t2, err := m.Create(30, 30, rtostmr.Periodic, named("T2"), nil, "T2")
	if err != nil {
		fmt.Fprintf(os.Stderr, "rtostmrdemo: create T2: %v\n", err)
		os.Exit(1)
	}
	t3, err := m.Create(100, 0, rtostmr.OneShot, named("T3"), nil, "T3")
	if err != nil {
		fmt.Fprintf(os.Stderr, "rtostmrdemo: create T3: %v\n", err)
		os.Exit(1)
	}

	for _, h := range []rtostmr.Handle{t1, t2, t3} {
		if err := m.Start(h); err != nil {
			fmt.Fprintf(os.Stderr, "rtostmrdemo: start: %v\n", err)
			os.Exit(1)
		}
	}

	time.Sleep(cfg.TickRate * 160)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := m.Shutdown(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "rtostmrdemo: shutdown: %v\n", err)
		os.Exit(1)
	}
}
