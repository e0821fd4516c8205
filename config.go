// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package rtostmr

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultBuckets is W from spec §3: "W=10 in the reference design".
const DefaultBuckets = 10

// Config holds the values spec §6 lists as externally supplied: pool size,
// bucket count, and tick rate. The YAML shape follows the teacher's own
// ambient conventions as seen across the example corpus's config packages
// (a single flat, yaml-tagged struct with a ParseConfig/LoadConfig pair).
type Config struct {
	// PoolSize is N, the fixed timer-pool capacity (spec §4.6 step 1,
	// "N>0"). Interactive prompting, as the reference does with scanf, is
	// explicitly out of scope (spec §1); this is read from config instead.
	PoolSize int `yaml:"pool_size"`

	// Buckets is W, the wheel size. Fixed for the lifetime of the manager
	// once Init returns (spec §3).
	Buckets uint32 `yaml:"buckets"`

	// TickRate is the host interval-timer period (RTOS_CFG_TMR_TASK_RATE,
	// spec §4.6 step 7 / §6).
	TickRate time.Duration `yaml:"tick_rate"`
}

// DefaultConfig returns a Config with the reference's defaults (W=10) and a
// conservative pool size/tick rate, useful for tests and the demo.
func DefaultConfig() Config {
	return Config{
		PoolSize: 64,
		Buckets:  DefaultBuckets,
		TickRate: 10 * time.Millisecond,
	}
}

// Validate checks the invariants spec §4.6 step 1 and §7 require before
// Init allocates anything ("init allocation failure is fatal and aborts
// Init").
func (c Config) Validate() error {
	if c.PoolSize <= 0 {
		return fmt.Errorf("%w: pool_size must be > 0, got %d", ErrMalloc, c.PoolSize)
	}
	if c.Buckets == 0 {
		return fmt.Errorf("%w: buckets must be > 0, got %d", ErrMalloc, c.Buckets)
	}
	if c.TickRate <= 0 {
		return fmt.Errorf("%w: tick_rate must be > 0, got %s", ErrMalloc, c.TickRate)
	}
	return nil
}

// ParseConfig parses YAML configuration data, following
// butter-bot-machines/skylark's pkg/config.ParseConfig shape.
func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("rtostmr: failed to parse config: %w", err)
	}
	return &cfg, nil
}

// LoadConfig reads and parses a YAML config file from disk.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("rtostmr: failed to read config %s: %w", path, err)
	}
	return ParseConfig(data)
}

// Marshal serializes the config back to YAML, mirroring the corpus's
// (*Config).Marshal() convention.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
