// Copyright 2026 The Pdiff Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config holds the tunables shared by every worker in a run: how many workers to
// simulate, whether to reconstruct an edit script, and which storage strategy each worker uses.
package config

import "github.com/flowmesh/pdiff/internal/storage"

// Config is the resolved configuration for one run of the engine, identical across all workers.
type Config struct {
	NumWorkers int
	WantScript bool
	Storage    storage.Kind

	// MinEntries is accepted for CLI-contract compatibility with the source tool's -min_entries
	// flag. There it tunes the growth threshold of an alternative, staggered-startup partitioning
	// strategy (each worker starts alone and later workers are spawned once a layer accumulates
	// MinEntries cells) that this engine does not implement; the round-robin Partition this
	// engine uses has no equivalent knob. It is parsed and stored but otherwise inert.
	MinEntries int
}

// Option configures a Config.
type Option func(*Config)

// Default returns the baseline configuration: a single worker, script reconstruction off, Fast
// storage, and no small-input shortcut.
func Default() *Config {
	return &Config{
		NumWorkers: 1,
		WantScript: false,
		Storage:    storage.Fast,
	}
}

// New builds a Config from Default with the given options applied in order.
func New(opts ...Option) *Config {
	c := Default()
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithNumWorkers sets how many workers cooperate on the computation.
func WithNumWorkers(n int) Option {
	return func(c *Config) { c.NumWorkers = n }
}

// WithScript requests edit script reconstruction in addition to the edit distance.
func WithScript(want bool) Option {
	return func(c *Config) { c.WantScript = want }
}

// WithStorage selects the per-worker (d, k) storage strategy.
func WithStorage(kind storage.Kind) Option {
	return func(c *Config) { c.Storage = kind }
}

// WithMinEntries records the -min_entries tunable; see Config.MinEntries for why this engine's
// round-robin partition does not act on it.
func WithMinEntries(n int) Option {
	return func(c *Config) { c.MinEntries = n }
}

// Validate reports whether the configuration is internally consistent.
func (c *Config) Validate() error {
	if c.NumWorkers < 1 {
		return errNumWorkers
	}
	if c.WantScript && c.Storage == storage.Frontier {
		return errFrontierScript
	}
	return nil
}
