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

// Package pdiff computes the Myers edit distance, and optionally an edit script, between two
// integer sequences by simulating a distributed pyramid of cooperating workers over goroutines
// and channels.
package pdiff

import (
	"context"

	"github.com/flowmesh/pdiff/internal/config"
	"github.com/flowmesh/pdiff/internal/edits"
	"github.com/flowmesh/pdiff/internal/fabric"
	"github.com/flowmesh/pdiff/internal/orchestrator"
)

// Option configures a Diff call; it re-exports config.Option so callers never need to import the
// internal package directly.
type Option = config.Option

// WithNumWorkers sets how many simulated workers cooperate on the computation. The default is a
// single worker, a sequential Myers search.
func WithNumWorkers(n int) Option { return config.WithNumWorkers(n) }

// WithScript requests that Diff also reconstruct and return the edit script.
func WithScript() Option { return config.WithScript(true) }

// WithMinEntries records the -min_entries tunable accepted for CLI-contract compatibility with
// the source tool; see config.Config.MinEntries for why Diff's round-robin partition does not
// act on it.
func WithMinEntries(n int) Option { return config.WithMinEntries(n) }

// Step is one edit operation in a Script; see internal/edits for the full vocabulary.
type Step = edits.Step

// Mode distinguishes Step's two kinds of operation.
type Mode = edits.Mode

const (
	Delete = edits.Delete
	Insert = edits.Insert
)

// Script is a complete edit script transforming a into b.
type Script = edits.Script

// Diff computes the edit distance between a and b, and, if WithScript was given, the edit script
// that realizes it. The computation runs across cfg.NumWorkers goroutines exchanging messages
// over an in-process fabric simulating a distributed pyramid.
func Diff(ctx context.Context, a, b []int, opts ...Option) (distance int, script Script, err error) {
	cfg := config.New(opts...)
	if err := cfg.Validate(); err != nil {
		return 0, nil, err
	}
	f := fabric.New(cfg.NumWorkers)
	return orchestrator.Run(ctx, cfg, f, a, b)
}
