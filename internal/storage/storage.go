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

// Package storage implements the three interchangeable (d, k) -> x maps a worker uses to retain
// the cells of the Myers pyramid it owns: Simple (one vector per layer), Fast (a blocked, lazily
// allocated pyramid) and Frontier (a single rolling column, sufficient when only the edit distance
// is needed).
package storage

// Debug enables the invariant checks described by the storage contract: rejecting a duplicate
// Set and, for Frontier, a Get for a (d, k) that was overwritten by a later d on the same column.
// It is a single process-wide switch read once at startup, not a per-call parameter, mirroring
// how a leveled logger is configured once and threaded through rather than toggled ad hoc.
var Debug = false

// Row is a contiguous view over layer d that lets the inner recurrence loop read V[d, k] via an
// offset function instead of a bounds-checked map lookup.
type Row interface {
	At(k int) int
}

// Storage is the uniform (d, k) -> x contract implemented by Simple, Fast and Frontier.
type Storage interface {
	// Set stores x at (d, k). When Debug is set, implementations other than Frontier panic if
	// (d, k) was already set.
	Set(d, k, x int)

	// Get returns the value stored at (d, k). It panics if (d, k) was never set.
	Get(d, k int) int

	// HasValue reports whether (d, k) has been set, without panicking. Used by the receive path
	// to deduplicate messages.
	HasValue(d, k int) bool

	// Row returns a view over layer d suitable for the hot inner loop.
	Row(d int) Row
}

// Kind selects a Storage implementation.
type Kind int

const (
	Simple Kind = iota
	Fast
	Frontier
)

// New constructs a Storage of the given kind. dMax is the maximum layer the pyramid will ever
// reach (|A|+|B|). Requesting Frontier while needScript is true is rejected at construction time:
// Frontier storage only retains the latest value per diagonal, so a backtrace over it would read
// stale values (see the package doc of backtrace for the long version of this story).
func New(kind Kind, needScript bool, dMax int) Storage {
	switch kind {
	case Simple:
		return newSimpleStorage()
	case Fast:
		return newFastStorage(defaultBlockLen)
	case Frontier:
		if needScript {
			panic("storage: Frontier storage cannot be used when an edit script is requested")
		}
		return newFrontierStorage(dMax)
	default:
		panic("storage: unknown kind")
	}
}
