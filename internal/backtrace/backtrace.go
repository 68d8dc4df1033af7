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

// Package backtrace reconstructs an edit script by walking the completed (d, k) pyramid backward
// from the bottom-right corner to the origin, one worker's owned k-range at a time.
//
// Each worker only ever retains the cells its partition assigned it on the forward pass (using
// Simple or Fast storage, never Frontier, which only keeps the latest value per diagonal). The
// worker that found the final result starts the walk at its corner cell. Whenever the walk would
// step into a (d-1, k) outside the current worker's owned range, that worker stops, reports its
// own contiguous run of steps directly to worker 0, and hands the bare continuation cell off to
// whichever ring neighbor owns it next. Worker 0 assembles the full script once the reported
// step-runs' d-intervals cover [1, edit_distance].
package backtrace

import (
	"github.com/flowmesh/pdiff/internal/edits"
	"github.com/flowmesh/pdiff/internal/geometry"
	"github.com/flowmesh/pdiff/internal/partition"
	"github.com/flowmesh/pdiff/internal/side"
	"github.com/flowmesh/pdiff/internal/storage"
)

// Segment is one worker's contribution to the backward walk.
type Segment struct {
	// Steps covers layers (StopD, StartD], ordered from StartD down to StopD+1.
	Steps         edits.Script
	StartD, StopD int
	// Done reports whether the walk reached (0, 0) and needs no further hand-off: only the
	// worker owning layer 0 (rank 0) ever sees this.
	Done bool
	// HandoffSide and HandoffCell are meaningful only when !Done: which neighbor owns the next
	// cell, and that cell itself.
	HandoffSide side.Side
	HandoffCell geometry.Cell
}

// WalkLocal walks backward from (d, k) through store, which must already hold every value rank r
// owns plus whatever boundary cells it received from its neighbors on the forward pass. It emits
// one Step per non-diagonal move and stops either at (0, 0) or at the first cell layer d-1 assigns
// to a different rank under an n-worker round-robin partition.
func WalkLocal(store storage.Storage, a, b []int, n, r, d, k int) Segment {
	seg := Segment{StartD: d}
	for d > 0 {
		row := store.Row(d - 1)

		var down bool
		switch {
		case k == -d:
			down = true
		case k == d:
			down = false
		default:
			down = row.At(k-1) < row.At(k+1)
		}

		var prevK int
		if down {
			prevK = k + 1
		} else {
			prevK = k - 1
		}

		kmin, kmax, _ := partition.KRangeAt(n, r, d-1)
		if prevK < kmin {
			seg.StopD = d - 1
			seg.HandoffSide = side.Left
			seg.HandoffCell = geometry.Cell{D: d - 1, K: prevK}
			return seg
		}
		if prevK > kmax {
			seg.StopD = d - 1
			seg.HandoffSide = side.Right
			seg.HandoffCell = geometry.Cell{D: d - 1, K: prevK}
			return seg
		}

		prevX := row.At(prevK)
		prevY := prevX - prevK
		if down {
			seg.Steps = append(seg.Steps, edits.Step{PosX: prevX, Mode: edits.Insert, InsertVal: b[prevY]})
		} else {
			seg.Steps = append(seg.Steps, edits.Step{PosX: prevX, Mode: edits.Delete})
		}

		k = prevK
		d--
	}
	seg.StopD = 0
	seg.Done = true
	return seg
}

// FindCornerK returns the k at which layer d's row reaches the bottom-right corner (len(a),
// len(b)), i.e. the diagonal the final worker's corner cell sits on.
func FindCornerK(store storage.Storage, a, b []int, d int) int {
	for k := -d; k <= d; k += 2 {
		if !store.HasValue(d, k) {
			continue
		}
		x := store.Get(d, k)
		if y := x - k; x == len(a) && y == len(b) {
			return k
		}
	}
	panic("backtrace: no cell at the edit-distance layer reaches the bottom-right corner")
}

// Collector accumulates the step-runs worker 0 receives from every contributor and reports once
// their d-intervals fully cover (0, distance].
type Collector struct {
	distance int
	covered  map[int]edits.Script // by StopD: the run covering (StopD, StartD]
	have     int                  // number of distinct layers covered so far
}

// NewCollector builds a Collector for an edit distance of d.
func NewCollector(d int) *Collector {
	return &Collector{distance: d, covered: make(map[int]edits.Script)}
}

// Add records one reported run. Runs may arrive in any order and from any rank.
func (c *Collector) Add(steps edits.Script, startD, stopD int) {
	if _, ok := c.covered[stopD]; ok {
		return // duplicate delivery; the fabric guarantees order but not exactly-once here
	}
	c.covered[stopD] = steps
	c.have += startD - stopD
}

// Done reports whether every layer in (0, distance] has been covered by some reported run.
func (c *Collector) Done() bool {
	return c.have >= c.distance
}

// Assemble concatenates every reported run, in forward layer order, into one canonical script.
// Only valid once Done reports true.
func (c *Collector) Assemble() edits.Script {
	var out edits.Script
	for stopD := 0; stopD < c.distance; stopD++ {
		// Each run lists its steps from its highest layer down; reverse it so that consecutive
		// inserts at the same position keep their forward order through the stable sort.
		steps := c.covered[stopD]
		for i := len(steps) - 1; i >= 0; i-- {
			out = append(out, steps[i])
		}
	}
	out.Sort()
	return out
}
