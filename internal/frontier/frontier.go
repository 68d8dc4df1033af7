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

// Package frontier tracks how much of a rank's (d, k) pyramid has already been computed, as a
// sorted set of covered triangle bottoms, and answers the "what diamond of work is next" query
// that drives a Strategy's decision cycle.
package frontier

import (
	"sort"

	"github.com/flowmesh/pdiff/internal/geometry"
)

// sentinelMargin places the two bottoms New seeds just outside the widest diagonal this rank will
// ever own, so get_next_exposed_diamond always has a left and right neighbor to intersect against,
// even on the very first call before anything real has been covered.
const sentinelMargin = 2

// Frontier is the sorted-by-k set of covered triangle bottoms, bracketed on both ends by sentinel
// bottoms that never correspond to a real computed cell.
type Frontier struct {
	bottoms []geometry.Cell
}

// New returns a Frontier for a pyramid bounded to layer dMax: nothing real has been covered yet,
// but the two sentinel bottoms already bracket the full k range so NextExposedDiamond has
// something to intersect against immediately.
func New(dMax int) *Frontier {
	return &Frontier{
		bottoms: []geometry.Cell{
			{D: dMax, K: -dMax - sentinelMargin},
			{D: dMax, K: dMax + sentinelMargin},
		},
	}
}

// Cover records that the down-cone triangle rooted at bottom p has been fully computed: every
// existing bottom q that isn't outside p's triangle is already subsumed by it and is dropped, then
// p itself is inserted in k order.
func (f *Frontier) Cover(p geometry.Cell) {
	kept := f.bottoms[:0]
	for _, q := range f.bottoms {
		if geometry.PointOutside(q, p) {
			kept = append(kept, q)
		}
	}
	kept = append(kept, p)
	sort.Slice(kept, func(i, j int) bool { return kept[i].K < kept[j].K })
	f.bottoms = kept
}

// NextExposedDiamond scans every adjacent pair of covered bottoms whose exposed top lies inside
// target's triangle and returns the diamond of work between the pair whose exposed top has the
// smallest |k| (the leftmost such pair on equal |k|), mirroring get_next_exposed_diamond. ok is
// false only if target is already fully covered by some existing triangle.
func (f *Frontier) NextExposedDiamond(target geometry.Cell) (d geometry.Diamond, ok bool) {
	var bestTop geometry.Cell
	var bestPrev, bestNext geometry.Cell
	found := false

	for i := 0; i+1 < len(f.bottoms); i++ {
		prev, next := f.bottoms[i], f.bottoms[i+1]
		exposedTop := geometry.IntersectTriangles(prev, next)
		if !geometry.PointOnInside(exposedTop, target) {
			continue
		}
		if !found || abs(exposedTop.K) < abs(bestTop.K) {
			bestTop, bestPrev, bestNext = exposedTop, prev, next
			found = true
		}
	}
	if !found {
		return geometry.Diamond{}, false
	}

	top := geometry.Cell{D: bestTop.D + 2, K: bestTop.K}
	bottom := geometry.IntersectTriangles(target, geometry.TriangleThroughPoints(bestPrev, bestNext))
	return geometry.Diamond{Top: top, Bottom: bottom}, true
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
