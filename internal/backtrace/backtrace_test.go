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

package backtrace

import (
	"testing"

	"github.com/flowmesh/pdiff/internal/edits"
	"github.com/flowmesh/pdiff/internal/myers"
	"github.com/flowmesh/pdiff/internal/side"
	"github.com/flowmesh/pdiff/internal/snake"
	"github.com/flowmesh/pdiff/internal/storage"
)

// fill runs a single-threaded Myers search to dMax layers and returns the store holding every
// computed cell, plus the distance at which the bottom-right corner was first reached.
func fill(a, b []int) (storage.Storage, int) {
	dMax := len(a) + len(b)
	store := storage.New(storage.Simple, true, dMax)

	x0, y0 := snake.End(a, b, 0, 0)
	store.Set(0, 0, x0)
	if x0 >= len(a) && y0 >= len(b) {
		return store, 0
	}

	for d := 1; d <= dMax; d++ {
		prev := store.Row(d - 1)
		for k := -d; k <= d; k += 2 {
			x, done := myers.Calculate(d, k, prev, a, b)
			store.Set(d, k, x)
			if done {
				return store, d
			}
		}
	}
	panic("fill: no solution found within dMax layers")
}

func applyScript(a []int, script edits.Script) []int {
	var out []int
	ai := 0
	for _, step := range script {
		for ai < step.PosX {
			out = append(out, a[ai])
			ai++
		}
		switch step.Mode {
		case edits.Delete:
			ai++
		case edits.Insert:
			out = append(out, step.InsertVal)
		}
	}
	for ai < len(a) {
		out = append(out, a[ai])
		ai++
	}
	return out
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestWalkLocalSingleWorkerReachesOriginDirectly(t *testing.T) {
	a := []int{1, 2, 3}
	b := []int{1, 9, 3}
	store, d := fill(a, b)
	if d != 2 {
		t.Fatalf("fill distance = %d, want 2", d)
	}

	k := FindCornerK(store, a, b, d)
	seg := WalkLocal(store, a, b, 1, 0, d, k)
	if !seg.Done {
		t.Fatalf("a single worker owns the whole pyramid; expected Done, got handoff to %v", seg.HandoffCell)
	}
	if seg.StartD != d || seg.StopD != 0 {
		t.Errorf("seg = {StartD:%d StopD:%d}, want {StartD:%d StopD:0}", seg.StartD, seg.StopD, d)
	}
	if seg.Steps.Len() != d {
		t.Errorf("seg.Steps.Len() = %d, want %d", seg.Steps.Len(), d)
	}

	seg.Steps.Sort()
	got := applyScript(a, seg.Steps)
	if !equalInts(got, b) {
		t.Errorf("applying the walked script gave %v, want %v", got, b)
	}
}

func TestWalkLocalHandsOffAtPartitionBoundary(t *testing.T) {
	a := []int{1, 2, 3, 1, 4, 3}
	b := []int{3, 1, 4, 1, 5, 9, 2, 6}
	store, d := fill(a, b)

	k := FindCornerK(store, a, b, d)
	// Three workers round-robin the k-range; forcing rank 2 to own the corner cell's layer
	// guarantees a handoff happens before (0, 0) unless the corner itself sits in rank 2's
	// final band all the way down, which this fixture's distance rules out.
	seg := WalkLocal(store, a, b, 3, 2, d, k)
	if seg.Done {
		t.Fatal("expected rank 2 to hand the walk off before reaching the origin")
	}
	if seg.HandoffSide != side.Left && seg.HandoffSide != side.Right {
		t.Errorf("HandoffSide = %v, want Left or Right", seg.HandoffSide)
	}
	if seg.StopD >= seg.StartD {
		t.Errorf("StopD = %d, want < StartD = %d", seg.StopD, seg.StartD)
	}
}

func TestCollectorAssemblesContiguousRuns(t *testing.T) {
	a := []int{1, 2, 3}
	b := []int{1, 9, 3}
	store, d := fill(a, b)
	k := FindCornerK(store, a, b, d)
	seg := WalkLocal(store, a, b, 1, 0, d, k)

	c := NewCollector(d)
	if c.Done() {
		t.Fatal("Collector.Done() should be false before any run is added")
	}
	c.Add(seg.Steps, seg.StartD, seg.StopD)
	if !c.Done() {
		t.Fatal("Collector.Done() should be true once a run covering the whole distance is added")
	}

	got := c.Assemble()
	if got.Len() != d {
		t.Errorf("Assemble().Len() = %d, want %d", got.Len(), d)
	}
	if out := applyScript(a, got); !equalInts(out, b) {
		t.Errorf("Assemble() produced %v, want a script transforming %v into %v", got, a, b)
	}
}

func TestCollectorIgnoresDuplicateRuns(t *testing.T) {
	c := NewCollector(4)
	steps := edits.Script{{PosX: 1, Mode: edits.Delete}}
	c.Add(steps, 4, 2)
	c.Add(steps, 4, 2) // same StopD, should not double-count
	if c.Done() {
		t.Fatal("two layers of four should not yet satisfy Done()")
	}
	c.Add(edits.Script{{PosX: 0, Mode: edits.Delete}}, 2, 0)
	if !c.Done() {
		t.Fatal("adding the remaining two layers should satisfy Done()")
	}
}

func TestFindCornerKPanicsWithoutAMatchingCell(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected FindCornerK to panic when no cell at layer d reaches the corner")
		}
	}()
	store := storage.New(storage.Simple, true, 4)
	store.Set(1, -1, 0)
	store.Set(1, 1, 0)
	FindCornerK(store, []int{1, 2}, []int{1, 2}, 1)
}
