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

package frontier

import (
	"testing"

	"github.com/flowmesh/pdiff/internal/geometry"
)

func TestNewBracketsFullWidth(t *testing.T) {
	f := New(10)
	if len(f.bottoms) != 2 {
		t.Fatalf("New(10) should seed exactly two sentinel bottoms, got %v", f.bottoms)
	}
	target := geometry.Cell{D: 6, K: 0}
	if _, ok := f.NextExposedDiamond(target); !ok {
		t.Error("a fresh Frontier should expose a diamond toward any in-range target")
	}
}

func TestCoverAbsorbsDominatedTriangle(t *testing.T) {
	f := New(10)
	f.Cover(geometry.Cell{D: 1, K: 1})
	f.Cover(geometry.Cell{D: 4, K: 2}) // larger cone, should subsume the smaller one at K=1

	for _, b := range f.bottoms {
		if b.D == 1 && b.K == 1 {
			t.Fatalf("expected the smaller triangle to be absorbed, got %v", f.bottoms)
		}
	}
}

func TestCoverKeepsDisjointTriangles(t *testing.T) {
	f := New(10)
	f.Cover(geometry.Cell{D: 2, K: -2})
	f.Cover(geometry.Cell{D: 2, K: 2})

	count := 0
	for _, b := range f.bottoms {
		if b.D == 2 {
			count++
		}
	}
	if count != 2 {
		t.Fatalf("expected both disjoint triangles to survive, got %v", f.bottoms)
	}
}

func TestNextExposedDiamondBoundedByNeighbors(t *testing.T) {
	f := New(10)
	f.Cover(geometry.Cell{D: 2, K: -2})
	f.Cover(geometry.Cell{D: 2, K: 2})

	target := geometry.Cell{D: 6, K: 0}
	d, ok := f.NextExposedDiamond(target)
	if !ok {
		t.Fatal("expected an exposed diamond toward target")
	}
	if d.Top.D > target.D {
		t.Errorf("Top.D = %d should not exceed target.D = %d", d.Top.D, target.D)
	}
}

func TestNextExposedDiamondNoneWhenFullyCovered(t *testing.T) {
	f := New(10)
	target := geometry.Cell{D: 4, K: 0}
	d, ok := f.NextExposedDiamond(target)
	if !ok {
		t.Fatal("expected an initial exposed diamond")
	}
	f.Cover(d.Bottom)

	if _, ok := f.NextExposedDiamond(target); ok {
		t.Error("target should no longer be exposed once its covering bottom is recorded")
	}
}

func TestCoverPrefersSmallestAbsK(t *testing.T) {
	f := New(10)
	f.Cover(geometry.Cell{D: 2, K: -2})
	f.Cover(geometry.Cell{D: 6, K: 6})

	target := geometry.Cell{D: 8, K: 4}
	d, ok := f.NextExposedDiamond(target)
	if !ok {
		t.Fatal("expected an exposed diamond toward target")
	}
	// The pair bracketing target most tightly should win over the far sentinel pair.
	if d.Bottom != target {
		t.Errorf("Bottom = %v, want %v", d.Bottom, target)
	}
}
