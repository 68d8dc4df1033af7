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

package myers

import (
	"testing"

	"github.com/flowmesh/pdiff/internal/snake"
	"github.com/flowmesh/pdiff/internal/storage"
)

// buildPyramid runs the textbook single-worker O(ND) search to completion and returns the
// storage, for use as a reference oracle in tests below.
func buildPyramid(a, b []int) (storage.Storage, int) {
	s := storage.New(storage.Simple, true, len(a)+len(b))
	x0, y0 := snake.End(a, b, 0, 0)
	s.Set(0, 0, x0)
	if x0 >= len(a) && y0 >= len(b) {
		return s, 0
	}
	for d := 1; ; d++ {
		prev := s.Row(d - 1)
		done := false
		for k := -d; k <= d; k += 2 {
			x, reached := Calculate(d, k, prev, a, b)
			s.Set(d, k, x)
			if reached {
				done = true
			}
		}
		if done {
			return s, d
		}
	}
}

func TestCalculateEditDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b []int
		want int
	}{
		{"identical", []int{1, 2, 3}, []int{1, 2, 3}, 0},
		{"all deleted", []int{1, 2, 3}, []int{}, 3},
		{"all inserted", []int{}, []int{1, 2, 3}, 3},
		{"one substitution", []int{1, 2, 3}, []int{1, 9, 3}, 2},
		{"classic example", []int{1, 2, 3, 1, 4, 3}, []int{3, 1, 4, 1, 5, 9, 2, 6}, 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, d := buildPyramid(tt.a, tt.b)
			if d != tt.want {
				t.Errorf("edit distance = %d, want %d", d, tt.want)
			}
		})
	}
}

func TestCalculateFurthestReaching(t *testing.T) {
	// a has no matches with b at all, so every step is a pure insert/delete and x should
	// track the textbook diagonal-walk triangle exactly.
	a := []int{1, 1, 1}
	b := []int{2, 2, 2}
	s := storage.New(storage.Simple, true, 6)
	s.Set(0, 0, 0)
	prev := s.Row(0)
	x, done := Calculate(1, 1, prev, a, b)
	if x != 1 || done {
		t.Errorf("Calculate(1,1) = %d,%v want 1,false", x, done)
	}
	x, done = Calculate(1, -1, prev, a, b)
	if x != 0 || done {
		t.Errorf("Calculate(1,-1) = %d,%v want 0,false", x, done)
	}
}
