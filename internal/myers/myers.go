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

// Package myers computes a single furthest-reaching point of the O(ND) pyramid: given the
// previous layer's row, it derives the new x for one (d, k) cell and extends it along its
// diagonal's matching run.
package myers

import (
	"github.com/flowmesh/pdiff/internal/snake"
	"github.com/flowmesh/pdiff/internal/storage"
)

// Calculate derives the furthest-reaching x for cell (d, k), given the row for layer d-1, and
// extends it through any immediately following matching run in a and b. done reports whether the
// resulting point reached the bottom-right corner (len(a), len(b)), meaning d is the edit
// distance between a and b.
//
// Layer 0's single cell (0, 0) has no predecessor; prevRow is ignored when d == 0.
func Calculate(d, k int, prevRow storage.Row, a, b []int) (x int, done bool) {
	switch {
	case d == 0:
		x = 0
	case k == -d:
		x = prevRow.At(k + 1)
	case k == d:
		x = prevRow.At(k-1) + 1
	case prevRow.At(k-1) < prevRow.At(k+1):
		x = prevRow.At(k + 1)
	default:
		x = prevRow.At(k-1) + 1
	}

	y := x - k
	x, y = snake.End(a, b, x, y)
	return x, x >= len(a) && y >= len(b)
}
