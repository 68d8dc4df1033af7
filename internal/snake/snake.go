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

// Package snake implements the innermost loop of Myers' algorithm: walking a diagonal as far as
// possible while the two inputs keep matching.
//
// The contract is scalar. A batched implementation (comparing 4 or 8 lanes at a time) is a valid
// substitute as long as it produces the identical end point as End below; that tradeoff is left
// to the caller, this package only defines the reference behavior.
package snake

// End advances (x, y) along the diagonal while a[x] == b[y], stopping at the bounds of a and b.
func End(a, b []int, x, y int) (int, int) {
	for x < len(a) && y < len(b) && a[x] == b[y] {
		x++
		y++
	}
	return x, y
}
