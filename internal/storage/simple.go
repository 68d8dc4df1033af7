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

package storage

import "math"

const unset = math.MinInt

// simpleStorage is a vector of per-layer vectors of width 2d+1, indexed by k+d. Grounded on the
// rolling v-array indexing scheme used throughout this codebase's Myers recurrence, generalized
// from two reused rows to one retained row per layer.
type simpleStorage struct {
	rows [][]int
}

func newSimpleStorage() *simpleStorage {
	return &simpleStorage{}
}

func (s *simpleStorage) ensure(d int) []int {
	for len(s.rows) <= d {
		width := 2*len(s.rows) + 1
		row := make([]int, width)
		for i := range row {
			row[i] = unset
		}
		s.rows = append(s.rows, row)
	}
	return s.rows[d]
}

func (s *simpleStorage) Set(d, k, x int) {
	row := s.ensure(d)
	i := k + d
	if Debug && row[i] != unset {
		panic("storage: duplicate Set")
	}
	row[i] = x
}

func (s *simpleStorage) Get(d, k int) int {
	if d >= len(s.rows) {
		panic("storage: Get of unset cell")
	}
	v := s.rows[d][k+d]
	if v == unset {
		panic("storage: Get of unset cell")
	}
	return v
}

func (s *simpleStorage) HasValue(d, k int) bool {
	if d >= len(s.rows) {
		return false
	}
	return s.rows[d][k+d] != unset
}

type simpleRow struct {
	row []int
	d   int
}

func (r simpleRow) At(k int) int { return r.row[k+r.d] }

func (s *simpleStorage) Row(d int) Row {
	return simpleRow{row: s.ensure(d), d: d}
}
