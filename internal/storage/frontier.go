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

// frontierStorage keeps a single rolling column indexed by k: only the latest x value per
// diagonal is retained. This is sufficient to compute the edit distance, but not to reconstruct
// the script, since a later write silently discards the value an earlier layer's dependents would
// need (see New's constructor-time guard).
type frontierStorage struct {
	v    []int // indexed by k + dMax
	lastD []int // in Debug mode: the d that last wrote each column, to catch stale reads
	dMax int
}

func newFrontierStorage(dMax int) *frontierStorage {
	n := 2*dMax + 1
	v := make([]int, n)
	for i := range v {
		v[i] = unset
	}
	f := &frontierStorage{v: v, dMax: dMax}
	if Debug {
		f.lastD = make([]int, n)
		for i := range f.lastD {
			f.lastD[i] = -1
		}
	}
	return f
}

func (f *frontierStorage) idx(k int) int { return k + f.dMax }

func (f *frontierStorage) Set(d, k, x int) {
	i := f.idx(k)
	f.v[i] = x
	if Debug {
		f.lastD[i] = d
	}
}

func (f *frontierStorage) Get(d, k int) int {
	i := f.idx(k)
	v := f.v[i]
	if v == unset {
		panic("storage: Get of unset cell")
	}
	if Debug && f.lastD[i] != d {
		panic("storage: Frontier storage read a stale (d, k): column was overwritten by a later d")
	}
	return v
}

func (f *frontierStorage) HasValue(d, k int) bool {
	i := f.idx(k)
	if f.v[i] == unset {
		return false
	}
	if Debug {
		return f.lastD[i] == d
	}
	return true
}

type frontierRow struct {
	f *frontierStorage
}

func (r frontierRow) At(k int) int { return r.f.v[r.f.idx(k)] }

func (f *frontierStorage) Row(int) Row {
	return frontierRow{f: f}
}
