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

const defaultBlockLen = 20

// fastStorage partitions layers into fixed-size blocks of blockLen layers and lazily allocates
// each block's contiguous buffer on first write, avoiding the cost of touching every layer
// up-front the way simpleStorage does.
type fastStorage struct {
	blockLen int
	blocks   [][]int
}

func newFastStorage(blockLen int) *fastStorage {
	if blockLen <= 0 {
		blockLen = defaultBlockLen
	}
	return &fastStorage{blockLen: blockLen}
}

// blockOffset returns the block index and the offset of row d's first element within that
// (lazily allocated) block's flat buffer.
//
// Within a block starting at layer d0, row i (0-indexed locally) has width 2*(d0+i)+1. The flat
// offset of row i is the sum of the widths of rows 0..i-1, which telescopes to i*(2*d0+i).
func (s *fastStorage) blockOffset(d int) (block, d0, local, offset int) {
	block = d / s.blockLen
	d0 = block * s.blockLen
	local = d - d0
	offset = local * (2*d0 + local)
	return
}

func (s *fastStorage) blockSize(d0 int) int {
	return s.blockLen * (2*d0 + s.blockLen)
}

func (s *fastStorage) ensureBlock(block, d0 int) []int {
	for len(s.blocks) <= block {
		s.blocks = append(s.blocks, nil)
	}
	if s.blocks[block] == nil {
		buf := make([]int, s.blockSize(d0))
		for i := range buf {
			buf[i] = unset
		}
		s.blocks[block] = buf
	}
	return s.blocks[block]
}

func (s *fastStorage) Set(d, k, x int) {
	block, d0, _, offset := s.blockOffset(d)
	buf := s.ensureBlock(block, d0)
	i := offset + d + k
	if Debug && buf[i] != unset {
		panic("storage: duplicate Set")
	}
	buf[i] = x
}

func (s *fastStorage) Get(d, k int) int {
	block, _, _, offset := s.blockOffset(d)
	if block >= len(s.blocks) || s.blocks[block] == nil {
		panic("storage: Get of unset cell")
	}
	v := s.blocks[block][offset+d+k]
	if v == unset {
		panic("storage: Get of unset cell")
	}
	return v
}

func (s *fastStorage) HasValue(d, k int) bool {
	block, _, _, offset := s.blockOffset(d)
	if block >= len(s.blocks) || s.blocks[block] == nil {
		return false
	}
	return s.blocks[block][offset+d+k] != unset
}

type fastRow struct {
	buf    []int
	offset int
	d      int
}

func (r fastRow) At(k int) int { return r.buf[r.offset+r.d+k] }

func (s *fastStorage) Row(d int) Row {
	block, d0, _, offset := s.blockOffset(d)
	buf := s.ensureBlock(block, d0)
	return fastRow{buf: buf, offset: offset, d: d}
}
