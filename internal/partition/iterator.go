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

package partition

import "github.com/flowmesh/pdiff/internal/geometry"

// SendSideIterator walks forward through layers on behalf of a rank, yielding, in order, the
// cells that rank must hand off to one neighbor. It owns a private Partition and so is
// restartable: two iterators built with the same (n, r, side, dMax) enumerate identical sequences.
type SendSideIterator struct {
	p         *Partition
	side      Side
	dMax      int
	exhausted bool

	cached   geometry.Cell
	hasCache bool
}

// NewSendSideIterator builds a send iterator for rank r's given side, bounded to layers <= dMax.
func NewSendSideIterator(n, r int, s Side, dMax int) *SendSideIterator {
	p := New(n, r)
	return &SendSideIterator{p: p, side: s, dMax: dMax, exhausted: p.WillNotUseSideInFuture(s)}
}

func (it *SendSideIterator) find() (geometry.Cell, bool) {
	if it.exhausted {
		return geometry.Cell{}, false
	}
	for it.p.D < it.dMax {
		it.p.NextLayer()
		left, right := it.p.ShouldSend()
		if (it.side == SideLeft && left) || (it.side == SideRight && right) {
			return it.p.SendCell(it.side), true
		}
	}
	it.exhausted = true
	return geometry.Cell{}, false
}

// Peek returns the next cell this rank must send on its side without consuming it; repeated
// Peek calls return the same value until Next is called.
func (it *SendSideIterator) Peek() (cell geometry.Cell, ok bool) {
	if !it.hasCache {
		it.cached, ok = it.find()
		it.hasCache = ok
		if !ok {
			return geometry.Cell{}, false
		}
	}
	return it.cached, true
}

// Next returns the next cell this rank must send on its side, advancing past it. ok is false once
// no further send will ever occur (the side is a ring end, or the pyramid has been exhausted up
// to dMax); a false Next is permanent and repeated calls keep returning false.
func (it *SendSideIterator) Next() (cell geometry.Cell, ok bool) {
	cell, ok = it.Peek()
	it.hasCache = false
	return
}

// ReceiveSideIterator mirrors SendSideIterator for the cells a rank must receive from a neighbor.
type ReceiveSideIterator struct {
	p         *Partition
	side      Side
	dMax      int
	exhausted bool

	cached   geometry.Cell
	hasCache bool
}

// NewReceiveSideIterator builds a receive iterator for rank r's given side, bounded to layers <=
// dMax.
func NewReceiveSideIterator(n, r int, s Side, dMax int) *ReceiveSideIterator {
	p := New(n, r)
	return &ReceiveSideIterator{p: p, side: s, dMax: dMax, exhausted: p.WillNotUseSideInFuture(s)}
}

func (it *ReceiveSideIterator) find() (geometry.Cell, bool) {
	if it.exhausted {
		return geometry.Cell{}, false
	}
	for it.p.D < it.dMax {
		it.p.NextLayer()
		left, right := it.p.ShouldReceive()
		if (it.side == SideLeft && left) || (it.side == SideRight && right) {
			return it.p.ReceiveCell(it.side), true
		}
	}
	it.exhausted = true
	return geometry.Cell{}, false
}

// Peek returns the next cell this rank must receive on its side without consuming it.
func (it *ReceiveSideIterator) Peek() (cell geometry.Cell, ok bool) {
	if !it.hasCache {
		it.cached, ok = it.find()
		it.hasCache = ok
		if !ok {
			return geometry.Cell{}, false
		}
	}
	return it.cached, true
}

// Next returns the next cell this rank must receive on its side before it can proceed, advancing
// past it. ok is false once no further receive will ever occur.
func (it *ReceiveSideIterator) Next() (cell geometry.Cell, ok bool) {
	cell, ok = it.Peek()
	it.hasCache = false
	return
}
