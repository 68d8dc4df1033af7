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

// Package partition implements the deterministic round-robin assignment of Myers pyramid cells
// to workers: at layer d, worker d mod N is "extended" with the cells newly added at that layer,
// and over time each rank r ends up owning a contiguous, shifting band of diagonals.
package partition

import "github.com/flowmesh/pdiff/internal/geometry"

// Partition tracks, for a fixed worker count N and target rank R, the running counts needed to
// derive R's k-range and send/receive obligations at the current layer D.
type Partition struct {
	N, R int

	D    int // current (most recently processed) layer
	next int // worker that will be extended at layer D+1

	sizeBefore, sizeTarget, sizeAfter int // counts, through layer D, of extended ranks <,=,> R
}

// New constructs a Partition at layer 0 (layer 0's single cell is always extended by worker 0).
func New(n, r int) *Partition {
	p := &Partition{N: n, R: r}
	p.extend(0)
	return p
}

func (p *Partition) extend(d int) {
	p.D = d
	extended := d % p.N
	switch {
	case extended < p.R:
		p.sizeBefore++
	case extended == p.R:
		p.sizeTarget++
	default:
		p.sizeAfter++
	}
	p.next = (extended + 1) % p.N
}

// NextLayer advances the partition by one layer.
func (p *Partition) NextLayer() {
	p.extend(p.D + 1)
}

// HasWork reports whether R owns any cells at the current layer.
func (p *Partition) HasWork() bool {
	return p.sizeTarget > 0
}

// KRange returns the inclusive k-range R owns at the current layer.
func (p *Partition) KRange() (kmin, kmax int) {
	kmin = -p.D + 2*p.sizeBefore
	kmax = kmin + 2*p.sizeTarget - 2
	return
}

// ShouldSend reports, for each side, whether R must send its current layer's boundary cell to
// that neighbor.
func (p *Partition) ShouldSend() (left, right bool) {
	return p.R > p.next, p.R < p.next
}

// ShouldReceive reports, for each side, whether R must receive a cell from that neighbor before
// it can compute the current layer's boundary on that side.
func (p *Partition) ShouldReceive() (left, right bool) {
	extended := p.D % p.N
	kmin, kmax := p.KRange()
	left = extended >= p.R && kmin > -p.D
	right = extended <= p.R && kmax < p.D
	return
}

// WillNotUseSideInFuture reports whether R will never again send to or receive from the given
// side: true for the left side of rank 0 and the right side of rank N-1, the two ring ends.
func (p *Partition) WillNotUseSideInFuture(s Side) bool {
	if s == SideLeft {
		return p.R == 0
	}
	return p.R == p.N-1
}

// Side mirrors internal/side.Side locally to avoid an import cycle risk as the partition package
// sits low in the dependency graph; internal/side.Side values convert 1:1.
type Side int

const (
	SideLeft Side = iota
	SideRight
)

// SendCell returns the cell R must send on side s at the current layer, per ShouldSend.
func (p *Partition) SendCell(s Side) geometry.Cell {
	kmin, kmax := p.KRange()
	if s == SideLeft {
		return geometry.Cell{D: p.D, K: kmin}
	}
	return geometry.Cell{D: p.D, K: kmax}
}

// ReceiveCell returns the cell R must receive on side s to unblock the current layer, per
// ShouldReceive.
func (p *Partition) ReceiveCell(s Side) geometry.Cell {
	kmin, kmax := p.KRange()
	if s == SideLeft {
		return geometry.Cell{D: p.D - 1, K: kmin - 1}
	}
	return geometry.Cell{D: p.D - 1, K: kmax + 1}
}

// KRangeAt replays the round-robin assignment rule to answer, without stepping through every
// intervening layer, which k-range worker r of n owns at layer d. The backward walk needs this:
// it visits layers in decreasing order, the reverse of the direction Partition itself steps in.
func KRangeAt(n, r, d int) (kmin, kmax int, hasWork bool) {
	terms := d + 1 // layers 0..d each extend exactly one rank
	full := terms / n
	rem := terms % n

	sizeBefore := full*r + min(rem, r)
	sizeTarget := full
	if r < rem {
		sizeTarget++
	}

	kmin = -d + 2*sizeBefore
	kmax = kmin + 2*sizeTarget - 2
	return kmin, kmax, sizeTarget > 0
}

// OwnerAt returns the rank that owns (d, k) under an n-worker round-robin partition.
func OwnerAt(n, d, k int) int {
	for r := 0; r < n; r++ {
		kmin, kmax, has := KRangeAt(n, r, d)
		if has && k >= kmin && k <= kmax {
			return r
		}
	}
	panic("partition: no owner found for cell, k out of range for layer")
}
