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

// Package strategy drives one worker's local share of the O(ND) pyramid to completion: which
// diamond of cells it can safely compute next without outrunning what its neighbors have sent or
// are waiting to receive, when it must block for an incoming boundary value, and which completed
// cells it owes its neighbors.
package strategy

import (
	"context"

	"github.com/flowmesh/pdiff/internal/frontier"
	"github.com/flowmesh/pdiff/internal/geometry"
	"github.com/flowmesh/pdiff/internal/myers"
	"github.com/flowmesh/pdiff/internal/partition"
	"github.com/flowmesh/pdiff/internal/side"
	"github.com/flowmesh/pdiff/internal/storage"
)

// defaultDiamondHeightLimit caps how many layers a single Run call computes in one diamond, so
// that a worker with no nearby neighbor limiters still interleaves with message processing rather
// than running the whole pyramid in one call.
const defaultDiamondHeightLimit = 20

// Result reports the outcome of one Run call.
type Result int

const (
	// Progressed means the strategy computed some cells (or none were currently exposed) and
	// made a decision; call Run again.
	Progressed Result = iota
	// Done means a cell reached the bottom-right corner, or this worker ran out of local work
	// with nothing left to wait for; FoundResult tells the two apart.
	Done
	// BlockedOnReceive means no further progress is possible until a neighbor's cell arrives;
	// call Receive with the incoming value once it does, then call Run again.
	BlockedOnReceive
)

// Transport is everything a Strategy needs from the fabric to hand off a completed boundary cell.
type Transport interface {
	Send(ctx context.Context, s side.Side, cell geometry.Cell, x int) error
}

// Strategy owns one worker's progress through the shared pyramid.
type Strategy struct {
	a, b               []int
	dMax               int
	diamondHeightLimit int

	store     storage.Storage
	transport Transport

	// part only drives the degenerate single-worker sweep below; the multi-worker cycle never
	// consults it directly, since frontier plus the limiters derived from recvIter/sendIter are
	// what determine ownership once neighbors are in the picture.
	part *partition.Partition

	recvIter side.Per[*partition.ReceiveSideIterator]
	sendIter side.Per[*partition.SendSideIterator]
	limiters side.Per[geometry.Cell]

	frontier     *frontier.Frontier
	singleWorker bool

	done        bool
	distance    int
	foundResult bool
	finalResult geometry.Cell

	cellsCalculated int // cells produced by Calculate, excluding ones that arrived via Receive
	sendsIssued     int
}

// New builds a Strategy for rank r of n workers diffing a against b, bounded to layers <= dMax,
// storing results in store.
func New(n, r int, a, b []int, dMax int, store storage.Storage, t Transport) *Strategy {
	s := &Strategy{
		a: a, b: b, dMax: dMax,
		diamondHeightLimit: defaultDiamondHeightLimit,
		store:              store,
		part:               partition.New(n, r),
		transport:          t,
		frontier:           frontier.New(dMax),
	}
	s.recvIter.Set(side.Left, partition.NewReceiveSideIterator(n, r, partition.SideLeft, dMax))
	s.recvIter.Set(side.Right, partition.NewReceiveSideIterator(n, r, partition.SideRight, dMax))
	s.sendIter.Set(side.Left, partition.NewSendSideIterator(n, r, partition.SideLeft, dMax))
	s.sendIter.Set(side.Right, partition.NewSendSideIterator(n, r, partition.SideRight, dMax))

	s.singleWorker = s.part.WillNotUseSideInFuture(partition.SideLeft) &&
		s.part.WillNotUseSideInFuture(partition.SideRight)

	s.limiters.Set(side.Left, geometry.Cell{D: dMax + 1, K: -(dMax + 1)})
	s.limiters.Set(side.Right, geometry.Cell{D: dMax + 1, K: dMax + 1})

	// Layer 0's single cell is always owned by rank 0 (partition.New's extend(0) always
	// "extends" worker 0); every other rank only ever learns its value through the normal
	// receive path on its left side, matching the receive iterator's first yielded cell.
	if r == 0 {
		x0, done := myers.Calculate(0, 0, nil, a, b)
		s.cellsCalculated++
		store.Set(0, 0, x0)
		s.frontier.Cover(geometry.Cell{D: 0, K: 0})
		if done {
			s.done = true
			s.foundResult = true
			s.finalResult = geometry.Cell{D: 0, K: 0}
		}
	}
	return s
}

// Distance returns the edit distance this worker found. It is meaningful only once FoundResult
// reports true; a worker whose peer found the result learns the distance from that peer instead.
func (s *Strategy) Distance() int { return s.distance }

// FoundResult reports whether this worker itself computed the cell that reached the final corner,
// as opposed to simply running out of local work with no more progress to make. Only a worker for
// which this is true should announce the distance to its peers; the rest must wait to receive it.
func (s *Strategy) FoundResult() bool { return s.foundResult }

// FinalResult returns the cell this worker found the answer at. Only meaningful when FoundResult
// is true.
func (s *Strategy) FinalResult() geometry.Cell { return s.finalResult }

// CellsCalculated counts cells this worker has produced by running the Myers recurrence itself,
// excluding ones that arrived ready-made through Receive.
func (s *Strategy) CellsCalculated() int { return s.cellsCalculated }

// SendsIssued counts completed calls to Transport.Send.
func (s *Strategy) SendsIssued() int { return s.sendsIssued }

// Receive pops the next cell this side's receive iterator expects, stores the incoming value
// there, and marks the cell covered in the frontier so a later Run call can build on it.
func (s *Strategy) Receive(sd side.Side, x int) {
	cell, ok := s.recvIter.Get(sd).Next()
	if !ok {
		return // stale message; nothing left for this side to receive
	}
	s.limiters.Set(sd, geometry.Cell{D: cell.D + 2, K: cell.K})
	s.store.Set(cell.D, cell.K, x)
	s.frontier.Cover(cell)
}

// Run executes one decision cycle: for a lone worker with no neighbors it sweeps the next layer
// directly, otherwise it runs the frontier-driven cycle described in the package doc: compute the
// horizon from receive and send limiters, expose one diamond toward that horizon, compute it,
// drain ready sends, and classify whether the worker is done, blocked, or should be called again.
func (s *Strategy) Run(ctx context.Context) (Result, error) {
	if s.done {
		return Done, nil
	}
	if s.singleWorker {
		return s.runSingleWorkerLayer()
	}
	return s.runCycle(ctx)
}

func (s *Strategy) runSingleWorkerLayer() (Result, error) {
	s.part.NextLayer()
	if !s.part.HasWork() {
		return Progressed, nil
	}
	d := s.part.D
	kmin, kmax := s.part.KRange()
	prev := s.store.Row(d - 1)
	for k := kmin; k <= kmax; k += 2 {
		x, reached := myers.Calculate(d, k, prev, s.a, s.b)
		s.cellsCalculated++
		s.store.Set(d, k, x)
		if reached {
			s.done = true
			s.foundResult = true
			s.distance = d
			s.finalResult = geometry.Cell{D: d, K: k}
		}
	}
	if s.done {
		return Done, nil
	}
	return Progressed, nil
}

func (s *Strategy) runCycle(ctx context.Context) (Result, error) {
	// Step 1: the horizon from each side is the next cell it still needs to receive, or (once
	// that side's receives are exhausted) the last limiter a receive ever updated.
	limiters := s.limiters
	limitedByReceives := false
	for _, sd := range side.Both() {
		cell, ok := s.recvIter.Get(sd).Peek()
		if !ok {
			continue
		}
		limiters.Set(sd, cell)
		if cell.D < s.dMax {
			limitedByReceives = true
		}
	}

	target := geometry.IntersectDiagonals(limiters.Get(side.Left), limiters.Get(side.Right))
	target.D -= 2

	// Step 2: a pending send that falls within the receive-derived target takes priority, so the
	// cell a neighbor is waiting on gets produced promptly; break ties toward whichever side has
	// made the least progress.
	limitedBySends := false
	var targetFromSend geometry.Cell
	for _, sd := range side.Both() {
		cell, ok := s.sendIter.Get(sd).Peek()
		if !ok {
			continue
		}
		if cell.D >= s.dMax || geometry.PointOutside(cell, target) {
			continue
		}
		if !limitedBySends || cell.D < targetFromSend.D || (cell.D == targetFromSend.D && cell.D%2 == 0) {
			targetFromSend = cell
			limitedBySends = true
		}
	}
	if limitedBySends {
		target = targetFromSend
	}

	// Step 3 & 4: expose and compute one diamond toward the target, then record it as covered.
	diamond, exposed := s.frontier.NextExposedDiamond(target)
	if exposed {
		if !limitedBySends && s.diamondHeightLimit > 0 {
			diamond = geometry.LimitDiamondHeight(diamond, s.diamondHeightLimit)
		}
		s.calculateAllInDiamond(diamond)
		if s.done {
			return Done, nil
		}
		s.frontier.Cover(diamond.Bottom)
	}

	// Step 5: drain every ready send still inside the (possibly send-shifted) target triangle.
	for _, sd := range side.Both() {
		it := s.sendIter.Get(sd)
		for {
			cell, ok := it.Peek()
			if !ok || cell.D >= s.dMax || geometry.PointOutside(cell, target) {
				break
			}
			it.Next()
			x := s.store.Get(cell.D, cell.K)
			if err := s.transport.Send(ctx, sd, cell, x); err != nil {
				return Progressed, err
			}
			s.sendsIssued++
		}
	}

	// Step 6: classify.
	if !exposed && !limitedByReceives && !limitedBySends {
		s.done = true
		return Done, nil
	}
	if !exposed && limitedByReceives && !limitedBySends {
		return BlockedOnReceive, nil
	}
	return Progressed, nil
}

// calculateAllInDiamond computes every cell of d from top to bottom (clamped to dMax), row by
// row, stopping the instant a cell reaches the bottom-right corner.
func (s *Strategy) calculateAllInDiamond(d geometry.Diamond) {
	dLocalMax := min(d.Bottom.D, s.dMax)
	for layer := d.Top.D; layer <= dLocalMax; layer++ {
		kMin := max(d.Top.K-(layer-d.Top.D), d.Bottom.K-(d.Bottom.D-layer))
		kMax := min(d.Top.K+(layer-d.Top.D), d.Bottom.K+(d.Bottom.D-layer))
		prev := s.store.Row(layer - 1)
		for k := kMin; k <= kMax; k += 2 {
			x, reached := myers.Calculate(layer, k, prev, s.a, s.b)
			s.cellsCalculated++
			s.store.Set(layer, k, x)
			if reached {
				s.done = true
				s.foundResult = true
				s.distance = layer
				s.finalResult = geometry.Cell{D: layer, K: k}
				return
			}
		}
	}
}
