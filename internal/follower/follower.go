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

// Package follower adapts a Strategy to a fabric.Peer: it translates Strategy's abstract
// send/receive obligations into fabric messages on the correct ring edge.
package follower

import (
	"context"
	"time"

	"github.com/flowmesh/pdiff/internal/edits"
	"github.com/flowmesh/pdiff/internal/fabric"
	"github.com/flowmesh/pdiff/internal/geometry"
	"github.com/flowmesh/pdiff/internal/side"
)

// pollInterval bounds how long BlockingReceive may sleep between checking both sides of the ring
// for a pending message; short enough to stay responsive, long enough not to spin.
const pollInterval = 200 * time.Microsecond

// Follower implements strategy.Transport against a fabric.Peer, and additionally exposes the
// receive-side primitives the orchestrator's event loop needs.
type Follower struct {
	peer fabric.Peer
}

// New builds a Follower bound to peer.
func New(peer fabric.Peer) *Follower {
	return &Follower{peer: peer}
}

// Send implements strategy.Transport.
func (f *Follower) Send(ctx context.Context, s side.Side, cell geometry.Cell, x int) error {
	m := fabric.Message{Tag: fabric.TagWork, Cell: cell, X: x}
	if s == side.Left {
		return f.peer.SendLeft(ctx, m)
	}
	return f.peer.SendRight(ctx, m)
}

// HasIncomingMessage reports whether a message is already buffered on either side, without
// blocking.
func (f *Follower) HasIncomingMessage() bool {
	return f.peer.PendingLeft() || f.peer.PendingRight()
}

// Incoming is one received boundary-cell message, tagged with which side it arrived from.
type Incoming struct {
	Side side.Side
	Cell geometry.Cell
	X    int
}

// SendBacktraceContinuation hands the backward walk off to the given ring neighbor.
func (f *Follower) SendBacktraceContinuation(ctx context.Context, s side.Side, cell geometry.Cell) error {
	m := fabric.Message{Tag: fabric.TagBacktraceContinue, Cell: cell}
	if s == side.Left {
		return f.peer.SendLeft(ctx, m)
	}
	return f.peer.SendRight(ctx, m)
}

// SubmitBacktraceSegment reports one worker's own run of edit steps to worker 0.
func (f *Follower) SubmitBacktraceSegment(ctx context.Context, steps edits.Script, fromD, stopD int) error {
	return f.peer.SubmitToRoot(ctx, fabric.Message{Tag: fabric.TagBacktraceSubmit, Steps: steps, FromD: fromD, ToD: stopD})
}

// ReceiveBacktraceSubmission blocks until a segment arrives in this worker's submission inbox.
// Only worker 0 calls it.
func (f *Follower) ReceiveBacktraceSubmission(ctx context.Context) (steps edits.Script, fromD, stopD int, err error) {
	m, err := f.peer.ReceiveSubmission(ctx)
	if err != nil {
		return nil, 0, 0, err
	}
	return m.Steps, m.FromD, m.ToD, nil
}

// AnnounceBacktraceDone tells every worker the script has been fully assembled.
func (f *Follower) AnnounceBacktraceDone(ctx context.Context) error {
	return f.peer.AnnounceBacktraceDone(ctx)
}

// BacktraceContinuation is a hand-off message: which neighbor it arrived from and the cell to
// resume walking from.
type BacktraceContinuation struct {
	Side side.Side
	Cell geometry.Cell
}

// BlockingReceiveBacktrace waits for either a continuation hand-off from a ring neighbor or the
// root's backtrace-done broadcast, whichever arrives first.
func (f *Follower) BlockingReceiveBacktrace(ctx context.Context) (cont BacktraceContinuation, done bool, err error) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		if f.peer.PendingLeft() {
			m, err := f.peer.ReceiveLeft(ctx)
			if err != nil {
				return BacktraceContinuation{}, false, err
			}
			return BacktraceContinuation{Side: side.Left, Cell: m.Cell}, false, nil
		}
		if f.peer.PendingRight() {
			m, err := f.peer.ReceiveRight(ctx)
			if err != nil {
				return BacktraceContinuation{}, false, err
			}
			return BacktraceContinuation{Side: side.Right, Cell: m.Cell}, false, nil
		}
		if f.peer.PendingBacktraceDone() {
			if err := f.peer.WaitBacktraceDone(ctx); err != nil {
				return BacktraceContinuation{}, false, err
			}
			return BacktraceContinuation{}, true, nil
		}
		select {
		case <-ctx.Done():
			return BacktraceContinuation{}, false, ctx.Err()
		case <-ticker.C:
		}
	}
}

// BlockingReceive waits for a message on either side of the ring and returns it, preferring the
// left side when both are ready simultaneously. It returns ctx.Err() if ctx is cancelled first.
func (f *Follower) BlockingReceive(ctx context.Context) (Incoming, error) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		if f.peer.PendingLeft() {
			m, err := f.peer.ReceiveLeft(ctx)
			if err != nil {
				return Incoming{}, err
			}
			return Incoming{Side: side.Left, Cell: m.Cell, X: m.X}, nil
		}
		if f.peer.PendingRight() {
			m, err := f.peer.ReceiveRight(ctx)
			if err != nil {
				return Incoming{}, err
			}
			return Incoming{Side: side.Right, Cell: m.Cell, X: m.X}, nil
		}
		select {
		case <-ctx.Done():
			return Incoming{}, ctx.Err()
		case <-ticker.C:
		}
	}
}
