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

// Package fabric simulates a message-passing fabric over goroutines and channels: workers sit on
// a ring, each with a left and right neighbor, plus a broadcast channel used once to fan out the
// final result. It stands in for the sockets or RDMA queues a multi-process deployment of this
// engine would use; the Follower and the Orchestrator's worker loops exchange messages through the
// Peer interface alone and do not know the difference.
package fabric

import (
	"context"
	"fmt"

	"github.com/flowmesh/pdiff/internal/edits"
	"github.com/flowmesh/pdiff/internal/geometry"
)

// Tag identifies the kind of payload a Message carries.
type Tag int

const (
	// TagWork carries a single computed (d, k, x) boundary cell exchanged between neighbors.
	TagWork Tag = iota
	// TagDone announces the edit distance has been found; it is broadcast to every worker so
	// they can stop.
	TagDone
	// TagBacktraceContinue hands the backward walk off to whichever ring neighbor owns the next
	// cell, carrying only the cell to resume from: no step data travels with it.
	TagBacktraceContinue
	// TagBacktraceSubmit reports one worker's own contiguous run of edit steps directly to
	// worker 0, independently of the continuation hand-off.
	TagBacktraceSubmit
)

// Message is the unit of exchange on the fabric.
type Message struct {
	Tag  Tag
	Cell geometry.Cell
	X    int // for TagWork: the furthest-reaching x at Cell
	D    int // for TagDone: the edit distance

	// Steps, FromD and ToD are set for TagBacktraceSubmit: Steps covers layers (ToD, FromD].
	Steps edits.Script
	FromD int
	ToD   int
}

// Peer is one worker's view of the fabric: its two ring neighbors and the broadcast channel.
type Peer interface {
	Rank() int
	NumWorkers() int

	HasLeft() bool
	HasRight() bool

	SendLeft(ctx context.Context, m Message) error
	SendRight(ctx context.Context, m Message) error
	ReceiveLeft(ctx context.Context) (Message, error)
	ReceiveRight(ctx context.Context) (Message, error)

	// PendingLeft and PendingRight report whether a message is already available without
	// blocking, so a worker can poll both sides while it still has other work to do.
	PendingLeft() bool
	PendingRight() bool

	// AnnounceDone broadcasts the final result to every worker, including the caller.
	AnnounceDone(ctx context.Context, d int) error
	// WaitDone blocks until some worker calls AnnounceDone, returning the distance it announced.
	WaitDone(ctx context.Context) (int, error)

	// SubmitToRoot delivers m to worker 0's submission inbox, regardless of ring adjacency; used
	// to report a completed backtrace segment.
	SubmitToRoot(ctx context.Context, m Message) error
	// ReceiveSubmission blocks until a message arrives in this worker's submission inbox. Only
	// worker 0 is expected to call it.
	ReceiveSubmission(ctx context.Context) (Message, error)

	// AnnounceBacktraceDone broadcasts that worker 0 has finished assembling the edit script, so
	// every worker still polling for a continuation hand-off can stop. Only worker 0 calls it.
	AnnounceBacktraceDone(ctx context.Context) error
	// PendingBacktraceDone reports, without blocking, whether AnnounceBacktraceDone has fired.
	PendingBacktraceDone() bool
	// WaitBacktraceDone consumes the broadcast PendingBacktraceDone observed.
	WaitBacktraceDone(ctx context.Context) error
}

// Fabric is a ring of N peers. Build one with New and distribute its Peers to each worker
// goroutine.
type Fabric struct {
	n     int
	fwd   []chan Message  // fwd[i]: worker i -> worker (i+1)%n
	bwd   []chan Message  // bwd[i]: worker (i+1)%n -> worker i
	ann   []chan Message  // ann[i]: this worker's private inbox for the done broadcast
	root  []chan Message  // root[i]: this worker's private inbox for backtrace submissions
	btAnn []chan struct{} // btAnn[i]: this worker's private inbox for the backtrace-done broadcast
}

// New builds a Fabric for n workers, each channel buffered to avoid lockstep rendezvous.
func New(n int) *Fabric {
	const bufSize = 8
	f := &Fabric{n: n}
	if n > 1 {
		f.fwd = make([]chan Message, n)
		f.bwd = make([]chan Message, n)
		for i := range f.fwd {
			f.fwd[i] = make(chan Message, bufSize)
			f.bwd[i] = make(chan Message, bufSize)
		}
	}
	f.ann = make([]chan Message, n)
	f.root = make([]chan Message, n)
	f.btAnn = make([]chan struct{}, n)
	for i := range f.ann {
		f.ann[i] = make(chan Message, 1)
		// Every worker can in principle own a contiguous run that must be reported directly to
		// worker 0, so its inbox needs to hold one pending submission per peer.
		f.root[i] = make(chan Message, n)
		f.btAnn[i] = make(chan struct{}, 1)
	}
	return f
}

// Peer returns the Peer view for worker rank r.
func (f *Fabric) Peer(r int) Peer {
	return &peer{f: f, rank: r}
}

type peer struct {
	f    *Fabric
	rank int
}

func (p *peer) Rank() int       { return p.rank }
func (p *peer) NumWorkers() int { return p.f.n }

func (p *peer) HasLeft() bool  { return p.f.n > 1 }
func (p *peer) HasRight() bool { return p.f.n > 1 }

func (p *peer) left() int  { return (p.rank - 1 + p.f.n) % p.f.n }
func (p *peer) right() int { return (p.rank + 1) % p.f.n }

func (p *peer) SendRight(ctx context.Context, m Message) error {
	if !p.HasRight() {
		return fmt.Errorf("fabric: worker %d has no right neighbor", p.rank)
	}
	return send(ctx, p.f.fwd[p.rank], m)
}

func (p *peer) SendLeft(ctx context.Context, m Message) error {
	if !p.HasLeft() {
		return fmt.Errorf("fabric: worker %d has no left neighbor", p.rank)
	}
	return send(ctx, p.f.bwd[p.left()], m)
}

func (p *peer) ReceiveLeft(ctx context.Context) (Message, error) {
	if !p.HasLeft() {
		return Message{}, fmt.Errorf("fabric: worker %d has no left neighbor", p.rank)
	}
	return receive(ctx, p.f.fwd[p.left()])
}

func (p *peer) ReceiveRight(ctx context.Context) (Message, error) {
	if !p.HasRight() {
		return Message{}, fmt.Errorf("fabric: worker %d has no right neighbor", p.rank)
	}
	return receive(ctx, p.f.bwd[p.rank])
}

func (p *peer) PendingLeft() bool {
	if !p.HasLeft() {
		return false
	}
	return len(p.f.fwd[p.left()]) > 0
}

func (p *peer) PendingRight() bool {
	if !p.HasRight() {
		return false
	}
	return len(p.f.bwd[p.rank]) > 0
}

func (p *peer) AnnounceDone(ctx context.Context, d int) error {
	m := Message{Tag: TagDone, D: d}
	for i := range p.f.ann {
		select {
		case p.f.ann[i] <- m:
		default:
			// Another worker already announced; later announcements are redundant.
		}
	}
	return nil
}

func (p *peer) WaitDone(ctx context.Context) (int, error) {
	select {
	case m := <-p.f.ann[p.rank]:
		return m.D, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

func (p *peer) SubmitToRoot(ctx context.Context, m Message) error {
	return send(ctx, p.f.root[0], m)
}

func (p *peer) ReceiveSubmission(ctx context.Context) (Message, error) {
	return receive(ctx, p.f.root[p.rank])
}

func (p *peer) AnnounceBacktraceDone(ctx context.Context) error {
	for i := range p.f.btAnn {
		select {
		case p.f.btAnn[i] <- struct{}{}:
		default:
		}
	}
	return nil
}

func (p *peer) PendingBacktraceDone() bool {
	return len(p.f.btAnn[p.rank]) > 0
}

func (p *peer) WaitBacktraceDone(ctx context.Context) error {
	select {
	case <-p.f.btAnn[p.rank]:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func send(ctx context.Context, ch chan<- Message, m Message) error {
	select {
	case ch <- m:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func receive(ctx context.Context, ch <-chan Message) (Message, error) {
	select {
	case m := <-ch:
		return m, nil
	case <-ctx.Done():
		return Message{}, ctx.Err()
	}
}
