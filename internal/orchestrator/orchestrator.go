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

// Package orchestrator runs the per-worker event loop: it drives a Strategy through its
// bootstrap, calculation, and announcement phases, exchanging messages over a fabric.Peer via a
// follower.Follower, and — when an edit script was requested — drives the distributed backward
// walk described in the backtrace package, fanning the assembled script out from worker 0.
package orchestrator

import (
	"context"

	"cloudeng.io/errors"
	"cloudeng.io/sync/errgroup"

	"github.com/flowmesh/pdiff/internal/backtrace"
	"github.com/flowmesh/pdiff/internal/config"
	"github.com/flowmesh/pdiff/internal/edits"
	"github.com/flowmesh/pdiff/internal/fabric"
	"github.com/flowmesh/pdiff/internal/follower"
	"github.com/flowmesh/pdiff/internal/logging"
	"github.com/flowmesh/pdiff/internal/storage"
	"github.com/flowmesh/pdiff/internal/strategy"
)

// State names one phase of a worker's event loop, used only for logging and tests.
type State int

const (
	Boot State = iota
	BroadcastInput
	Calculating
	BlockedWait
	Announcing
	Backtracing
	Done
)

func (s State) String() string {
	switch s {
	case Boot:
		return "boot"
	case BroadcastInput:
		return "broadcast_input"
	case Calculating:
		return "calculating"
	case BlockedWait:
		return "blocked_wait"
	case Announcing:
		return "announcing"
	case Backtracing:
		return "backtracing"
	case Done:
		return "done"
	default:
		return "unknown"
	}
}

// Result is one worker's contribution to the overall run: the edit distance every worker agrees
// on, and (when a script was requested) the fragment of the script worker 0 assembled.
type Result struct {
	Rank     int
	Distance int
	Store    storage.Storage
	Script   edits.Script // only set on worker 0's Result, and only when a script was requested
}

// Run fans out n workers over f to diff a against b according to cfg, and returns the edit
// distance plus (if cfg.WantScript) the assembled edit script. It blocks until every worker
// reaches Done.
func Run(ctx context.Context, cfg *config.Config, f *fabric.Fabric, a, b []int) (int, edits.Script, error) {
	if err := cfg.Validate(); err != nil {
		return 0, nil, err
	}

	g := &errgroup.T{}
	errs := &errors.M{}
	results := make([]Result, cfg.NumWorkers)

	for r := 0; r < cfg.NumWorkers; r++ {
		r := r
		g.Go(func() error {
			res, err := runWorker(ctx, cfg, f, r, a, b)
			if err != nil {
				return err
			}
			results[r] = res
			return nil
		})
	}
	errs.Append(g.Wait())
	if err := errs.Err(); err != nil {
		return 0, nil, err
	}

	distance := results[0].Distance
	if !cfg.WantScript {
		return distance, nil, nil
	}
	return distance, results[0].Script, nil
}

// runWorker executes one worker's full state machine to completion.
func runWorker(ctx context.Context, cfg *config.Config, f *fabric.Fabric, rank int, a, b []int) (Result, error) {
	logger := logging.ForWorker(ctx, rank)
	state := Boot
	logger.Debug("state transition", "state", state.String())

	peer := f.Peer(rank)
	fl := follower.New(peer)
	dMax := len(a) + len(b)
	store := storage.New(cfg.Storage, cfg.WantScript, dMax)

	state = BroadcastInput
	logger.Debug("state transition", "state", state.String())
	strat := strategy.New(cfg.NumWorkers, rank, a, b, dMax, store, fl)

	state = Calculating
	logger.Debug("state transition", "state", state.String())

	var distance int
loop:
	for {
		res, err := strat.Run(ctx)
		if err != nil {
			return Result{}, err
		}
		switch res {
		case strategy.Progressed:
			continue
		case strategy.Done:
			distance = strat.Distance()
			break loop
		case strategy.BlockedOnReceive:
			state = BlockedWait
			logger.Debug("state transition", "state", state.String())
			in, err := fl.BlockingReceive(ctx)
			if err != nil {
				return Result{}, err
			}
			strat.Receive(in.Side, in.X)
			state = Calculating
			logger.Debug("state transition", "state", state.String())
		}
	}

	state = Announcing
	logger.Debug("state transition", "state", state.String())
	// Only the worker that actually computed the corner cell announces; everyone else (including
	// a worker that simply ran out of local work) waits to hear the distance from whoever did.
	if strat.FoundResult() {
		if err := peer.AnnounceDone(ctx, distance); err != nil {
			return Result{}, err
		}
	}
	agreed, err := peer.WaitDone(ctx)
	if err != nil {
		return Result{}, err
	}

	var script edits.Script
	if cfg.WantScript {
		state = Backtracing
		logger.Debug("state transition", "state", state.String())
		script, err = runBacktrace(ctx, fl, store, a, b, cfg.NumWorkers, rank, strat, agreed)
		if err != nil {
			return Result{}, err
		}
	}

	state = Done
	logger.Debug("state transition", "state", state.String())
	return Result{Rank: rank, Distance: agreed, Store: store, Script: script}, nil
}

// runBacktrace drives one worker's role in the distributed backward walk: the worker that found
// the final result seeds it at its own corner cell; every worker that performs a local segment
// reports its own contiguous run of steps straight to worker 0 and, unless the walk reached
// (0, 0), hands the bare continuation cell off to whichever ring neighbor owns it next. Worker 0
// alone collects submissions until they cover the whole script and returns it; every other
// worker's result is nil.
func runBacktrace(ctx context.Context, fl *follower.Follower, store storage.Storage, a, b []int, n, rank int, strat *strategy.Strategy, distance int) (edits.Script, error) {
	if strat.FoundResult() {
		cell := strat.FinalResult()
		if err := walkAndReport(ctx, fl, store, a, b, n, rank, cell.D, cell.K); err != nil {
			return nil, err
		}
	}

	if rank != 0 {
		// This rank's only remaining role is to resume the walk if a continuation lands on
		// either side of the ring, for as long as worker 0 hasn't yet signalled completion; the
		// partition can in principle route the walk back through the same rank more than once.
		for {
			cont, done, err := fl.BlockingReceiveBacktrace(ctx)
			if err != nil {
				return nil, err
			}
			if done {
				return nil, nil
			}
			if err := walkAndReport(ctx, fl, store, a, b, n, rank, cont.Cell.D, cont.Cell.K); err != nil {
				return nil, err
			}
		}
	}

	// Worker 0 listens for ring continuations addressed to itself on one goroutine (it may be
	// re-entered the same way any other rank can be) while the main flow collects every
	// submitted run until the d-intervals they cover span the whole script.
	listenErrs := make(chan error, 1)
	go func() {
		for {
			cont, done, err := fl.BlockingReceiveBacktrace(ctx)
			if err != nil {
				listenErrs <- err
				return
			}
			if done {
				listenErrs <- nil
				return
			}
			if err := walkAndReport(ctx, fl, store, a, b, n, rank, cont.Cell.D, cont.Cell.K); err != nil {
				listenErrs <- err
				return
			}
		}
	}()

	collector := backtrace.NewCollector(distance)
	for !collector.Done() {
		steps, fromD, stopD, err := fl.ReceiveBacktraceSubmission(ctx)
		if err != nil {
			return nil, err
		}
		collector.Add(steps, fromD, stopD)
	}
	if err := fl.AnnounceBacktraceDone(ctx); err != nil {
		return nil, err
	}
	if err := <-listenErrs; err != nil {
		return nil, err
	}
	return collector.Assemble(), nil
}

// walkAndReport runs one local segment of the backward walk starting at (d, k), submits its
// contiguous run of steps to worker 0, and — unless the walk reached (0, 0) — hands the
// continuation off to whichever neighbor owns the next cell.
func walkAndReport(ctx context.Context, fl *follower.Follower, store storage.Storage, a, b []int, n, rank, d, k int) error {
	seg := backtrace.WalkLocal(store, a, b, n, rank, d, k)
	if err := fl.SubmitBacktraceSegment(ctx, seg.Steps, seg.StartD, seg.StopD); err != nil {
		return err
	}
	if seg.Done {
		return nil
	}
	return fl.SendBacktraceContinuation(ctx, seg.HandoffSide, seg.HandoffCell)
}
