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

package strategy

import (
	"context"
	"testing"

	"github.com/flowmesh/pdiff/internal/geometry"
	"github.com/flowmesh/pdiff/internal/side"
	"github.com/flowmesh/pdiff/internal/storage"
)

// noopTransport satisfies Transport but should never be called by a single-worker Strategy,
// since a lone rank has no neighbors.
type noopTransport struct{ t *testing.T }

func (n noopTransport) Send(ctx context.Context, s side.Side, cell geometry.Cell, x int) error {
	n.t.Fatalf("unexpected Send on side %v for cell %v", s, cell)
	return nil
}

func runToCompletion(t *testing.T, a, b []int) int {
	t.Helper()
	dMax := len(a) + len(b)
	store := storage.New(storage.Simple, true, dMax)
	s := New(1, 0, a, b, dMax, store, noopTransport{t})
	ctx := context.Background()
	for i := 0; i < dMax+2; i++ {
		res, err := s.Run(ctx)
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		if res == Done {
			return s.Distance()
		}
		if res == BlockedOnReceive {
			t.Fatal("single-worker strategy should never block on receive")
		}
	}
	t.Fatal("did not reach Done within dMax+2 iterations")
	return -1
}

func TestSingleWorkerEditDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b []int
		want int
	}{
		{"identical", []int{1, 2, 3}, []int{1, 2, 3}, 0},
		{"empty both", nil, nil, 0},
		{"all deleted", []int{1, 2, 3}, nil, 3},
		{"all inserted", nil, []int{1, 2, 3}, 3},
		{"one substitution", []int{1, 2, 3}, []int{1, 9, 3}, 2},
		{"classic example", []int{1, 2, 3, 1, 4, 3}, []int{3, 1, 4, 1, 5, 9, 2, 6}, 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := runToCompletion(t, tt.a, tt.b)
			if got != tt.want {
				t.Errorf("distance = %d, want %d", got, tt.want)
			}
		})
	}
}

// countingTransport records every Send without forwarding it anywhere; good enough to drive the
// rank-1-of-3 scenario below, which only ever needs to feed receives in a fixed scripted order.
type countingTransport struct{ sends int }

func (c *countingTransport) Send(ctx context.Context, s side.Side, cell geometry.Cell, x int) error {
	c.sends++
	return nil
}

// TestMiddleRankFeedSequence drives rank 1 of 3 (d_max = 7) through the exact receive-feed order
// the frontier cycle is documented to need, and checks the two totals that order is known to
// produce: every cell rank 1 owns across layers 1..7 gets computed exactly once (12 cells, the sum
// of the per-layer k-range widths from the partition test), and all 4 of its boundary sends fire.
func TestMiddleRankFeedSequence(t *testing.T) {
	const dMax = 7
	a := []int{1, 2, 3, 4, 5, 6, 7, 8}
	b := []int{11, 12, 13, 14, 15, 16, 17, 18} // disjoint from a: real distance (16) exceeds dMax

	transport := &countingTransport{}
	store := storage.New(storage.Simple, true, dMax)
	s := New(3, 1, a, b, dMax, store, transport)

	feeds := []side.Side{
		side.Left, side.Left, side.Left,
		side.Right, side.Right, side.Right,
		side.Left, side.Left, side.Right,
	}

	ctx := context.Background()
	feedIdx := 0
	for i := 0; i < 10_000; i++ {
		res, err := s.Run(ctx)
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		switch res {
		case Done:
			if feedIdx != len(feeds) {
				t.Fatalf("Done after %d/%d feeds", feedIdx, len(feeds))
			}
			if got, want := s.CellsCalculated(), 12; got != want {
				t.Errorf("CellsCalculated() = %d, want %d", got, want)
			}
			if got, want := transport.sends, 4; got != want {
				t.Errorf("sends = %d, want %d", got, want)
			}
			return
		case BlockedOnReceive:
			if feedIdx >= len(feeds) {
				t.Fatal("blocked on receive after the scripted feed sequence was exhausted")
			}
			s.Receive(feeds[feedIdx], 0)
			feedIdx++
		}
	}
	t.Fatal("did not reach Done")
}

func TestDoneIsSticky(t *testing.T) {
	a, b := []int{1, 2}, []int{1, 2}
	store := storage.New(storage.Simple, true, 4)
	s := New(1, 0, a, b, 4, store, noopTransport{t})
	ctx := context.Background()

	res, err := s.Run(ctx)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res != Done {
		t.Fatalf("Run() = %v, want Done", res)
	}
	for i := 0; i < 3; i++ {
		res, err = s.Run(ctx)
		if err != nil || res != Done {
			t.Fatalf("Run() after Done = %v, %v; want Done, nil", res, err)
		}
	}
}
