package geometry

import "testing"

func TestTriangleThroughPoints(t *testing.T) {
	got := TriangleThroughPoints(Cell{3, -3}, Cell{2, 2})
	want := Cell{5, -1}
	if got != want {
		t.Errorf("TriangleThroughPoints = %+v, want %+v", got, want)
	}
}

func TestIntersectDiagonals(t *testing.T) {
	got := IntersectDiagonals(Cell{7, -1}, Cell{2, 2})
	want := Cell{6, -2}
	if got != want {
		t.Errorf("IntersectDiagonals = %+v, want %+v", got, want)
	}
	// Symmetric in its arguments (P7).
	if got2 := IntersectDiagonals(Cell{2, 2}, Cell{7, -1}); got2 != got {
		t.Errorf("IntersectDiagonals not symmetric: %+v vs %+v", got, got2)
	}
}

func TestLimitDiamondHeight(t *testing.T) {
	tests := []struct {
		top, bot Cell
		h        int
		want     Cell
	}{
		{Cell{0, 0}, Cell{6, 0}, 3, Cell{2, 0}},
		{Cell{0, 0}, Cell{6, 0}, 2, Cell{1, -1}},
	}
	for _, tc := range tests {
		d := Diamond{Top: tc.top, Bottom: tc.bot}
		got := LimitDiamondHeight(d, tc.h)
		if got.Bottom != tc.want {
			t.Errorf("LimitDiamondHeight(%+v, %d).Bottom = %+v, want %+v", d, tc.h, got.Bottom, tc.want)
		}
		if got.Top != tc.top {
			t.Errorf("LimitDiamondHeight(%+v, %d).Top = %+v, want %+v (same top)", d, tc.h, got.Top, tc.top)
		}
	}
}

func TestLimitDiamondHeightIdempotent(t *testing.T) {
	d := Diamond{Top: Cell{0, 0}, Bottom: Cell{2, 0}}
	if got := LimitDiamondHeight(d, 3); got != d {
		t.Errorf("LimitDiamondHeight should be idempotent when height <= h, got %+v, want %+v", got, d)
	}
}

func TestPointOnInside(t *testing.T) {
	if !PointOnInside(Cell{1, 1}, Cell{3, 1}) {
		t.Error("expected (1,1) to be inside triangle of (3,1)")
	}
	if PointOnInside(Cell{3, 1}, Cell{3, 1}) {
		t.Error("a cell is not strictly inside its own triangle")
	}
	if PointOnInside(Cell{4, 0}, Cell{3, 1}) {
		t.Error("(4,0) is below (3,1), should not be inside")
	}
}
