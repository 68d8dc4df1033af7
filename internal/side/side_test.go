package side

import "testing"

func TestOther(t *testing.T) {
	if Left.Other() != Right {
		t.Errorf("Left.Other() = %v, want Right", Left.Other())
	}
	if Right.Other() != Left {
		t.Errorf("Right.Other() = %v, want Left", Right.Other())
	}
}

func TestPer(t *testing.T) {
	var p Per[int]
	p.Set(Left, 1)
	p.Set(Right, 2)
	if p.Get(Left) != 1 || p.Get(Right) != 2 {
		t.Errorf("Per = %+v, want {1 2}", p)
	}
}
