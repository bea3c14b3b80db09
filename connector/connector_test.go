package connector

import "testing"

func TestMatrixCost(t *testing.T) {
	// numLeft=2, numRight=3
	table := []int16{
		0, 1, // right=0
		10, 11, // right=1
		20, 21, // right=2
	}
	m := NewMatrix(2, 3, table)
	cases := []struct {
		r, l uint16
		want int32
	}{
		{0, 0, 0}, {0, 1, 1}, {1, 0, 10}, {2, 1, 21},
	}
	for _, c := range cases {
		if got := m.Cost(c.r, c.l); got != c.want {
			t.Errorf("Cost(%d,%d) = %d, want %d", c.r, c.l, got, c.want)
		}
	}
}

func TestDualSplitsRightContext(t *testing.T) {
	d := NewDual(2, 2, []int32{100, 200}, []int16{1, 2, 3, 4})
	if d.RightContextCost(1) != 200 {
		t.Fatalf("expected right context 200, got %d", d.RightContextCost(1))
	}
	if d.Cost(1, 0) != 3 {
		t.Fatalf("expected complement 3, got %d", d.Cost(1, 0))
	}
}

func TestRawFallsBackToDefault(t *testing.T) {
	rows := []RawRow{
		{Default: -1, Entries: []RawEntry{{LeftID: 5, Cost: 42}}},
	}
	r := NewRaw(10, 1, rows)
	if got := r.Cost(0, 5); got != 42 {
		t.Fatalf("expected override 42, got %d", got)
	}
	if got := r.Cost(0, 6); got != -1 {
		t.Fatalf("expected default -1, got %d", got)
	}
}

func TestIdMapperValidatesPermutation(t *testing.T) {
	if _, err := NewIdMapper([]uint16{0, 1, 1}, []uint16{0, 1}); err == nil {
		t.Fatal("expected error for repeated value")
	}
	m, err := NewIdMapper([]uint16{1, 0}, []uint16{0, 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.MapLeft(0) != 1 || m.MapRight(1) != 1 {
		t.Fatalf("unexpected mapping: %+v", m)
	}
}
