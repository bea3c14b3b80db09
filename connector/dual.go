package connector

// RightContextProvider is implemented by connector variants (Dual)
// that can precompute part of a node's connection cost purely from
// its own right_id, before any neighboring node exists. The lattice
// builder bakes this into a node's word_cost at creation time (see
// spec.md §4.4/§4.6/§9 "Dual connector as a cache-locality
// transform"), shrinking the table touched by the O(n_prev x
// n_current) inner loop down to just the complement table below.
type RightContextProvider interface {
	RightContextCost(rightID uint16) int32
}

// Dual is the cache-locality connector variant: NumRight x NumLeft
// split into a per-right_id precomputable contribution
// (RightContext) and a complement table read at connection time
// (identical shape to Matrix, but narrower in the sense that the
// right_id axis no longer needs per-pair lookup — only the complement
// axis does).
type Dual struct {
	NumLeftN, NumRightN int
	RightContext        []int32
	Complement          []int16
}

// NewDual builds an owned Dual connector. rightContext has length
// numRight; complement is row-major num_right x num_left, matching
// Matrix's layout.
func NewDual(numLeft, numRight int, rightContext []int32, complement []int16) *Dual {
	if len(rightContext) != numRight {
		panic("connector: dual right-context length mismatch")
	}
	if len(complement) != numLeft*numRight {
		panic("connector: dual complement table size mismatch")
	}
	return &Dual{NumLeftN: numLeft, NumRightN: numRight, RightContext: rightContext, Complement: complement}
}

func (d *Dual) NumLeft() int  { return d.NumLeftN }
func (d *Dual) NumRight() int { return d.NumRightN }

func (d *Dual) Cost(rightIDPrev, leftIDNext uint16) int32 {
	return int32(d.Complement[int(rightIDPrev)*d.NumLeftN+int(leftIDNext)])
}

func (d *Dual) RightContextCost(rightID uint16) int32 {
	return d.RightContext[rightID]
}
