package connector

// Matrix is a dense num_right x num_left signed 16-bit table,
// row-major, fetched with one load: cost(r, l) = table[r*numLeft+l].
type Matrix struct {
	NumLeftN, NumRightN int
	Table               []int16
}

// NewMatrix builds an owned Matrix from a row-major table. table must
// have exactly numRight*numLeft entries.
func NewMatrix(numLeft, numRight int, table []int16) *Matrix {
	if len(table) != numLeft*numRight {
		panic("connector: matrix table size mismatch")
	}
	return &Matrix{NumLeftN: numLeft, NumRightN: numRight, Table: table}
}

func (m *Matrix) NumLeft() int  { return m.NumLeftN }
func (m *Matrix) NumRight() int { return m.NumRightN }

func (m *Matrix) Cost(rightIDPrev, leftIDNext uint16) int32 {
	return int32(m.Table[int(rightIDPrev)*m.NumLeftN+int(leftIDNext)])
}
