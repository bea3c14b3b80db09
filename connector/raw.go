package connector

// Raw is the compatibility-fallback connector variant for sparse or
// structured matrices (spec.md §3/§9 marks Matrix and Dual as the
// required variants; Raw exists so an unusual connection-cost table
// doesn't have to be densified). Each right_id's row is a sorted list
// of (left_id, cost) pairs; unlisted pairs fall back to the row's
// default cost. Lookup is binary search over the row, the same
// technique the teacher's Sorted.findNext uses for bigram back-off
// lookups.
type Raw struct {
	NumLeftN, NumRightN int
	Rows                []RawRow
}

// RawRow is one right_id's sparse cost row.
type RawRow struct {
	Default int32
	Entries []RawEntry
}

// RawEntry is one explicit (left_id, cost) override within a row.
type RawEntry struct {
	LeftID uint16
	Cost   int32
}

func NewRaw(numLeft, numRight int, rows []RawRow) *Raw {
	if len(rows) != numRight {
		panic("connector: raw row count mismatch")
	}
	return &Raw{NumLeftN: numLeft, NumRightN: numRight, Rows: rows}
}

func (r *Raw) NumLeft() int  { return r.NumLeftN }
func (r *Raw) NumRight() int { return r.NumRightN }

func (r *Raw) Cost(rightIDPrev, leftIDNext uint16) int32 {
	row := &r.Rows[rightIDPrev]
	entries := row.Entries
	l, h := 0, len(entries)
	for l < h {
		mid := l + (h-l)>>1
		id := entries[mid].LeftID
		switch {
		case id < leftIDNext:
			l = mid + 1
		case id > leftIDNext:
			h = mid
		default:
			return entries[mid].Cost
		}
	}
	return row.Default
}
