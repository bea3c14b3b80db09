// Package connector implements the three connection-cost matrix
// variants of spec.md §3/§4.4 (Matrix, Dual, Raw) plus the optional ID
// mapper that permutes connection ids for cache locality at build
// time.
package connector

// Connector is the contract every variant satisfies: cost is always
// defined, with BOS/EOS using connection id 0 at the lattice
// boundaries.
type Connector interface {
	NumLeft() int
	NumRight() int
	// Cost returns the connection cost between the previous node's
	// right_id and the next node's left_id.
	Cost(rightIDPrev, leftIDNext uint16) int32
}
