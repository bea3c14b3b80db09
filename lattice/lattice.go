// Package lattice implements the Viterbi lattice of spec.md §4.6: a
// reusable per-worker buffer of ending nodes indexed by byte offset,
// single-best dynamic programming, and an optional k-best A*
// enumerator whose heuristic is the forward pass's own exact minimum.
package lattice

import "github.com/himawari-nlp/vibratio/lex"

// Kind distinguishes the two sentinel node types from ordinary word
// nodes.
type Kind uint8

const (
	Word Kind = iota
	BOS
	EOS
)

// Node is one ending node of the lattice (spec.md §4.6): a candidate
// morpheme (or sentinel) together with the best path total cost
// reaching it and a back-pointer to the chosen predecessor.
type Node struct {
	Kind     Kind
	Begin    int
	Idx      lex.WordIdx
	WordCost int32 // base word cost, with any connector right-context baked in at creation
	Left     uint16
	Right    uint16
	MinTotal int32

	HasPrev    bool
	PrevOffset int
	PrevIndex  int
}

// Lattice is the per-worker reused buffer: nodes[offset] holds every
// node whose span ends at that byte offset. Capacity grows across
// calls and is never shrunk, matching spec.md §4.6's "reused across
// calls" requirement.
type Lattice struct {
	nodes [][]Node
}

// NodesAt returns the nodes ending at offset.
func (l *Lattice) NodesAt(offset int) []Node { return l.nodes[offset] }

// Len reports the number of offsets currently held (len(input)+1).
func (l *Lattice) Len() int { return len(l.nodes) }

// reset grows nodes to length n (if needed) and clears every bucket's
// length while preserving its capacity, so repeated Tokenize calls on
// a Worker don't reallocate once a few calls have warmed the buffer.
func (l *Lattice) reset(n int) {
	if cap(l.nodes) < n {
		grown := make([][]Node, n)
		copy(grown, l.nodes)
		l.nodes = grown
	} else {
		l.nodes = l.nodes[:n]
	}
	for i := range l.nodes {
		l.nodes[i] = l.nodes[i][:0]
	}
}

func (l *Lattice) append(offset int, n Node) int {
	l.nodes[offset] = append(l.nodes[offset], n)
	return len(l.nodes[offset]) - 1
}
