package lattice

import (
	"container/heap"

	"github.com/himawari-nlp/vibratio/connector"
)

// ref addresses a single node in the lattice by its bucket and index
// within that bucket.
type ref struct {
	offset, index int
}

// KBest implements the k-best path enumeration of spec.md §4.6/§9: a
// backward A* search from EOS to BOS using the forward pass's own
// MinTotal as an exact (hence admissible) heuristic for the remaining
// cost from any node back to BOS, so paths are emitted in nondecreasing
// total cost order with no wasted expansion. Built is assumed to have
// already run Build over l. Returns at most k distinct token
// sequences; fewer if the lattice has fewer than k distinct paths.
func KBest(l *Lattice, conn connector.Connector, k int) [][]Token {
	if k <= 0 {
		return nil
	}
	eosOffset := l.Len() - 1
	eosList := l.NodesAt(eosOffset)
	if len(eosList) == 0 {
		return nil
	}
	eosIdx := len(eosList) - 1
	eosRef := ref{eosOffset, eosIdx}

	pq := &pathQueue{}
	heap.Init(pq)
	heap.Push(pq, &partialPath{
		node:     eosRef,
		priority: eosList[eosIdx].MinTotal,
	})

	var results [][]Token
	seen := map[string]bool{}
	for pq.Len() > 0 && len(results) < k {
		pp := heap.Pop(pq).(*partialPath)
		n := l.NodesAt(pp.node.offset)[pp.node.index]

		if n.Kind == BOS {
			tokens := pp.tokens()
			key := tokenKey(tokens)
			if seen[key] {
				continue
			}
			seen[key] = true
			results = append(results, tokens)
			continue
		}

		preds := l.NodesAt(n.PrevOffset)
		for i, pred := range preds {
			if pred.Kind == EOS {
				// EOS sits in the same bucket as the nodes it follows.
				continue
			}
			var transitionCost int32
			if n.Kind == EOS {
				transitionCost = conn.Cost(pred.Right, 0)
			} else {
				transitionCost = conn.Cost(pred.Right, n.Left) + n.WordCost
			}
			// g: exact cost of the suffix already fixed (from pred's
			// outgoing connection forward to EOS); the heuristic back to
			// BOS from pred is pred.MinTotal, the exact optimal cost of
			// reaching pred from BOS — admissible and consistent by
			// construction.
			g := pp.costFromEOS + transitionCost
			priority := g + pred.MinTotal
			next := &partialPath{
				costFromEOS: g,
				node:        ref{n.PrevOffset, i},
				priority:    priority,
				prev:        pp,
			}
			if n.Kind == Word {
				next.emit = Token{Begin: n.Begin, End: pp.node.offset, Idx: n.Idx}
				next.hasEmit = true
			}
			heap.Push(pq, next)
		}
	}
	return results
}

// partialPath is one frontier entry of the backward A* search: a node
// reached so far, the exact cost accumulated since EOS, and the chain
// of tokens emitted along the way (stored as a reversed linked list to
// avoid copying a slice per heap push).
type partialPath struct {
	costFromEOS int32
	node        ref
	priority    int32
	prev        *partialPath
	emit        Token
	hasEmit     bool
}

func (p *partialPath) tokens() []Token {
	var out []Token
	for n := p; n != nil; n = n.prev {
		if n.hasEmit {
			out = append(out, n.emit)
		}
	}
	// p is the BOS end of the chain and prev links lead toward EOS, so
	// out is already in left-to-right order.
	return out
}

func tokenKey(tokens []Token) string {
	b := make([]byte, 0, len(tokens)*12)
	for _, t := range tokens {
		b = appendInt(b, t.Begin)
		b = append(b, ':')
		b = appendInt(b, t.End)
		b = append(b, ':')
		b = appendInt(b, int(t.Idx.Lex))
		b = append(b, ':')
		b = appendInt(b, int(t.Idx.Id))
		b = append(b, '|')
	}
	return string(b)
}

func appendInt(b []byte, v int) []byte {
	if v == 0 {
		return append(b, '0')
	}
	if v < 0 {
		b = append(b, '-')
		v = -v
	}
	start := len(b)
	for v > 0 {
		b = append(b, byte('0'+v%10))
		v /= 10
	}
	for i, j := start, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return b
}

// pathQueue is a min-heap over partialPath.priority (spec.md §4.6's
// f = g + h, h = the forward pass's own exact MinTotal).
type pathQueue []*partialPath

func (q pathQueue) Len() int            { return len(q) }
func (q pathQueue) Less(i, j int) bool  { return q[i].priority < q[j].priority }
func (q pathQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *pathQueue) Push(x interface{}) { *q = append(*q, x.(*partialPath)) }
func (q *pathQueue) Pop() interface{} {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}
