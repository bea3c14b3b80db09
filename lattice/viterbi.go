package lattice

import (
	"unicode/utf8"

	"github.com/himawari-nlp/vibratio/charprop"
	"github.com/himawari-nlp/vibratio/connector"
	"github.com/himawari-nlp/vibratio/dictionary"
	"github.com/himawari-nlp/vibratio/lex"
)

// Params bundles the dictionary components the builder needs. System
// is required; User may be nil. IDs stored in System/User/Unk and in
// Connector are assumed already permuted by an IdMapper if one was
// applied at build time (spec.md §4.4: "no runtime cost").
type Params struct {
	System, User *lex.Lexicon
	Connector    connector.Connector
	Handler      *charprop.UnknownHandler
}

// Build runs the forward construction algorithm of spec.md §4.6:
// BOS at offset 0, then for each reachable offset, lexicon and
// unknown-word candidates are connected against every node ending
// there, with the minimum-cost predecessor recorded (earliest-indexed
// ties preferred); finally EOS is attached at len(input), bridging
// over any ignore_space-skipped trailing whitespace.
func Build(l *Lattice, p Params, input []byte, ignoreSpace bool, maxGroupingLen int) error {
	l.reset(len(input) + 1)

	bosRight := uint16(0)
	l.append(0, Node{Kind: BOS, Begin: 0, Left: 0, Right: bosRight, WordCost: bakedCost(p.Connector, bosRight, 0), MinTotal: 0})

	for b := 0; b < len(input); b++ {
		preds := l.NodesAt(b)
		if len(preds) == 0 {
			continue
		}
		matchStart := b
		if ignoreSpace {
			for matchStart < len(input) {
				r, w := utf8.DecodeRune(input[matchStart:])
				if !p.Handler.Table.CategorySet(r).Has(charprop.Space) {
					break
				}
				matchStart += w
			}
		}
		if matchStart >= len(input) {
			continue
		}

		hasMatch := false
		tryLexicon := func(lx *lex.Lexicon) {
			if lx == nil {
				return
			}
			lx.CommonPrefixIter(input, matchStart, func(end int, idx lex.WordIdx) {
				hasMatch = true
				wp := lx.WordParam(idx.Id)
				addCandidate(l, p, b, preds, matchStart, end, idx, wp.Left, wp.Right, int32(wp.Cost))
			})
		}
		tryLexicon(p.System)
		tryLexicon(p.User)

		r0, _ := utf8.DecodeRune(input[matchStart:])
		set := p.Handler.Table.CategorySet(r0)
		if p.Handler.ShouldInvoke(set, hasMatch) {
			emitted := false
			p.Handler.Emit(input, matchStart, maxGroupingLen, func(c charprop.Candidate) {
				emitted = true
				idx := lex.WordIdx{Lex: lex.Unknown, Id: uint32(c.Category)}
				addCandidate(l, p, b, preds, matchStart, c.End, idx, c.Left, c.Right, int32(c.Cost))
			})
			if !hasMatch && !emitted {
				c := p.Handler.DefaultCandidate(input, matchStart)
				idx := lex.WordIdx{Lex: lex.Unknown, Id: uint32(c.Category)}
				addCandidate(l, p, b, preds, matchStart, c.End, idx, c.Left, c.Right, int32(c.Cost))
			}
		}
	}

	return attachEOS(l, p, input, ignoreSpace)
}

// addCandidate computes the minimum-cost predecessor among preds (the
// nodes ending at offset b, the point from which matchStart was
// reached) for a candidate word spanning [matchStart, end), and
// appends the resulting node to nodes[end].
func addCandidate(l *Lattice, p Params, b int, preds []Node, matchStart, end int, idx lex.WordIdx, left, right uint16, baseCost int32) {
	wordCost := bakedCost(p.Connector, right, baseCost)
	best := -1
	var bestTotal int32
	for i, pred := range preds {
		total := pred.MinTotal + p.Connector.Cost(pred.Right, left) + wordCost
		if best == -1 || total < bestTotal {
			best = i
			bestTotal = total
		}
	}
	l.append(end, Node{
		Kind: Word, Begin: matchStart, Idx: idx,
		WordCost: wordCost, Left: left, Right: right,
		MinTotal: bestTotal, HasPrev: true, PrevOffset: b, PrevIndex: best,
	})
}

// bakedCost adds the connector's precomputable right-context
// contribution (Dual's cache-locality split, spec.md §4.4/§9) into a
// node's stored word_cost at creation time, so later transitions out
// of this node only need the connector's narrower complement lookup.
func bakedCost(conn connector.Connector, rightID uint16, base int32) int32 {
	if rc, ok := conn.(connector.RightContextProvider); ok {
		return base + rc.RightContextCost(rightID)
	}
	return base
}

// attachEOS appends the synthetic EOS node at len(input), drawing its
// predecessor pool from nodes[len(input)] unless ignore_space left a
// trailing whitespace run unconnected to any end-offset node, in
// which case it scans backward over that run to find the last
// reachable offset.
func attachEOS(l *Lattice, p Params, input []byte, ignoreSpace bool) error {
	target := len(input)
	if ignoreSpace {
		for target > 0 {
			r, w := utf8.DecodeLastRune(input[:target])
			if !p.Handler.Table.CategorySet(r).Has(charprop.Space) {
				break
			}
			target -= w
		}
	}
	preds := l.NodesAt(target)
	if len(preds) == 0 {
		return &dictionary.Error{Kind: dictionary.InvalidState, Msg: "no reachable predecessor for EOS (corrupt dictionary or construction bug)"}
	}
	best := 0
	var bestTotal int32
	for i, pred := range preds {
		total := pred.MinTotal + p.Connector.Cost(pred.Right, 0)
		if i == 0 || total < bestTotal {
			best, bestTotal = i, total
		}
	}
	l.append(len(input), Node{
		Kind: EOS, Begin: len(input), Left: 0, Right: 0,
		MinTotal: bestTotal, HasPrev: true, PrevOffset: target, PrevIndex: best,
	})
	return nil
}

// Token is one emitted morpheme of the single-best or a k-best path.
type Token struct {
	Begin, End int
	Idx        lex.WordIdx
}

// Backtrack follows EOS's back-pointer chain to BOS and returns the
// resulting tokens in left-to-right order (spec.md §4.6 "Output
// (single-best)").
func Backtrack(l *Lattice) []Token {
	eosList := l.NodesAt(l.Len() - 1)
	if len(eosList) == 0 {
		return nil
	}
	eos := eosList[len(eosList)-1]
	var tokens []Token
	offset, index, hasPrev := eos.PrevOffset, eos.PrevIndex, eos.HasPrev
	for hasPrev {
		n := l.NodesAt(offset)[index]
		if n.Kind == BOS {
			break
		}
		tokens = append(tokens, Token{Begin: n.Begin, End: offset, Idx: n.Idx})
		offset, index, hasPrev = n.PrevOffset, n.PrevIndex, n.HasPrev
	}
	for i, j := 0, len(tokens)-1; i < j; i, j = i+1, j-1 {
		tokens[i], tokens[j] = tokens[j], tokens[i]
	}
	return tokens
}
