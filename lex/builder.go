package lex

import (
	"sort"

	"github.com/golang/glog"
)

// Builder assembles an owned, in-memory Lexicon from individually
// added entries. It is the "fully owned (built in memory)" path of
// spec.md §3 — it never reads a source CSV dictionary (that tool is
// out of scope); it exists for programmatic construction (tests,
// small embedded dictionaries). The mmap loader's aligned-buffer-copy
// fallback does not use it: that path re-validates an already-built
// byte image.
//
// Must be constructed with NewBuilder, mirroring the teacher's
// Builder/Dump* split: Add mutates, Build steals the accumulated
// state into an immutable Lexicon.
type Builder struct {
	typ     LexType
	params  []WordParam
	feature []string
	root    *trieNode
}

type trieNode struct {
	children map[byte]*trieNode
	wordIds  []uint32
	state    int32
}

func newTrieNode() *trieNode {
	return &trieNode{children: map[byte]*trieNode{}}
}

// NewBuilder constructs an empty Builder for the given namespace.
func NewBuilder(typ LexType) *Builder {
	return &Builder{typ: typ, root: newTrieNode()}
}

// Add inserts a surface form with its connection/cost parameters and
// feature payload, returning the word_id assigned to it. Multiple
// calls with the same surface are homographs and are all retained.
func (b *Builder) Add(surface string, left, right uint16, cost int16, feature string) uint32 {
	id := uint32(len(b.params))
	b.params = append(b.params, WordParam{Left: left, Right: right, Cost: cost})
	b.feature = append(b.feature, feature)

	node := b.root
	for i := 0; i < len(surface); i++ {
		c := surface[i]
		child, ok := node.children[c]
		if !ok {
			child = newTrieNode()
			node.children[c] = child
		}
		node = child
	}
	node.wordIds = append(node.wordIds, id)
	return id
}

// Build assigns double-array states to the accumulated trie and
// produces an immutable Lexicon. Subsequent calls to Add have
// undefined behavior, as with the teacher's Builder.DumpHashed.
func (b *Builder) Build() *Lexicon {
	da := &daBuilder{check: []int32{-1}, base: []int32{0}}
	da.build(b.root, trieRoot)
	if glog.V(1) {
		glog.Infof("lex.Builder: %d words, %d trie states", len(b.params), len(da.base))
	}

	termStart := make([]uint32, len(da.base))
	termEnd := make([]uint32, len(da.base))
	var flat []uint32
	var walk func(n *trieNode)
	walk = func(n *trieNode) {
		if len(n.wordIds) > 0 {
			termStart[n.state] = uint32(len(flat))
			flat = append(flat, n.wordIds...)
			termEnd[n.state] = uint32(len(flat))
		}
		children := make([]byte, 0, len(n.children))
		for c := range n.children {
			children = append(children, c)
		}
		sort.Slice(children, func(i, j int) bool { return children[i] < children[j] })
		for _, c := range children {
			walk(n.children[c])
		}
	}
	walk(b.root)

	featureOffsets := make([]uint32, len(b.feature)+1)
	var featureBytes []byte
	for i, f := range b.feature {
		featureOffsets[i] = uint32(len(featureBytes))
		featureBytes = append(featureBytes, f...)
	}
	featureOffsets[len(b.feature)] = uint32(len(featureBytes))

	trie := Trie{
		Base:      da.base,
		Check:     da.check,
		TermStart: termStart,
		TermEnd:   termEnd,
		WordIds:   flat,
	}
	return NewLexicon(b.typ, trie, b.params, featureOffsets, featureBytes)
}

// daBuilder assigns double-array states to a built trieNode graph.
// The base-search is a naive linear scan (first free base), which is
// adequate for Builder-scale (programmatic, test, small embedded)
// dictionaries — production-scale construction from a source
// dictionary is explicitly out of scope (see SPEC_FULL.md).
type daBuilder struct {
	base, check []int32
}

func (d *daBuilder) ensureSize(n int) {
	for len(d.check) < n {
		d.base = append(d.base, 0)
		d.check = append(d.check, -1)
	}
}

func (d *daBuilder) build(n *trieNode, state int32) {
	if len(n.children) == 0 {
		return
	}
	children := make([]byte, 0, len(n.children))
	for c := range n.children {
		children = append(children, c)
	}
	sort.Slice(children, func(i, j int) bool { return children[i] < children[j] })

	base := d.findBase(children)
	d.base[state] = base
	for _, c := range children {
		next := base + int32(c)
		d.ensureSize(int(next) + 1)
		d.check[next] = state
		n.children[c].state = next
	}
	for _, c := range children {
		child := n.children[c]
		d.build(child, child.state)
	}
}

func (d *daBuilder) findBase(children []byte) int32 {
	for base := int32(1); ; base++ {
		ok := true
		for _, c := range children {
			next := base + int32(c)
			if next < 0 {
				ok = false
				break
			}
			if int(next) < len(d.check) && d.check[next] != -1 {
				ok = false
				break
			}
		}
		if ok {
			for _, c := range children {
				d.ensureSize(int(base+int32(c)) + 1)
			}
			return base
		}
	}
}
