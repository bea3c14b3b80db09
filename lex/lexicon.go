package lex

import "unsafe"

// Lexicon is the four co-located tables described in spec.md §3: a
// word map (Trie), word params, word features, and a lex_type tag.
// Every word_id reachable via Trie must have a valid Params and
// Feature entry (this is checked by archived.ValidateRoot for the
// mapped case; Builder.Build produces the trie and both tables from
// the same entries, so it holds there by construction).
type Lexicon struct {
	Type    LexType
	Trie    Trie
	Params  []WordParam
	// featureOffsets[i]..featureOffsets[i+1] bound word_id i's feature
	// string within featureBytes. len(featureOffsets) == len(Params)+1.
	featureOffsets []uint32
	featureBytes   []byte
}

// NewLexicon assembles a Lexicon from already-constructed tables. It
// is used both by Builder (heap slices) and by the archived loader
// (slices reinterpreted over mapped bytes) — the two paths produce
// identical Lexicon values from Lexicon's point of view.
func NewLexicon(typ LexType, trie Trie, params []WordParam, featureOffsets []uint32, featureBytes []byte) *Lexicon {
	return &Lexicon{Type: typ, Trie: trie, Params: params, featureOffsets: featureOffsets, featureBytes: featureBytes}
}

// NumWords returns the number of word_ids in this lexicon.
func (l *Lexicon) NumWords() int { return len(l.Params) }

// FeatureOffsets exposes the raw offsets table backing Feature, for
// callers (the archived writer) that need to re-serialize a Lexicon
// rather than just query it.
func (l *Lexicon) FeatureOffsets() []uint32 { return l.featureOffsets }

// FeatureBytes exposes the raw feature byte blob backing Feature.
func (l *Lexicon) FeatureBytes() []byte { return l.featureBytes }

// WordParam returns the (left_id, right_id, word_cost) triple for id.
func (l *Lexicon) WordParam(id uint32) WordParam { return l.Params[id] }

// Feature returns the feature string for id without copying or
// allocating: it is a direct reinterpretation of a sub-slice of the
// lexicon's feature byte blob, which may itself be mapped memory, so
// it must never be mutated through this string and must not outlive
// the Lexicon (same borrow discipline as the rest of the archived
// view, spec.md §9).
func (l *Lexicon) Feature(id uint32) string {
	b := l.featureBytes[l.featureOffsets[id]:l.featureOffsets[id+1]]
	if len(b) == 0 {
		return ""
	}
	return unsafe.String(&b[0], len(b))
}

// CommonPrefixIter enumerates every match starting at from, tagging
// each resulting word_id with this lexicon's LexType.
func (l *Lexicon) CommonPrefixIter(input []byte, from int, emit func(end int, idx WordIdx)) {
	l.Trie.CommonPrefixIter(input, from, func(m Match) {
		for _, id := range m.WordIds {
			emit(m.End, WordIdx{Lex: l.Type, Id: id})
		}
	})
}
