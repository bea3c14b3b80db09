package charprop

import "unicode/utf8"

// CategoryConfig is the synthetic lexicon-entry template attached to
// a category: every candidate the unknown-word handler emits for that
// category carries these connection/cost parameters and feature
// string (spec.md §4.5, final bullet).
type CategoryConfig struct {
	Left, Right uint16
	Cost        int16
	Feature     string
}

// Candidate is one synthesized unknown-word candidate spanning
// input[b:End] (both byte offsets, b being the offset passed to Emit),
// produced by Emit.
type Candidate struct {
	End         int // byte offset the candidate ends at
	Category    Category
	Left, Right uint16
	Cost        int16
	Feature     string
}

// UnknownHandler synthesizes lexicon candidates from character-class
// rules when the lexicon is silent at an offset, or when invoked
// regardless per Rule.Invoke (spec.md §4.5).
type UnknownHandler struct {
	Table  *Table
	Config [int(numCategories)]CategoryConfig
}

// NewUnknownHandler pairs a classification Table with a per-category
// candidate template. Categories with a zero CategoryConfig still
// classify normally; they simply emit zero-cost, featureless
// candidates unless configured.
func NewUnknownHandler(table *Table) *UnknownHandler {
	return &UnknownHandler{Table: table}
}

// SetConfig assigns the synthetic word template for a category.
func (h *UnknownHandler) SetConfig(c Category, cfg CategoryConfig) { h.Config[c] = cfg }

// ShouldInvoke implements the "invoke" policy of spec.md §4.5: the
// tokenizer consults the unknown handler at an offset iff the lexicon
// produced no match there, or at least one category in the code
// point's set has Invoke=true.
func (h *UnknownHandler) ShouldInvoke(set CategorySet, hasLexMatch bool) bool {
	if !hasLexMatch {
		return true
	}
	invoke := false
	set.Each(func(c Category) {
		if h.Table.Rule(c).Invoke {
			invoke = true
		}
	})
	return invoke
}

// Emit runs the emission algorithm of spec.md §4.5 at byte offset b:
// decode the code point, classify it, and for each category in its
// set either emit one grouped candidate spanning a maximal run of
// that category, or emit one candidate per length 1..=Rule.Length.
// maxGroupLen, if nonzero, caps a grouped run's length in code
// points (the tokenizer's max_grouping_len flag, spec.md §4.6).
func (h *UnknownHandler) Emit(input []byte, b int, maxGroupLen int, emit func(Candidate)) {
	if b >= len(input) {
		return
	}
	r0, w0 := utf8.DecodeRune(input[b:])
	set := h.Table.CategorySet(r0)
	set.Each(func(c Category) {
		rule := h.Table.Rule(c)
		cfg := h.Config[c]
		if rule.Group {
			end := b + w0
			count := 1
			for maxGroupLen == 0 || count < maxGroupLen {
				if end >= len(input) {
					break
				}
				r, w := utf8.DecodeRune(input[end:])
				if !h.Table.CategorySet(r).Has(c) {
					break
				}
				end += w
				count++
			}
			emit(Candidate{End: end, Category: c, Left: cfg.Left, Right: cfg.Right, Cost: cfg.Cost, Feature: cfg.Feature})
			return
		}
		length := int(rule.Length)
		end := b
		w := w0
		for k := 1; k <= length; k++ {
			end += w
			emit(Candidate{End: end, Category: c, Left: cfg.Left, Right: cfg.Right, Cost: cfg.Cost, Feature: cfg.Feature})
			if end >= len(input) {
				break
			}
			nr, nw := utf8.DecodeRune(input[end:])
			if !h.Table.CategorySet(nr).Has(c) {
				break
			}
			w = nw
		}
	})
}

// DefaultCandidate produces the mandatory single-code-point fallback
// of spec.md §4.6: when neither the lexicon nor Emit produced any
// candidate at b, the tokenizer must still make progress. This
// ignores Rule.Invoke for Default (the fallback is used precisely
// when Default's own rule disabled invocation) and always spans
// exactly one code point.
func (h *UnknownHandler) DefaultCandidate(input []byte, b int) Candidate {
	_, w := utf8.DecodeRune(input[b:])
	cfg := h.Config[Default]
	return Candidate{End: b + w, Category: Default, Left: cfg.Left, Right: cfg.Right, Cost: cfg.Cost, Feature: cfg.Feature}
}
