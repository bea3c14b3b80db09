package charprop

import (
	"unicode"

	"golang.org/x/text/unicode/rangetable"
)

// Rule is the per-category (invoke, group, length) record of spec.md
// §3/§4.5.
type Rule struct {
	// Invoke forces unknown-word generation even when the lexicon
	// already matched at this offset.
	Invoke bool
	// Group coalesces contiguous runs of this category into one
	// candidate instead of emitting every prefix length up to Length.
	Group bool
	// Length is the maximum code-point length to emit when Group is
	// false.
	Length uint16
}

// Table classifies code points into CategorySets and carries the
// emission rule for each category. It is the owned, in-memory
// representation; the archived (mapped) form stores rules as
// archived.RuleRecord values and ranges as flat archived.RuneRange
// pairs, which archived.Build converts back into a Table at load time.
type Table struct {
	ranges [int(numCategories)]*unicode.RangeTable
	rules  [int(numCategories)]Rule
}

// kanjiNumerals are the CJK ideographs used as numeral characters
// (the canonical example in spec.md §4.5 of a code point belonging to
// two categories at once: KANJI and NUMERIC/KANJINUMERIC).
var kanjiNumerals = rangetable.New(
	'〇', '一', '二', '三', '四', '五', '六', '七', '八', '九', '十', '百', '千', '万', '億', '兆',
)

// NewDefaultTable builds the stock classification table: Unicode
// script range tables (Han, Hiragana, Katakana, Latin, Greek,
// Cyrillic, Nd digits, Z separators) merged via
// golang.org/x/text/unicode/rangetable, plus the kanji-numeral
// overlay. Every category starts with an IPADIC-style default rule:
// Kanji and Hiragana are ungrouped with Length=2, Default is ungrouped
// with Length=1, every other category is grouped; Invoke is true for
// Default, Symbol, Numeric, Alpha, Katakana, Greek and Cyrillic and
// false for Space, Kanji, Hiragana and KanjiNumeric. Call
// SetRule to override per-category behavior, or load rules from a
// text definition with ParseCharDef.
func NewDefaultTable() *Table {
	t := &Table{}
	t.ranges[Kanji] = unicode.Han
	t.ranges[Hiragana] = unicode.Hiragana
	t.ranges[Katakana] = unicode.Katakana
	t.ranges[Alpha] = rangetable.Merge(unicode.Latin)
	t.ranges[Greek] = unicode.Greek
	t.ranges[Cyrillic] = unicode.Cyrillic
	t.ranges[Numeric] = unicode.Nd
	t.ranges[Space] = unicode.Z
	t.ranges[Symbol] = rangetable.Merge(unicode.P, unicode.S)
	t.ranges[KanjiNumeric] = kanjiNumerals

	t.rules[Default] = Rule{Invoke: true, Group: false, Length: 1}
	t.rules[Space] = Rule{Invoke: false, Group: true, Length: 1}
	t.rules[Kanji] = Rule{Invoke: false, Group: false, Length: 2}
	t.rules[Symbol] = Rule{Invoke: true, Group: true, Length: 1}
	t.rules[Numeric] = Rule{Invoke: true, Group: true, Length: 1}
	t.rules[Alpha] = Rule{Invoke: true, Group: true, Length: 1}
	t.rules[Hiragana] = Rule{Invoke: false, Group: false, Length: 2}
	t.rules[Katakana] = Rule{Invoke: true, Group: true, Length: 1}
	t.rules[KanjiNumeric] = Rule{Invoke: false, Group: true, Length: 1}
	t.rules[Greek] = Rule{Invoke: true, Group: true, Length: 1}
	t.rules[Cyrillic] = Rule{Invoke: true, Group: true, Length: 1}
	return t
}

// SetRule overrides the emission rule for a category.
func (t *Table) SetRule(c Category, r Rule) { t.rules[c] = r }

// Rule returns the emission rule for a category.
func (t *Table) Rule(c Category) Rule { return t.rules[c] }

// SetRange overrides (or adds) the Unicode range backing a category,
// e.g. to plug in a dictionary-specific custom range read from a
// chardef file.
func (t *Table) SetRange(c Category, rt *unicode.RangeTable) { t.ranges[c] = rt }

// Range returns the Unicode range backing a category, or nil if the
// category has none (it only ever matches via an explicit override).
func (t *Table) Range(c Category) *unicode.RangeTable { return t.ranges[c] }

// RangePair is one inclusive code-point range, the archived wire form
// of a category's Unicode range table (archived.RuneRange mirrors
// this layout).
type RangePair struct{ Lo, Hi rune }

// RangeTableFromPairs rebuilds a *unicode.RangeTable from the archived
// flat-pair form. Every pair is stored as a Range32 entry regardless of
// magnitude: unicode.Is's R32 binary search works the same for code
// points below and above the R16 boundary, so there is no need to
// split pairs by width on the way back in.
func RangeTableFromPairs(pairs []RangePair) *unicode.RangeTable {
	if len(pairs) == 0 {
		return nil
	}
	rt := &unicode.RangeTable{}
	for _, p := range pairs {
		rt.R32 = append(rt.R32, unicode.Range32{Lo: uint32(p.Lo), Hi: uint32(p.Hi), Stride: 1})
	}
	return rt
}

// RangePairs flattens a *unicode.RangeTable into inclusive pairs,
// widening every R16 entry's stride-1 runs to rune-sized bounds. Used
// when archiving an owned Table to its on-disk form.
func RangePairs(rt *unicode.RangeTable) []RangePair {
	if rt == nil {
		return nil
	}
	var pairs []RangePair
	for _, r := range rt.R16 {
		if r.Stride == 1 {
			pairs = append(pairs, RangePair{Lo: rune(r.Lo), Hi: rune(r.Hi)})
			continue
		}
		for lo := uint32(r.Lo); lo <= uint32(r.Hi); lo += uint32(r.Stride) {
			pairs = append(pairs, RangePair{Lo: rune(lo), Hi: rune(lo)})
		}
	}
	for _, r := range rt.R32 {
		if r.Stride == 1 {
			pairs = append(pairs, RangePair{Lo: rune(r.Lo), Hi: rune(r.Hi)})
			continue
		}
		for lo := r.Lo; lo <= r.Hi; lo += r.Stride {
			pairs = append(pairs, RangePair{Lo: rune(lo), Hi: rune(lo)})
		}
	}
	return pairs
}

// CategorySet classifies a single code point. A code point with no
// matching range always carries at least Default.
func (t *Table) CategorySet(r rune) CategorySet {
	var set CategorySet
	for c := Category(0); c < numCategories; c++ {
		rt := t.ranges[c]
		if rt != nil && unicode.Is(rt, r) {
			set.Add(c)
		}
	}
	if set.Has(Numeric) && set.Has(Kanji) {
		set.Add(KanjiNumeric)
	}
	if set == 0 {
		set.Add(Default)
	}
	return set
}
