// Package charprop implements the character property table and the
// unknown-word handler of spec.md §3/§4.5: classifying input code
// points into a bitset of categories, and synthesizing lexicon
// candidates where the lexicon itself is silent.
package charprop

import "fmt"

// Category is one member of the closed, finite, <=32-entry category
// enum of spec.md §3. Multiple categories may apply to a single code
// point (e.g. a kanji numeral is both Kanji and KanjiNumeric).
type Category uint8

const (
	Default Category = iota
	Space
	Kanji
	Symbol
	Numeric
	Alpha
	Hiragana
	Katakana
	KanjiNumeric
	Greek
	Cyrillic

	numCategories // sentinel; keep last
)

func (c Category) String() string {
	switch c {
	case Default:
		return "DEFAULT"
	case Space:
		return "SPACE"
	case Kanji:
		return "KANJI"
	case Symbol:
		return "SYMBOL"
	case Numeric:
		return "NUMERIC"
	case Alpha:
		return "ALPHA"
	case Hiragana:
		return "HIRAGANA"
	case Katakana:
		return "KATAKANA"
	case KanjiNumeric:
		return "KANJINUMERIC"
	case Greek:
		return "GREEK"
	case Cyrillic:
		return "CYRILLIC"
	default:
		return fmt.Sprintf("Category(%d)", uint8(c))
	}
}

// NumCategories reports the size of the closed category enum used by
// this build (<=32, per spec.md §4.5).
func NumCategories() int { return int(numCategories) }

// CategorySet is a bit-indexed set over the category enum.
type CategorySet uint32

func (s CategorySet) Has(c Category) bool { return s&(1<<uint(c)) != 0 }
func (s *CategorySet) Add(c Category)     { *s |= 1 << uint(c) }

// Each iterates the categories present in the set in enum order.
func (s CategorySet) Each(fn func(Category)) {
	for c := Category(0); c < numCategories; c++ {
		if s.Has(c) {
			fn(c)
		}
	}
}
