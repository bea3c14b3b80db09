// Package lex implements the double-array trie lexicon: common-prefix
// lookup over byte sequences plus the per-word_id parameter and feature
// tables that back each lookup result.
package lex

import "fmt"

// LexType is the namespace a word_id is drawn from. The pair
// (LexType, word_id) is the unique key across all three namespaces
// (WordIdx).
type LexType uint8

const (
	System LexType = iota
	User
	Unknown
)

func (t LexType) String() string {
	switch t {
	case System:
		return "system"
	case User:
		return "user"
	case Unknown:
		return "unknown"
	default:
		return fmt.Sprintf("LexType(%d)", uint8(t))
	}
}

// WordIdx is the unique key of a lexicon entry across all three
// namespaces: system lexicon, user lexicon, and synthesized unknown
// words.
type WordIdx struct {
	Lex LexType
	Id  uint32
}

func (w WordIdx) String() string {
	return fmt.Sprintf("%s:%d", w.Lex, w.Id)
}

// WordParam is the per-word_id (left_id, right_id, word_cost) triple.
// Its layout is fixed-width so that it can be reinterpreted directly
// over mapped bytes (see archived.SliceAt).
type WordParam struct {
	Left  uint16
	Right uint16
	Cost  int16
	_pad  uint16
}
