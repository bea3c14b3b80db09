package lex

import (
	"reflect"
	"sort"
	"testing"
)

func buildSimple() *Lexicon {
	b := NewBuilder(System)
	b.Add("a", 1, 2, -100, "feat-a")
	b.Add("ab", 3, 4, -200, "feat-ab")
	b.Add("ab", 5, 6, -50, "feat-ab-2") // homograph
	b.Add("b", 7, 8, 10, "feat-b")
	return b.Build()
}

func TestCommonPrefixOrderedByEnd(t *testing.T) {
	lex := buildSimple()
	var ends []int
	var idxs []WordIdx
	lex.CommonPrefixIter([]byte("ab"), 0, func(end int, idx WordIdx) {
		ends = append(ends, end)
		idxs = append(idxs, idx)
	})
	if !reflect.DeepEqual(ends, []int{1, 2, 2}) {
		t.Fatalf("expected ends [1 2 2], got %v", ends)
	}
	sort.Slice(idxs, func(i, j int) bool { return idxs[i].Id < idxs[j].Id })
	if len(idxs) != 3 {
		t.Fatalf("expected 3 matches, got %d", len(idxs))
	}
}

func TestCommonPrefixEmptyInput(t *testing.T) {
	lex := buildSimple()
	count := 0
	lex.CommonPrefixIter([]byte(""), 0, func(int, WordIdx) { count++ })
	if count != 0 {
		t.Fatalf("expected no matches on empty input, got %d", count)
	}
}

func TestCommonPrefixNoMatch(t *testing.T) {
	lex := buildSimple()
	count := 0
	lex.CommonPrefixIter([]byte("zzz"), 0, func(int, WordIdx) { count++ })
	if count != 0 {
		t.Fatalf("expected no matches, got %d", count)
	}
}

func TestWordParamAndFeature(t *testing.T) {
	lex := buildSimple()
	var got []string
	lex.CommonPrefixIter([]byte("a"), 0, func(end int, idx WordIdx) {
		got = append(got, lex.Feature(idx.Id))
	})
	if len(got) != 1 || got[0] != "feat-a" {
		t.Fatalf("expected [feat-a], got %v", got)
	}
	p := lex.WordParam(0)
	if p.Left != 1 || p.Right != 2 || p.Cost != -100 {
		t.Fatalf("unexpected params: %+v", p)
	}
}

func TestCommonPrefixFromOffset(t *testing.T) {
	lex := buildSimple()
	var ends []int
	lex.CommonPrefixIter([]byte("xab"), 1, func(end int, idx WordIdx) {
		ends = append(ends, end)
	})
	if !reflect.DeepEqual(ends, []int{2, 3, 3}) {
		t.Fatalf("expected ends [2 3 3], got %v", ends)
	}
}
