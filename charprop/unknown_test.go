package charprop

import "testing"

func newTestHandler() *UnknownHandler {
	table := NewDefaultTable()
	h := NewUnknownHandler(table)
	h.SetConfig(Alpha, CategoryConfig{Left: 1, Right: 1, Cost: 100, Feature: "ALPHA"})
	h.SetConfig(Numeric, CategoryConfig{Left: 2, Right: 2, Cost: 200, Feature: "NUMERIC"})
	h.SetConfig(Default, CategoryConfig{Left: 0, Right: 0, Cost: 1000, Feature: "UNK"})
	return h
}

func TestCategorySetBasic(t *testing.T) {
	table := NewDefaultTable()
	if !table.CategorySet('A').Has(Alpha) {
		t.Fatal("expected 'A' to be Alpha")
	}
	if !table.CategorySet('1').Has(Numeric) {
		t.Fatal("expected '1' to be Numeric")
	}
	if !table.CategorySet('本').Has(Kanji) {
		t.Fatal("expected '本' to be Kanji")
	}
	if !table.CategorySet(' ').Has(Space) {
		t.Fatal("expected ' ' to be Space")
	}
}

func TestEmitGroupsAlphaRun(t *testing.T) {
	h := newTestHandler()
	var got []Candidate
	h.Emit([]byte("ABC123"), 0, 0, func(c Candidate) { got = append(got, c) })
	if len(got) != 1 || got[0].End != 3 || got[0].Category != Alpha {
		t.Fatalf("expected one Alpha candidate ending at 3, got %+v", got)
	}
}

func TestEmitRespectsMaxGroupLen(t *testing.T) {
	h := newTestHandler()
	var got []Candidate
	h.Emit([]byte("ABCDEF"), 0, 2, func(c Candidate) { got = append(got, c) })
	if len(got) != 1 || got[0].End != 2 {
		t.Fatalf("expected candidate capped at 2 runes, got %+v", got)
	}
}

func TestEmitUngroupedEmitsEachLength(t *testing.T) {
	table := NewDefaultTable()
	table.SetRule(Kanji, Rule{Invoke: false, Group: false, Length: 3})
	h := NewUnknownHandler(table)
	h.SetConfig(Kanji, CategoryConfig{Left: 3, Right: 3, Cost: 50, Feature: "KANJI"})
	var ends []int
	h.Emit([]byte("本日開催"), 0, 0, func(c Candidate) { ends = append(ends, c.End) })
	// 本(3 bytes) then 日(3) then 開(3): lengths 1,2,3 runes -> byte ends 3,6,9
	if len(ends) != 3 || ends[0] != 3 || ends[1] != 6 || ends[2] != 9 {
		t.Fatalf("expected ends [3 6 9], got %v", ends)
	}
}

func TestShouldInvoke(t *testing.T) {
	h := newTestHandler()
	alphaSet := CategorySet(0)
	alphaSet.Add(Alpha)
	if !h.ShouldInvoke(alphaSet, false) {
		t.Fatal("expected invoke when lexicon had no match")
	}
	if !h.ShouldInvoke(alphaSet, true) {
		t.Fatal("expected invoke: Alpha rule has Invoke=true")
	}
	spaceSet := CategorySet(0)
	spaceSet.Add(Space)
	if h.ShouldInvoke(spaceSet, true) {
		t.Fatal("expected no invoke: Space rule has Invoke=false and lexicon matched")
	}
}

func TestDefaultCandidateFallback(t *testing.T) {
	h := newTestHandler()
	c := h.DefaultCandidate([]byte("𩸽"), 0)
	if c.End != 4 || c.Category != Default {
		t.Fatalf("expected 4-byte default candidate, got %+v", c)
	}
}

func TestParseCharDefOverridesRule(t *testing.T) {
	table := NewDefaultTable()
	def := []byte("KATAKANA 0 1 1\n# a comment\nALPHA 1 1 1\n")
	if err := ParseCharDef(def, table); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if table.Rule(Katakana).Invoke {
		t.Fatal("expected KATAKANA invoke overridden to false")
	}
	if !table.Rule(Alpha).Group {
		t.Fatal("expected ALPHA group overridden to true")
	}
}
