package lattice

import (
	"testing"

	"github.com/himawari-nlp/vibratio/charprop"
	"github.com/himawari-nlp/vibratio/connector"
	"github.com/himawari-nlp/vibratio/lex"
)

func testParams(t *testing.T) (Params, connector.Connector) {
	t.Helper()
	sysB := lex.NewBuilder(lex.System)
	sysB.Add("本", 0, 0, -500, "noun,book")
	sysB.Add("本日", 0, 0, -200, "noun,today")
	sys := sysB.Build()

	conn := connector.NewMatrix(1, 1, []int16{0})
	table := charprop.NewDefaultTable()
	handler := charprop.NewUnknownHandler(table)
	handler.SetConfig(charprop.Default, charprop.CategoryConfig{Left: 0, Right: 0, Cost: 2000, Feature: "UNK"})
	handler.SetConfig(charprop.Kanji, charprop.CategoryConfig{Left: 0, Right: 0, Cost: 1500, Feature: "UNK-KANJI"})

	return Params{System: sys, Connector: conn, Handler: handler}, conn
}

func TestBuildPrefersCheaperLexiconMatch(t *testing.T) {
	p, _ := testParams(t)
	input := []byte("本")

	var l Lattice
	if err := Build(&l, p, input, false, 0); err != nil {
		t.Fatalf("Build: %v", err)
	}
	tokens := Backtrack(&l)
	if len(tokens) != 1 {
		t.Fatalf("expected 1 token, got %d: %+v", len(tokens), tokens)
	}
	if tokens[0].Begin != 0 || tokens[0].End != len("本") || tokens[0].Idx.Id != 0 {
		t.Fatalf("unexpected token: %+v", tokens[0])
	}
}

func TestBuildChoosesLongerCheaperWord(t *testing.T) {
	p, _ := testParams(t)
	input := []byte("本日")

	var l Lattice
	if err := Build(&l, p, input, false, 0); err != nil {
		t.Fatalf("Build: %v", err)
	}
	tokens := Backtrack(&l)
	if len(tokens) != 1 {
		t.Fatalf("expected single merged token for 本日, got %+v", tokens)
	}
	if tokens[0].Idx.Id != 1 {
		t.Fatalf("expected word_id 1 (本日), got %+v", tokens[0])
	}
}

func TestBuildFallsBackToUnknownWhenNoLexiconMatch(t *testing.T) {
	p, _ := testParams(t)
	input := []byte("桜")

	var l Lattice
	if err := Build(&l, p, input, false, 0); err != nil {
		t.Fatalf("Build: %v", err)
	}
	tokens := Backtrack(&l)
	if len(tokens) != 1 {
		t.Fatalf("expected 1 unknown-word token, got %+v", tokens)
	}
	if tokens[0].Idx.Lex != lex.Unknown {
		t.Fatalf("expected an unknown-lexicon token, got %+v", tokens[0])
	}
}

func TestBuildMustMakeProgressOnUninvokedCategory(t *testing.T) {
	p, _ := testParams(t)
	p.Handler.Table.SetRule(charprop.Kanji, charprop.Rule{Invoke: false, Group: false, Length: 0})
	input := []byte("桜")

	var l Lattice
	if err := Build(&l, p, input, false, 0); err != nil {
		t.Fatalf("Build: %v", err)
	}
	tokens := Backtrack(&l)
	if len(tokens) != 1 || tokens[0].End != len(input) {
		t.Fatalf("expected the default-candidate fallback to still consume the whole input, got %+v", tokens)
	}
}

func TestBuildIgnoreSpaceSkipsWhitespace(t *testing.T) {
	p, _ := testParams(t)
	input := []byte("本 本")

	var l Lattice
	if err := Build(&l, p, input, true, 0); err != nil {
		t.Fatalf("Build: %v", err)
	}
	tokens := Backtrack(&l)
	if len(tokens) != 2 {
		t.Fatalf("expected 2 word tokens with the space skipped, got %+v", tokens)
	}
	for _, tok := range tokens {
		if tok.Idx.Lex != lex.System || tok.Idx.Id != 0 {
			t.Fatalf("expected both tokens to be the 本 system entry, got %+v", tok)
		}
	}
}

func TestKBestFirstMatchesSingleBest(t *testing.T) {
	p, conn := testParams(t)
	input := []byte("本日")

	var l Lattice
	if err := Build(&l, p, input, false, 0); err != nil {
		t.Fatalf("Build: %v", err)
	}
	single := Backtrack(&l)

	paths := KBest(&l, conn, 5)
	if len(paths) == 0 {
		t.Fatal("expected at least one k-best path")
	}
	if len(paths[0]) != len(single) {
		t.Fatalf("first k-best path length %d != single-best length %d", len(paths[0]), len(single))
	}
	for i := range single {
		if paths[0][i] != single[i] {
			t.Fatalf("first k-best path %+v != single-best %+v", paths[0], single)
		}
	}
}

func TestKBestNondecreasingAndDeduplicated(t *testing.T) {
	p, conn := testParams(t)
	input := []byte("本日")

	var l Lattice
	if err := Build(&l, p, input, false, 0); err != nil {
		t.Fatalf("Build: %v", err)
	}
	paths := KBest(&l, conn, 10)
	if len(paths) < 2 {
		t.Fatalf("expected at least 2 distinct paths through 本日 (whole-word vs two single words), got %d", len(paths))
	}

	seen := map[string]bool{}
	for _, path := range paths {
		key := tokenKey(path)
		if seen[key] {
			t.Fatalf("duplicate path returned: %+v", path)
		}
		seen[key] = true
	}

	costOf := func(path []Token) int32 {
		var prevRight uint16
		total := int32(0)
		for _, tok := range path {
			var left, right uint16
			var cost int16
			if tok.Idx.Lex == lex.Unknown {
				cfg := p.Handler.Config[tok.Idx.Id]
				left, right, cost = cfg.Left, cfg.Right, cfg.Cost
			} else {
				param := p.System.WordParam(tok.Idx.Id)
				left, right, cost = param.Left, param.Right, param.Cost
			}
			total += conn.Cost(prevRight, left) + int32(cost)
			prevRight = right
		}
		total += conn.Cost(prevRight, 0)
		return total
	}
	for i := 1; i < len(paths); i++ {
		if costOf(paths[i]) < costOf(paths[i-1]) {
			t.Fatalf("k-best paths not in nondecreasing cost order at index %d", i)
		}
	}
}
