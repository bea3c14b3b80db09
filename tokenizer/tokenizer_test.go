package tokenizer

import (
	"fmt"
	"sort"
	"testing"

	"github.com/himawari-nlp/vibratio/charprop"
	"github.com/himawari-nlp/vibratio/connector"
	"github.com/himawari-nlp/vibratio/dictionary"
	"github.com/himawari-nlp/vibratio/lex"
)

func buildTestTokenizer(t *testing.T, cfg Config) *Tokenizer {
	t.Helper()

	sysB := lex.NewBuilder(lex.System)
	sysB.Add("本", 0, 0, -500, "noun,book")
	sysB.Add("と", 0, 0, -300, "particle")
	sysB.Add("カレー", 0, 0, -400, "noun,curry")
	sysB.Add("の", 0, 0, -300, "particle")
	sysB.Add("街", 0, 0, -400, "noun,town")
	sysB.Add("mens", 0, 0, -100, "noun,mens")
	sysB.Add("second", 0, 0, -100, "noun,second")
	sysB.Add("bag", 0, 0, -100, "noun,bag")
	sys := sysB.Build()

	table := charprop.NewDefaultTable()
	handler := charprop.NewUnknownHandler(table)

	type catCfg struct {
		cat charprop.Category
		cfg charprop.CategoryConfig
	}
	configs := []catCfg{
		{charprop.Default, charprop.CategoryConfig{Cost: 3000, Feature: "UNK-DEFAULT"}},
		{charprop.Space, charprop.CategoryConfig{Cost: 0, Feature: "SPACE"}},
		{charprop.Kanji, charprop.CategoryConfig{Cost: 2500, Feature: "UNK-KANJI"}},
		{charprop.Symbol, charprop.CategoryConfig{Cost: 500, Feature: "SYMBOL"}},
		{charprop.Numeric, charprop.CategoryConfig{Cost: 600, Feature: "NUMERIC"}},
		{charprop.Alpha, charprop.CategoryConfig{Cost: 700, Feature: "ALPHA"}},
		{charprop.Hiragana, charprop.CategoryConfig{Cost: 2500, Feature: "UNK-HIRAGANA"}},
		{charprop.Katakana, charprop.CategoryConfig{Cost: 800, Feature: "KATAKANA"}},
		{charprop.KanjiNumeric, charprop.CategoryConfig{Cost: 800, Feature: "KANJINUMERIC"}},
		{charprop.Greek, charprop.CategoryConfig{Cost: 900, Feature: "GREEK"}},
		{charprop.Cyrillic, charprop.CategoryConfig{Cost: 900, Feature: "CYRILLIC"}},
	}

	unkB := lex.NewBuilder(lex.Unknown)
	for i, c := range configs {
		handler.SetConfig(c.cat, c.cfg)
		id := unkB.Add(fmt.Sprintf("$cat%d", i), c.cfg.Left, c.cfg.Right, c.cfg.Cost, c.cfg.Feature)
		if id != uint32(c.cat) {
			t.Fatalf("unk lexicon word_id %d does not match category %d; rebuild in category order", id, c.cat)
		}
	}
	unk := unkB.Build()

	conn := connector.NewMatrix(1, 1, []int16{0})
	d := dictionary.NewOwned(sys, nil, unk, conn, nil, table, handler)
	return New(d, cfg)
}

func TestTokenizeConcreteScenario(t *testing.T) {
	tok := buildTestTokenizer(t, Config{})
	w := tok.NewWorker()
	w.SetText("本とカレーの街")
	if err := w.Tokenize(); err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	want := []string{"本", "と", "カレー", "の", "街"}
	got := surfaces(w.Tokens())
	if !equalStrings(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestTokenizeEmptyInput(t *testing.T) {
	tok := buildTestTokenizer(t, Config{})
	w := tok.NewWorker()
	w.SetText("")
	if err := w.Tokenize(); err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	if len(w.Tokens()) != 0 {
		t.Fatalf("expected no tokens for empty input, got %+v", w.Tokens())
	}
}

func TestTokenizeIgnoreSpaceDropsWhitespace(t *testing.T) {
	tok := buildTestTokenizer(t, Config{IgnoreSpace: true})
	w := tok.NewWorker()
	w.SetText("mens second bag")
	if err := w.Tokenize(); err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	want := []string{"mens", "second", "bag"}
	got := surfaces(w.Tokens())
	if !equalStrings(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestTokenizeDefaultKeepsWhitespace(t *testing.T) {
	tok := buildTestTokenizer(t, Config{})
	w := tok.NewWorker()
	w.SetText("mens second bag")
	if err := w.Tokenize(); err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	want := []string{"mens", " ", "second", " ", "bag"}
	got := surfaces(w.Tokens())
	if !equalStrings(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestTokenizeSurfacesConcatenateToInput(t *testing.T) {
	tok := buildTestTokenizer(t, Config{})
	input := "本とカレーの街 mens"
	w := tok.NewWorker()
	w.SetText(input)
	if err := w.Tokenize(); err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	var rebuilt string
	for _, tk := range w.Tokens() {
		rebuilt += tk.Surface
	}
	if rebuilt != input {
		t.Fatalf("token surfaces %q do not concatenate to input %q", rebuilt, input)
	}
}

func TestTokenizeIsDeterministic(t *testing.T) {
	tok := buildTestTokenizer(t, Config{})
	input := "本とカレーの街"
	w1 := tok.NewWorker()
	w1.SetText(input)
	if err := w1.Tokenize(); err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	w2 := tok.NewWorker()
	w2.SetText(input)
	if err := w2.Tokenize(); err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	if !equalStrings(surfaces(w1.Tokens()), surfaces(w2.Tokens())) {
		t.Fatalf("two workers over the same input and dictionary produced different tokenizations")
	}
}

func TestTokenizeUnknownCodePointCoverage(t *testing.T) {
	tok := buildTestTokenizer(t, Config{})
	w := tok.NewWorker()
	w.SetText("𩸽")
	if err := w.Tokenize(); err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	tokens := w.Tokens()
	if len(tokens) != 1 {
		t.Fatalf("expected a single unknown-category token spanning the input, got %+v", tokens)
	}
	if tokens[0].WordIdx.Lex != lex.Unknown {
		t.Fatalf("expected an unknown-lexicon token, got %+v", tokens[0])
	}
	if tokens[0].Surface != "𩸽" {
		t.Fatalf("expected the unknown token to cover the whole rare code point, got %q", tokens[0].Surface)
	}
}

func TestKBestSortedAndFirstMatchesSingleBest(t *testing.T) {
	tok := buildTestTokenizer(t, Config{})
	w := tok.NewWorker()
	w.SetText("本とカレーの街")
	if err := w.Tokenize(); err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	single := surfaces(w.Tokens())

	paths, err := w.KBest(5)
	if err != nil {
		t.Fatalf("KBest: %v", err)
	}
	if len(paths) == 0 {
		t.Fatal("expected at least one k-best path")
	}
	if !equalStrings(surfaces(paths[0]), single) {
		t.Fatalf("first k-best path %v != single-best %v", surfaces(paths[0]), single)
	}

	costs := make([]int, len(paths))
	for i, p := range paths {
		costs[i] = pathCost(tok, p)
	}
	if !sort.IntsAreSorted(costs) {
		t.Fatalf("k-best costs not nondecreasing: %v", costs)
	}
}

func surfaces(tokens []Token) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = t.Surface
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func pathCost(tok *Tokenizer, path []Token) int {
	var left uint16
	total := 0
	for _, tk := range path {
		wp, err := tok.dict.WordParam(tk.WordIdx)
		if err != nil {
			continue
		}
		total += int(tok.dict.Connector().Cost(left, wp.Left)) + int(wp.Cost)
		left = wp.Right
	}
	total += int(tok.dict.Connector().Cost(left, 0))
	return total
}
