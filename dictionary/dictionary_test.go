package dictionary

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/himawari-nlp/vibratio/charprop"
	"github.com/himawari-nlp/vibratio/connector"
	"github.com/himawari-nlp/vibratio/lex"
)

func buildTestDictionary() *Dictionary {
	sysB := lex.NewBuilder(lex.System)
	sysB.Add("本", 1, 1, -100, "noun,book")
	sysB.Add("日", 1, 1, -50, "noun,day")
	sys := sysB.Build()

	unkB := lex.NewBuilder(lex.Unknown)
	unk := unkB.Build()

	conn := connector.NewMatrix(2, 2, []int16{0, 0, 0, 0})
	table := charprop.NewDefaultTable()
	handler := charprop.NewUnknownHandler(table)
	handler.SetConfig(charprop.Default, charprop.CategoryConfig{Left: 0, Right: 0, Cost: 1000, Feature: "UNK"})

	return NewOwned(sys, nil, unk, conn, nil, table, handler)
}

func TestWriteToAndLoadRoundTrip(t *testing.T) {
	d := buildTestDictionary()
	path := filepath.Join(t.TempDir(), "test.dic")
	if err := d.WriteTo(path); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}

	loaded, err := Load(path, Validate)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	defer loaded.Close()

	if loaded.SystemLexicon().NumWords() != 2 {
		t.Fatalf("expected 2 system words, got %d", loaded.SystemLexicon().NumWords())
	}
	param, err := loaded.WordParam(lex.WordIdx{Lex: lex.System, Id: 0})
	if err != nil {
		t.Fatalf("WordParam: %v", err)
	}
	if param.Cost != -100 {
		t.Fatalf("expected cost -100, got %d", param.Cost)
	}
	feature, err := loaded.WordFeature(lex.WordIdx{Lex: lex.System, Id: 1})
	if err != nil {
		t.Fatalf("WordFeature: %v", err)
	}
	if feature != "noun,day" {
		t.Fatalf("expected feature noun,day, got %q", feature)
	}
}

func TestLoadTrustCacheMatchesValidate(t *testing.T) {
	d := buildTestDictionary()
	path := filepath.Join(t.TempDir(), "test.dic")
	if err := d.WriteTo(path); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}

	validated, err := Load(path, Validate)
	if err != nil {
		t.Fatalf("Load(Validate): %v", err)
	}
	validated.Close()

	trusted, err := Load(path, TrustCache)
	if err != nil {
		t.Fatalf("Load(TrustCache): %v", err)
	}
	defer trusted.Close()

	if trusted.SystemLexicon().NumWords() != 2 {
		t.Fatalf("expected 2 system words under TrustCache, got %d", trusted.SystemLexicon().NumWords())
	}
}

func TestLoadRejectsBadMagic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.dic")
	if err := os.WriteFile(path, []byte("not a dictionary file at all, padded out"), 0o644); err != nil {
		t.Fatalf("os.WriteFile: %v", err)
	}
	_, err := Load(path, Validate)
	if err == nil {
		t.Fatal("expected an error for bad magic")
	}
	derr, ok := err.(*Error)
	if !ok || derr.Kind != InvalidMagic {
		t.Fatalf("expected InvalidMagic, got %v", err)
	}
}

func TestLoadUnchecked(t *testing.T) {
	d := buildTestDictionary()
	path := filepath.Join(t.TempDir(), "test.dic")
	if err := d.WriteTo(path); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	loaded, err := LoadUnchecked(path)
	if err != nil {
		t.Fatalf("LoadUnchecked: %v", err)
	}
	defer loaded.Close()
	if loaded.SystemLexicon().NumWords() != 2 {
		t.Fatalf("expected 2 system words, got %d", loaded.SystemLexicon().NumWords())
	}
}
