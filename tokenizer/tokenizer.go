// Package tokenizer implements the immutable Tokenizer / mutable
// per-goroutine Worker split of spec.md §5/§6: a Tokenizer holds a
// shared reference to a Dictionary and a fixed set of flags, and is
// safe to use from any number of goroutines because it mutates
// nothing; each goroutine drives its own Worker, which owns a reused
// lattice and output buffer.
package tokenizer

import (
	"fmt"

	"github.com/himawari-nlp/vibratio/dictionary"
	"github.com/himawari-nlp/vibratio/lattice"
	"github.com/himawari-nlp/vibratio/lex"
)

// Config is the fixed set of tokenization flags of spec.md §4.6: an
// input string plus these flags fully determines the output.
type Config struct {
	// IgnoreSpace skips whitespace runs instead of tokenizing them as
	// ordinary Space-category candidates.
	IgnoreSpace bool
	// MaxGroupingLen caps a grouped unknown-word run's length in code
	// points; 0 means unbounded.
	MaxGroupingLen int
}

// Tokenizer is the immutable, shareable handle of spec.md §6's
// Tokenizer::new: it never mutates the dictionary or its own state
// after construction, so any number of Workers may reference the same
// Tokenizer concurrently.
type Tokenizer struct {
	dict *dictionary.Dictionary
	cfg  Config
}

// New builds a Tokenizer over dict with the given flags.
func New(dict *dictionary.Dictionary, cfg Config) *Tokenizer {
	return &Tokenizer{dict: dict, cfg: cfg}
}

// NewWorker allocates a Worker bound to this Tokenizer. A Worker is
// not safe for concurrent use; callers needing parallelism spawn one
// Worker per goroutine, all sharing this same Tokenizer.
func (t *Tokenizer) NewWorker() *Worker {
	return &Worker{tok: t}
}

// Token is one emitted morpheme: its surface text, feature payload,
// and the dictionary identity it resolved to (spec.md §6's
// "(surface, feature, word_idx)").
type Token struct {
	Surface string
	Feature string
	WordIdx lex.WordIdx
	Begin   int
	End     int
}

// Worker is the mutable, single-goroutine tokenization context of
// spec.md §5: it owns a lattice reused across calls and the most
// recent call's output buffer.
type Worker struct {
	tok     *Tokenizer
	text    []byte
	lat     lattice.Lattice
	tokens  []Token
	hasText bool
}

// SetText stores the input for the next Tokenize/KBest call. It does
// not itself build the lattice.
func (w *Worker) SetText(text string) {
	w.text = []byte(text)
	w.hasText = true
	w.tokens = w.tokens[:0]
}

// Tokenize runs the forward Viterbi construction over the text set by
// SetText and records the single-best path, retrievable via Tokens.
func (w *Worker) Tokenize() error {
	if !w.hasText {
		return fmt.Errorf("tokenizer: SetText must be called before Tokenize")
	}
	params, err := w.params()
	if err != nil {
		return err
	}
	if err := lattice.Build(&w.lat, params, w.text, w.tok.cfg.IgnoreSpace, w.tok.cfg.MaxGroupingLen); err != nil {
		return &dictionary.Error{Kind: dictionary.InvalidState, Msg: "lattice construction failed", Err: err}
	}
	path := lattice.Backtrack(&w.lat)
	w.tokens = w.tokens[:0]
	for _, tok := range path {
		w.tokens = append(w.tokens, w.materialize(tok))
	}
	return nil
}

// Tokens returns the most recent Tokenize call's single-best result.
// The returned slice is only valid until the next SetText/Tokenize
// call on this Worker.
func (w *Worker) Tokens() []Token { return w.tokens }

// KBest runs the forward pass over the text set by SetText (always
// rebuilding the lattice, even after a Tokenize call) and returns up to k distinct token sequences in nondecreasing total
// cost order, per spec.md §4.6's optional k-best enumeration. The
// first result equals what Tokenize/Tokens would produce.
func (w *Worker) KBest(k int) ([][]Token, error) {
	if !w.hasText {
		return nil, fmt.Errorf("tokenizer: SetText must be called before KBest")
	}
	params, err := w.params()
	if err != nil {
		return nil, err
	}
	if err := lattice.Build(&w.lat, params, w.text, w.tok.cfg.IgnoreSpace, w.tok.cfg.MaxGroupingLen); err != nil {
		return nil, &dictionary.Error{Kind: dictionary.InvalidState, Msg: "lattice construction failed", Err: err}
	}
	paths := lattice.KBest(&w.lat, params.Connector, k)
	out := make([][]Token, len(paths))
	for i, path := range paths {
		seq := make([]Token, len(path))
		for j, tok := range path {
			seq[j] = w.materialize(tok)
		}
		out[i] = seq
	}
	return out, nil
}

func (w *Worker) materialize(tok lattice.Token) Token {
	feature, err := w.tok.dict.WordFeature(tok.Idx)
	if err != nil {
		feature = ""
	}
	return Token{
		Surface: string(w.text[tok.Begin:tok.End]),
		Feature: feature,
		WordIdx: tok.Idx,
		Begin:   tok.Begin,
		End:     tok.End,
	}
}

func (w *Worker) params() (lattice.Params, error) {
	d := w.tok.dict
	if d.SystemLexicon() == nil {
		return lattice.Params{}, fmt.Errorf("tokenizer: dictionary has no system lexicon")
	}
	if d.UnkHandler() == nil {
		return lattice.Params{}, fmt.Errorf("tokenizer: dictionary has no unknown-word handler")
	}
	// d.IdMapper(), when present, was already applied at build time to
	// the lexicon's word params and the connector's tables (spec.md
	// §4.4's "no runtime cost"); the lattice builder needs no
	// indirection for it.
	return lattice.Params{
		System:    d.SystemLexicon(),
		User:      d.UserLexicon(),
		Connector: d.Connector(),
		Handler:   d.UnkHandler(),
	}, nil
}
