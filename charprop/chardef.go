package charprop

// Text format for authoring category rules by hand, analogous in
// spirit to the teacher's ARPA parser (arpa.go) but for
// "CATEGORY invoke group length" lines instead of n-gram lines. This
// is a convenience for constructing an owned Table without touching
// Unicode range tables directly (e.g. in tests or a small embedded
// dictionary); it is not a dictionary-source-CSV compiler, which
// remains out of scope.
//
// Example line:
//
//	KANJI 0 0 2
import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/kho/stream"
)

var categoryNames = map[string]Category{
	"DEFAULT":      Default,
	"SPACE":        Space,
	"KANJI":        Kanji,
	"SYMBOL":       Symbol,
	"NUMERIC":      Numeric,
	"ALPHA":        Alpha,
	"HIRAGANA":     Hiragana,
	"KATAKANA":     Katakana,
	"KANJINUMERIC": KanjiNumeric,
	"GREEK":        Greek,
	"CYRILLIC":     Cyrillic,
}

// ParseCharDef reads rule overrides from data and applies them to t.
func ParseCharDef(data []byte, t *Table) error {
	return stream.Run(stream.EnumRead(bytes.NewReader(data), lineSplit), charDefTop{t})
}

type charDefTop struct{ table *Table }

func (charDefTop) Final() error { return nil }

func (it charDefTop) Next(line []byte) (stream.Iteratee, bool, error) {
	if len(line) == 0 || line[0] == '#' {
		return it, true, nil
	}
	if err := it.applyLine(line); err != nil {
		return nil, false, err
	}
	return it, true, nil
}

func (it charDefTop) applyLine(line []byte) error {
	name, rest := tokenSplit(line)
	cat, ok := categoryNames[name]
	if !ok {
		return fmt.Errorf("charprop: unknown category %q", name)
	}
	invokeTok, rest := tokenSplit(rest)
	groupTok, rest := tokenSplit(rest)
	lengthTok, rest := tokenSplit(rest)
	if invokeTok == "" || groupTok == "" || lengthTok == "" {
		return stream.ErrExpect("CATEGORY invoke group length")
	}
	if len(rest) != 0 {
		return stream.ErrExpect("end of line")
	}
	invoke, err := strconv.ParseBool(normalizeBool(invokeTok))
	if err != nil {
		return fmt.Errorf("charprop: bad invoke flag %q: %w", invokeTok, err)
	}
	group, err := strconv.ParseBool(normalizeBool(groupTok))
	if err != nil {
		return fmt.Errorf("charprop: bad group flag %q: %w", groupTok, err)
	}
	length, err := strconv.ParseUint(lengthTok, 10, 16)
	if err != nil {
		return fmt.Errorf("charprop: bad length %q: %w", lengthTok, err)
	}
	it.table.SetRule(cat, Rule{Invoke: invoke, Group: group, Length: uint16(length)})
	return nil
}

func normalizeBool(tok string) string {
	switch tok {
	case "0":
		return "false"
	case "1":
		return "true"
	default:
		return tok
	}
}

// Low-level lexer code, adapted from the teacher's arpa.go line/token
// splitters for this format's simpler single-line records.

func isSpace(b byte) bool {
	switch b {
	case '\t', '\v', '\f', '\r', ' ':
		return true
	default:
		return false
	}
}

func lineSplit(data []byte, atEOF bool) (int, []byte, error) {
	l, r, n := -1, -1, 0
	for i, b := range data {
		if !isSpace(b) && b != '\n' {
			l = i
			break
		}
	}
	if l < 0 {
		return len(data), nil, nil
	}
	for i, b := range data[l+1:] {
		if b == '\n' {
			r, n = l+i, l+i+2
			break
		}
	}
	if r < 0 {
		if !atEOF {
			return l, nil, nil
		}
		r, n = len(data)-1, len(data)
	}
	for r > l && isSpace(data[r]) {
		r--
	}
	return n, data[l : r+1], nil
}

func tokenSplit(line []byte) (string, []byte) {
	r := -1
	for i, b := range line {
		if isSpace(b) {
			r = i
			break
		}
	}
	if r < 0 {
		r = len(line)
	}
	token := string(line[:r])
	for i, b := range line[r:] {
		if !isSpace(b) {
			return token, line[r+i:]
		}
	}
	return token, nil
}
