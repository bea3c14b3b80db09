package archived

import (
	"fmt"

	"github.com/himawari-nlp/vibratio/charprop"
	"github.com/himawari-nlp/vibratio/connector"
	"github.com/himawari-nlp/vibratio/lex"
)

// View bundles the five live components spec.md §4.2 needs a mapped
// dictionary to expose, all backed by slices reinterpreted over the
// caller's blob rather than copied.
type View struct {
	System, User, Unk *lex.Lexicon
	Connector         connector.Connector
	IdMapper          *connector.IdMapper // nil if absent
	CharProp          *charprop.Table
	UnkHandler        *charprop.UnknownHandler
}

// Build constructs a View over an already-located root. Callers that
// went through ValidateRoot get the validated root directly; callers
// in TrustCache mode read the root with a bare StructAt and skip
// straight here, trusting the cache marker in place of re-validating
// bounds.
func Build(blob []byte, root *RootHeader) (*View, error) {
	sys, err := buildLexiconRef(blob, root.SystemLexicon, lex.System)
	if err != nil {
		return nil, fmt.Errorf("system lexicon: %w", err)
	}
	usr, err := buildLexiconRef(blob, root.UserLexicon, lex.User)
	if err != nil {
		return nil, fmt.Errorf("user lexicon: %w", err)
	}
	unk, err := buildLexiconRef(blob, root.UnkLexicon, lex.Unknown)
	if err != nil {
		return nil, fmt.Errorf("unknown lexicon: %w", err)
	}
	table, err := buildCharProp(blob, root.CharProp)
	if err != nil {
		return nil, fmt.Errorf("char property: %w", err)
	}
	conn, err := buildConnector(blob, root.Connector, root.ConnectorKind)
	if err != nil {
		return nil, fmt.Errorf("connector: %w", err)
	}
	mapper, err := buildIdMapper(blob, root.IdMapper)
	if err != nil {
		return nil, fmt.Errorf("id mapper: %w", err)
	}
	handler, err := buildUnkHandler(blob, root.UnkHandler, table)
	if err != nil {
		return nil, fmt.Errorf("unknown handler: %w", err)
	}
	return &View{System: sys, User: usr, Unk: unk, Connector: conn, IdMapper: mapper, CharProp: table, UnkHandler: handler}, nil
}

func buildLexiconRef(blob []byte, ref ArrayRef, typ lex.LexType) (*lex.Lexicon, error) {
	if ref.Empty() {
		return nil, nil
	}
	h, err := StructAt[LexiconHeader](blob, ref.Off)
	if err != nil {
		return nil, err
	}
	return buildLexicon(blob, h, typ)
}

func buildLexicon(blob []byte, h *LexiconHeader, typ lex.LexType) (*lex.Lexicon, error) {
	base, err := SliceAt[int32](blob, h.Base)
	if err != nil {
		return nil, fmt.Errorf("base: %w", err)
	}
	check, err := SliceAt[int32](blob, h.Check)
	if err != nil {
		return nil, fmt.Errorf("check: %w", err)
	}
	termStart, err := SliceAt[uint32](blob, h.TermStart)
	if err != nil {
		return nil, fmt.Errorf("term start: %w", err)
	}
	termEnd, err := SliceAt[uint32](blob, h.TermEnd)
	if err != nil {
		return nil, fmt.Errorf("term end: %w", err)
	}
	wordIDs, err := SliceAt[uint32](blob, h.WordIDs)
	if err != nil {
		return nil, fmt.Errorf("word ids: %w", err)
	}
	trie := lex.Trie{Base: base, Check: check, TermStart: termStart, TermEnd: termEnd, WordIds: wordIDs}

	params, err := reinterpretParams(blob, h.Params)
	if err != nil {
		return nil, fmt.Errorf("params: %w", err)
	}

	offsets, err := SliceAt[uint32](blob, h.FeatureOffsets)
	if err != nil {
		return nil, fmt.Errorf("feature offsets: %w", err)
	}
	featureBytes, err := BytesAt(blob, h.FeatureBytes)
	if err != nil {
		return nil, fmt.Errorf("feature bytes: %w", err)
	}
	return lex.NewLexicon(typ, trie, params, offsets, featureBytes), nil
}

// reinterpretParams reads WordParamRecord directly as lex.WordParam:
// the two types share field order and width by construction (see
// layout.go's WordParamRecord doc comment), so SliceAt[lex.WordParam]
// over the same ArrayRef is a valid zero-copy reinterpretation.
func reinterpretParams(blob []byte, ref ArrayRef) ([]lex.WordParam, error) {
	return SliceAt[lex.WordParam](blob, ref)
}

func buildConnector(blob []byte, ref ArrayRef, kind ConnectorKind) (connector.Connector, error) {
	h, err := StructAt[ConnectorHeader](blob, ref.Off)
	if err != nil {
		return nil, err
	}
	numLeft, numRight := int(h.NumLeft), int(h.NumRight)
	switch kind {
	case KindMatrix:
		table, err := SliceAt[int16](blob, h.Table)
		if err != nil {
			return nil, fmt.Errorf("table: %w", err)
		}
		return connector.NewMatrix(numLeft, numRight, table), nil
	case KindDual:
		complement, err := SliceAt[int16](blob, h.Table)
		if err != nil {
			return nil, fmt.Errorf("complement: %w", err)
		}
		rightContext, err := SliceAt[int32](blob, h.RightContext)
		if err != nil {
			return nil, fmt.Errorf("right context: %w", err)
		}
		return connector.NewDual(numLeft, numRight, rightContext, complement), nil
	case KindRaw:
		defaults, err := SliceAt[int32](blob, h.RawDefaults)
		if err != nil {
			return nil, fmt.Errorf("raw defaults: %w", err)
		}
		start, err := SliceAt[uint32](blob, h.RawRowStart)
		if err != nil {
			return nil, fmt.Errorf("raw row start: %w", err)
		}
		end, err := SliceAt[uint32](blob, h.RawRowEnd)
		if err != nil {
			return nil, fmt.Errorf("raw row end: %w", err)
		}
		entries, err := SliceAt[RawEntryRecord](blob, h.RawEntries)
		if err != nil {
			return nil, fmt.Errorf("raw entries: %w", err)
		}
		rows := make([]connector.RawRow, numRight)
		for i := range rows {
			recs := entries[start[i]:end[i]]
			es := make([]connector.RawEntry, len(recs))
			for j, rec := range recs {
				es[j] = connector.RawEntry{LeftID: rec.LeftID, Cost: rec.Cost}
			}
			rows[i] = connector.RawRow{Default: defaults[i], Entries: es}
		}
		return connector.NewRaw(numLeft, numRight, rows), nil
	default:
		return nil, fmt.Errorf("unknown connector kind %d", kind)
	}
}

func buildIdMapper(blob []byte, ref ArrayRef) (*connector.IdMapper, error) {
	if ref.Empty() {
		return nil, nil
	}
	h, err := StructAt[IdMapperHeader](blob, ref.Off)
	if err != nil {
		return nil, err
	}
	left, err := SliceAt[uint16](blob, h.LeftPerm)
	if err != nil {
		return nil, fmt.Errorf("left perm: %w", err)
	}
	right, err := SliceAt[uint16](blob, h.RightPerm)
	if err != nil {
		return nil, fmt.Errorf("right perm: %w", err)
	}
	return connector.NewIdMapper(left, right)
}

func buildCharProp(blob []byte, ref ArrayRef) (*charprop.Table, error) {
	h, err := StructAt[CharPropHeader](blob, ref.Off)
	if err != nil {
		return nil, err
	}
	rules, err := SliceAt[RuleRecord](blob, h.Rules)
	if err != nil {
		return nil, fmt.Errorf("rules: %w", err)
	}
	start, err := SliceAt[uint32](blob, h.RangeStart)
	if err != nil {
		return nil, fmt.Errorf("range start: %w", err)
	}
	end, err := SliceAt[uint32](blob, h.RangeEnd)
	if err != nil {
		return nil, fmt.Errorf("range end: %w", err)
	}
	ranges, err := SliceAt[RuneRange](blob, h.Ranges)
	if err != nil {
		return nil, fmt.Errorf("ranges: %w", err)
	}
	table := charprop.NewDefaultTable()
	for c := 0; c < len(rules); c++ {
		cat := charprop.Category(c)
		table.SetRule(cat, charprop.Rule{
			Invoke: rules[c].Invoke != 0,
			Group:  rules[c].Group != 0,
			Length: uint16(rules[c].Length),
		})
		seg := ranges[start[c]:end[c]]
		if len(seg) == 0 {
			continue
		}
		pairs := make([]charprop.RangePair, len(seg))
		for i, rr := range seg {
			pairs[i] = charprop.RangePair{Lo: rune(rr.Lo), Hi: rune(rr.Hi)}
		}
		table.SetRange(cat, charprop.RangeTableFromPairs(pairs))
	}
	return table, nil
}

func buildUnkHandler(blob []byte, ref ArrayRef, table *charprop.Table) (*charprop.UnknownHandler, error) {
	h, err := StructAt[UnkHandlerHeader](blob, ref.Off)
	if err != nil {
		return nil, err
	}
	configs, err := SliceAt[CategoryConfigRecord](blob, h.Configs)
	if err != nil {
		return nil, fmt.Errorf("configs: %w", err)
	}
	features, err := BytesAt(blob, h.FeatureBytes)
	if err != nil {
		return nil, fmt.Errorf("feature bytes: %w", err)
	}
	handler := charprop.NewUnknownHandler(table)
	for c, rec := range configs {
		handler.SetConfig(charprop.Category(c), charprop.CategoryConfig{
			Left:    rec.Left,
			Right:   rec.Right,
			Cost:    rec.Cost,
			Feature: string(features[rec.FeatureOff : rec.FeatureOff+rec.FeatureLen]),
		})
	}
	return handler, nil
}
