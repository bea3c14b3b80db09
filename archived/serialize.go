package archived

import (
	"fmt"
	"unsafe"

	"github.com/himawari-nlp/vibratio/charprop"
	"github.com/himawari-nlp/vibratio/connector"
	"github.com/himawari-nlp/vibratio/lex"
)

// Writer accumulates the archived region byte-by-byte as owned
// components are serialized into it. It is the inverse of View/Build:
// where Build reinterprets bytes as live types without copying,
// Writer copies live types out into bytes, preserving the same
// relative-offset/alignment scheme so the result round-trips through
// ValidateRoot and Build unchanged (spec.md §8 invariant 5).
type Writer struct {
	buf []byte
}

// Bytes returns the accumulated archived region.
func (w *Writer) Bytes() []byte { return w.buf }

func pad(buf *[]byte, align uint64) {
	if align <= 1 {
		return
	}
	if rem := uint64(len(*buf)) % align; rem != 0 {
		*buf = append(*buf, make([]byte, align-rem)...)
	}
}

func appendSlice[T any](buf *[]byte, s []T) ArrayRef {
	var zero T
	align := uint64(unsafe.Alignof(zero))
	pad(buf, align)
	off := uint64(len(*buf))
	if len(s) > 0 {
		size := int(unsafe.Sizeof(zero)) * len(s)
		b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), size)
		*buf = append(*buf, b...)
	}
	return ArrayRef{Off: off, Len: uint64(len(s))}
}

func appendBytes(buf *[]byte, b []byte) ArrayRef {
	off := uint64(len(*buf))
	*buf = append(*buf, b...)
	return ArrayRef{Off: off, Len: uint64(len(b))}
}

// WriteLexicon serializes a Lexicon's five trie tables plus its
// params/feature tables and returns an ArrayRef to the LexiconHeader
// describing them. A nil Lexicon (the optional user dictionary) yields
// the empty ArrayRef.
func (w *Writer) WriteLexicon(lx *lex.Lexicon) ArrayRef {
	if lx == nil {
		return ArrayRef{}
	}
	h := LexiconHeader{
		LexType:        uint32(lx.Type),
		NumWords:       uint32(lx.NumWords()),
		NumStates:      uint32(lx.Trie.NumStates()),
		Base:           appendSlice(&w.buf, lx.Trie.Base),
		Check:          appendSlice(&w.buf, lx.Trie.Check),
		TermStart:      appendSlice(&w.buf, lx.Trie.TermStart),
		TermEnd:        appendSlice(&w.buf, lx.Trie.TermEnd),
		WordIDs:        appendSlice(&w.buf, lx.Trie.WordIds),
		Params:         appendSlice(&w.buf, lx.Params),
		FeatureOffsets: appendSlice(&w.buf, lx.FeatureOffsets()),
		FeatureBytes:   appendBytes(&w.buf, lx.FeatureBytes()),
	}
	hdrRef := appendSlice(&w.buf, []LexiconHeader{h})
	return ArrayRef{Off: hdrRef.Off, Len: 1}
}

// WriteConnector serializes one of the three Connector variants and
// returns its ArrayRef plus the ConnectorKind the caller must store in
// RootHeader.ConnectorKind.
func (w *Writer) WriteConnector(c connector.Connector) (ArrayRef, ConnectorKind, error) {
	var h ConnectorHeader
	var kind ConnectorKind
	switch v := c.(type) {
	case *connector.Matrix:
		kind = KindMatrix
		h = ConnectorHeader{
			NumLeft:  uint32(v.NumLeft()),
			NumRight: uint32(v.NumRight()),
			Table:    appendSlice(&w.buf, v.Table),
		}
	case *connector.Dual:
		kind = KindDual
		h = ConnectorHeader{
			NumLeft:      uint32(v.NumLeft()),
			NumRight:     uint32(v.NumRight()),
			Table:        appendSlice(&w.buf, v.Complement),
			RightContext: appendSlice(&w.buf, v.RightContext),
		}
	case *connector.Raw:
		kind = KindRaw
		defaults := make([]int32, len(v.Rows))
		start := make([]uint32, len(v.Rows))
		end := make([]uint32, len(v.Rows))
		var entries []RawEntryRecord
		for i, row := range v.Rows {
			defaults[i] = row.Default
			start[i] = uint32(len(entries))
			for _, e := range row.Entries {
				entries = append(entries, RawEntryRecord{LeftID: e.LeftID, Cost: e.Cost})
			}
			end[i] = uint32(len(entries))
		}
		h = ConnectorHeader{
			NumLeft:     uint32(v.NumLeft()),
			NumRight:    uint32(v.NumRight()),
			RawDefaults: appendSlice(&w.buf, defaults),
			RawRowStart: appendSlice(&w.buf, start),
			RawRowEnd:   appendSlice(&w.buf, end),
			RawEntries:  appendSlice(&w.buf, entries),
		}
	default:
		return ArrayRef{}, 0, fmt.Errorf("archived: unknown connector implementation %T", c)
	}
	hdrRef := appendSlice(&w.buf, []ConnectorHeader{h})
	return ArrayRef{Off: hdrRef.Off, Len: 1}, kind, nil
}

// WriteIdMapper serializes the optional permutation pair. A nil
// mapper yields the empty ArrayRef.
func (w *Writer) WriteIdMapper(m *connector.IdMapper) ArrayRef {
	if m == nil {
		return ArrayRef{}
	}
	h := IdMapperHeader{
		LeftPerm:  appendSlice(&w.buf, m.LeftPerm),
		RightPerm: appendSlice(&w.buf, m.RightPerm),
	}
	hdrRef := appendSlice(&w.buf, []IdMapperHeader{h})
	return ArrayRef{Off: hdrRef.Off, Len: 1}
}

// WriteCharProp serializes a classification Table: one Rule plus the
// flattened Unicode ranges per category.
func (w *Writer) WriteCharProp(t *charprop.Table) ArrayRef {
	n := charprop.NumCategories()
	rules := make([]RuleRecord, n)
	start := make([]uint32, n)
	end := make([]uint32, n)
	var ranges []RuneRange
	for c := 0; c < n; c++ {
		cat := charprop.Category(c)
		r := t.Rule(cat)
		rules[c] = RuleRecord{boolU32(r.Invoke), boolU32(r.Group), uint32(r.Length)}
		start[c] = uint32(len(ranges))
		for _, p := range charprop.RangePairs(t.Range(cat)) {
			ranges = append(ranges, RuneRange{Lo: int32(p.Lo), Hi: int32(p.Hi)})
		}
		end[c] = uint32(len(ranges))
	}
	h := CharPropHeader{
		NumCategories: uint32(n),
		Rules:         appendSlice(&w.buf, rules),
		RangeStart:    appendSlice(&w.buf, start),
		RangeEnd:      appendSlice(&w.buf, end),
		Ranges:        appendSlice(&w.buf, ranges),
	}
	hdrRef := appendSlice(&w.buf, []CharPropHeader{h})
	return ArrayRef{Off: hdrRef.Off, Len: 1}
}

func boolU32(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

// WriteUnkHandler serializes the per-category synthetic word
// templates. The feature strings of every category are concatenated
// into one byte blob, mirroring how Lexicon.FeatureBytes packs its
// per-word_id strings.
func (w *Writer) WriteUnkHandler(h *charprop.UnknownHandler) ArrayRef {
	n := charprop.NumCategories()
	configs := make([]CategoryConfigRecord, n)
	var features []byte
	for c := 0; c < n; c++ {
		cfg := h.Config[c]
		off := uint32(len(features))
		features = append(features, cfg.Feature...)
		configs[c] = CategoryConfigRecord{
			Left: cfg.Left, Right: cfg.Right, Cost: cfg.Cost,
			FeatureOff: off, FeatureLen: uint32(len(cfg.Feature)),
		}
	}
	header := UnkHandlerHeader{
		Configs:      appendSlice(&w.buf, configs),
		FeatureBytes: appendBytes(&w.buf, features),
	}
	hdrRef := appendSlice(&w.buf, []UnkHandlerHeader{header})
	return ArrayRef{Off: hdrRef.Off, Len: 1}
}

// WriteRoot writes the full archived region for one dictionary's worth
// of components and returns the finished bytes. System and Unk are
// required; User and IdMapper may be nil.
func WriteRoot(system, user, unk *lex.Lexicon, conn connector.Connector, mapper *connector.IdMapper, table *charprop.Table, handler *charprop.UnknownHandler) ([]byte, error) {
	w := &Writer{}
	// RootHeader must sit at offset 0 (every ValidateRoot/Build call
	// does StructAt[RootHeader](blob, 0)), but its own fields are
	// ArrayRefs into everything written after it. Reserve the space
	// now and backfill it once every offset is known.
	var rootZero RootHeader
	w.buf = make([]byte, unsafe.Sizeof(rootZero))

	sysRef := w.WriteLexicon(system)
	usrRef := w.WriteLexicon(user)
	unkRef := w.WriteLexicon(unk)
	cpRef := w.WriteCharProp(table)
	connRef, kind, err := w.WriteConnector(conn)
	if err != nil {
		return nil, err
	}
	mapRef := w.WriteIdMapper(mapper)
	uhRef := w.WriteUnkHandler(handler)

	root := RootHeader{
		SystemLexicon: sysRef,
		UserLexicon:   usrRef,
		UnkLexicon:    unkRef,
		ConnectorKind: kind,
		Connector:     connRef,
		IdMapper:      mapRef,
		CharProp:      cpRef,
		UnkHandler:    uhRef,
		Footer:        RootFooterMagic,
	}
	rootBytes := unsafe.Slice((*byte)(unsafe.Pointer(&root)), unsafe.Sizeof(root))
	copy(w.buf[:len(rootBytes)], rootBytes)
	return w.buf, nil
}
