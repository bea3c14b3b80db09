// Package archived implements the zero-copy accessor layer of
// spec.md §4.2: read-only views over mapped bytes that reproduce the
// logical dictionary API without copying or allocating. Every type in
// this package is a fixed-width record directly reinterpretable over
// a byte slice via ArrayRef/SliceAt; none of it depends on the
// in-memory owning container (mmap vs. aligned buffer), which is the
// dictionary package's concern.
//
// All offsets are measured from the start of the archived region
// (i.e. relative to the byte right after DATA_START, not relative to
// the start of the file) — this is the "relative pointer" scheme
// spec.md §3/§9 requires so that the archive is position-independent
// and can be validated with simple bounds checks over the whole
// graph.
package archived

// ArrayRef is a relative pointer: Off bytes into the archived region,
// spanning Len elements of whatever type SliceAt is asked to
// reinterpret it as.
type ArrayRef struct {
	Off uint64
	Len uint64
}

func (r ArrayRef) Empty() bool { return r.Len == 0 }

// ConnectorKind selects which of the three connector variants a
// ConnectorHeader should be interpreted as.
type ConnectorKind uint32

const (
	KindMatrix ConnectorKind = iota
	KindDual
	KindRaw
)

// RootFooterMagic terminates the archived root, per spec.md §6's
// requirement that the root be "terminated by its own root-pointer
// footer per the archival framework's rules".
const RootFooterMagic uint64 = 0x7662726B6F617274 // ascii "vbrkoart"

// RootHeader is the fixed-size archived root: the entry point for
// every accessor in spec.md §4.2. It sits at byte 0 of the archived
// region (byte 32 of the file, DATA_START).
type RootHeader struct {
	SystemLexicon ArrayRef // LexiconHeader, Len==1
	UserLexicon   ArrayRef // LexiconHeader, Len==0 if absent
	UnkLexicon    ArrayRef // LexiconHeader, Len==1 (the unknown-word namespace's params/features)

	ConnectorKind ConnectorKind
	_pad0         uint32
	Connector     ArrayRef // ConnectorHeader, Len==1

	IdMapper ArrayRef // IdMapperHeader, Len==0 if absent

	CharProp   ArrayRef // CharPropHeader, Len==1
	UnkHandler ArrayRef // UnkHandlerHeader, Len==1

	Footer uint64 // must equal RootFooterMagic
}

// LexiconHeader describes one of the three co-located lexicon tables
// (system, user, unknown) of spec.md §3.
type LexiconHeader struct {
	LexType   uint32
	_pad0     uint32
	NumWords  uint32
	NumStates uint32

	Base      ArrayRef // []int32, len NumStates
	Check     ArrayRef // []int32, len NumStates
	TermStart ArrayRef // []uint32, len NumStates
	TermEnd   ArrayRef // []uint32, len NumStates
	WordIDs   ArrayRef // []uint32, flat terminal payload

	Params         ArrayRef // []WordParamRecord, len NumWords
	FeatureOffsets ArrayRef // []uint32, len NumWords+1
	FeatureBytes   ArrayRef // []byte
}

// WordParamRecord mirrors lex.WordParam's layout exactly so the two
// types can be reinterpreted into one another via SliceAt.
type WordParamRecord struct {
	Left  uint16
	Right uint16
	Cost  int16
	_pad  uint16
}

// ConnectorHeader is a union-by-convention record: RootHeader.ConnectorKind
// says which fields are populated. Matrix uses Table only. Dual uses
// Table (as the complement) plus RightContext. Raw uses the Raw*
// fields and leaves Table/RightContext empty.
type ConnectorHeader struct {
	NumLeft  uint32
	NumRight uint32

	Table        ArrayRef // []int16, Matrix table or Dual complement, len NumLeft*NumRight
	RightContext ArrayRef // []int32, Dual only, len NumRight

	RawDefaults ArrayRef // []int32, Raw only, len NumRight
	RawRowStart ArrayRef // []uint32, Raw only, len NumRight
	RawRowEnd   ArrayRef // []uint32, Raw only, len NumRight
	RawEntries  ArrayRef // []RawEntryRecord, Raw only, flat
}

// RawEntryRecord mirrors connector.RawEntry's layout.
type RawEntryRecord struct {
	LeftID uint16
	_pad   uint16
	Cost   int32
}

// IdMapperHeader mirrors connector.IdMapper.
type IdMapperHeader struct {
	LeftPerm  ArrayRef // []uint16
	RightPerm ArrayRef // []uint16
}

// RuleRecord mirrors charprop.Rule.
type RuleRecord struct {
	Invoke uint32
	Group  uint32
	Length uint32
}

// RuneRange is one inclusive [Lo, Hi] code point range contributing
// to a category's Unicode range table.
type RuneRange struct {
	Lo int32
	Hi int32
}

// CharPropHeader describes the full category classification table:
// one Rule plus zero or more RuneRanges per category, indexed
// 0..NumCategories-1 in enum order.
type CharPropHeader struct {
	NumCategories uint32
	_pad0         uint32

	Rules      ArrayRef // []RuleRecord, len NumCategories
	RangeStart ArrayRef // []uint32, len NumCategories
	RangeEnd   ArrayRef // []uint32, len NumCategories
	Ranges     ArrayRef // []RuneRange, flat
}

// CategoryConfigRecord mirrors charprop.CategoryConfig plus an
// archived feature-string reference.
type CategoryConfigRecord struct {
	Left       uint16
	Right      uint16
	Cost       int16
	_pad       uint16
	FeatureOff uint32
	FeatureLen uint32
}

// UnkHandlerHeader describes the unknown-word candidate templates,
// one CategoryConfigRecord per category.
type UnkHandlerHeader struct {
	Configs      ArrayRef // []CategoryConfigRecord, len NumCategories
	FeatureBytes ArrayRef // []byte, referenced by Configs[*].FeatureOff/Len
}
