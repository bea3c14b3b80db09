package archived

import "fmt"

// ValidateRoot runs the full structural validation of spec.md §4.1
// step 6: bounds and relative-pointer checks over the entire archived
// graph. It is the expensive path that TrustCache mode is allowed to
// skip when a cache marker proves the same bytes were already
// validated once.
func ValidateRoot(blob []byte) (*RootHeader, error) {
	root, err := StructAt[RootHeader](blob, 0)
	if err != nil {
		return nil, fmt.Errorf("root header: %w", err)
	}
	if root.Footer != RootFooterMagic {
		return nil, fmt.Errorf("root footer mismatch: got %#x, want %#x", root.Footer, RootFooterMagic)
	}
	if err := validateLexiconRef(blob, root.SystemLexicon, true); err != nil {
		return nil, fmt.Errorf("system lexicon: %w", err)
	}
	if err := validateLexiconRef(blob, root.UserLexicon, false); err != nil {
		return nil, fmt.Errorf("user lexicon: %w", err)
	}
	if err := validateLexiconRef(blob, root.UnkLexicon, true); err != nil {
		return nil, fmt.Errorf("unknown lexicon: %w", err)
	}
	cp, err := validateCharProp(blob, root.CharProp)
	if err != nil {
		return nil, fmt.Errorf("char property: %w", err)
	}
	if err := validateConnector(blob, root.Connector, root.ConnectorKind); err != nil {
		return nil, fmt.Errorf("connector: %w", err)
	}
	if err := validateIdMapper(blob, root.IdMapper); err != nil {
		return nil, fmt.Errorf("id mapper: %w", err)
	}
	if err := validateUnkHandler(blob, root.UnkHandler, cp.NumCategories); err != nil {
		return nil, fmt.Errorf("unknown handler: %w", err)
	}
	return root, nil
}

func validateLexiconRef(blob []byte, ref ArrayRef, required bool) error {
	if ref.Empty() {
		if required {
			return fmt.Errorf("required lexicon section is absent")
		}
		return nil
	}
	h, err := StructAt[LexiconHeader](blob, ref.Off)
	if err != nil {
		return err
	}
	return validateLexicon(blob, h)
}

func validateLexicon(blob []byte, h *LexiconHeader) error {
	base, err := SliceAt[int32](blob, h.Base)
	if err != nil {
		return fmt.Errorf("base: %w", err)
	}
	check, err := SliceAt[int32](blob, h.Check)
	if err != nil {
		return fmt.Errorf("check: %w", err)
	}
	if len(base) != len(check) || uint32(len(base)) != h.NumStates {
		return fmt.Errorf("base/check length mismatch: %d/%d, want %d", len(base), len(check), h.NumStates)
	}
	termStart, err := SliceAt[uint32](blob, h.TermStart)
	if err != nil {
		return fmt.Errorf("term start: %w", err)
	}
	termEnd, err := SliceAt[uint32](blob, h.TermEnd)
	if err != nil {
		return fmt.Errorf("term end: %w", err)
	}
	if uint32(len(termStart)) != h.NumStates || uint32(len(termEnd)) != h.NumStates {
		return fmt.Errorf("term start/end length must equal NumStates (%d)", h.NumStates)
	}
	wordIDs, err := SliceAt[uint32](blob, h.WordIDs)
	if err != nil {
		return fmt.Errorf("word ids: %w", err)
	}
	for s := range termStart {
		if termStart[s] > termEnd[s] || uint64(termEnd[s]) > uint64(len(wordIDs)) {
			return fmt.Errorf("state %d: term range [%d,%d) invalid (wordIds len %d)", s, termStart[s], termEnd[s], len(wordIDs))
		}
		for _, id := range wordIDs[termStart[s]:termEnd[s]] {
			if id >= h.NumWords {
				return fmt.Errorf("state %d: word_id %d out of range (NumWords=%d)", s, id, h.NumWords)
			}
		}
	}
	for s, c := range check {
		if c < -1 || int(c) >= len(check) {
			if c != -1 {
				return fmt.Errorf("check[%d]=%d out of range", s, c)
			}
		}
	}
	params, err := SliceAt[WordParamRecord](blob, h.Params)
	if err != nil {
		return fmt.Errorf("params: %w", err)
	}
	if uint32(len(params)) != h.NumWords {
		return fmt.Errorf("params length %d != NumWords %d", len(params), h.NumWords)
	}
	offsets, err := SliceAt[uint32](blob, h.FeatureOffsets)
	if err != nil {
		return fmt.Errorf("feature offsets: %w", err)
	}
	if uint32(len(offsets)) != h.NumWords+1 {
		return fmt.Errorf("feature offsets length %d != NumWords+1 (%d)", len(offsets), h.NumWords+1)
	}
	featureBytes, err := BytesAt(blob, h.FeatureBytes)
	if err != nil {
		return fmt.Errorf("feature bytes: %w", err)
	}
	for i := 0; i < len(offsets)-1; i++ {
		if offsets[i] > offsets[i+1] || uint64(offsets[i+1]) > uint64(len(featureBytes)) {
			return fmt.Errorf("feature offsets not monotonic/in-bounds at %d: %d > %d or exceeds %d", i, offsets[i], offsets[i+1], len(featureBytes))
		}
	}
	return nil
}

func validateConnector(blob []byte, ref ArrayRef, kind ConnectorKind) error {
	h, err := StructAt[ConnectorHeader](blob, ref.Off)
	if err != nil {
		return err
	}
	switch kind {
	case KindMatrix:
		table, err := SliceAt[int16](blob, h.Table)
		if err != nil {
			return fmt.Errorf("table: %w", err)
		}
		if uint64(len(table)) != uint64(h.NumLeft)*uint64(h.NumRight) {
			return fmt.Errorf("table length %d != numLeft*numRight (%d*%d)", len(table), h.NumLeft, h.NumRight)
		}
	case KindDual:
		table, err := SliceAt[int16](blob, h.Table)
		if err != nil {
			return fmt.Errorf("complement: %w", err)
		}
		if uint64(len(table)) != uint64(h.NumLeft)*uint64(h.NumRight) {
			return fmt.Errorf("complement length %d != numLeft*numRight (%d*%d)", len(table), h.NumLeft, h.NumRight)
		}
		rc, err := SliceAt[int32](blob, h.RightContext)
		if err != nil {
			return fmt.Errorf("right context: %w", err)
		}
		if uint32(len(rc)) != h.NumRight {
			return fmt.Errorf("right context length %d != numRight %d", len(rc), h.NumRight)
		}
	case KindRaw:
		defaults, err := SliceAt[int32](blob, h.RawDefaults)
		if err != nil {
			return fmt.Errorf("raw defaults: %w", err)
		}
		start, err := SliceAt[uint32](blob, h.RawRowStart)
		if err != nil {
			return fmt.Errorf("raw row start: %w", err)
		}
		end, err := SliceAt[uint32](blob, h.RawRowEnd)
		if err != nil {
			return fmt.Errorf("raw row end: %w", err)
		}
		entries, err := SliceAt[RawEntryRecord](blob, h.RawEntries)
		if err != nil {
			return fmt.Errorf("raw entries: %w", err)
		}
		if uint32(len(defaults)) != h.NumRight || uint32(len(start)) != h.NumRight || uint32(len(end)) != h.NumRight {
			return fmt.Errorf("raw row arrays must have length numRight (%d)", h.NumRight)
		}
		for i := range start {
			if start[i] > end[i] || uint64(end[i]) > uint64(len(entries)) {
				return fmt.Errorf("raw row %d range [%d,%d) invalid (entries len %d)", i, start[i], end[i], len(entries))
			}
		}
	default:
		return fmt.Errorf("unknown connector kind %d", kind)
	}
	return nil
}

func validateIdMapper(blob []byte, ref ArrayRef) error {
	if ref.Empty() {
		return nil
	}
	h, err := StructAt[IdMapperHeader](blob, ref.Off)
	if err != nil {
		return err
	}
	left, err := SliceAt[uint16](blob, h.LeftPerm)
	if err != nil {
		return fmt.Errorf("left perm: %w", err)
	}
	right, err := SliceAt[uint16](blob, h.RightPerm)
	if err != nil {
		return fmt.Errorf("right perm: %w", err)
	}
	if err := validatePermutation(left); err != nil {
		return fmt.Errorf("left perm: %w", err)
	}
	if err := validatePermutation(right); err != nil {
		return fmt.Errorf("right perm: %w", err)
	}
	return nil
}

func validatePermutation(p []uint16) error {
	seen := make([]bool, len(p))
	for _, v := range p {
		if int(v) >= len(p) || seen[v] {
			return fmt.Errorf("not a permutation of [0,%d): value %d", len(p), v)
		}
		seen[v] = true
	}
	return nil
}

func validateCharProp(blob []byte, ref ArrayRef) (*CharPropHeader, error) {
	h, err := StructAt[CharPropHeader](blob, ref.Off)
	if err != nil {
		return nil, err
	}
	rules, err := SliceAt[RuleRecord](blob, h.Rules)
	if err != nil {
		return nil, fmt.Errorf("rules: %w", err)
	}
	if uint32(len(rules)) != h.NumCategories {
		return nil, fmt.Errorf("rules length %d != NumCategories %d", len(rules), h.NumCategories)
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
	for i := range start {
		if start[i] > end[i] || uint64(end[i]) > uint64(len(ranges)) {
			return nil, fmt.Errorf("category %d range [%d,%d) invalid (ranges len %d)", i, start[i], end[i], len(ranges))
		}
	}
	return h, nil
}

func validateUnkHandler(blob []byte, ref ArrayRef, numCategories uint32) error {
	h, err := StructAt[UnkHandlerHeader](blob, ref.Off)
	if err != nil {
		return err
	}
	configs, err := SliceAt[CategoryConfigRecord](blob, h.Configs)
	if err != nil {
		return fmt.Errorf("configs: %w", err)
	}
	if uint32(len(configs)) != numCategories {
		return fmt.Errorf("configs length %d != NumCategories %d", len(configs), numCategories)
	}
	features, err := BytesAt(blob, h.FeatureBytes)
	if err != nil {
		return fmt.Errorf("feature bytes: %w", err)
	}
	for i, c := range configs {
		end := uint64(c.FeatureOff) + uint64(c.FeatureLen)
		if end > uint64(len(features)) {
			return fmt.Errorf("config %d feature range exceeds feature bytes (len %d)", i, len(features))
		}
	}
	return nil
}
