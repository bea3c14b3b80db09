package connector

import "fmt"

// IdMapper is the optional permutation pair applied once at dictionary
// build time to reorder connection ids into a cache-friendly layout
// (spec.md §3/§4.4). Its presence is transparent to callers: once the
// lexicon's word params and the connector's matrix have been built
// with permuted ids baked in, no runtime translation is needed.
// MapLeft/MapRight exist only for the build-time step itself (and for tests that want
// to verify the permutation is idempotent, per spec.md's invariant
// that applying it at load is a no-op).
type IdMapper struct {
	LeftPerm, RightPerm []uint16
}

// NewIdMapper validates that both slices are permutations of
// [0, len) and returns a mapper, or an error describing the first
// violation.
func NewIdMapper(leftPerm, rightPerm []uint16) (*IdMapper, error) {
	if err := validatePermutation(leftPerm); err != nil {
		return nil, fmt.Errorf("connector: invalid left permutation: %w", err)
	}
	if err := validatePermutation(rightPerm); err != nil {
		return nil, fmt.Errorf("connector: invalid right permutation: %w", err)
	}
	return &IdMapper{LeftPerm: leftPerm, RightPerm: rightPerm}, nil
}

func validatePermutation(p []uint16) error {
	seen := make([]bool, len(p))
	for _, v := range p {
		if int(v) >= len(p) || seen[v] {
			return fmt.Errorf("value %d out of range or repeated (n=%d)", v, len(p))
		}
		seen[v] = true
	}
	return nil
}

// MapLeft translates a pre-permutation left_id into its permuted id.
func (m *IdMapper) MapLeft(id uint16) uint16 { return m.LeftPerm[id] }

// MapRight translates a pre-permutation right_id into its permuted id.
func (m *IdMapper) MapRight(id uint16) uint16 { return m.RightPerm[id] }
