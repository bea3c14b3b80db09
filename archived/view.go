package archived

import (
	"fmt"
	"unsafe"
)

// SliceAt reinterprets blob[ref.Off : ref.Off+ref.Len*sizeof(T)] as a
// []T without copying. It is the single primitive every accessor in
// this package and in lex/connector/charprop's archived-loading paths
// goes through; all bounds and alignment checking lives here.
func SliceAt[T any](blob []byte, ref ArrayRef) ([]T, error) {
	if ref.Len == 0 {
		return nil, nil
	}
	var zero T
	size := uint64(unsafe.Sizeof(zero))
	align := uint64(unsafe.Alignof(zero))
	if ref.Off%align != 0 {
		return nil, fmt.Errorf("archived: offset %d misaligned for %d-byte alignment", ref.Off, align)
	}
	end := ref.Off + ref.Len*size
	if end < ref.Off || end > uint64(len(blob)) {
		return nil, fmt.Errorf("archived: array [%d, %d) out of bounds (blob len %d)", ref.Off, end, len(blob))
	}
	ptr := unsafe.Pointer(&blob[ref.Off])
	return unsafe.Slice((*T)(ptr), ref.Len), nil
}

// StructAt reinterprets a single fixed-size record at a byte offset.
func StructAt[T any](blob []byte, off uint64) (*T, error) {
	s, err := SliceAt[T](blob, ArrayRef{Off: off, Len: 1})
	if err != nil {
		return nil, err
	}
	return &s[0], nil
}

// BytesAt returns the raw byte sub-slice described by ref, with the
// same bounds checking as SliceAt but no alignment requirement.
func BytesAt(blob []byte, ref ArrayRef) ([]byte, error) {
	end := ref.Off + ref.Len
	if end < ref.Off || end > uint64(len(blob)) {
		return nil, fmt.Errorf("archived: bytes [%d, %d) out of bounds (blob len %d)", ref.Off, end, len(blob))
	}
	return blob[ref.Off:end], nil
}
