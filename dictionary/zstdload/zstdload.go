// Package zstdload implements the thin zstd decompress-then-mmap
// collaborator of spec.md §4.1/§6: Dictionary::load_zstd. It is kept
// deliberately separate from package dictionary so the core loader has
// no zstd dependency at all; only callers who actually ship
// zstd-compressed dictionaries pull in klauspost/compress.
package zstdload

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/golang/glog"
	"github.com/klauspost/compress/zstd"

	"github.com/himawari-nlp/vibratio/dictionary"
)

// Load implements spec.md §4.1's "Zstd loader (thin collaborator)"
// algorithm: compute the metadata hash of the compressed file; if
// <cacheDir>/<hash>.dic exists, delegate straight to
// dictionary.Load(.., TrustCache). Otherwise decompress into a named
// temp file under cacheDir, persist it atomically as <hash>.dic, then
// delegate.
func Load(path, cacheDir string, mode dictionary.Mode) (*dictionary.Dictionary, error) {
	hash, err := compressedHash(path)
	if err != nil {
		return nil, fmt.Errorf("zstdload: hashing %s: %w", path, err)
	}
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("zstdload: creating cache dir: %w", err)
	}
	cached := filepath.Join(cacheDir, hash+".dic")
	if _, err := os.Stat(cached); err == nil {
		glog.V(1).Infof("zstdload: reusing decompressed cache %s", cached)
		return dictionary.Load(cached, dictionary.TrustCache)
	}

	tmp, err := decompressToTemp(path, cacheDir)
	if err != nil {
		return nil, fmt.Errorf("zstdload: decompressing %s: %w", path, err)
	}
	// Validate before persisting: a decompression failure or a
	// corrupt payload must leave no partial cache file behind
	// (spec.md §7 "a decompression failure leaves no partial cache
	// file").
	d, err := dictionary.Load(tmp, dictionary.Validate)
	if err != nil {
		os.Remove(tmp)
		return nil, err
	}
	d.Close()

	if err := os.Rename(tmp, cached); err != nil {
		os.Remove(tmp)
		return nil, fmt.Errorf("zstdload: persisting decompressed cache: %w", err)
	}
	return dictionary.Load(cached, mode)
}

func compressedHash(path string) (string, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	identity := fmt.Sprintf("size=%d mtime=%d", fi.Size(), fi.ModTime().UnixNano())
	sum := sha256.Sum256([]byte(identity))
	return hex.EncodeToString(sum[:]), nil
}

func decompressToTemp(path, cacheDir string) (string, error) {
	in, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer in.Close()

	dec, err := zstd.NewReader(in)
	if err != nil {
		return "", err
	}
	defer dec.Close()

	tmp, err := os.CreateTemp(cacheDir, "zstdload-*.dic.tmp")
	if err != nil {
		return "", err
	}
	defer tmp.Close()

	if _, err := io.Copy(tmp, dec); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return tmp.Name(), nil
}
