package dictionary

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	lru "github.com/hashicorp/golang-lru/v2"
)

// metadataHash computes the spec.md §4.1 step 4 / §9 cache key: a hash
// over filesystem identity, never file contents, so that checking
// "already validated" costs one stat call.
func metadataHash(path string) (string, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	identity, err := statIdentity(fi)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256([]byte(identity))
	return hex.EncodeToString(sum[:]), nil
}

const globalCacheSubdir = "vibrato-rkyv"

func localCacheDir(path string) string {
	return filepath.Join(filepath.Dir(path), ".cache")
}

func globalCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, globalCacheSubdir)
}

func markerExists(dir, hash string) bool {
	if dir == "" {
		return false
	}
	_, err := os.Stat(filepath.Join(dir, hash+".sha256"))
	return err == nil
}

// createMarker creates the empty marker file atomically. AlreadyExists
// races are benign and swallowed (spec.md §5/§7), since existence
// alone is the proof and duplicate creation has no correctness impact.
func createMarker(dir, hash string) error {
	if dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(filepath.Join(dir, hash+".sha256"), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return nil
		}
		return err
	}
	return f.Close()
}

// validationCache fronts the marker-file check with a bounded
// in-process LRU, so a long-running process that repeatedly opens the
// same dictionary path skips the marker-file existence checks after
// the first validation; the dictionary file itself is still stat'ed
// to compute its hash (SPEC_FULL's DOMAIN STACK wiring for
// hashicorp/golang-lru/v2).
type validationCache struct {
	recent *lru.Cache[string, struct{}]
}

func newValidationCache(size int) *validationCache {
	c, err := lru.New[string, struct{}](size)
	if err != nil {
		// Only returns an error for size <= 0, which callers never pass.
		panic(fmt.Sprintf("dictionary: invalid validation cache size: %v", err))
	}
	return &validationCache{recent: c}
}

// trusted reports whether hash has been seen validated before, either
// in this process's LRU or via a marker file in dir/globalDir.
func (c *validationCache) trusted(hash, localDir, globalDir string) bool {
	if _, ok := c.recent.Get(hash); ok {
		return true
	}
	if markerExists(localDir, hash) || markerExists(globalDir, hash) {
		c.recent.Add(hash, struct{}{})
		return true
	}
	return false
}

// markValidated records a fresh validation both in the LRU and as a
// global marker file, so future loads (in this process or another)
// can skip structural validation.
func (c *validationCache) markValidated(hash, globalDir string) error {
	c.recent.Add(hash, struct{}{})
	return createMarker(globalDir, hash)
}
