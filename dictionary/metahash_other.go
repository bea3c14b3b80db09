//go:build !unix

package dictionary

import (
	"fmt"
	"os"
)

// statIdentity is the non-POSIX fallback: size and mtime only, per
// spec.md §4.1 step 4's "on other platforms" clause. No device/inode
// equivalent is portably available through os.FileInfo alone.
func statIdentity(fi os.FileInfo) (string, error) {
	return fmt.Sprintf("size=%d mtime=%d", fi.Size(), fi.ModTime().UnixNano()), nil
}
