//go:build unix

package dictionary

import (
	"fmt"
	"os"
	"syscall"
)

// statIdentity extracts the POSIX identity tuple spec.md §4.1 step 4
// hashes: device id, inode, size, mtime seconds, mtime nanoseconds.
func statIdentity(fi os.FileInfo) (string, error) {
	st, ok := fi.Sys().(*syscall.Stat_t)
	if !ok {
		return "", fmt.Errorf("metahash: unexpected stat type %T", fi.Sys())
	}
	mtimeSec, mtimeNsec := st.Mtim.Unix()
	return fmt.Sprintf("dev=%d ino=%d size=%d mtime_s=%d mtime_ns=%d",
		st.Dev, st.Ino, fi.Size(), mtimeSec, mtimeNsec), nil
}
