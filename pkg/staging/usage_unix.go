//go:build linux || darwin || freebsd

package staging

import (
	"fmt"

	"golang.org/x/sys/unix"
)

func diskUsage(dir string) (Usage, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(dir, &st); err != nil {
		return Usage{}, fmt.Errorf("statfs %s: %w", dir, err)
	}
	bsize := uint64(st.Bsize)
	return Usage{
		FreeBytes:  uint64(st.Bavail) * bsize,
		TotalBytes: uint64(st.Blocks) * bsize,
	}, nil
}
