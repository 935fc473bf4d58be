//go:build windows

package staging

import (
	"fmt"

	"golang.org/x/sys/windows"
)

func diskUsage(dir string) (Usage, error) {
	p, err := windows.UTF16PtrFromString(dir)
	if err != nil {
		return Usage{}, err
	}
	var free, total, totalFree uint64
	if err := windows.GetDiskFreeSpaceEx(p, &free, &total, &totalFree); err != nil {
		return Usage{}, fmt.Errorf("GetDiskFreeSpaceEx %s: %w", dir, err)
	}
	return Usage{FreeBytes: free, TotalBytes: total}, nil
}
