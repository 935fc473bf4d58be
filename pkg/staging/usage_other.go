//go:build !linux && !darwin && !freebsd && !windows

package staging

import (
	"fmt"
	"runtime"
)

func diskUsage(dir string) (Usage, error) {
	return Usage{}, fmt.Errorf("disk usage not supported on %s", runtime.GOOS)
}
