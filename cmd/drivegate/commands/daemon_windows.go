//go:build windows

package commands

import (
	"errors"
	"os"
	"os/exec"
	"syscall"

	"golang.org/x/sys/windows"
)

// detach starts cmd without a console window attached to the parent.
func detach(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CreationFlags: windows.CREATE_NEW_PROCESS_GROUP | windows.DETACHED_PROCESS,
	}
}

// processAlive reports whether pid names a running process.
func processAlive(pid int) bool {
	h, err := windows.OpenProcess(windows.PROCESS_QUERY_LIMITED_INFORMATION, false, uint32(pid))
	if err != nil {
		return false
	}
	defer func() { _ = windows.CloseHandle(h) }()

	var code uint32
	if err := windows.GetExitCodeProcess(h, &code); err != nil {
		return false
	}
	const stillActive = 259
	return code == stillActive
}

// stopProcess terminates the process. Windows has no graceful signal for a
// detached process, so force is implied.
func stopProcess(pid int, _ bool) (string, error) {
	process, err := os.FindProcess(pid)
	if err != nil {
		return "", err
	}
	return "TerminateProcess", process.Kill()
}

// isProcessDone reports whether err means the process already exited.
func isProcessDone(err error) bool {
	return errors.Is(err, os.ErrProcessDone)
}
