//go:build !windows

package commands

import (
	"os"
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

// detach starts cmd in its own session so it survives the parent shell.
func detach(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
}

// processAlive reports whether pid names a running process.
func processAlive(pid int) bool {
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return process.Signal(unix.Signal(0)) == nil
}

// stopProcess sends SIGTERM, or SIGKILL when force is set.
func stopProcess(pid int, force bool) (string, error) {
	sig, name := unix.SIGTERM, "SIGTERM"
	if force {
		sig, name = unix.SIGKILL, "SIGKILL"
	}
	return name, unix.Kill(pid, sig)
}

// isProcessDone reports whether err means the process already exited.
func isProcessDone(err error) bool {
	return err == unix.ESRCH || err == os.ErrProcessDone
}
