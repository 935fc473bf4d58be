package commands

import (
	"fmt"
	"os"
	"os/exec"
)

// startDaemon re-executes drivegate in the foreground as a detached child
// whose output goes to the log file.
func startDaemon() error {
	if err := os.MkdirAll(GetDefaultStateDir(), 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	pidPath := pidFile
	if pidPath == "" {
		pidPath = GetDefaultPidFile()
	}

	if pid, err := readPidFile(pidPath); err == nil {
		if processAlive(pid) {
			return fmt.Errorf("drivegate is already running (PID %d)\nUse 'drivegate stop' to stop the running instance", pid)
		}
		// Stale PID file
		_ = os.Remove(pidPath)
	}

	logPath := logFile
	if logPath == "" {
		logPath = GetDefaultLogFile()
	}

	executable, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to get executable path: %w", err)
	}

	daemonArgs := []string{"start", "--pid-file", pidPath}
	if GetConfigFile() != "" {
		daemonArgs = append(daemonArgs, "--config", GetConfigFile())
	}
	cmd := exec.Command(executable, daemonArgs...)

	logHandle, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() { _ = logHandle.Close() }()

	cmd.Stdout = logHandle
	cmd.Stderr = logHandle
	detach(cmd)

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start daemon: %w", err)
	}

	fmt.Printf("drivegate started in background (PID %d)\n", cmd.Process.Pid)
	fmt.Printf("  PID file: %s\n", pidPath)
	fmt.Printf("  Log file: %s\n", logPath)
	fmt.Println("\nUse 'drivegate stop' to stop the server")
	fmt.Println("Use 'drivegate status' to check server status")
	return nil
}
