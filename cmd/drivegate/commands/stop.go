package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	stopPidFile string
	stopForce   bool
)

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop a background drivegate server",
	Long: `Stop a drivegate server started with --background or --pid-file.

By default, sends SIGTERM for graceful shutdown. Use --force for immediate
termination.

Examples:
  # Stop server (uses default PID file)
  drivegate stop

  # Force stop
  drivegate stop --force`,
	RunE: runStop,
}

func init() {
	stopCmd.Flags().StringVar(&stopPidFile, "pid-file", "", "Path to PID file (default: $XDG_STATE_HOME/drivegate/drivegate.pid)")
	stopCmd.Flags().BoolVarP(&stopForce, "force", "f", false, "Force kill instead of graceful shutdown")
}

func runStop(cmd *cobra.Command, args []string) error {
	pidPath := stopPidFile
	if pidPath == "" {
		pidPath = GetDefaultPidFile()
	}

	pid, err := readPidFile(pidPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("PID file not found: %s\n\nIs the server running?", pidPath)
		}
		return err
	}

	out := cmd.OutOrStdout()
	name, err := stopProcess(pid, stopForce)
	if err != nil {
		if isProcessDone(err) {
			_, _ = fmt.Fprintln(out, "Server already stopped")
			_ = os.Remove(pidPath)
			return nil
		}
		return fmt.Errorf("failed to stop process %d: %w", pid, err)
	}

	_, _ = fmt.Fprintf(out, "Sent %s to process %d\n", name, pid)
	if stopForce {
		_, _ = fmt.Fprintln(out, "Server terminated")
		_ = os.Remove(pidPath)
	} else {
		_, _ = fmt.Fprintln(out, "Shutdown signal sent. Server will stop gracefully.")
	}
	return nil
}
