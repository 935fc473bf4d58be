package commands

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/transpoze/drivegate/internal/cli/health"
	"github.com/transpoze/drivegate/internal/cli/output"
	"github.com/transpoze/drivegate/internal/cli/timeutil"
)

var (
	statusOutput  string
	statusPidFile string
	statusURL     string
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show server status",
	Long: `Display the status of a drivegate server.

Calls the health endpoint and reports uptime, the Drive connection and the
folder cache size.

Examples:
  # Check a local server
  drivegate status

  # Check a remote server as JSON
  drivegate status --url http://gateway:8080 --output json`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&statusPidFile, "pid-file", "", "Path to PID file (default: $XDG_STATE_HOME/drivegate/drivegate.pid)")
	statusCmd.Flags().StringVar(&statusURL, "url", "http://localhost:8080", "Base URL of the server")
	statusCmd.Flags().StringVarP(&statusOutput, "output", "o", "table", "Output format (table|json|yaml)")
}

// ServerStatus represents the server status information.
type ServerStatus struct {
	Running         bool   `json:"running" yaml:"running"`
	PID             int    `json:"pid,omitempty" yaml:"pid,omitempty"`
	Healthy         bool   `json:"healthy" yaml:"healthy"`
	Message         string `json:"message" yaml:"message"`
	Version         string `json:"version,omitempty" yaml:"version,omitempty"`
	Uptime          string `json:"uptime,omitempty" yaml:"uptime,omitempty"`
	Account         string `json:"account,omitempty" yaml:"account,omitempty"`
	FolderCacheSize int    `json:"folder_cache_size" yaml:"folder_cache_size"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(statusOutput)
	if err != nil {
		return err
	}

	pidPath := statusPidFile
	if pidPath == "" {
		pidPath = GetDefaultPidFile()
	}

	status := ServerStatus{Message: "Server is not running"}
	if pid, err := readPidFile(pidPath); err == nil && processAlive(pid) {
		status.Running = true
		status.PID = pid
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithTimeout(parent, 5*time.Second)
	defer cancel()
	resp, err := health.Fetch(ctx, &http.Client{}, statusURL)
	status = mergeHealth(status, resp, err)

	if format == output.FormatTable {
		printStatusTable(cmd.OutOrStdout(), status)
		return nil
	}
	return output.Print(cmd.OutOrStdout(), format, status)
}

// mergeHealth folds a health probe result into status.
func mergeHealth(status ServerStatus, resp *health.Response, err error) ServerStatus {
	if err != nil {
		if status.Running {
			status.Message = fmt.Sprintf("Server process exists but health check failed: %v", err)
		}
		return status
	}

	status.Running = true
	status.Version = resp.Version
	status.Uptime = timeutil.FormatUptime(resp.UptimeDuration())
	status.FolderCacheSize = resp.FolderCacheSize
	if resp.User != nil {
		status.Account = resp.User.Email
	}

	if resp.DriveConnected() {
		status.Healthy = true
		status.Message = "Server is running and connected to Google Drive"
	} else {
		status.Message = fmt.Sprintf("Server is running but Google Drive is unreachable: %s", resp.DriveError)
	}
	return status
}

func printStatusTable(w io.Writer, status ServerStatus) {
	state := "\033[31m○ Stopped\033[0m"
	if status.Running {
		state = "\033[32m● Running\033[0m"
		if !status.Healthy {
			state = "\033[33m● Running (degraded)\033[0m"
		}
	}

	pairs := [][2]string{{"Status", state}}
	if status.PID != 0 {
		pairs = append(pairs, [2]string{"PID", fmt.Sprintf("%d", status.PID)})
	}
	if status.Version != "" {
		pairs = append(pairs,
			[2]string{"Version", status.Version},
			[2]string{"Uptime", status.Uptime},
			[2]string{"Account", status.Account},
			[2]string{"Folder cache", fmt.Sprintf("%d entries", status.FolderCacheSize)},
		)
	}

	_, _ = fmt.Fprintln(w)
	_ = output.SimpleTable(w, pairs)
	_, _ = fmt.Fprintf(w, "\n  %s\n\n", status.Message)
}
