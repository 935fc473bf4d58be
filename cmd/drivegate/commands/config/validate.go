package config

import (
	"fmt"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/transpoze/drivegate/pkg/config"
	"github.com/transpoze/drivegate/pkg/drive"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long: `Validate the drivegate configuration file.

Checks for syntax errors, missing required fields and invalid values, then
warns about settings that will fail at runtime.

Examples:
  # Validate default config
  drivegate config validate

  # Validate specific config file
  drivegate config validate --config /etc/drivegate/config.yaml`,
	RunE: runConfigValidate,
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")

	cfg, err := config.MustLoad(configPath)
	if err != nil {
		return err
	}

	displayPath := configPath
	if displayPath == "" {
		displayPath = config.GetDefaultConfigPath()
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Configuration file: %s\n", displayPath)
	_, _ = fmt.Fprintln(out, "Validation: OK")

	if warnings := runtimeWarnings(cfg); len(warnings) > 0 {
		_, _ = fmt.Fprintln(out, "\nWarnings:")
		for _, w := range warnings {
			_, _ = fmt.Fprintf(out, "  - %s\n", w)
		}
	}

	_, _ = fmt.Fprintf(out, "\nConfiguration summary:\n")
	_, _ = fmt.Fprintf(out, "  Drive backend:   %s\n", cfg.Drive.Backend)
	_, _ = fmt.Fprintf(out, "  Folder cache:    %s\n", cfg.Cache.Type)
	_, _ = fmt.Fprintf(out, "  API port:        %d\n", cfg.Server.Port)
	_, _ = fmt.Fprintf(out, "  Max upload:      %s\n", cfg.Staging.MaxUploadSize)
	_, _ = fmt.Fprintf(out, "  Log level:       %s\n", cfg.Logging.Level)
	return nil
}

// runtimeWarnings lists settings that validate but will not work as
// configured.
func runtimeWarnings(cfg *config.Config) []string {
	var warnings []string

	if cfg.Drive.Backend == drive.BackendMemory {
		warnings = append(warnings, "Drive backend is 'memory': nothing will reach Google Drive")
	}
	if cfg.Drive.Backend == drive.BackendGoogle && cfg.Drive.CredentialsFile == "" {
		warnings = append(warnings, "drive.credentials_file not set - Application Default Credentials will be used")
	}
	if cfg.Cache.Type == "memory" {
		warnings = append(warnings, "Folder cache is unbounded - consider cache.type 'lru' for long-running servers")
	}
	if cfg.Cache.Type == "lru" && cfg.Cache.Capacity < 0 {
		warnings = append(warnings, "cache.capacity is negative - the lru cache is unbounded")
	}
	if cfg.Staging.SweepInterval < 0 {
		warnings = append(warnings, "staging.sweep_interval is negative - abandoned uploads are never swept")
	}
	if t := cfg.Transcoder.Timeout; t < 0 || t > cfg.Server.RequestTimeout {
		warnings = append(warnings, fmt.Sprintf("Conversions are bounded by server.request_timeout (%s), not transcoder.timeout", cfg.Server.RequestTimeout))
	}
	if _, err := exec.LookPath(cfg.Transcoder.Binary); err != nil {
		warnings = append(warnings, fmt.Sprintf("Transcoder binary %q not found - /recordings/save will fail", cfg.Transcoder.Binary))
	}
	return warnings
}
