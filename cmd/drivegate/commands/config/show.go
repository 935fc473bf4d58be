package config

import (
	"github.com/spf13/cobra"

	"github.com/transpoze/drivegate/internal/cli/output"
	"github.com/transpoze/drivegate/pkg/config"
)

var showOutput string

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Display the effective configuration",
	Long: `Display the configuration drivegate would run with: defaults, then the
config file, then DRIVEGATE_* environment variables.

Examples:
  # Show as YAML
  drivegate config show

  # Show as JSON
  drivegate config show --output json

  # Show specific config file
  drivegate config show --config /etc/drivegate/config.yaml`,
	RunE: runConfigShow,
}

func init() {
	showCmd.Flags().StringVarP(&showOutput, "output", "o", "yaml", "Output format (yaml|json)")
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	format, err := output.ParseFormat(showOutput)
	if err != nil {
		return err
	}
	if format == output.FormatJSON {
		return output.PrintJSON(cmd.OutOrStdout(), cfg)
	}
	return output.PrintYAML(cmd.OutOrStdout(), cfg)
}
