package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/transpoze/drivegate/pkg/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a sample configuration file",
	Long: `Initialize a sample drivegate configuration file.

By default, the configuration file is created at $XDG_CONFIG_HOME/drivegate/config.yaml.
Use --config to specify a custom path.

Examples:
  # Initialize with default location
  drivegate init

  # Initialize with custom path
  drivegate init --config /etc/drivegate/config.yaml

  # Force overwrite existing config
  drivegate init --force`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Force overwrite existing config file")
}

func runInit(cmd *cobra.Command, args []string) error {
	configFile := GetConfigFile()

	var configPath string
	var err error

	if configFile != "" {
		err = config.InitConfigToPath(configFile, initForce)
		configPath = configFile
	} else {
		configPath, err = config.InitConfig(initForce)
	}

	if err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Configuration file created at: %s\n", configPath)
	_, _ = fmt.Fprintln(out, "\nNext steps:")
	_, _ = fmt.Fprintln(out, "  1. Set drive.credentials_file to a service-account key")
	_, _ = fmt.Fprintln(out, "  2. Start the gateway with: drivegate start")
	_, _ = fmt.Fprintf(out, "  3. Or specify custom config: drivegate start --config %s\n", configPath)
	_, _ = fmt.Fprintln(out, "\nTo try the API without Google credentials:")
	_, _ = fmt.Fprintf(out, "  %s_DRIVE_BACKEND=memory drivegate start\n", config.EnvPrefix)
	return nil
}
