package config

import (
	"fmt"
	"os"
)

const configHeader = `# drivegate configuration file
#
# Every key can be overridden with an environment variable named
# DRIVEGATE_<SECTION>_<KEY>, for example DRIVEGATE_SERVER_PORT=9000 or
# DRIVEGATE_DRIVE_IMPERSONATE=staff@example.com.
#
# drive.backend "google" needs a service-account key in
# drive.credentials_file (or Application Default Credentials).
# drive.backend "memory" runs without Google for local testing.
#
# A zero duration or size takes its default. A negative
# staging.sweep_interval disables the sweeper, a negative transcoder.timeout
# leaves conversions bounded only by server.request_timeout, and a negative
# cache.capacity makes the lru cache unbounded.

`

// InitConfig writes a sample configuration to the default location and
// returns its path.
func InitConfig(force bool) (string, error) {
	path := GetDefaultConfigPath()
	if err := InitConfigToPath(path, force); err != nil {
		return "", err
	}
	return path, nil
}

// InitConfigToPath writes a sample configuration to path. An existing file
// is only replaced when force is set.
func InitConfigToPath(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("configuration file already exists at %s (use --force to overwrite)", path)
		}
	}

	if err := SaveConfig(GetDefaultConfig(), path); err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read generated config: %w", err)
	}
	if err := os.WriteFile(path, append([]byte(configHeader), data...), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
