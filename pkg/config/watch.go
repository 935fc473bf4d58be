package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/transpoze/drivegate/internal/logger"
)

// WatchLogLevel re-applies logging.level whenever the config file changes,
// so verbosity can be raised on a running gateway without a restart. Other
// settings still require a restart. A missing file disables watching.
func WatchLogLevel(configPath string) error {
	if configPath == "" {
		configPath = GetDefaultConfigPath()
	}
	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		logger.Debug("Config file not found, hot reload disabled", logger.KeyPath, configPath)
		return nil
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file for watching: %w", err)
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		applyLogLevel(v)
	})
	v.WatchConfig()

	logger.Debug("Watching config file for log level changes", logger.KeyPath, configPath)
	return nil
}

// applyLogLevel sets the logger level from v. It reports whether the level
// changed.
func applyLogLevel(v *viper.Viper) bool {
	next := strings.ToUpper(strings.TrimSpace(v.GetString("logging.level")))
	if next == "" {
		return false
	}
	if _, ok := logger.ParseLevel(next); !ok {
		logger.Warn("Ignoring invalid log level from config reload", "log_level", next)
		return false
	}

	prev := logger.GetLevel()
	if next == "WARNING" {
		next = "WARN"
	}
	if prev == next {
		return false
	}
	logger.SetLevel(next)
	logger.Info("Log level changed", "from", prev, "to", next)
	return true
}
