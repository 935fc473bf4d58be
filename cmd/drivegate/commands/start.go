package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/transpoze/drivegate/internal/logger"
	"github.com/transpoze/drivegate/internal/telemetry"
	"github.com/transpoze/drivegate/pkg/api"
	"github.com/transpoze/drivegate/pkg/config"
	"github.com/transpoze/drivegate/pkg/metrics"
)

var (
	background bool
	pidFile    string
	logFile    string
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the drivegate server",
	Long: `Start the drivegate REST gateway.

The server runs in the foreground by default, which suits containers and
process supervisors. Use --background to detach it instead.

A config file is optional: without one, defaults plus DRIVEGATE_* environment
variables are used.

Examples:
  # Start in foreground
  drivegate start

  # Start in background
  drivegate start --background

  # Start with custom config file
  drivegate start --config /etc/drivegate/config.yaml

  # Start without Google credentials
  DRIVEGATE_DRIVE_BACKEND=memory drivegate start`,
	RunE: runStart,
}

func init() {
	startCmd.Flags().BoolVarP(&background, "background", "b", false, "Detach and run in the background")
	startCmd.Flags().StringVar(&pidFile, "pid-file", "", "Path to PID file (default: $XDG_STATE_HOME/drivegate/drivegate.pid)")
	startCmd.Flags().StringVar(&logFile, "log-file", "", "Path to log file for background mode (default: $XDG_STATE_HOME/drivegate/drivegate.log)")
}

func runStart(cmd *cobra.Command, args []string) error {
	if background {
		return startDaemon()
	}

	cfg, err := config.Load(GetConfigFile())
	if err != nil {
		return err
	}

	if err := InitLogger(cfg); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	telemetryShutdown, err := telemetry.Init(ctx, cfg.TracerConfig(Version))
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := telemetryShutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown error", logger.KeyError, err)
		}
	}()

	profiler, err := telemetry.StartProfiler(cfg.ProfilerConfig(Version))
	if err != nil {
		return fmt.Errorf("failed to initialize profiling: %w", err)
	}
	defer func() {
		if err := profiler.Stop(); err != nil {
			logger.Error("profiling shutdown error", logger.KeyError, err)
		}
	}()

	logger.Info("drivegate starting", "version", Version, "commit", Commit)
	logger.Info("Log level", "level", cfg.Logging.Level, "format", cfg.Logging.Format)
	logger.Info("Configuration loaded", "source", getConfigSource(GetConfigFile()))
	if telemetry.IsEnabled() {
		logger.Info("Telemetry enabled", "endpoint", cfg.Telemetry.Endpoint, "sample_rate", cfg.Telemetry.SampleRate)
	}
	if profiler != nil {
		logger.Info("Profiling enabled", "endpoint", cfg.Telemetry.Profiling.Endpoint, "tags", profiler.Tags())
	}

	// Metrics first, so the gateway components pick up their collectors.
	metricsEnabled := config.InitializeMetrics(cfg)

	rt, err := config.InitializeGateway(ctx, cfg, Version)
	if err != nil {
		return fmt.Errorf("failed to initialize gateway: %w", err)
	}
	defer func() {
		if err := rt.Close(); err != nil {
			logger.Error("Failed to close folder cache", logger.KeyError, err)
		}
	}()
	logger.Info("Gateway initialized",
		"drive_backend", cfg.Drive.Backend,
		"cache", cfg.Cache.Type,
		"staging", rt.Staging.Dir())

	rt.Staging.RunSweeper(ctx, cfg.Staging.SweepAge, cfg.Staging.SweepInterval)

	if err := config.WatchLogLevel(GetConfigFile()); err != nil {
		logger.Warn("Config hot reload disabled", logger.KeyError, err)
	}

	if metricsEnabled {
		metricsServer := metrics.NewServer(cfg.Metrics)
		go func() {
			if err := metricsServer.Start(ctx); err != nil {
				logger.Error("Metrics server error", logger.KeyError, err)
			}
		}()
		logger.Info("Metrics enabled", "port", cfg.Metrics.Port)
	} else {
		logger.Info("Metrics collection disabled")
	}

	if pidFile != "" {
		if err := writePidFile(pidFile); err != nil {
			return err
		}
		defer func() { _ = os.Remove(pidFile) }()
	}

	apiServer := api.NewServer(cfg.Server, rt.Service, rt.HTTPMetrics)
	serverDone := make(chan error, 1)
	go func() {
		serverDone <- apiServer.Start(ctx)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("Server is running. Press Ctrl+C to stop.", "port", cfg.Server.Port)

	select {
	case <-sigChan:
		signal.Stop(sigChan)
		logger.Info("Shutdown signal received, initiating graceful shutdown")
		cancel()

		select {
		case err := <-serverDone:
			if err != nil {
				logger.Error("Server shutdown error", logger.KeyError, err)
				return err
			}
			logger.Info("Server stopped gracefully")
		case <-time.After(cfg.ShutdownTimeout):
			logger.Warn("Shutdown timed out", "timeout", cfg.ShutdownTimeout)
			return fmt.Errorf("shutdown timed out after %s", cfg.ShutdownTimeout)
		}

	case err := <-serverDone:
		signal.Stop(sigChan)
		if err != nil {
			logger.Error("Server error", logger.KeyError, err)
			return err
		}
		logger.Info("Server stopped")
	}

	return nil
}
