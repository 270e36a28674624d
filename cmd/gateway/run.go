package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"npcgate/gateway/pkg/cli"
	"npcgate/gateway/pkg/config"
	"npcgate/gateway/pkg/server"
	"npcgate/gateway/pkg/telemetry/logging"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the gateway",
	Long: `Start the gateway with the specified configuration.

Configuration comes from the YAML file given with --config (optional), then
environment variables. SIGHUP or an edit to the file (when
server.watch_config is set) reloads credentials, rate limits and dialog
settings without a restart.

Examples:
  # Start with defaults and environment overrides
  gateway run

  # Start with a config file
  gateway run --config /etc/gateway/config.yaml

  # Override listen address
  gateway run --listen 0.0.0.0:8000

  # Validate config without starting
  gateway run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting the server")
}

func runServer(cmd *cobra.Command, args []string) error {
	if err := config.Initialize(cfgFile); err != nil {
		return cli.WrapConfigError("failed to load config", err)
	}
	cfg := applyRunOverrides(config.GetConfig())
	if err := config.Validate(cfg); err != nil {
		return cli.WrapConfigError("invalid config", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return cli.WrapConfigError("invalid logging config", err)
	}
	slog.SetDefault(logger)

	if runFlags.dryRun {
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Configuration valid")
		return nil
	}

	srv := server.New(cfg, logger, Version)

	ctx, stop := cli.SetupSignalHandler(cmd.Context())
	defer stop()

	reload := func(next *config.Config) {
		srv.Reload(applyRunOverrides(next))
	}
	go watchReloadSignal(ctx, logger, reload)

	if cfg.Server.WatchConfig && cfgFile != "" {
		watcher, err := config.NewWatcher(cfgFile, cfg.Server.ReloadDebounce, logger)
		if err != nil {
			return cli.NewCommandError("run", err)
		}
		defer watcher.Stop()
		go func() {
			if err := watcher.Watch(ctx, reload); err != nil {
				logger.Error("config watcher stopped", "error", err)
			}
		}()
	}

	if err := srv.Start(ctx); err != nil {
		return cli.NewCommandError("run", err)
	}
	return nil
}

// applyRunOverrides re-applies command line overrides so they survive
// reloads.
func applyRunOverrides(cfg *config.Config) *config.Config {
	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}
	return cfg
}

func newLogger(cfg *config.Config) (*slog.Logger, error) {
	return logging.New(logging.Config{
		Level:         cfg.Telemetry.Logging.Level,
		Format:        cfg.Telemetry.Logging.Format,
		AddSource:     cfg.Telemetry.Logging.AddSource,
		RedactSecrets: cfg.RedactSecrets(),
		Writer:        os.Stdout,
	})
}

func watchReloadSignal(ctx context.Context, logger *slog.Logger, reload func(*config.Config)) {
	hup, stop := cli.ReloadSignal()
	defer stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			next, err := config.ReloadConfig(cfgFile)
			if err != nil {
				logger.Error("config reload failed, keeping current configuration", "error", err)
				continue
			}
			reload(next)
		}
	}
}
