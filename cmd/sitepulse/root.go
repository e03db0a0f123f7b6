package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/samims/sitepulse/internal/client"
	"github.com/samims/sitepulse/internal/config"
	"github.com/samims/sitepulse/internal/logger"
	"github.com/samims/sitepulse/internal/service"
	"github.com/samims/sitepulse/internal/storage"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "sitepulse",
		Short: "Website health dashboard backend",
		Long: `sitepulse serves the dashboard API for website health checks,
proxies the upstream monitoring service and keeps the plugin settings.

Without a subcommand it runs the HTTP server.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}
	root.AddCommand(
		newServeCmd(),
		newCheckCmd(),
		newSettingsCmd(),
		newVersionCmd(),
	)
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	l := logger.NewLogger(cfg.LogLevel)
	slog.SetDefault(l)
	return serve(cmd.Context(), cfg, l)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", serviceName, version)
		},
	}
}

// core is what every command needs: the settings store, the settings
// service on top of it and the upstream client authenticated by it.
type core struct {
	store    storage.SettingsStorage
	settings service.SettingsService
	api      *client.Client
}

func openCore(ctx context.Context, cfg *config.Config, l *slog.Logger) (*core, error) {
	store, err := storage.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	l.Info("Settings store ready", slog.String("driver", cfg.DatabaseDriver))

	settings := service.NewSettingsService(store, l)
	api := client.New(client.Options{
		BaseURL:       cfg.APIBaseURL,
		Version:       cfg.APIVersion,
		Timeout:       cfg.UpstreamTimeout,
		ClientVersion: version,
	}, settings, l)
	return &core{store: store, settings: settings, api: api}, nil
}

func (c *core) close() {
	if err := c.store.Close(); err != nil {
		slog.Error("Failed to close settings store", slog.Any("error", err))
	}
}

// cliRuntime loads config for a one-shot command. Logs go to stderr so
// stdout carries only the command output.
func cliRuntime(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	var w io.Writer = os.Stderr
	if cmd != nil {
		w = cmd.ErrOrStderr()
	}
	return cfg, logger.NewLoggerTo(w, cfg.LogLevel), nil
}
