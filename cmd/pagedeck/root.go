package main

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/dshills/pagedeck/internal/config"
	"github.com/dshills/pagedeck/internal/logging"
	"github.com/dshills/pagedeck/internal/plugin"
)

// NewRootCommand builds the pagedeck CLI.
func NewRootCommand(version string) *cobra.Command {
	var cfgPath string

	rootCmd := &cobra.Command{
		Use:   "pagedeck",
		Short: "Pagedeck plugin toolkit",
		Long: `Pagedeck manages extension plugins for a browser-automation session.

Plugins live under the plugin root directory, one package per
subdirectory, each with a plugin.json manifest and a plugin.lua entry
script. This tool lists, inspects, dry-runs and toggles them; the
pagedeck shell embeds the same plugin system against live sessions.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "",
		"path to pagedeck.yaml (default ~/.config/pagedeck/pagedeck.yaml)")

	rootCmd.AddCommand(
		newListCommand(&cfgPath),
		newInfoCommand(&cfgPath),
		newRunCommand(&cfgPath),
		newRecommendCommand(&cfgPath),
		newToggleCommand(&cfgPath, true),
		newToggleCommand(&cfgPath, false),
	)
	return rootCmd
}

// setup loads configuration and builds the logger.
func setup(cfgPath string) (*config.Config, *slog.Logger, error) {
	if cfgPath == "" {
		cfgPath = config.DefaultPath()
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, nil, err
	}

	logger := logging.New(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	}, nil)
	return cfg, logger, nil
}

// newManager builds an initialized plugin manager from the configuration.
func newManager(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*plugin.Manager, error) {
	mgr := plugin.NewManager(plugin.ManagerConfig{
		PluginRoot:      cfg.Plugins.Root,
		LoadParallelism: cfg.Plugins.Parallelism,
		Logger:          logger,
	})
	if err := mgr.Initialize(ctx); err != nil {
		return nil, err
	}
	return mgr, nil
}
