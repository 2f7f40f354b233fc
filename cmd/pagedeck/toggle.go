package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/dshills/pagedeck/internal/plugin"
)

// newToggleCommand builds the enable or disable command. Both rewrite the
// manifest's enabled flag in place; the plugin system picks the change up
// on its next load or reload.
func newToggleCommand(cfgPath *string, enable bool) *cobra.Command {
	use, short := "disable <plugin-id>", "Disable a plugin in its manifest"
	if enable {
		use, short = "enable <plugin-id>", "Enable a plugin in its manifest"
	}

	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(*cfgPath)
			if err != nil {
				return err
			}

			id := args[0]
			manifestPath, err := findManifest(cfg.Plugins.Root, id)
			if err != nil {
				return err
			}

			data, err := os.ReadFile(manifestPath)
			if err != nil {
				return err
			}
			updated, err := sjson.SetBytes(data, "enabled", enable)
			if err != nil {
				return fmt.Errorf("failed to update manifest: %w", err)
			}
			if err := os.WriteFile(manifestPath, updated, 0o644); err != nil {
				return fmt.Errorf("failed to write manifest: %w", err)
			}

			if enable {
				// Verify the package actually loads now so a broken
				// manifest or script surfaces here, not in the shell.
				loader := plugin.NewLoader(cfg.Plugins.Root,
					plugin.WithLoaderLogger(logger))
				if _, err := loader.Load(filepath.Dir(manifestPath)); err != nil {
					return fmt.Errorf("enabled, but plugin does not load: %w", err)
				}
			}

			state := "disabled"
			if enable {
				state = "enabled"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", id, state)
			return nil
		},
	}
}

// findManifest locates the manifest of the package declaring the id.
// Disabled plugins are not registered, so the scan reads manifests off
// disk instead of asking the Manager.
func findManifest(root, id string) (string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return "", fmt.Errorf("failed to read plugin root: %w", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		manifestPath := filepath.Join(root, entry.Name(), plugin.ManifestFile)
		data, err := os.ReadFile(manifestPath)
		if err != nil {
			continue
		}
		if gjson.GetBytes(data, "id").String() == id {
			return manifestPath, nil
		}
	}
	return "", fmt.Errorf("%w: %s", plugin.ErrPluginNotFound, id)
}
