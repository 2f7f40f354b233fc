package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newInfoCommand(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "info <plugin-id>",
		Short: "Show a plugin's manifest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(*cfgPath)
			if err != nil {
				return err
			}
			mgr, err := newManager(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}

			p, ok := mgr.Get(args[0])
			if !ok {
				return fmt.Errorf("plugin not found: %s", args[0])
			}

			out, err := json.MarshalIndent(p.Descriptor, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			fmt.Fprintf(cmd.OutOrStdout(), "path: %s\n", p.Path)
			return nil
		},
	}
}
