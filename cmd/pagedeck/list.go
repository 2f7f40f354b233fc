package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dshills/pagedeck/internal/plugin"
)

func newListCommand(cfgPath *string) *cobra.Command {
	var category, tag string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List loadable plugins",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(*cfgPath)
			if err != nil {
				return err
			}
			mgr, err := newManager(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}

			var plugins []*plugin.Plugin
			switch {
			case category != "":
				plugins = mgr.ByCategory(plugin.Category(category))
			case tag != "":
				plugins = mgr.ByTag(tag)
			default:
				plugins = mgr.All()
			}

			if len(plugins) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no plugins found")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tVERSION\tCATEGORY\tTAGS")
			for _, p := range plugins {
				d := p.Descriptor
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					d.ID, d.Name, d.Version, d.Category, strings.Join(d.Tags, ","))
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "filter by category")
	cmd.Flags().StringVar(&tag, "tag", "", "filter by tag")
	return cmd
}
