package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newRecommendCommand(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "recommend <keyword>...",
		Short: "Rank plugins against keywords",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(*cfgPath)
			if err != nil {
				return err
			}
			mgr, err := newManager(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}

			recs := mgr.Recommend(args)
			if len(recs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no matching plugins")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSCORE\tNAME")
			for _, rec := range recs {
				name := ""
				if p, ok := mgr.Get(rec.ID); ok {
					name = p.Descriptor.Name
				}
				fmt.Fprintf(w, "%s\t%d\t%s\n", rec.ID, rec.Score, name)
			}
			return w.Flush()
		},
	}
}
