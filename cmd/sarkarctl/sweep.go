package main

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

func newSweepCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Run the deadline reminder sweep once and print its report",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel, a, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer cancel()
			defer a.Close()

			report, err := a.Sweeper.Run(ctx)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		},
	}
}
