package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewStatsCommand creates the stats command: log path and raw record
// count.
func NewStatsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show log path and record count",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, _ := rootOpts.OpenStore()
			count, err := store.Count()
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "path: %s\n", store.Path())
			fmt.Fprintf(cmd.OutOrStdout(), "records: %d\n", count)
			return nil
		},
	}
}
