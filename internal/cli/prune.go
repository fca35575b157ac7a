package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"notilog/internal/clock"
)

// NewPruneCommand creates the prune command: it drops individual record
// lines older than the given number of days. Pruning is line-grained, so
// one side of an event can age out while the other stays; lines with no
// epoch at all are always kept.
func NewPruneCommand(rootOpts *RootOptions) *cobra.Command {
	var days int64

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Remove log records older than N days",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if days < 0 {
				return fmt.Errorf("--days expects a non-negative integer")
			}

			store, _, _ := rootOpts.OpenStore()
			removed, remaining, err := store.PruneOlderThan(days, clock.NowEpoch())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "removed: %d\n", removed)
			fmt.Fprintf(cmd.OutOrStdout(), "remaining: %d\n", remaining)
			return nil
		},
	}

	cmd.Flags().Int64Var(&days, "days", 0, "age cutoff in days")
	_ = cmd.MarkFlagRequired("days")

	return cmd
}
