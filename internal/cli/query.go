package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"notilog/internal/record"
)

// NewQueryCommand creates the query command: the merged state for the
// highest-ordered event with the given notification id, or null.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	var id uint32

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Show the merged record for one notification id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, _ := rootOpts.OpenStore()
			records, err := store.ReadAll()
			if err != nil {
				return err
			}

			for _, merged := range record.Aggregate(records) {
				if merged.ID != id {
					continue
				}
				payload, err := json.Marshal(merged)
				if err != nil {
					return fmt.Errorf("encode query result: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(payload))
				return nil
			}

			fmt.Fprintln(cmd.OutOrStdout(), "null")
			return nil
		},
	}

	cmd.Flags().Uint32Var(&id, "id", 0, "notification id")
	_ = cmd.MarkFlagRequired("id")

	return cmd
}
