package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"notilog/internal/record"
)

// NewExportCommand creates the export command: the merged current state
// of every event as a JSON array, most recently active first.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Print merged records as a JSON array",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, _ := rootOpts.OpenStore()
			records, err := store.ReadAll()
			if err != nil {
				return err
			}

			payload, err := json.Marshal(record.Aggregate(records))
			if err != nil {
				return fmt.Errorf("encode export payload: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(payload))
			return nil
		},
	}
}
