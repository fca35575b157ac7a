package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"notilog/internal/record"
)

// NewLookupCommand creates the lookup command: a JSON map from
// notification id to its current HH:MM. Ids without a resolvable time are
// omitted; when several events share an id, the most recently active one
// wins.
func NewLookupCommand(rootOpts *RootOptions) *cobra.Command {
	var idsArg string

	cmd := &cobra.Command{
		Use:   "lookup",
		Short: "Print a JSON map of notification id to HH:MM",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			wanted := make(map[uint32]struct{})
			for _, part := range strings.Split(idsArg, ",") {
				part = strings.TrimSpace(part)
				if part == "" {
					continue
				}
				id, err := strconv.ParseUint(part, 10, 32)
				if err != nil {
					return fmt.Errorf("invalid id %q in --ids", part)
				}
				wanted[uint32(id)] = struct{}{}
			}

			store, _, _ := rootOpts.OpenStore()
			records, err := store.ReadAll()
			if err != nil {
				return err
			}

			out := make(map[string]string)
			for _, merged := range record.Aggregate(records) {
				if _, ok := wanted[merged.ID]; !ok {
					continue
				}
				if merged.HHMM == "" {
					continue
				}
				key := strconv.FormatUint(uint64(merged.ID), 10)
				if _, taken := out[key]; !taken {
					out[key] = merged.HHMM
				}
			}

			payload, err := json.Marshal(out)
			if err != nil {
				return fmt.Errorf("encode lookup result: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(payload))
			return nil
		},
	}

	cmd.Flags().StringVar(&idsArg, "ids", "", "comma-separated notification ids")
	_ = cmd.MarkFlagRequired("ids")

	return cmd
}
