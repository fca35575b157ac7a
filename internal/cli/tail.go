package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"notilog/internal/record"
)

// NewTailCommand creates the tail command: the last N raw (unmerged)
// records in file order, one human-readable line each.
func NewTailCommand(rootOpts *RootOptions) *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Show the last N raw log records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if count < 0 {
				return fmt.Errorf("--n expects a positive integer")
			}

			store, _, _ := rootOpts.OpenStore()
			records, err := store.Tail(count)
			if err != nil {
				return err
			}

			for _, rec := range records {
				fmt.Fprintln(cmd.OutOrStdout(), formatTailLine(rec))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&count, "n", 20, "number of records to show")

	return cmd
}

func formatTailLine(rec record.Record) string {
	hhmm := rec.HHMM
	if hhmm == "" {
		hhmm = rec.ClosedHHMM
	}
	if hhmm == "" {
		hhmm = "--:--"
	}
	summary := rec.Summary
	if summary == "" {
		summary = "(no summary)"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "#%d %s %s", rec.ID, hhmm, summary)
	if rec.CloseReason != "" {
		fmt.Fprintf(&b, " [closed:%s]", rec.CloseReason)
	}
	return b.String()
}
