package cli

import (
	"github.com/spf13/cobra"

	"notilog/internal/clock"
	"notilog/internal/monitor"
)

// NewRunCommand creates the logger command: it consumes a live bus
// monitor transcript indefinitely, appending lifecycle records.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Listen on the session bus and append notification events",
		Long: `Spawns "busctl --user monitor org.freedesktop.Notifications" and turns
its transcript into lifecycle records, one JSON line per observed open or
close. Runs until the monitor stream closes or the process is signalled.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, cfg, log := rootOpts.OpenStore()
			runner := monitor.New(store, clock.DateCommand{}, cfg.PruneAfterDays, log)
			return runner.Run(cmd.Context())
		},
	}
}
