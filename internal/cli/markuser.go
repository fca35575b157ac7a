package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"notilog/internal/clock"
	"notilog/internal/logstore"
)

// NewMarkUserCommand creates the override command: it reclassifies an
// auto-expired notification as dismissed by the user.
func NewMarkUserCommand(rootOpts *RootOptions) *cobra.Command {
	var eventUID string
	var id uint32

	cmd := &cobra.Command{
		Use:   "mark-user",
		Short: "Mark an auto-expired notification as dismissed-by-user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			byID := cmd.Flags().Changed("id")
			byEvent := cmd.Flags().Changed("event")
			if byID == byEvent {
				return errors.New("usage: notilog mark-user --event <uid> (or --id <id>)")
			}

			store, _, _ := rootOpts.OpenStore()
			target := logstore.Target{EventUID: eventUID, ID: id, ByID: byID}
			uid, err := store.MarkUserDismissed(target, clock.NowEpoch(), clock.NowHHMM())
			if err != nil {
				return err
			}

			if uid == "" {
				uid = "<unknown-event>"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "updated event %s close reason to dismissed-by-user\n", uid)
			return nil
		},
	}

	cmd.Flags().StringVar(&eventUID, "event", "", "event uid to override")
	cmd.Flags().Uint32Var(&id, "id", 0, "notification id, resolved against auto-expired events")

	return cmd
}
