// Package cli wires the notilog command tree. Each command constructor
// takes the shared root options; all state flows through the library
// packages so notitui stays a second thin consumer of the same core.
package cli

import (
	"github.com/spf13/cobra"

	"notilog/internal/config"
	"notilog/internal/logstore"
	"notilog/pkg/logx"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	LogLevel string
}

// Logger builds the stderr console logger for this invocation.
func (o *RootOptions) Logger() logx.Logger {
	return logx.NewConsole(o.LogLevel)
}

// OpenStore resolves the configuration and opens the log store.
func (o *RootOptions) OpenStore() (*logstore.Store, config.Config, logx.Logger) {
	cfg := config.LoadOrCreate()
	log := o.Logger()
	return logstore.New(cfg.LogFilePath, cfg.MaxNotifications, log), cfg, log
}

// NewRootCommand creates the root command for the notilog CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "notilog",
		Short:         "notilog - desktop notification logger and reader",
		Long:          "notilog records desktop notification lifecycles from the session bus\nand reconstructs the current state of every notification on demand.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "warn", "diagnostic log level (trace|debug|info|warn|error)")

	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewMarkUserCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewTailCommand(opts))
	cmd.AddCommand(NewStatsCommand(opts))
	cmd.AddCommand(NewQueryCommand(opts))
	cmd.AddCommand(NewLookupCommand(opts))
	cmd.AddCommand(NewPruneCommand(opts))

	return cmd
}
