// notitui is the interactive notification viewer: a full-screen list of
// merged notification states over the same log file the notilog CLI
// writes. It refreshes on a short poll and on log-file change events, so
// it can run alongside a live logger.
package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"notilog/internal/config"
	"notilog/internal/logstore"
	"notilog/internal/tui"
	"notilog/pkg/logx"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.LoadOrCreate()
	store := logstore.New(cfg.LogFilePath, cfg.MaxNotifications, logx.Nop())

	// Change feed is best-effort; polling covers for a failed watch.
	changes, stopWatch, err := store.Watch()
	if err != nil {
		changes = nil
	} else {
		defer func() { _ = stopWatch() }()
	}

	program := tea.NewProgram(
		tui.New(store, changes),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	_, err = program.Run()
	return err
}
