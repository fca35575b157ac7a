// Package tui is the interactive notification viewer. It is a thin
// presentation layer over the same log store and aggregation the CLI
// uses: every refresh re-snapshots the whole file, so the view is
// eventually consistent with a concurrently running logger.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"notilog/internal/clock"
	"notilog/internal/logstore"
	"notilog/internal/record"
)

// autoRefreshEvery is the polling fallback; the fsnotify watch usually
// fires first.
const autoRefreshEvery = 2 * time.Second

// FilterMode selects which merged states the list shows.
type FilterMode int

const (
	// FilterMissed shows only auto-expired notifications, the ones the
	// user likely never saw. Startup default.
	FilterMissed FilterMode = iota
	// FilterAll shows the full history.
	FilterAll
)

func (f FilterMode) Label() string {
	if f == FilterAll {
		return "history"
	}
	return "missed"
}

func (f FilterMode) Toggle() FilterMode {
	if f == FilterAll {
		return FilterMissed
	}
	return FilterAll
}

// Notification is one list entry, projected from a merged state.
type Notification struct {
	ID       uint32
	EventUID string
	Summary  string
	Expired  bool
	TimeHHMM string
	AppName  string
	Body     string
}

func notificationsFrom(merged []record.Record, filter FilterMode) []Notification {
	out := make([]Notification, 0, len(merged))
	for _, rec := range merged {
		expired := rec.IsExpired()
		if filter == FilterMissed && !expired {
			continue
		}

		summary := rec.Summary
		if summary == "" {
			summary = "(no summary)"
		}
		hhmm := rec.HHMM
		if hhmm == "" {
			hhmm = rec.ClosedHHMM
		}
		out = append(out, Notification{
			ID:       rec.ID,
			EventUID: rec.EventUID,
			Summary:  summary,
			Expired:  expired,
			TimeHHMM: hhmm,
			AppName:  rec.AppName,
			Body:     rec.Body,
		})
	}
	return out
}

type (
	loadedMsg struct {
		items []Notification
		err   error
	}
	tickMsg       struct{}
	logChangedMsg struct{}
	markDoneMsg   struct {
		status string
		err    error
	}
)

// Model is the bubbletea model for the viewer.
type Model struct {
	store   *logstore.Store
	changes <-chan struct{}

	items    []Notification
	selected int
	offset   int
	filter   FilterMode
	status   string

	width  int
	height int
}

// New builds the viewer over store. changes may be nil; when set it is a
// log-file change feed (see logstore.Store.Watch) that triggers an
// immediate reload on top of the polling fallback.
func New(store *logstore.Store, changes <-chan struct{}) Model {
	return Model{
		store:   store,
		changes: changes,
		filter:  FilterMissed,
		status:  "Loading notifications...",
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadCmd(), tickCmd(), m.waitForChange())
}

func (m Model) loadCmd() tea.Cmd {
	store, filter := m.store, m.filter
	return func() tea.Msg {
		records, err := store.ReadAll()
		if err != nil {
			return loadedMsg{err: err}
		}
		return loadedMsg{items: notificationsFrom(record.Aggregate(records), filter)}
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(autoRefreshEvery, func(time.Time) tea.Msg { return tickMsg{} })
}

func (m Model) waitForChange() tea.Cmd {
	ch := m.changes
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return logChangedMsg{}
	}
}

func (m Model) markCmd() tea.Cmd {
	item, ok := m.selectedItem()
	if !ok {
		return func() tea.Msg { return markDoneMsg{status: "Nothing selected"} }
	}
	if !item.Expired {
		return func() tea.Msg {
			return markDoneMsg{status: "Selected notification is not auto-dismissed"}
		}
	}
	if item.EventUID == "" {
		return func() tea.Msg {
			return markDoneMsg{status: "Selected notification has no event id"}
		}
	}

	store, uid := m.store, item.EventUID
	return func() tea.Msg {
		_, err := store.MarkUserDismissed(
			logstore.Target{EventUID: uid}, clock.NowEpoch(), clock.NowHHMM())
		if err != nil {
			return markDoneMsg{err: err}
		}
		return markDoneMsg{status: "Marked selected notification as dismissed-by-user"}
	}
}

func (m Model) selectedItem() (Notification, bool) {
	if m.selected < 0 || m.selected >= len(m.items) {
		return Notification{}, false
	}
	return m.items[m.selected], true
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m = m.ensureVisible()
		return m, nil

	case tea.KeyMsg:
		return m.updateKey(msg)

	case tea.MouseMsg:
		return m.updateMouse(msg)

	case loadedMsg:
		if msg.err != nil {
			m.items = nil
			m.selected = 0
			m.status = fmt.Sprintf("Failed to refresh: %v", msg.err)
			return m.ensureVisible(), nil
		}
		m.items = msg.items
		if len(m.items) == 0 {
			m.selected = 0
		} else if m.selected >= len(m.items) {
			m.selected = len(m.items) - 1
		}
		m.status = fmt.Sprintf("Loaded %d notifications from %s", len(m.items), m.filter.Label())
		return m.ensureVisible(), nil

	case tickMsg:
		return m, tea.Batch(m.loadCmd(), tickCmd())

	case logChangedMsg:
		return m, tea.Batch(m.loadCmd(), m.waitForChange())

	case markDoneMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Failed to update dismiss reason: %v", msg.err)
			return m, nil
		}
		m.status = msg.status
		return m, m.loadCmd()
	}

	return m, nil
}

func (m Model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, keys.Next):
		m = m.selectNext()
	case key.Matches(msg, keys.Prev):
		m = m.selectPrev()
	case key.Matches(msg, keys.First):
		m.selected = 0
	case key.Matches(msg, keys.Last):
		if len(m.items) > 0 {
			m.selected = len(m.items) - 1
		}
	case key.Matches(msg, keys.Filter):
		m.filter = m.filter.Toggle()
		return m.ensureVisible(), m.loadCmd()
	case key.Matches(msg, keys.Mark):
		return m, m.markCmd()
	case key.Matches(msg, keys.Refresh):
		return m, m.loadCmd()
	case key.Matches(msg, keys.Open):
		m.status = "Open action is not available in log-only mode"
	}
	return m.ensureVisible(), nil
}

func (m Model) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Button == tea.MouseButtonWheelDown:
		m = m.selectNext()
	case msg.Button == tea.MouseButtonWheelUp:
		m = m.selectPrev()
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		m = m.selectAt(msg.X, msg.Y)
	}
	return m.ensureVisible(), nil
}

func (m Model) selectNext() Model {
	if len(m.items) == 0 {
		return m
	}
	m.selected = (m.selected + 1) % len(m.items)
	return m
}

func (m Model) selectPrev() Model {
	if len(m.items) == 0 {
		return m
	}
	if m.selected == 0 {
		m.selected = len(m.items) - 1
	} else {
		m.selected--
	}
	return m
}

// selectAt maps a click position onto the list, skipping spacer rows.
func (m Model) selectAt(x, y int) Model {
	if len(m.items) == 0 {
		return m
	}
	// Content starts after the top border and the title line, ends
	// before the bottom border.
	top := 2
	bottom := m.listBoxHeight() - 1
	if y < top || y >= bottom || x < 1 || x >= m.width-1 {
		return m
	}

	line := m.offset + (y - top)
	lines := m.itemLines()
	if line < 0 || line >= len(lines) {
		return m
	}
	if item := lines[line].item; item >= 0 {
		m.selected = item
	}
	return m
}

// itemLine is one renderable row: its owning item index (-1 for the
// spacer rows between notifications) and the text.
type itemLine struct {
	item    int
	summary bool
	text    string
}

func (m Model) itemLines() []itemLine {
	var lines []itemLine
	for i, item := range m.items {
		summary := item.Summary
		if item.TimeHHMM != "" {
			summary = item.TimeHHMM + "  " + item.Summary
		}
		lines = append(lines, itemLine{item: i, summary: true, text: summary})

		for _, bodyLine := range strings.Split(item.Body, "\n") {
			bodyLine = strings.TrimSpace(bodyLine)
			if bodyLine == "" {
				continue
			}
			lines = append(lines, itemLine{item: i, text: truncate(bodyLine, 120)})
		}

		if i+1 < len(m.items) {
			// Dedicated spacer row so it doesn't get selected.
			lines = append(lines, itemLine{item: -1})
		}
	}
	return lines
}

// ensureVisible scrolls the list so the selected item's first line is on
// screen.
func (m Model) ensureVisible() Model {
	visible := m.listBoxHeight() - 3 // borders + title line
	if visible < 1 {
		return m
	}

	lines := m.itemLines()
	first, last := 0, 0
	for i, line := range lines {
		if line.item != m.selected {
			continue
		}
		if line.summary {
			first = i
		}
		last = i
	}

	if first < m.offset {
		m.offset = first
	} else if last >= m.offset+visible {
		m.offset = last - visible + 1
	}
	if maxOffset := len(lines) - visible; m.offset > maxOffset {
		m.offset = maxOffset
	}
	if m.offset < 0 {
		m.offset = 0
	}
	return m
}

func (m Model) listBoxHeight() int {
	// Legend keeps two rows plus the status row below the box.
	h := m.height - 3
	if h < 3 {
		h = 3
	}
	return h
}

func truncate(input string, maxChars int) string {
	// Non-positive widths happen on tiny terminals once borders and
	// indents are subtracted.
	if maxChars <= 0 {
		return ""
	}
	runes := []rune(input)
	if len(runes) <= maxChars {
		return input
	}
	return string(runes[:maxChars]) + "..."
}
