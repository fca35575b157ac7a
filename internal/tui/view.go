package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	missedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	seenStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	bodyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	legendStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	statusStyle  = lipgloss.NewStyle().Faint(true)
	listBoxStyle = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("2"))
)

const legendText = "F Show History/Missed | d Mark User Dismissed | r Refresh | q Quit\n" +
	"k,Up Up | j,Down Down | g Top | G Bottom | mouse click Select"

func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	innerWidth := m.width - 2
	visible := m.listBoxHeight() - 3
	if innerWidth < 1 || visible < 1 {
		return ""
	}

	title := titleStyle.Render(fmt.Sprintf(" Notifications | mode: %s | count: %d ",
		m.filter.Label(), len(m.items)))

	lines := m.itemLines()
	end := m.offset + visible
	if end > len(lines) {
		end = len(lines)
	}
	start := m.offset
	if start > end {
		start = end
	}

	rows := make([]string, 0, visible+1)
	rows = append(rows, title)
	for _, line := range lines[start:end] {
		rows = append(rows, m.renderLine(line, innerWidth))
	}
	for len(rows) < visible+1 {
		rows = append(rows, "")
	}

	box := listBoxStyle.Width(innerWidth).Render(strings.Join(rows, "\n"))
	status := statusStyle.Width(m.width).Render(truncate(m.status, m.width))
	legend := legendStyle.Width(m.width).Align(lipgloss.Center).Render(legendText)

	return box + "\n" + status + "\n" + legend
}

func (m Model) renderLine(line itemLine, width int) string {
	if line.item < 0 {
		return ""
	}

	text := truncate(line.text, width-2)

	style := bodyStyle
	if line.summary {
		if m.items[line.item].Expired {
			style = missedStyle
		} else {
			style = seenStyle
		}
	}
	if line.item == m.selected {
		style = style.Background(lipgloss.Color("8"))
	}
	return style.Render("  " + text)
}
