package center

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Hritik-Goblyte/raama-poetic-erp-sub000/internal/model"
	"github.com/Hritik-Goblyte/raama-poetic-erp-sub000/internal/theme"
)

// TimeLayout formats notification dates, e.g. "Mar 05, 14:30".
const TimeLayout = "Jan 02, 15:04"

// NotificationItem wraps a model.Notification for a bubbles/list.
type NotificationItem struct {
	Notification model.Notification
}

// FilterValue returns the string used for filtering.
func (i NotificationItem) FilterValue() string { return i.Notification.Detail() }

// Title returns the detail line.
func (i NotificationItem) Title() string { return i.Notification.Detail() }

// Description returns the formatted creation time.
func (i NotificationItem) Description() string {
	return formatTime(i.Notification.CreatedAt)
}

func formatTime(ts model.Timestamp) string {
	if ts.IsZero() {
		return ""
	}
	return ts.Local().Format(TimeLayout)
}

// ItemDelegate renders a notification as two lines: icon and detail, then
// the timestamp.
type ItemDelegate struct{}

// Height returns the number of lines each item takes.
func (d ItemDelegate) Height() int { return 2 }

// Spacing returns the number of blank lines between items.
func (d ItemDelegate) Spacing() int { return 1 }

// Update handles per-item messages (unused).
func (d ItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single notification.
func (d ItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	ni, ok := item.(NotificationItem)
	if !ok {
		return
	}
	n := ni.Notification

	icon := theme.KindStyle(n.Kind()).Render(n.Kind().Icon())

	text := n.Detail()
	if n.IsRead {
		text = theme.ReadStyle.Render(text)
	} else {
		text = theme.UnreadStyle.Render(text)
	}

	marker := " "
	if !n.IsRead {
		marker = lipgloss.NewStyle().Foreground(theme.Colors().Accent).Render("●")
	}

	line := fmt.Sprintf("%s %s %s", marker, icon, text)
	when := "    " + theme.TimestampStyle.Render(formatTime(n.CreatedAt))

	block := lipgloss.JoinVertical(lipgloss.Left, line, when)
	if index == m.Index() {
		block = theme.SelectedItemStyle.Render(block)
	} else {
		block = theme.ListItemStyle.Render(block)
	}

	fmt.Fprint(w, block)
}
