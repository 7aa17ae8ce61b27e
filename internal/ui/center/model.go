// Package center is the notification center dropdown: the list of recent
// notifications with read, read-all and delete actions.
package center

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Hritik-Goblyte/raama-poetic-erp-sub000/internal/inbox"
	"github.com/Hritik-Goblyte/raama-poetic-erp-sub000/internal/keys"
	"github.com/Hritik-Goblyte/raama-poetic-erp-sub000/internal/model"
	"github.com/Hritik-Goblyte/raama-poetic-erp-sub000/internal/theme"
)

// MarkReadMsg asks the app to mark a notification read.
type MarkReadMsg struct {
	ID string
}

// MarkAllReadMsg asks the app to mark every notification read.
type MarkAllReadMsg struct{}

// DeleteMsg asks the app to delete a notification.
type DeleteMsg struct {
	ID string
}

// CloseMsg is sent when the dropdown is dismissed.
type CloseMsg struct{}

// Model is the notification center view.
type Model struct {
	list   list.Model
	keys   *keys.KeyMap
	unread int
	width  int
	height int
}

// New creates an empty notification center.
func New(k *keys.KeyMap, width, height int) Model {
	l := list.New([]list.Item{}, ItemDelegate{}, width, height-2)
	l.Title = "Notifications"
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()
	l.Styles.Title = theme.HeaderStyle

	return Model{
		list:   l,
		keys:   k,
		width:  width,
		height: height,
	}
}

// SetNotifications replaces the displayed snapshot, keeping the cursor in
// range.
func (m *Model) SetNotifications(nl model.NotificationList) tea.Cmd {
	items := make([]list.Item, len(nl.Notifications))
	for i, n := range nl.Notifications {
		items[i] = NotificationItem{Notification: n}
	}
	m.unread = nl.UnreadCount
	m.list.Title = "Notifications"
	if badge := inbox.Badge(nl.UnreadCount); badge != "" {
		m.list.Title = "Notifications (" + badge + ")"
	}

	idx := m.list.Index()
	cmd := m.list.SetItems(items)
	if idx >= len(items) && len(items) > 0 {
		m.list.Select(len(items) - 1)
	}
	return cmd
}

// Selected returns the highlighted notification.
func (m Model) Selected() (model.Notification, bool) {
	ni, ok := m.list.SelectedItem().(NotificationItem)
	if !ok {
		return model.Notification{}, false
	}
	return ni.Notification, true
}

// Len returns the number of notifications shown.
func (m Model) Len() int {
	return len(m.list.Items())
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles key input for the dropdown.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Back), key.Matches(msg, m.keys.Center):
			return m, emit(CloseMsg{})

		case key.Matches(msg, m.keys.MarkRead):
			n, ok := m.Selected()
			if !ok || n.IsRead {
				return m, nil
			}
			return m, emit(MarkReadMsg{ID: n.ID})

		case key.Matches(msg, m.keys.MarkAllRead):
			if m.unread == 0 {
				return m, nil
			}
			return m, emit(MarkAllReadMsg{})

		case key.Matches(msg, m.keys.Delete):
			n, ok := m.Selected()
			if !ok {
				return m, nil
			}
			return m, emit(DeleteMsg{ID: n.ID})
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func emit(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}

// View renders the dropdown.
func (m Model) View() string {
	if len(m.list.Items()) == 0 {
		empty := lipgloss.JoinVertical(
			lipgloss.Center,
			theme.KindStyle(model.KindUnknown).Render("•"),
			"",
			theme.UnreadStyle.Render("No notifications yet"),
			theme.HelpStyle.Render("We'll notify you when something happens!"),
		)
		return theme.PanelStyle.
			Width(m.width - 4).
			Render(lipgloss.JoinVertical(
				lipgloss.Left,
				theme.TitleStyle.Render("Notifications"),
				lipgloss.PlaceHorizontal(m.width-8, lipgloss.Center, empty),
			))
	}
	return m.list.View()
}

// SetSize updates the dropdown dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-2)
}

// Restyle reapplies theme styles after a theme switch.
func (m *Model) Restyle() {
	m.list.Styles.Title = theme.HeaderStyle
}
