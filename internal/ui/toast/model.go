package toast

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Hritik-Goblyte/raama-poetic-erp-sub000/internal/notify"
	"github.com/Hritik-Goblyte/raama-poetic-erp-sub000/internal/theme"
)

// maxVisible bounds the number of toasts rendered at once.
const maxVisible = 3

// ShowMsg asks the stack to display a toast.
type ShowMsg struct {
	Toast notify.Toast
}

// expireMsg removes a toast once its duration has elapsed.
type expireMsg struct {
	id string
}

// Model is a stack of auto-dismissing toasts, newest first.
type Model struct {
	toasts []notify.Toast
	width  int
}

// New creates an empty toast stack.
func New(width int) Model {
	return Model{width: width}
}

// Push adds t to the stack and returns the command that expires it.
func (m *Model) Push(t notify.Toast) tea.Cmd {
	m.toasts = append([]notify.Toast{t}, m.toasts...)
	id := t.ID
	return tea.Tick(t.Duration, func(time.Time) tea.Msg {
		return expireMsg{id: id}
	})
}

// Dismiss removes the newest toast.
func (m *Model) Dismiss() {
	if len(m.toasts) > 0 {
		m.toasts = m.toasts[1:]
	}
}

// Len returns the number of toasts on the stack.
func (m Model) Len() int {
	return len(m.toasts)
}

// Toasts returns the stacked toasts, newest first.
func (m Model) Toasts() []notify.Toast {
	return append([]notify.Toast(nil), m.toasts...)
}

// Update handles show and expiry messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ShowMsg:
		cmd := m.Push(msg.Toast)
		return m, cmd
	case expireMsg:
		for i, t := range m.toasts {
			if t.ID == msg.id {
				m.toasts = append(m.toasts[:i:i], m.toasts[i+1:]...)
				break
			}
		}
	}
	return m, nil
}

// View renders the visible toasts right-aligned.
func (m Model) View() string {
	if len(m.toasts) == 0 {
		return ""
	}

	width := m.width / 3
	if width < 30 {
		width = 30
	}

	visible := m.toasts
	if len(visible) > maxVisible {
		visible = visible[:maxVisible]
	}

	cards := make([]string, 0, len(visible))
	for _, t := range visible {
		cards = append(cards, render(t, width))
	}

	stack := lipgloss.JoinVertical(lipgloss.Right, cards...)
	return lipgloss.PlaceHorizontal(m.width, lipgloss.Right, stack)
}

func render(t notify.Toast, width int) string {
	if t.Error {
		return theme.ErrorToastStyle.Width(width).Render(t.Message)
	}

	heading := theme.KindStyle(t.Kind).Render(t.Kind.Icon() + " " + t.Title)
	lines := []string{heading, theme.UnreadStyle.Render(t.Message)}
	if t.ShayariTitle != "" {
		lines = append(lines, theme.TimestampStyle.Render("\""+t.ShayariTitle+"\""))
	}
	return theme.ToastStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// SetWidth updates the available width.
func (m *Model) SetWidth(width int) {
	m.width = width
}
