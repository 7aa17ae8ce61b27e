package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Hritik-Goblyte/raama-poetic-erp-sub000/internal/theme"
)

// Layout manages the multi-panel terminal layout dimensions.
type Layout struct {
	Width           int
	Height          int
	HeaderHeight    int
	StatusBarHeight int
}

// NewLayout creates a Layout with the given terminal dimensions.
// HeaderHeight and StatusBarHeight default to 1.
func NewLayout(width, height int) Layout {
	return Layout{
		Width:           width,
		Height:          height,
		HeaderHeight:    1,
		StatusBarHeight: 1,
	}
}

// ContentWidth returns the full available width.
func (l Layout) ContentWidth() int {
	return l.Width
}

// ContentHeight returns the height available for the main content area,
// accounting for the header and status bar.
func (l Layout) ContentHeight() int {
	return l.Height - l.HeaderHeight - l.StatusBarHeight
}

// RenderHeader renders the top header bar with a title, the unread badge
// and the connection status. An empty badge is omitted.
func (l Layout) RenderHeader(title, badge, connStatus string) string {
	titleRendered := theme.HeaderStyle.Render(title)
	if badge != "" {
		titleRendered = lipgloss.JoinHorizontal(
			lipgloss.Top,
			titleRendered,
			theme.BadgeStyle.Render(badge),
		)
	}

	statusRendered := theme.HeaderStyle.
		Align(lipgloss.Right).
		Render(connStatus)

	gap := l.Width -
		lipgloss.Width(titleRendered) -
		lipgloss.Width(statusRendered)
	if gap < 0 {
		gap = 0
	}

	filler := theme.HeaderStyle.Render(
		lipgloss.NewStyle().
			Width(gap).
			Background(theme.HeaderStyle.GetBackground()).
			Render(""),
	)

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		titleRendered,
		filler,
		statusRendered,
	)
}

// RenderStatusBar renders the bottom status bar with keyboard hints.
func (l Layout) RenderStatusBar(hints string) string {
	rendered := theme.StatusBarStyle.Render(hints)

	gap := l.Width - lipgloss.Width(rendered)
	if gap < 0 {
		gap = 0
	}

	filler := theme.StatusBarStyle.Render(
		lipgloss.NewStyle().
			Width(gap).
			Background(theme.StatusBarStyle.GetBackground()).
			Render(""),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, rendered, filler)
}

// RenderWithFrame composes the full view: header, the toast stack above
// the content, and the status bar. The body is padded to ContentHeight so
// the status bar stays on the last line.
func (l Layout) RenderWithFrame(header, toasts, content, statusBar string) string {
	body := content
	if toasts != "" {
		body = lipgloss.JoinVertical(lipgloss.Left, toasts, content)
	}
	if h := l.ContentHeight(); h > 0 {
		body = lipgloss.PlaceVertical(h, lipgloss.Top, body)
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, body, statusBar)
}
