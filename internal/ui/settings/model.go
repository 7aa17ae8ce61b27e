// Package settings is the alert settings form: sound, desktop
// notifications and theme.
package settings

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/Hritik-Goblyte/raama-poetic-erp-sub000/internal/model"
	"github.com/Hritik-Goblyte/raama-poetic-erp-sub000/internal/theme"
)

// Values are the settings edited by the form.
type Values struct {
	Sound   bool
	Desktop bool
	Theme   string
}

// SavedMsg is sent when the form is submitted.
type SavedMsg struct {
	Values Values
}

// CancelMsg is sent when the form is aborted.
type CancelMsg struct{}

// Model is the settings view.
type Model struct {
	form *huh.Form
	// values is shared by every copy of the model so the form's bound
	// pointers stay valid.
	values     *Values
	permission model.Permission
	width      int
	height     int
}

// New creates a settings view.
func New(width, height int) Model {
	return Model{width: width, height: height}
}

// Start resets the form to the given values and returns its init command.
func (m *Model) Start(v Values, p model.Permission) tea.Cmd {
	m.values = &v
	m.permission = p
	m.form = m.buildForm()
	return m.form.Init()
}

func (m *Model) buildForm() *huh.Form {
	themes := make([]huh.Option[string], 0, len(theme.Names()))
	for _, name := range theme.Names() {
		themes = append(themes, huh.NewOption(name, name))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Notification sound").
				Description("Play a short chime when a notification arrives").
				Affirmative("On").
				Negative("Off").
				Value(&m.values.Sound),
			huh.NewConfirm().
				Title("Desktop notifications").
				Description("Also show notifications through the operating system").
				Affirmative("Allow").
				Negative("Block").
				Value(&m.values.Desktop),
			huh.NewSelect[string]().
				Title("Theme").
				Options(themes...).
				Value(&m.values.Theme),
		),
	).WithWidth(m.formWidth()).WithShowHelp(true)
}

func (m Model) formWidth() int {
	w := m.width - 8
	if w > 60 {
		w = 60
	}
	if w < 20 {
		w = 20
	}
	return w
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	if m.form == nil {
		return nil
	}
	return m.form.Init()
}

// Update forwards messages to the form and reports completion.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		v := *m.values
		m.form = nil
		return m, func() tea.Msg { return SavedMsg{Values: v} }
	case huh.StateAborted:
		m.form = nil
		return m, func() tea.Msg { return CancelMsg{} }
	}

	return m, cmd
}

// View renders the form with the current permission status.
func (m Model) View() string {
	title := theme.TitleStyle.Render("Notification Settings")
	status := "Status: " + lipgloss.NewStyle().Bold(true).Foreground(permissionColor(m.permission)).Render(PermissionLabel(m.permission))

	body := ""
	if m.form != nil {
		body = m.form.View()
	}

	return theme.PanelStyle.
		Width(m.width - 4).
		Render(lipgloss.JoinVertical(lipgloss.Left, title, status, "", body))
}

// PermissionLabel describes a permission state.
func PermissionLabel(p model.Permission) string {
	switch p {
	case model.PermissionGranted:
		return "Enabled"
	case model.PermissionDenied:
		return "Blocked"
	default:
		return "Not Set"
	}
}

func permissionColor(p model.Permission) lipgloss.Color {
	switch p {
	case model.PermissionGranted:
		return theme.Colors().Follow
	case model.PermissionDenied:
		return theme.Colors().Error
	default:
		return theme.Colors().Feature
	}
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	if m.form != nil {
		m.form = m.form.WithWidth(m.formWidth())
	}
}
