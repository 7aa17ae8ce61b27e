package command

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Hritik-Goblyte/raama-poetic-erp-sub000/internal/theme"
)

// Command names understood by the palette.
const (
	Refresh  = "refresh"
	ReadAll  = "read all"
	Test     = "test"
	Health   = "health"
	Theme    = "theme"
	Settings = "settings"
	Logout   = "logout"
	Quit     = "quit"
	// Send takes a recipient id and a message: send <id> <message>.
	Send = "send"
	// PermissionReset forgets the desktop permission decision.
	PermissionReset = "permission reset"
)

// SendUsage is shown when send is missing its arguments.
const SendUsage = "usage: send <recipient-id> <message>"

// aliases maps shorthand input to a command name.
var aliases = map[string]string{
	"sync":             Refresh,
	"r":                Refresh,
	"mark all read":    ReadAll,
	"readall":          ReadAll,
	"status":           Health,
	"config":           Settings,
	"q":                Quit,
	"exit":             Quit,
	"reset permission": PermissionReset,
}

// CommandMsg is emitted when the user executes a command.
type CommandMsg struct {
	Name string
	Arg  string
	// Text is the free-form tail of send, kept as typed.
	Text string
}

// Parse maps raw palette input to a command. Unknown names are returned
// unchanged with ok false.
func Parse(input string) (CommandMsg, bool) {
	if c, ok, matched := parseSend(input); matched {
		return c, ok
	}
	input = strings.Join(strings.Fields(strings.ToLower(input)), " ")
	if alias, ok := aliases[input]; ok {
		input = alias
	}

	switch input {
	case Refresh, ReadAll, Test, Health, Settings, Logout, Quit, PermissionReset:
		return CommandMsg{Name: input}, true
	}
	if rest, ok := strings.CutPrefix(input, Theme); ok && (rest == "" || rest[0] == ' ') {
		return CommandMsg{Name: Theme, Arg: strings.TrimSpace(rest)}, true
	}
	return CommandMsg{Name: input}, false
}

// parseSend handles send, whose recipient id and message keep their case.
// matched reports whether input names the send command at all.
func parseSend(input string) (c CommandMsg, ok, matched bool) {
	input = strings.TrimSpace(input)
	head, rest, _ := strings.Cut(input, " ")
	if !strings.EqualFold(head, Send) {
		return CommandMsg{}, false, false
	}
	id, text, _ := strings.Cut(strings.TrimSpace(rest), " ")
	text = strings.TrimSpace(text)
	if id == "" || text == "" {
		return CommandMsg{Name: Send}, false, true
	}
	return CommandMsg{Name: Send, Arg: id, Text: text}, true, true
}

// Suggestions are offered while typing.
func Suggestions() []string {
	return []string{
		Refresh, ReadAll, Test, Health, "theme dark", "theme light",
		Settings, PermissionReset, Send + " ", Logout, Quit,
	}
}

// Model is the command palette view.
type Model struct {
	input  textinput.Model
	width  int
	height int
	err    string
}

// New creates a new command palette model.
func New(width, height int) Model {
	ti := textinput.New()
	ti.Placeholder = "type a command..."
	ti.Prompt = ": "
	ti.ShowSuggestions = true
	ti.SetSuggestions(Suggestions())
	ti.Focus()
	ti.Width = width - 6

	return Model{
		input:  ti,
		width:  width,
		height: height,
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages for the command palette.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			raw := strings.TrimSpace(m.input.Value())
			m.input.Reset()
			if raw == "" {
				return m, nil
			}
			parsed, ok := Parse(raw)
			if !ok {
				m.err = "unknown command: " + raw
				if parsed.Name == Send {
					m.err = SendUsage
				}
				return m, nil
			}
			m.err = ""
			return m, func() tea.Msg {
				return parsed
			}
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the command palette.
func (m Model) View() string {
	title := theme.TitleStyle.Render("Command Palette")
	parts := []string{title, m.input.View()}
	if m.err != "" {
		parts = append(parts, "", lipgloss.NewStyle().Foreground(theme.Colors().Error).Render(m.err))
	}
	parts = append(parts, "", theme.HelpStyle.Render(strings.Join(Suggestions(), " · ")))

	return theme.PanelStyle.
		Width(m.width - 4).
		Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

// SetSize updates the command palette dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = width - 6
}

// Focus gives keyboard focus to the text input.
func (m *Model) Focus() tea.Cmd {
	m.err = ""
	return m.input.Focus()
}
