package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Hritik-Goblyte/raama-poetic-erp-sub000/internal/api"
	"github.com/Hritik-Goblyte/raama-poetic-erp-sub000/internal/inbox"
	"github.com/Hritik-Goblyte/raama-poetic-erp-sub000/internal/keys"
	"github.com/Hritik-Goblyte/raama-poetic-erp-sub000/internal/model"
	"github.com/Hritik-Goblyte/raama-poetic-erp-sub000/internal/notify"
	appsync "github.com/Hritik-Goblyte/raama-poetic-erp-sub000/internal/sync"
	"github.com/Hritik-Goblyte/raama-poetic-erp-sub000/internal/theme"
	"github.com/Hritik-Goblyte/raama-poetic-erp-sub000/internal/ui"
	"github.com/Hritik-Goblyte/raama-poetic-erp-sub000/internal/ui/center"
	"github.com/Hritik-Goblyte/raama-poetic-erp-sub000/internal/ui/command"
	helpview "github.com/Hritik-Goblyte/raama-poetic-erp-sub000/internal/ui/help"
	"github.com/Hritik-Goblyte/raama-poetic-erp-sub000/internal/ui/settings"
	"github.com/Hritik-Goblyte/raama-poetic-erp-sub000/internal/ui/toast"
)

// AppTitle heads the header bar.
const AppTitle = "रामा"

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewHome ViewState = iota
	ViewCenter
	ViewHelp
	ViewCommand
	ViewSettings
)

// ExitReason tells the caller why the program ended.
type ExitReason int

const (
	ExitQuit ExitReason = iota
	ExitLogout
	// ExitSessionExpired means the backend rejected the token; the caller
	// should ask for a new one.
	ExitSessionExpired
)

// Model is the root Bubble Tea model that manages view routing, layout
// and the services of the logged-in user.
type Model struct {
	svc  *Services
	user model.User

	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	keys         *keys.KeyMap

	center       center.Model
	toasts       toast.Model
	helpView     helpview.Model
	commandView  command.Model
	settingsView settings.Model

	ready        bool
	lastFetch    time.Time
	lastReceived time.Time
	syncError    string

	exit        ExitReason
	exitMessage string
}

// New creates the root model for user.
func New(svc *Services, user model.User) Model {
	k := keys.DefaultKeyMap()
	return Model{
		svc:          svc,
		user:         user,
		currentView:  ViewHome,
		keys:         k,
		layout:       ui.NewLayout(80, 24),
		center:       center.New(k, 80, 22),
		toasts:       toast.New(80),
		helpView:     helpview.New(k, 80, 22),
		commandView:  command.New(80, 22),
		settingsView: settings.New(80, 22),
	}
}

// Exit reports why the program ended and the message to show the user.
func (m Model) Exit() (ExitReason, string) {
	return m.exit, m.exitMessage
}

// Init connects the realtime transport and starts the center poller.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.startTransport(),
		m.svc.Poller.Start(),
	)
}

func (m Model) startTransport() tea.Cmd {
	t := m.svc.Transport
	userID := m.user.ID
	return func() tea.Msg {
		t.Start(context.Background(), userID)
		return transportChangedMsg{}
	}
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		w, h := m.layout.ContentWidth(), m.layout.ContentHeight()
		m.center.SetSize(w, h)
		m.helpView.SetSize(w, h)
		m.commandView.SetSize(w, h)
		m.settingsView.SetSize(w, h)
		m.toasts.SetWidth(w)
		return m.updateActiveView(msg)

	case appsync.ResultMsg:
		if msg.AuthError != nil {
			cmd := m.expire(msg.AuthError)
			return m, cmd
		}
		if msg.Error != nil {
			m.syncError = msg.Error.Error()
		} else {
			m.syncError = ""
			m.lastFetch = msg.FetchedAt
		}
		m.svc.Inbox.Replace(msg.List)
		cmd := m.center.SetNotifications(m.svc.Inbox.Snapshot())
		return m, tea.Batch(cmd, m.svc.Poller.WaitForNextResult())

	case inboxChangedMsg:
		cmd := m.center.SetNotifications(m.svc.Inbox.Snapshot())
		return m, cmd

	case mutationResultMsg:
		if msg.err == nil || api.IsAuthError(msg.err) || errors.Is(msg.err, inbox.ErrNotFound) {
			return m, nil
		}
		listCmd := m.center.SetNotifications(m.svc.Inbox.Snapshot())
		toastCmd := m.toasts.Push(m.errorToast("Failed to %s", msg.action))
		return m, tea.Batch(listCmd, toastCmd)

	case testSentMsg:
		if msg.err != nil {
			if api.IsAuthError(msg.err) {
				return m, nil
			}
			return m.push(m.errorToast("Test notification failed: %v", msg.err))
		}
		m.svc.Poller.Refresh()
		message := msg.result.Message
		if message == "" {
			message = "Test notification sent"
		}
		return m.push(m.infoToast("Test", message))

	case healthMsg:
		if !msg.health.Healthy() {
			reason := msg.health.Error
			if reason == "" {
				reason = msg.health.Status
			}
			return m.push(m.errorToast("Notification service unhealthy: %s", reason))
		}
		message := "Notification service is healthy"
		if msg.health.Database != "" {
			message += " (database " + msg.health.Database + ")"
		}
		return m.push(m.infoToast("Health", message))

	case sentMsg:
		if msg.err != nil {
			if api.IsAuthError(msg.err) {
				return m, nil
			}
			return m.push(m.errorToast("Sending to %s failed: %v", msg.recipient, msg.err))
		}
		return m.push(m.infoToast("Sent", "Notification sent to "+msg.recipient))

	case permissionResetMsg:
		if msg.err != nil {
			return m.push(m.errorToast("Resetting permission failed: %v", msg.err))
		}
		return m.push(m.infoToast("Desktop notifications", "Permission reset. You will be asked on next start."))

	case authExpiredMsg:
		cmd := m.expire(msg.err)
		return m, cmd

	case transportChangedMsg:
		return m, nil

	case receivedMsg:
		m.lastReceived = msg.at
		return m, nil

	case desktopClickedMsg:
		if m.currentView == ViewCommand || m.currentView == ViewSettings {
			return m, nil
		}
		m.currentView = ViewCenter
		cmd := m.center.SetNotifications(m.svc.Inbox.Snapshot())
		return m, tea.Batch(cmd, m.svc.Poller.Refresh())

	case center.CloseMsg:
		m.currentView = ViewHome
		return m, nil

	case center.MarkReadMsg:
		return m, m.markRead(msg.ID)

	case center.MarkAllReadMsg:
		return m, m.markAllRead()

	case center.DeleteMsg:
		return m, m.deleteNotification(msg.ID)

	case command.CommandMsg:
		m.currentView = m.previousView
		cmd := m.executeCommand(msg)
		return m, cmd

	case settings.SavedMsg:
		m.currentView = m.previousView
		m.applyTheme(msg.Values.Theme)
		cmd := m.saveSettings(msg.Values)
		return m, cmd

	case settings.CancelMsg:
		m.currentView = m.previousView
		return m, nil

	case settingsSavedMsg:
		if msg.err != nil {
			return m.push(m.errorToast("Saving settings failed: %v", msg.err))
		}
		return m.push(m.infoToast("Settings", "Settings saved"))

	case toast.ShowMsg:
		return m.push(msg.Toast)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m.quit(ExitQuit)
		}
		if next, cmd, handled := m.handleKey(msg); handled {
			return next, cmd
		}
	}

	return m.updateActiveView(msg)
}

// handleKey processes global keys. Keys are left to the active view when
// it has text or form focus.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	switch m.currentView {
	case ViewCommand, ViewSettings:
		if key.Matches(msg, m.keys.Back) {
			m.currentView = m.previousView
			return m, nil, true
		}
		return m, nil, false

	case ViewHelp:
		if key.Matches(msg, m.keys.Back, m.keys.Help, m.keys.Quit) {
			m.currentView = m.previousView
			return m, nil, true
		}
		return m, nil, false
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		next, cmd := m.quit(ExitQuit)
		return next, cmd, true

	case key.Matches(msg, m.keys.Help):
		m.previousView = m.currentView
		m.currentView = ViewHelp
		return m, nil, true

	case key.Matches(msg, m.keys.Command):
		m.previousView = m.currentView
		m.currentView = ViewCommand
		cmd := m.commandView.Focus()
		return m, cmd, true

	case key.Matches(msg, m.keys.Refresh):
		return m, m.svc.Poller.Refresh(), true
	}

	if m.currentView != ViewHome {
		return m, nil, false
	}

	switch {
	case key.Matches(msg, m.keys.Center):
		m.currentView = ViewCenter
		cmd := m.center.SetNotifications(m.svc.Inbox.Snapshot())
		return m, cmd, true

	case key.Matches(msg, m.keys.Settings):
		cmd := m.openSettings()
		return m, cmd, true

	case key.Matches(msg, m.keys.Test):
		return m, m.sendTest(), true
	}

	return m, nil, false
}

// updateActiveView dispatches the message to the currently active view
// and to the toast stack.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewCenter:
		m.center, cmd = m.center.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	case ViewCommand:
		m.commandView, cmd = m.commandView.Update(msg)
	case ViewSettings:
		m.settingsView, cmd = m.settingsView.Update(msg)
	}

	var toastCmd tea.Cmd
	m.toasts, toastCmd = m.toasts.Update(msg)

	return m, tea.Batch(cmd, toastCmd)
}

// executeCommand handles a command from the command palette.
func (m *Model) executeCommand(c command.CommandMsg) tea.Cmd {
	switch c.Name {
	case command.Refresh:
		return m.svc.Poller.Refresh()
	case command.ReadAll:
		if m.svc.Inbox.Unread() == 0 {
			return nil
		}
		return m.markAllRead()
	case command.Test:
		return m.sendTest()
	case command.Health:
		return m.checkHealth()
	case command.Theme:
		name := c.Arg
		if name == "" {
			name = "light"
			if theme.Current() == "light" {
				name = "dark"
			}
		}
		return m.saveTheme(m.applyTheme(name))
	case command.Settings:
		return m.openSettings()
	case command.Send:
		return m.sendNotification(c.Arg, c.Text)
	case command.PermissionReset:
		return m.resetPermission()
	case command.Logout:
		m.svc.Shutdown()
		m.exit = ExitLogout
		m.exitMessage = "Logged out."
		return m.logout()
	case command.Quit:
		m.svc.Shutdown()
		m.exit = ExitQuit
		return tea.Quit
	default:
		return nil
	}
}

func (m *Model) openSettings() tea.Cmd {
	if m.currentView != ViewSettings {
		m.previousView = m.currentView
	}
	m.currentView = ViewSettings
	cfg := m.svc.Config
	return m.settingsView.Start(settings.Values{
		Sound:   cfg.Alerts.Sound,
		Desktop: cfg.Alerts.Desktop && m.svc.Permissions.Granted(context.Background()),
		Theme:   theme.Current(),
	}, m.svc.Permissions.State(context.Background()))
}

// applyTheme switches the palette and restyles views that cache styles.
func (m *Model) applyTheme(name string) string {
	applied := theme.Use(name)
	m.center.Restyle()
	return applied
}

// expire ends the session after the backend rejected the token.
func (m *Model) expire(err *api.AuthError) tea.Cmd {
	if m.exit == ExitSessionExpired {
		return nil
	}
	m.svc.Shutdown()
	m.exit = ExitSessionExpired
	m.exitMessage = "Session expired. Please log in again."
	if err != nil {
		m.exitMessage = err.Message()
	}
	return m.logout()
}

func (m Model) push(t notify.Toast) (tea.Model, tea.Cmd) {
	cmd := m.toasts.Push(t)
	return m, cmd
}

func (m Model) quit(reason ExitReason) (tea.Model, tea.Cmd) {
	m.svc.Shutdown()
	m.exit = reason
	return m, tea.Quit
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := m.layout.RenderHeader(m.title(), m.svc.Inbox.Badge(), m.svc.Transport.Status())
	statusBar := m.layout.RenderStatusBar(m.keyHints())

	return m.layout.RenderWithFrame(header, m.toasts.View(), m.renderContent(), statusBar)
}

func (m Model) title() string {
	if name := m.user.DisplayName(); name != "" {
		return AppTitle + " · " + name
	}
	return AppTitle
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewCenter:
		return m.center.View()
	case ViewHelp:
		return m.helpView.View()
	case ViewCommand:
		return m.commandView.View()
	case ViewSettings:
		return m.settingsView.View()
	default:
		return m.homeView()
	}
}

func (m Model) homeView() string {
	lines := []string{theme.TitleStyle.Render("Namaste, " + m.greetingName())}

	switch unread := m.svc.Inbox.Unread(); unread {
	case 0:
		lines = append(lines, theme.ReadStyle.Render("You're all caught up."))
	case 1:
		lines = append(lines, theme.UnreadStyle.Render("1 unread notification"))
	default:
		lines = append(lines, theme.UnreadStyle.Render(fmt.Sprintf("%d unread notifications", unread)))
	}

	if !m.lastReceived.IsZero() {
		lines = append(lines, theme.TimestampStyle.Render("Last notification at "+m.lastReceived.Format("15:04")))
	}
	if m.syncError != "" {
		lines = append(lines, lipgloss.NewStyle().Foreground(theme.Colors().Error).Render("Sync failed: "+m.syncError))
	} else if !m.lastFetch.IsZero() {
		lines = append(lines, theme.TimestampStyle.Render("Synced at "+m.lastFetch.Format("15:04:05")))
	}

	lines = append(lines, "", theme.HelpStyle.Render("Press n to open notifications"))

	return theme.PanelStyle.
		Width(m.layout.ContentWidth() - 4).
		Render(strings.Join(lines, "\n"))
}

func (m Model) greetingName() string {
	if name := m.user.DisplayName(); name != "" {
		return name
	}
	return "writer"
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	switch m.currentView {
	case ViewHelp:
		return "? close help | esc back"
	case ViewCommand:
		return "enter execute | tab complete | esc back"
	case ViewSettings:
		return "enter next | esc cancel"
	case ViewCenter:
		return "enter read | A read all | d delete | esc close | ? help"
	default:
		return "n notifications | s settings | t test | r refresh | : command | ? help | q quit"
	}
}
