package app

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Hritik-Goblyte/raama-poetic-erp-sub000/internal/api"
	"github.com/Hritik-Goblyte/raama-poetic-erp-sub000/internal/model"
	"github.com/Hritik-Goblyte/raama-poetic-erp-sub000/internal/notify"
	"github.com/Hritik-Goblyte/raama-poetic-erp-sub000/internal/ui/settings"
)

// actionTimeout bounds a single user-initiated request.
const actionTimeout = 30 * time.Second

// mutationResultMsg is sent after an inbox mutation settles. On error the
// inbox has already rolled back.
type mutationResultMsg struct {
	action string
	err    error
}

// testSentMsg carries the result of a test notification request.
type testSentMsg struct {
	result api.TestResult
	err    error
}

// healthMsg carries the result of a backend health check.
type healthMsg struct {
	health api.Health
}

// sentMsg carries the result of sending a notification to another user.
type sentMsg struct {
	recipient string
	id        string
	err       error
}

// permissionResetMsg is sent after the desktop permission was forgotten.
type permissionResetMsg struct {
	err error
}

// settingsSavedMsg is sent after settings are persisted.
type settingsSavedMsg struct {
	err error
}

// markRead marks a notification read through the inbox.
func (m *Model) markRead(id string) tea.Cmd {
	b := m.svc.Inbox
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		return mutationResultMsg{action: "mark notification as read", err: b.MarkRead(ctx, id)}
	}
}

// markAllRead marks every notification read through the inbox.
func (m *Model) markAllRead() tea.Cmd {
	b := m.svc.Inbox
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		return mutationResultMsg{action: "mark all notifications as read", err: b.MarkAllRead(ctx)}
	}
}

// deleteNotification removes a notification through the inbox.
func (m *Model) deleteNotification(id string) tea.Cmd {
	b := m.svc.Inbox
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		return mutationResultMsg{action: "delete notification", err: b.Delete(ctx, id)}
	}
}

// sendTest asks the backend to send the user a test notification.
func (m *Model) sendTest() tea.Cmd {
	c := m.svc.Client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		res, err := c.SendTestNotification(ctx)
		return testSentMsg{result: res, err: err}
	}
}

// sendNotification sends a free-form message to recipient as the
// logged-in user.
func (m *Model) sendNotification(recipient, message string) tea.Cmd {
	c := m.svc.Client
	out := api.Outgoing{
		RecipientID: recipient,
		Type:        "message",
		Message:     message,
		SenderName:  m.user.DisplayName(),
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		id, err := c.SendNotification(ctx, out)
		return sentMsg{recipient: recipient, id: id, err: err}
	}
}

// resetPermission forgets the desktop permission so the next start asks
// again.
func (m *Model) resetPermission() tea.Cmd {
	perms := m.svc.Permissions
	return func() tea.Msg {
		return permissionResetMsg{err: perms.Reset(context.Background())}
	}
}

// checkHealth asks the notification service whether it is up.
func (m *Model) checkHealth() tea.Cmd {
	c := m.svc.Client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		return healthMsg{health: c.Health(ctx)}
	}
}

// saveSettings applies v to the running services and persists it to the
// config file and the session.
func (m *Model) saveSettings(v settings.Values) tea.Cmd {
	svc := m.svc
	svc.Config.Alerts.Sound = v.Sound
	svc.Config.Alerts.Desktop = v.Desktop
	svc.Config.Display.Theme = v.Theme
	svc.Fanout.SetAlerts(v.Sound, v.Desktop)
	cfg := *svc.Config

	return func() tea.Msg {
		ctx := context.Background()
		perm := model.PermissionDenied
		if v.Desktop {
			perm = model.PermissionGranted
		}
		if err := svc.Session.SetPermission(ctx, perm); err != nil {
			return settingsSavedMsg{err: err}
		}
		if err := svc.Session.SetTheme(ctx, v.Theme); err != nil {
			return settingsSavedMsg{err: err}
		}
		if svc.ConfigPath == "" {
			return settingsSavedMsg{}
		}
		if err := model.SaveConfig(svc.ConfigPath, &cfg); err != nil {
			return settingsSavedMsg{err: err}
		}
		return settingsSavedMsg{}
	}
}

// saveTheme persists the theme preference.
func (m *Model) saveTheme(name string) tea.Cmd {
	sess := m.svc.Session
	return func() tea.Msg {
		if err := sess.SetTheme(context.Background(), name); err != nil {
			logrus.WithError(err).Error("saving theme failed")
		}
		return nil
	}
}

// logout clears the stored session.
func (m *Model) logout() tea.Cmd {
	sess := m.svc.Session
	return func() tea.Msg {
		if err := sess.Clear(context.Background()); err != nil {
			logrus.WithError(err).Error("clearing session failed")
		}
		return tea.Quit()
	}
}

// infoToast builds a toast for command feedback.
func (m *Model) infoToast(title, message string) notify.Toast {
	return notify.Toast{
		ID:       uuid.NewString(),
		Kind:     model.KindUnknown,
		Title:    title,
		Message:  message,
		Duration: m.toastDuration(),
	}
}

func (m *Model) errorToast(format string, args ...any) notify.Toast {
	return notify.NewErrorToast(fmt.Sprintf(format, args...), m.toastDuration())
}

func (m *Model) toastDuration() time.Duration {
	return time.Duration(m.svc.Config.Toast.DurationMs) * time.Millisecond
}
