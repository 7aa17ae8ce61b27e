// Package notify fans a single incoming notification out to every alert
// surface of the client: the in-app toast, the audible cue, the desktop
// notification and the in-process event bus.
package notify

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Hritik-Goblyte/raama-poetic-erp-sub000/internal/events"
	"github.com/Hritik-Goblyte/raama-poetic-erp-sub000/internal/model"
)

// TopicNewNotification is the bus topic every delivered notification is
// published on.
const TopicNewNotification = "new-notification"

// DesktopTitle heads every desktop notification.
const DesktopTitle = "रामा - New Notification"

const (
	defaultToastDuration  = 6 * time.Second
	defaultDesktopTimeout = 5 * time.Second
	// desktopCallTimeout bounds the platform call, not the on-screen time.
	desktopCallTimeout = 3 * time.Second
)

// Toast is an in-app, auto-dismissing notification card.
type Toast struct {
	ID           string
	Kind         model.Kind
	Title        string
	Message      string
	ShayariTitle string
	Duration     time.Duration
	// Error marks toasts reporting a failed action rather than a
	// notification.
	Error bool
}

// NewErrorToast builds a toast reporting a failed action.
func NewErrorToast(message string, d time.Duration) Toast {
	if d <= 0 {
		d = defaultToastDuration
	}
	return Toast{ID: uuid.NewString(), Title: "Error", Message: message, Duration: d, Error: true}
}

// Toaster shows toasts in the UI.
type Toaster interface {
	Toast(t Toast)
}

// ToasterFunc adapts a function to Toaster.
type ToasterFunc func(Toast)

func (f ToasterFunc) Toast(t Toast) { f(t) }

// Sound plays the notification cue.
type Sound interface {
	Play() error
}

// Alert is one operating-system notification.
type Alert struct {
	Title string
	Body  string
	// Expire is how long the notification stays on screen.
	Expire time.Duration
}

// Desktop shows operating-system notifications.
type Desktop interface {
	Show(ctx context.Context, a Alert) error
}

// PermissionChecker reports whether desktop notifications are allowed.
type PermissionChecker interface {
	Granted(ctx context.Context) bool
}

// Fanout delivers a notification to every configured sink. Nil sinks are
// skipped.
type Fanout struct {
	Toaster    Toaster
	Sound      Sound
	Desktop    Desktop
	Bus        *events.Bus[model.Notification]
	Permission PermissionChecker

	ToastDuration time.Duration
	// DesktopTimeout is how long a desktop notification stays on screen.
	DesktopTimeout time.Duration

	soundOff   atomic.Bool
	desktopOff atomic.Bool
}

// SetAlerts enables or disables the sound and desktop sinks.
func (f *Fanout) SetAlerts(sound, desktop bool) {
	f.soundOff.Store(!sound)
	f.desktopOff.Store(!desktop)
}

// Deliver runs the fan-out for n. Heartbeat frames are ignored. Each sink
// runs independently: an error or panic in one is logged and the rest
// still run, and the toast is always shown first.
func (f *Fanout) Deliver(ctx context.Context, n model.Notification) {
	if n.Type == model.HeartbeatType {
		return
	}

	message := n.Compose()

	if f.Toaster != nil {
		d := f.ToastDuration
		if d <= 0 {
			d = defaultToastDuration
		}
		toast := Toast{
			ID:           uuid.NewString(),
			Kind:         n.Kind(),
			Title:        n.Kind().Title(),
			Message:      message,
			ShayariTitle: n.ShayariTitle,
			Duration:     d,
		}
		guard("toast", func() error {
			f.Toaster.Toast(toast)
			return nil
		})
	}

	if f.Sound != nil && !f.soundOff.Load() {
		guard("sound", f.Sound.Play)
	}

	if f.Desktop != nil && !f.desktopOff.Load() && f.permitted(ctx) {
		expire := f.DesktopTimeout
		if expire <= 0 {
			expire = defaultDesktopTimeout
		}
		guard("desktop", func() error {
			dctx, cancel := context.WithTimeout(ctx, desktopCallTimeout)
			defer cancel()
			return f.Desktop.Show(dctx, Alert{Title: DesktopTitle, Body: message, Expire: expire})
		})
	}

	if f.Bus != nil {
		guard("bus", func() error {
			f.Bus.Publish(TopicNewNotification, n)
			return nil
		})
	}
}

func (f *Fanout) permitted(ctx context.Context) bool {
	if f.Permission == nil {
		return false
	}
	granted := false
	guard("permission", func() error {
		granted = f.Permission.Granted(ctx)
		return nil
	})
	return granted
}

// guard runs fn, logging a returned error or a recovered panic.
func guard(sink string, fn func() error) {
	defer func() {
		if r := recover(); r != nil {
			logrus.WithField("sink", sink).Errorf("notify: sink panicked: %v", r)
		}
	}()
	if err := fn(); err != nil {
		logrus.WithError(err).WithField("sink", sink).Warn("notify: sink failed")
	}
}
