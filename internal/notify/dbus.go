package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	dnotify "github.com/esiqveland/notify"
	"github.com/godbus/dbus/v5"
	"github.com/sirupsen/logrus"
)

// AppName identifies the client to the notification server.
const AppName = "रामा"

// notifier is the part of the freedesktop notification client a
// DBusDesktop uses.
type notifier interface {
	SendNotification(n dnotify.Notification) (uint32, error)
	CloseNotification(id uint32) (bool, error)
	Close() error
}

// DBusDesktop shows notifications through the freedesktop notification
// service on the session bus. Every notification carries a default action,
// so clicking it runs the OnClick callback, and it is closed after its
// Expire even when the server ignores the requested timeout.
type DBusDesktop struct {
	conn      *dbus.Conn
	notifier  notifier
	afterFunc func(time.Duration, func()) *time.Timer

	mu      sync.Mutex
	onClick func()
	shown   map[uint32]*time.Timer
}

// NewDBusDesktop connects to the session bus.
func NewDBusDesktop() (*DBusDesktop, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("connect session bus: %w", err)
	}
	d := newDBusDesktop(nil)
	n, err := dnotify.New(conn,
		dnotify.WithOnAction(d.actionInvoked),
		dnotify.WithOnClosed(d.closed),
		dnotify.WithLogger(logrus.StandardLogger()),
	)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("notification service: %w", err)
	}
	d.conn = conn
	d.notifier = n
	return d, nil
}

func newDBusDesktop(n notifier) *DBusDesktop {
	return &DBusDesktop{
		notifier:  n,
		afterFunc: time.AfterFunc,
		shown:     make(map[uint32]*time.Timer),
	}
}

// OnClick registers fn to run when the user clicks a notification.
func (d *DBusDesktop) OnClick(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onClick = fn
}

func (d *DBusDesktop) Show(ctx context.Context, a Alert) error {
	note := dnotify.Notification{
		AppName:       AppName,
		Summary:       a.Title,
		Body:          a.Body,
		Actions:       []dnotify.Action{dnotify.NewDefaultAction("Open")},
		ExpireTimeout: a.Expire,
	}

	type result struct {
		id  uint32
		err error
	}
	done := make(chan result, 1)
	go func() {
		id, err := d.notifier.SendNotification(note)
		done <- result{id, err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			return fmt.Errorf("desktop notification: %w", r.err)
		}
		d.track(r.id, a.Expire)
		return nil
	case <-ctx.Done():
		return fmt.Errorf("desktop notification: %w", ctx.Err())
	}
}

func (d *DBusDesktop) track(id uint32, expire time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if expire <= 0 {
		d.shown[id] = nil
		return
	}
	d.shown[id] = d.afterFunc(expire, func() {
		d.forget(id)
		if _, err := d.notifier.CloseNotification(id); err != nil {
			logrus.WithError(err).WithField("id", id).Warn("notify: closing desktop notification failed")
		}
	})
}

func (d *DBusDesktop) forget(id uint32) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	t, ok := d.shown[id]
	if !ok {
		return false
	}
	if t != nil {
		t.Stop()
	}
	delete(d.shown, id)
	return true
}

func (d *DBusDesktop) actionInvoked(s *dnotify.ActionInvokedSignal) {
	if s.ActionKey != "default" || !d.forget(s.ID) {
		return
	}
	d.mu.Lock()
	fn := d.onClick
	d.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func (d *DBusDesktop) closed(s *dnotify.NotificationClosedSignal) {
	// Some servers emit Closed before ActionInvoked for a click.
	if s.Reason == dnotify.ReasonDismissedByUser {
		return
	}
	d.forget(s.ID)
}

// Close stops pending expiry timers and releases the bus connection.
func (d *DBusDesktop) Close() error {
	d.mu.Lock()
	for id, t := range d.shown {
		if t != nil {
			t.Stop()
		}
		delete(d.shown, id)
	}
	d.mu.Unlock()

	err := d.notifier.Close()
	if d.conn != nil {
		if cerr := d.conn.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
