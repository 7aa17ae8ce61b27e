// Package inbox holds the notification center's view of the user's
// notifications. Mutations are applied locally first and rolled back when
// the server rejects them. A rejected mutation reverts only its own effect:
// the visible list is always the last server snapshot with every
// outstanding or accepted mutation replayed on top.
package inbox

import (
	"context"
	"errors"
	"strconv"
	"sync"

	"github.com/Hritik-Goblyte/raama-poetic-erp-sub000/internal/model"
)

// ErrNotFound is returned for ids missing from the current snapshot.
var ErrNotFound = errors.New("inbox: notification not found")

// Remote persists inbox mutations on the server.
type Remote interface {
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context) error
	DeleteNotification(ctx context.Context, id string) error
}

// Inbox is safe for concurrent use.
type Inbox struct {
	remote Remote

	mu sync.Mutex
	// base is the last server snapshot plus every accepted mutation.
	base    model.NotificationList
	pending []pendingOp
	nextID  uint64
	// list is base with pending replayed, in order.
	list model.NotificationList

	onChange func()
}

// New creates an empty inbox.
func New(remote Remote) *Inbox {
	empty := model.NotificationList{Notifications: []model.Notification{}}
	return &Inbox{
		remote: remote,
		base:   empty,
		list:   empty.Clone(),
	}
}

type pendingOp struct {
	id    uint64
	apply func(*model.NotificationList) error
}

// OnChange registers fn to run after every state change, including
// optimistic updates and rollbacks. fn runs without the inbox lock held.
func (b *Inbox) OnChange(fn func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onChange = fn
}

func (b *Inbox) changed() {
	b.mu.Lock()
	fn := b.onChange
	b.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Replace installs an authoritative snapshot from the server.
func (b *Inbox) Replace(list model.NotificationList) {
	defer b.changed()
	b.mu.Lock()
	defer b.mu.Unlock()

	b.base = list.Clone()
	if b.base.Notifications == nil {
		b.base.Notifications = []model.Notification{}
	}
	if b.base.UnreadCount < 0 {
		b.base.UnreadCount = 0
	}
	b.rebuild()
}

// rebuild recomputes list from base and the outstanding mutations. An op
// that no longer applies, such as marking an id the server already
// dropped, is skipped. Callers hold mu.
func (b *Inbox) rebuild() {
	next := b.base.Clone()
	for _, op := range b.pending {
		_ = op.apply(&next)
	}
	b.list = next
}

// Snapshot returns a copy of the current state.
func (b *Inbox) Snapshot() model.NotificationList {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.list.Clone()
}

// Unread returns the unread count.
func (b *Inbox) Unread() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.list.UnreadCount
}

// Badge returns the badge text for the current unread count.
func (b *Inbox) Badge() string {
	return Badge(b.Unread())
}

// Badge formats an unread count: empty for zero, the number up to 99 and
// "99+" above.
func Badge(unread int) string {
	switch {
	case unread <= 0:
		return ""
	case unread > 99:
		return "99+"
	default:
		return strconv.Itoa(unread)
	}
}

// MarkRead marks one notification read.
func (b *Inbox) MarkRead(ctx context.Context, id string) error {
	return b.mutate(ctx, func(l *model.NotificationList) error {
		i := indexOf(l.Notifications, id)
		if i < 0 {
			return ErrNotFound
		}
		if !l.Notifications[i].IsRead {
			l.Notifications[i].IsRead = true
			l.UnreadCount = max(0, l.UnreadCount-1)
		}
		return nil
	}, func(ctx context.Context) error {
		return b.remote.MarkRead(ctx, id)
	})
}

// MarkAllRead marks every notification read.
func (b *Inbox) MarkAllRead(ctx context.Context) error {
	return b.mutate(ctx, func(l *model.NotificationList) error {
		for i := range l.Notifications {
			l.Notifications[i].IsRead = true
		}
		l.UnreadCount = 0
		return nil
	}, b.remote.MarkAllRead)
}

// Delete removes one notification.
func (b *Inbox) Delete(ctx context.Context, id string) error {
	return b.mutate(ctx, func(l *model.NotificationList) error {
		i := indexOf(l.Notifications, id)
		if i < 0 {
			return ErrNotFound
		}
		if !l.Notifications[i].IsRead {
			l.UnreadCount = max(0, l.UnreadCount-1)
		}
		l.Notifications = append(l.Notifications[:i], l.Notifications[i+1:]...)
		return nil
	}, func(ctx context.Context) error {
		return b.remote.DeleteNotification(ctx, id)
	})
}

// mutate applies local to the visible state and records it as pending,
// then runs remote. An accepted op is folded into base. A rejected op is
// dropped and the state rebuilt, so concurrent mutations and snapshots
// that arrived meanwhile are kept.
func (b *Inbox) mutate(
	ctx context.Context,
	local func(*model.NotificationList) error,
	remote func(context.Context) error,
) error {
	b.mu.Lock()
	next := b.list.Clone()
	if err := local(&next); err != nil {
		b.mu.Unlock()
		return err
	}
	b.nextID++
	id := b.nextID
	b.pending = append(b.pending, pendingOp{id: id, apply: local})
	b.list = next
	b.mu.Unlock()
	b.changed()

	err := remote(ctx)

	b.mu.Lock()
	b.settle(id)
	if err == nil {
		_ = local(&b.base)
	}
	b.rebuild()
	b.mu.Unlock()
	if err != nil {
		b.changed()
	}
	return err
}

// settle removes op id from the pending list. Callers hold mu.
func (b *Inbox) settle(id uint64) {
	for i, op := range b.pending {
		if op.id == id {
			b.pending = append(b.pending[:i:i], b.pending[i+1:]...)
			return
		}
	}
}

func indexOf(ns []model.Notification, id string) int {
	for i, n := range ns {
		if n.ID == id {
			return i
		}
	}
	return -1
}
