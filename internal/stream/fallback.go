package stream

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Hritik-Goblyte/raama-poetic-erp-sub000/internal/model"
)

// startFallbackLocked polls the notification list once the stream has
// given up, delivering the newest notification whenever it is newer than
// the last one delivered this way.
func (m *Manager) startFallbackLocked() {
	if m.deps.Lister == nil {
		m.setStateLocked(StateDisconnected)
		return
	}
	if m.fallback != nil {
		close(m.fallback)
	}
	stop := make(chan struct{})
	m.fallback = stop
	m.setStateLocked(StatePolling)

	go m.pollFallback(m.parent, stop)
}

func (m *Manager) pollFallback(ctx context.Context, stop chan struct{}) {
	ticker := time.NewTicker(m.cfg.FallbackInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.pollOnce(ctx)
		}
	}
}

func (m *Manager) pollOnce(ctx context.Context) {
	list, err := m.deps.Lister.ListNotifications(ctx)
	if err != nil {
		logrus.WithError(err).Warn("stream: fallback poll failed")
		return
	}
	latest, ok := newest(list.Notifications)
	if !ok {
		return
	}

	var last time.Time
	if m.deps.LastSeen != nil {
		last = m.deps.LastSeen.LastSeen(ctx)
	}
	// Last seen is stored with millisecond precision.
	if !last.IsZero() && latest.CreatedAt.UnixMilli() <= last.UnixMilli() {
		return
	}

	m.deps.Sink.Deliver(ctx, latest)
	if m.deps.LastSeen != nil {
		if err := m.deps.LastSeen.SetLastSeen(ctx, latest.CreatedAt.Time); err != nil {
			logrus.WithError(err).Error("stream: saving last seen failed")
		}
	}
}

func newest(ns []model.Notification) (model.Notification, bool) {
	if len(ns) == 0 {
		return model.Notification{}, false
	}
	best := ns[0]
	for _, n := range ns[1:] {
		if n.CreatedAt.After(best.CreatedAt.Time) {
			best = n
		}
	}
	return best, true
}
