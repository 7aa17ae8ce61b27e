// Package sync polls the notification list in the background and hands
// each result to the Bubble Tea runtime.
package sync

import (
	"context"
	"errors"
	gosync "sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Hritik-Goblyte/raama-poetic-erp-sub000/internal/api"
	"github.com/Hritik-Goblyte/raama-poetic-erp-sub000/internal/model"
)

// SyncState represents the current state of the poller.
type SyncState int

const (
	SyncIdle SyncState = iota
	SyncRunning
	SyncError
)

// SyncStatus holds the poller's state.
type SyncStatus struct {
	State    SyncState
	LastSync time.Time
	Error    error
}

// ResultMsg is a tea.Msg sent when a fetch completes. On error List is
// empty, matching what the notification center shows after a failed
// fetch.
type ResultMsg struct {
	List      model.NotificationList
	Error     error
	AuthError *api.AuthError
	FetchedAt time.Time
}

// Fetcher loads the notification list.
type Fetcher interface {
	ListNotifications(ctx context.Context) (model.NotificationList, error)
}

// fetchTimeout is the maximum time allowed for a single fetch operation.
const fetchTimeout = 30 * time.Second

// defaultInterval is used when no positive interval is configured.
const defaultInterval = 10 * time.Second

// Poller fetches the notification list on an interval while running.
type Poller struct {
	fetcher   Fetcher
	interval  time.Duration
	resultCh  chan ResultMsg
	triggerCh chan struct{}
	stopCh    chan struct{}
	status    SyncStatus
	mu        gosync.Mutex
	running   bool
}

// New creates a stopped Poller.
func New(f Fetcher, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Poller{
		fetcher:   f,
		interval:  interval,
		resultCh:  make(chan ResultMsg, 16),
		triggerCh: make(chan struct{}, 1),
	}
}

// Start launches the polling goroutine and returns a tea.Cmd that waits
// for the first result. A running poller is left alone and nil returned.
func (p *Poller) Start() tea.Cmd {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return nil
	}
	p.running = true
	p.stopCh = make(chan struct{})
	stop := p.stopCh
	p.mu.Unlock()

	go p.loop(stop)

	return p.waitForResult()
}

// Stop halts the polling goroutine. Stopping a stopped poller is a no-op.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return
	}

	close(p.stopCh)
	p.running = false
}

// Running reports whether the poller is started.
func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// Refresh triggers an immediate fetch.
func (p *Poller) Refresh() tea.Cmd {
	select {
	case p.triggerCh <- struct{}{}:
	default:
		// A refresh is already pending.
	}
	return nil
}

// Status returns the poller's state.
func (p *Poller) Status() SyncStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

func (p *Poller) loop(stop chan struct{}) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	// Do an initial fetch immediately
	p.fetch(stop)

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			p.fetch(stop)
		case <-p.triggerCh:
			p.fetch(stop)
		}
	}
}

// fetch performs a single fetch and sends a ResultMsg on the result
// channel.
func (p *Poller) fetch(stop chan struct{}) {
	p.setStatus(SyncRunning, nil)

	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()
	go func() {
		select {
		case <-stop:
			cancel()
		case <-ctx.Done():
		}
	}()

	list, err := p.fetcher.ListNotifications(ctx)
	now := time.Now()

	select {
	case <-stop:
		return
	default:
	}

	if err != nil {
		p.setStatus(SyncError, err)

		msg := ResultMsg{
			List:      model.NotificationList{Notifications: []model.Notification{}},
			Error:     err,
			FetchedAt: now,
		}
		var authErr *api.AuthError
		if errors.As(err, &authErr) {
			msg.AuthError = authErr
		}
		p.sendResult(msg)
		return
	}

	p.setStatus(SyncIdle, nil)
	p.sendResult(ResultMsg{List: list, FetchedAt: now})
}

// setStatus updates the sync status.
func (p *Poller) setStatus(state SyncState, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.status.State = state
	p.status.Error = err
	if state == SyncIdle && err == nil {
		p.status.LastSync = time.Now()
	}
}

// sendResult sends a ResultMsg on the result channel without blocking.
func (p *Poller) sendResult(msg ResultMsg) {
	select {
	case p.resultCh <- msg:
	default:
		// Drop if channel is full to avoid blocking the poller
	}
}

// waitForResult returns a tea.Cmd that waits for the next result from
// the result channel.
func (p *Poller) waitForResult() tea.Cmd {
	return func() tea.Msg {
		result, ok := <-p.resultCh
		if !ok {
			return nil
		}
		return result
	}
}

// WaitForNextResult returns a tea.Cmd that waits for the next result.
// Call it after handling a ResultMsg to keep listening.
func (p *Poller) WaitForNextResult() tea.Cmd {
	return p.waitForResult()
}
