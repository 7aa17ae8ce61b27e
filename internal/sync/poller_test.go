package sync

import (
	"context"
	"errors"
	"fmt"
	gosync "sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Hritik-Goblyte/raama-poetic-erp-sub000/internal/api"
	"github.com/Hritik-Goblyte/raama-poetic-erp-sub000/internal/model"
)

type mockFetcher struct {
	mu    gosync.Mutex
	calls int32
	list  model.NotificationList
	err   error
}

func (m *mockFetcher) ListNotifications(context.Context) (model.NotificationList, error) {
	atomic.AddInt32(&m.calls, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.list, m.err
}

func (m *mockFetcher) Calls() int { return int(atomic.LoadInt32(&m.calls)) }

var _ Fetcher = (*mockFetcher)(nil)

// next runs cmd with a timeout and returns the ResultMsg it produced.
func next(t *testing.T, p *Poller) ResultMsg {
	t.Helper()
	done := make(chan ResultMsg, 1)
	go func() {
		if msg, ok := p.WaitForNextResult()().(ResultMsg); ok {
			done <- msg
		}
	}()
	select {
	case msg := <-done:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("no result")
		return ResultMsg{}
	}
}

func Test_Poller_FetchesImmediately(t *testing.T) {
	f := &mockFetcher{list: model.NotificationList{
		Notifications: []model.Notification{{ID: "n1", Type: "like"}},
		UnreadCount:   1,
	}}
	p := New(f, time.Hour)
	defer p.Stop()

	cmd := p.Start()
	if cmd == nil {
		t.Fatal("Start returned nil cmd")
	}
	msg, ok := cmd().(ResultMsg)
	if !ok {
		t.Fatal("first message is not a ResultMsg")
	}
	if msg.Error != nil || msg.List.UnreadCount != 1 || len(msg.List.Notifications) != 1 {
		t.Errorf("msg = %+v", msg)
	}
	if p.Status().State != SyncIdle || p.Status().LastSync.IsZero() {
		t.Errorf("status = %+v", p.Status())
	}
}

func Test_Poller_PollsOnInterval(t *testing.T) {
	f := &mockFetcher{}
	p := New(f, 10*time.Millisecond)
	defer p.Stop()

	p.Start()
	next(t, p)
	next(t, p)
	next(t, p)

	if f.Calls() < 3 {
		t.Errorf("calls = %d, want at least 3", f.Calls())
	}
}

func Test_Poller_Refresh(t *testing.T) {
	f := &mockFetcher{}
	p := New(f, time.Hour)
	defer p.Stop()

	p.Start()
	next(t, p)

	p.Refresh()
	next(t, p)

	if f.Calls() != 2 {
		t.Errorf("calls = %d, want 2", f.Calls())
	}
}

func Test_Poller_ErrorCases(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantAuth bool
	}{
		{name: "network", err: errors.New("dial tcp: refused")},
		{name: "auth", err: fmt.Errorf("notifications list: %w", &api.AuthError{Detail: "expired"}), wantAuth: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &mockFetcher{err: tt.err}
			p := New(f, time.Hour)
			defer p.Stop()

			msg := p.Start()().(ResultMsg)
			if msg.Error == nil {
				t.Fatal("expected error")
			}
			if (msg.AuthError != nil) != tt.wantAuth {
				t.Errorf("AuthError = %v, wantAuth %v", msg.AuthError, tt.wantAuth)
			}
			if msg.List.Notifications == nil || len(msg.List.Notifications) != 0 || msg.List.UnreadCount != 0 {
				t.Errorf("error result should carry an empty list, got %+v", msg.List)
			}
			if p.Status().State != SyncError {
				t.Errorf("state = %v, want SyncError", p.Status().State)
			}
		})
	}
}

func Test_Poller_StartStopRestart(t *testing.T) {
	f := &mockFetcher{}
	p := New(f, time.Hour)

	if p.Start() == nil {
		t.Fatal("first Start returned nil")
	}
	if p.Start() != nil {
		t.Error("second Start on a running poller should return nil")
	}
	next(t, p)

	p.Stop()
	p.Stop()
	if p.Running() {
		t.Fatal("still running after Stop")
	}

	if p.Start() == nil {
		t.Fatal("restart returned nil")
	}
	defer p.Stop()
	next(t, p)

	if f.Calls() != 2 {
		t.Errorf("calls = %d, want 2", f.Calls())
	}
}
