package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Hritik-Goblyte/raama-poetic-erp-sub000/internal/events"
	"github.com/Hritik-Goblyte/raama-poetic-erp-sub000/internal/model"
)

// ---------------------------------------------------------------------------
// Mocks
// ---------------------------------------------------------------------------

type mockToaster struct {
	toasts []Toast
	panic  bool
}

func (m *mockToaster) Toast(t Toast) {
	if m.panic {
		panic("toaster broke")
	}
	m.toasts = append(m.toasts, t)
}

type mockSound struct {
	plays int
	err   error
}

func (m *mockSound) Play() error {
	m.plays++
	return m.err
}

type mockDesktop struct {
	calls []Alert
	err   error
}

func (m *mockDesktop) Show(_ context.Context, a Alert) error {
	m.calls = append(m.calls, a)
	return m.err
}

type staticPermission bool

func (p staticPermission) Granted(context.Context) bool { return bool(p) }

var (
	_ Toaster           = (*mockToaster)(nil)
	_ Sound             = (*mockSound)(nil)
	_ Desktop           = (*mockDesktop)(nil)
	_ PermissionChecker = staticPermission(false)
)

type fixture struct {
	toaster *mockToaster
	sound   *mockSound
	desktop *mockDesktop
	bus     *events.Bus[model.Notification]
	fanout  *Fanout
	events  []model.Notification
}

func newFixture(granted bool) *fixture {
	f := &fixture{
		toaster: &mockToaster{},
		sound:   &mockSound{},
		desktop: &mockDesktop{},
		bus:     events.NewBus[model.Notification](),
	}
	f.bus.Subscribe(TopicNewNotification, func(n model.Notification) {
		f.events = append(f.events, n)
	})
	f.fanout = &Fanout{
		Toaster:    f.toaster,
		Sound:      f.sound,
		Desktop:    f.desktop,
		Bus:        f.bus,
		Permission: staticPermission(granted),
	}
	return f
}

// ---------------------------------------------------------------------------
// Fanout
// ---------------------------------------------------------------------------

func Test_Deliver_LikeReachesEverySink(t *testing.T) {
	f := newFixture(true)
	n := model.Notification{ID: "n1", Type: "like", SenderName: "Asha", ShayariTitle: "Chaand"}

	f.fanout.Deliver(context.Background(), n)

	if len(f.toaster.toasts) != 1 {
		t.Fatalf("toasts = %d, want 1", len(f.toaster.toasts))
	}
	toast := f.toaster.toasts[0]
	if toast.Message != "Asha liked your shayari" {
		t.Errorf("toast message = %q", toast.Message)
	}
	if toast.Kind != model.KindLike || toast.ShayariTitle != "Chaand" {
		t.Errorf("toast = %+v", toast)
	}
	if toast.Duration != 6*time.Second {
		t.Errorf("toast duration = %v, want 6s", toast.Duration)
	}
	if toast.ID == "" {
		t.Error("toast id is empty")
	}
	if f.sound.plays != 1 {
		t.Errorf("sound plays = %d, want 1", f.sound.plays)
	}
	if len(f.desktop.calls) != 1 {
		t.Fatalf("desktop calls = %d, want 1", len(f.desktop.calls))
	}
	if got := f.desktop.calls[0]; got.Title != DesktopTitle || got.Body != "Asha liked your shayari" {
		t.Errorf("desktop call = %+v", got)
	}
	if got := f.desktop.calls[0].Expire; got != 5*time.Second {
		t.Errorf("desktop expire = %v, want 5s", got)
	}
	if len(f.events) != 1 || f.events[0].ID != "n1" {
		t.Errorf("bus events = %+v", f.events)
	}
}

func Test_Deliver_DesktopExpireFollowsConfig(t *testing.T) {
	f := newFixture(true)
	f.fanout.DesktopTimeout = 1500 * time.Millisecond

	f.fanout.Deliver(context.Background(), model.Notification{ID: "n1", Type: "follow", SenderName: "Meera"})

	if len(f.desktop.calls) != 1 {
		t.Fatalf("desktop calls = %d, want 1", len(f.desktop.calls))
	}
	if got := f.desktop.calls[0].Expire; got != 1500*time.Millisecond {
		t.Errorf("desktop expire = %v, want 1.5s", got)
	}
}

func Test_Deliver_HeartbeatIsIgnored(t *testing.T) {
	f := newFixture(true)

	f.fanout.Deliver(context.Background(), model.Notification{Type: model.HeartbeatType})

	if len(f.toaster.toasts) != 0 || f.sound.plays != 0 || len(f.desktop.calls) != 0 || len(f.events) != 0 {
		t.Error("heartbeat reached a sink")
	}
}

func Test_Deliver_DesktopRequiresPermission(t *testing.T) {
	f := newFixture(false)

	f.fanout.Deliver(context.Background(), model.Notification{Type: "follow", SenderName: "Ravi"})

	if len(f.desktop.calls) != 0 {
		t.Error("desktop notification shown without permission")
	}
	if len(f.toaster.toasts) != 1 || len(f.events) != 1 {
		t.Error("other sinks must still run")
	}
}

func Test_Deliver_SinkFailuresAreIndependent(t *testing.T) {
	tests := []struct {
		name  string
		setup func(f *fixture)
	}{
		{name: "sound error", setup: func(f *fixture) { f.sound.err = errors.New("no audio device") }},
		{name: "desktop error", setup: func(f *fixture) { f.desktop.err = errors.New("no dbus") }},
		{name: "toaster panic", setup: func(f *fixture) { f.toaster.panic = true }},
		{name: "bus handler panic", setup: func(f *fixture) {
			f.bus.Subscribe(TopicNewNotification, func(model.Notification) { panic("listener broke") })
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(true)
			tt.setup(f)

			f.fanout.Deliver(context.Background(), model.Notification{ID: "x", Type: "comment", SenderName: "Meera"})

			if f.sound.plays != 1 {
				t.Errorf("sound plays = %d, want 1", f.sound.plays)
			}
			if len(f.desktop.calls) != 1 {
				t.Errorf("desktop calls = %d, want 1", len(f.desktop.calls))
			}
			if len(f.events) != 1 {
				t.Errorf("bus events = %d, want 1", len(f.events))
			}
		})
	}
}

func Test_Deliver_SetAlertsDisablesSinks(t *testing.T) {
	f := newFixture(true)
	f.fanout.SetAlerts(false, false)

	f.fanout.Deliver(context.Background(), model.Notification{Type: "feature"})

	if f.sound.plays != 0 || len(f.desktop.calls) != 0 {
		t.Error("disabled sinks ran")
	}
	if len(f.toaster.toasts) != 1 {
		t.Error("toast must still be shown")
	}
}

func Test_Deliver_NilSinksAreSkipped(t *testing.T) {
	f := &Fanout{}
	f.Deliver(context.Background(), model.Notification{Type: "like", SenderName: "A"})
}

// ---------------------------------------------------------------------------
// Permissions
// ---------------------------------------------------------------------------

type memoryPermissionStore struct {
	mu sync.Mutex
	p  model.Permission
}

func (m *memoryPermissionStore) Permission(context.Context) model.Permission {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.p == "" {
		return model.PermissionDefault
	}
	return m.p
}

func (m *memoryPermissionStore) SetPermission(_ context.Context, p model.Permission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.p = p
	return nil
}

var _ PermissionStore = (*memoryPermissionStore)(nil)

func Test_Permissions_PromptsOnce(t *testing.T) {
	tests := []struct {
		name   string
		answer bool
		want   model.Permission
	}{
		{name: "allow", answer: true, want: model.PermissionGranted},
		{name: "block", answer: false, want: model.PermissionDenied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &memoryPermissionStore{}
			asks := 0
			p := NewPermissions(store, PromptFunc(func(context.Context) (bool, error) {
				asks++
				return tt.answer, nil
			}))

			for i := 0; i < 3; i++ {
				got, err := p.Request(context.Background())
				if err != nil {
					t.Fatalf("Request: %v", err)
				}
				if got != tt.answer {
					t.Errorf("Request = %v, want %v", got, tt.answer)
				}
			}
			if asks != 1 {
				t.Errorf("prompted %d times, want 1", asks)
			}
			if store.p != tt.want {
				t.Errorf("stored %q, want %q", store.p, tt.want)
			}
			if p.Granted(context.Background()) != tt.answer {
				t.Error("Granted disagrees with the answer")
			}
		})
	}
}

func Test_Permissions_PromptErrorKeepsDefault(t *testing.T) {
	store := &memoryPermissionStore{}
	p := NewPermissions(store, PromptFunc(func(context.Context) (bool, error) {
		return false, errors.New("no tty")
	}))

	if _, err := p.Request(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if p.State(context.Background()) != model.PermissionDefault {
		t.Errorf("state = %q, want default", p.State(context.Background()))
	}
}

func Test_Permissions_ResetAsksAgain(t *testing.T) {
	store := &memoryPermissionStore{p: model.PermissionDenied}
	asks := 0
	p := NewPermissions(store, PromptFunc(func(context.Context) (bool, error) {
		asks++
		return true, nil
	}))

	if ok, _ := p.Request(context.Background()); ok || asks != 0 {
		t.Fatalf("denied state must not prompt: ok=%v asks=%d", ok, asks)
	}
	if err := p.Reset(context.Background()); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if ok, _ := p.Request(context.Background()); !ok || asks != 1 {
		t.Errorf("after reset: ok=%v asks=%d", ok, asks)
	}
}

// ---------------------------------------------------------------------------
// beeep sinks
// ---------------------------------------------------------------------------

func Test_BeepSound_PlaysCueInOrder(t *testing.T) {
	type tone struct {
		freq float64
		ms   int
	}
	var played []tone
	s := &BeepSound{Tones: Cue, beep: func(freq float64, ms int) error {
		played = append(played, tone{freq, ms})
		return nil
	}}

	if err := s.Play(); err != nil {
		t.Fatalf("Play: %v", err)
	}
	want := []tone{{800, 100}, {600, 200}}
	if len(played) != len(want) {
		t.Fatalf("played %v, want %v", played, want)
	}
	for i := range want {
		if played[i] != want[i] {
			t.Errorf("tone %d = %v, want %v", i, played[i], want[i])
		}
	}
}

func Test_BeepDesktop_TimesOut(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	d := &BeepDesktop{notify: func(string, string) error {
		<-release
		return nil
	}}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if err := d.Show(ctx, Alert{Title: DesktopTitle, Body: "hi"}); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want deadline exceeded", err)
	}
}
