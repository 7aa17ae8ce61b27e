// Package stream keeps the server-sent events channel to the backend open
// while a user is logged in and hands every pushed notification to the
// fan-out.
package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Hritik-Goblyte/raama-poetic-erp-sub000/internal/api"
	"github.com/Hritik-Goblyte/raama-poetic-erp-sub000/internal/model"
)

// State describes the push channel.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	// StatePolling means reconnects were exhausted and the fallback poller
	// is delivering instead.
	StatePolling
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "live"
	case StatePolling:
		return "polling"
	default:
		return "offline"
	}
}

// TokenSource supplies the bearer token.
type TokenSource interface {
	Token() (string, bool)
}

// Deliverer receives decoded notifications.
type Deliverer interface {
	Deliver(ctx context.Context, n model.Notification)
}

// Lister fetches the notification list for the fallback poller.
type Lister interface {
	ListNotifications(ctx context.Context) (model.NotificationList, error)
}

// LastSeenStore persists the timestamp of the newest notification the
// fallback poller delivered.
type LastSeenStore interface {
	LastSeen(ctx context.Context) time.Time
	SetLastSeen(ctx context.Context, t time.Time) error
}

// PermissionRequester asks for desktop notification permission.
type PermissionRequester interface {
	Request(ctx context.Context) (bool, error)
}

// Dialer opens the event stream.
type Dialer interface {
	Open(ctx context.Context, url string) (io.ReadCloser, error)
}

// Timer is a pending reconnect.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d.
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Config tunes the channel.
type Config struct {
	BaseURL          string
	MaxAttempts      int
	BaseDelay        time.Duration
	FallbackInterval time.Duration
	// AllowLocal connects even when BaseURL points at a development host.
	AllowLocal bool
}

// ConfigFrom builds a Config from the application configuration.
func ConfigFrom(cfg *model.AppConfig) Config {
	return Config{
		BaseURL:          cfg.Backend.URL,
		MaxAttempts:      cfg.Stream.MaxReconnectAttempts,
		BaseDelay:        time.Duration(cfg.Stream.ReconnectDelayMs) * time.Millisecond,
		FallbackInterval: time.Duration(cfg.Stream.FallbackPollSec) * time.Second,
		AllowLocal:       cfg.Realtime.AllowLocal,
	}
}

// Deps are the collaborators of a Manager. Tokens, Dialer and Sink are
// required.
type Deps struct {
	Tokens      TokenSource
	Dialer      Dialer
	Sink        Deliverer
	Lister      Lister
	LastSeen    LastSeenStore
	Permissions PermissionRequester
	AfterFunc   AfterFunc
	// OnChange, when set, is called on its own goroutine after every
	// state change. Read State for the current value.
	OnChange func()
}

// Manager owns the push channel for one logged-in user.
type Manager struct {
	cfg  Config
	deps Deps

	mu       sync.Mutex
	gen      uint64
	parent   context.Context
	userID   string
	state    State
	attempts int
	cancel   context.CancelFunc
	timer    Timer
	fallback chan struct{}
}

// NewManager creates a disconnected Manager.
func NewManager(cfg Config, deps Deps) *Manager {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = time.Second
	}
	if cfg.FallbackInterval <= 0 {
		cfg.FallbackInterval = 30 * time.Second
	}
	if deps.AfterFunc == nil {
		deps.AfterFunc = realAfterFunc
	}
	return &Manager{cfg: cfg, deps: deps}
}

// Initialize opens the stream for userID, replacing any open connection.
// It does nothing without a user id or a token, or when the backend is a
// local development host and AllowLocal is off.
func (m *Manager) Initialize(ctx context.Context, userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.initLocked(ctx, userID)
}

func (m *Manager) initLocked(ctx context.Context, userID string) {
	if userID == "" {
		return
	}
	token, ok := m.deps.Tokens.Token()
	if !ok {
		return
	}
	if !m.cfg.AllowLocal && api.IsLocalHost(m.cfg.BaseURL) {
		logrus.WithField("url", m.cfg.BaseURL).Info("stream: local host, skipping realtime notifications")
		return
	}

	m.closeLocked()

	m.gen++
	gen := m.gen
	m.parent = ctx
	m.userID = userID

	connCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.setStateLocked(StateConnecting)

	go m.run(connCtx, gen, api.StreamURL(m.cfg.BaseURL, token))
}

// closeLocked tears down the connection, any pending reconnect and the
// fallback poller.
func (m *Manager) closeLocked() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	if m.fallback != nil {
		close(m.fallback)
		m.fallback = nil
	}
}

// Disconnect closes the channel and cancels pending reconnects. It is safe
// to call at any time and more than once.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.gen++
	m.closeLocked()
	m.userID = ""
	m.attempts = 0
	m.setStateLocked(StateDisconnected)
}

// Connected reports whether the stream is open.
func (m *Manager) Connected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state == StateConnected
}

// State returns the current channel state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Attempts returns the number of consecutive reconnects since the last
// successful open.
func (m *Manager) Attempts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.attempts
}

// RequestPermission asks for desktop notification permission.
func (m *Manager) RequestPermission(ctx context.Context) (bool, error) {
	if m.deps.Permissions == nil {
		return false, nil
	}
	return m.deps.Permissions.Request(ctx)
}

func (m *Manager) setStateLocked(s State) {
	if m.state == s {
		return
	}
	m.state = s
	if m.deps.OnChange != nil {
		go m.deps.OnChange()
	}
}

func (m *Manager) run(ctx context.Context, gen uint64, url string) {
	body, err := m.deps.Dialer.Open(ctx, url)
	if err != nil {
		m.fail(gen, err)
		return
	}
	defer body.Close()

	if !m.opened(gen) {
		return
	}

	for data, err := range messages(body) {
		if err != nil {
			if ctx.Err() == nil {
				m.fail(gen, err)
			}
			return
		}
		m.handle(ctx, data)
	}
	if ctx.Err() == nil {
		m.fail(gen, errors.New("stream closed by server"))
	}
}

func (m *Manager) opened(gen uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if gen != m.gen {
		return false
	}
	logrus.Info("stream: connected")
	m.attempts = 0
	m.setStateLocked(StateConnected)
	return true
}

func (m *Manager) handle(ctx context.Context, data string) {
	if !strings.HasPrefix(strings.TrimSpace(data), "{") {
		logrus.Warn("stream: dropping non-object frame")
		return
	}
	var n model.Notification
	if err := json.Unmarshal([]byte(data), &n); err != nil {
		logrus.WithError(err).Warn("stream: dropping malformed frame")
		return
	}
	if n.Type == model.HeartbeatType {
		return
	}
	m.deps.Sink.Deliver(ctx, n)
}

// fail records a transport error for connection gen and schedules the
// next reconnect, or starts the fallback poller once reconnects are
// exhausted.
func (m *Manager) fail(gen uint64, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if gen != m.gen {
		return
	}
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	logrus.WithError(err).Warn("stream: connection failed")

	if m.attempts < m.cfg.MaxAttempts {
		delay := time.Duration(m.attempts+1) * m.cfg.BaseDelay
		m.setStateLocked(StateDisconnected)
		m.timer = m.deps.AfterFunc(delay, func() { m.retry(gen) })
		return
	}

	logrus.Warn("stream: max reconnect attempts reached, falling back to polling")
	m.startFallbackLocked()
}

func (m *Manager) retry(gen uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if gen != m.gen {
		return
	}
	m.timer = nil
	m.attempts++
	logrus.WithFields(logrus.Fields{"attempt": m.attempts, "max": m.cfg.MaxAttempts}).Info("stream: reconnecting")
	m.initLocked(m.parent, m.userID)
}

// HTTPDialer opens the stream with a plain HTTP GET.
type HTTPDialer struct {
	Client *http.Client
}

func (d HTTPDialer) Open(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating stream request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	client := d.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("opening stream: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("opening stream: unexpected status %d", resp.StatusCode)
	}
	return resp.Body, nil
}
