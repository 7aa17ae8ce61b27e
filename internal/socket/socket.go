// Package socket maintains the bidirectional websocket channel to the
// backend and routes inbound messages to subscribers by type.
package socket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/Hritik-Goblyte/raama-poetic-erp-sub000/internal/api"
	"github.com/Hritik-Goblyte/raama-poetic-erp-sub000/internal/events"
	"github.com/Hritik-Goblyte/raama-poetic-erp-sub000/internal/model"
)

// ErrNotConnected is returned by Send when the socket is not open.
var ErrNotConnected = errors.New("socket: not connected")

// Lifecycle message types published by the manager itself.
const (
	TypeConnected       = "connected"
	TypeDisconnected    = "disconnected"
	TypeReconnectFailed = "reconnect_failed"
)

// ConnState mirrors the ready states of a websocket.
type ConnState int

const (
	StateClosed ConnState = iota
	StateConnecting
	StateOpen
	StateClosing
)

func (s ConnState) String() string {
	switch s {
	case StateConnecting:
		return "CONNECTING"
	case StateOpen:
		return "OPEN"
	case StateClosing:
		return "CLOSING"
	default:
		return "CLOSED"
	}
}

// Message is one inbound JSON object. Raw holds the full frame.
type Message struct {
	Type string
	Raw  json.RawMessage
}

// Decode unmarshals the full frame into v.
func (m Message) Decode(v any) error {
	if len(m.Raw) == 0 {
		return errors.New("socket: empty message")
	}
	return json.Unmarshal(m.Raw, v)
}

// Notification decodes the frame as a notification when its type is a
// known notification kind.
func (m Message) Notification() (model.Notification, bool) {
	if model.ParseKind(m.Type) == model.KindUnknown {
		return model.Notification{}, false
	}
	var n model.Notification
	if err := m.Decode(&n); err != nil {
		return model.Notification{}, false
	}
	return n, true
}

func lifecycle(t string) Message {
	raw, _ := json.Marshal(map[string]string{"type": t})
	return Message{Type: t, Raw: raw}
}

// Timer is a pending reconnect.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d.
type AfterFunc func(d time.Duration, f func()) Timer

// Config tunes the socket.
type Config struct {
	BaseURL      string
	MaxAttempts  int
	BaseDelay    time.Duration
	PingInterval time.Duration
}

// ConfigFrom builds a Config from the application configuration.
func ConfigFrom(cfg *model.AppConfig) Config {
	return Config{
		BaseURL:      cfg.Backend.URL,
		MaxAttempts:  cfg.Socket.MaxReconnectAttempts,
		BaseDelay:    time.Duration(cfg.Socket.ReconnectDelayMs) * time.Millisecond,
		PingInterval: time.Duration(cfg.Socket.PingIntervalSec) * time.Second,
	}
}

// Option configures a Manager.
type Option func(*Manager)

// WithDialer replaces the websocket dialer.
func WithDialer(d *websocket.Dialer) Option {
	return func(m *Manager) { m.dialer = d }
}

// WithAfterFunc replaces the reconnect scheduler.
func WithAfterFunc(f AfterFunc) Option {
	return func(m *Manager) { m.afterFunc = f }
}

// Manager owns one websocket connection per logged-in user.
type Manager struct {
	cfg       Config
	dialer    *websocket.Dialer
	afterFunc AfterFunc
	bus       *events.Bus[Message]

	mu       sync.Mutex
	writeMu  sync.Mutex
	gen      uint64
	parent   context.Context
	conn     *websocket.Conn
	state    ConnState
	userID   string
	attempts int
	timer    Timer
	cancel   context.CancelFunc
}

// NewManager creates a closed Manager.
func NewManager(cfg Config, opts ...Option) *Manager {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = 3 * time.Second
	}
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = 30 * time.Second
	}
	m := &Manager{
		cfg:    cfg,
		dialer: websocket.DefaultDialer,
		afterFunc: func(d time.Duration, f func()) Timer {
			return time.AfterFunc(d, f)
		},
		bus: events.NewBus[Message](),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// On subscribes fn to messages of type t, or every message for
// events.Wildcard. Call Unsubscribe on the result to remove it.
func (m *Manager) On(t string, fn func(Message)) *events.Subscription {
	return m.bus.Subscribe(t, fn)
}

// Connect opens the socket for userID. It does nothing while a connection
// is open or being opened.
func (m *Manager) Connect(ctx context.Context, userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connectLocked(ctx, userID)
}

func (m *Manager) connectLocked(ctx context.Context, userID string) {
	if m.state == StateOpen || m.state == StateConnecting {
		logrus.Debug("socket: already connected or connecting")
		return
	}
	if userID == "" {
		return
	}

	url, err := api.SocketURL(m.cfg.BaseURL, userID)
	if err != nil {
		logrus.WithError(err).Warn("socket: not connecting")
		return
	}

	m.gen++
	gen := m.gen
	m.parent = ctx
	m.userID = userID
	m.state = StateConnecting

	connCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel

	go m.dial(connCtx, gen, url)
}

func (m *Manager) dial(ctx context.Context, gen uint64, url string) {
	conn, _, err := m.dialer.DialContext(ctx, url, nil)
	if err != nil {
		logrus.WithError(err).Warn("socket: dial failed")
		m.closed(gen)
		return
	}

	m.mu.Lock()
	if gen != m.gen {
		m.mu.Unlock()
		conn.Close()
		return
	}
	m.conn = conn
	m.state = StateOpen
	m.attempts = 0
	m.mu.Unlock()

	logrus.Info("socket: connected")
	go m.ping(ctx, gen, conn)
	m.bus.Publish(TypeConnected, lifecycle(TypeConnected))

	m.read(gen, conn)
}

func (m *Manager) read(gen uint64, conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			m.closed(gen)
			return
		}
		if strings.TrimSpace(string(data)) == "pong" {
			continue
		}

		var head struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(data, &head); err != nil {
			logrus.WithError(err).Warn("socket: dropping malformed message")
			continue
		}
		m.bus.Publish(head.Type, Message{Type: head.Type, Raw: json.RawMessage(data)})
	}
}

func (m *Manager) ping(ctx context.Context, gen uint64, conn *websocket.Conn) {
	ticker := time.NewTicker(m.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.mu.Lock()
			current := gen == m.gen && m.state == StateOpen
			m.mu.Unlock()
			if !current {
				return
			}
			if err := m.write(conn, websocket.TextMessage, []byte("ping")); err != nil {
				logrus.WithError(err).Warn("socket: ping failed")
			}
		}
	}
}

func (m *Manager) write(conn *websocket.Conn, kind int, data []byte) error {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()
	return conn.WriteMessage(kind, data)
}

// closed handles the end of connection gen and schedules a reconnect
// while attempts remain.
func (m *Manager) closed(gen uint64) {
	m.mu.Lock()
	if gen != m.gen {
		m.mu.Unlock()
		return
	}
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	if m.conn != nil {
		m.conn.Close()
		m.conn = nil
	}
	m.state = StateClosed

	failed := false
	if m.userID != "" && m.attempts < m.cfg.MaxAttempts {
		m.attempts++
		delay := time.Duration(m.attempts) * m.cfg.BaseDelay
		logrus.WithFields(logrus.Fields{"delay": delay, "attempt": m.attempts, "max": m.cfg.MaxAttempts}).Info("socket: reconnecting")
		m.timer = m.afterFunc(delay, func() { m.retry(gen) })
	} else {
		logrus.Warn("socket: max reconnect attempts reached")
		failed = true
	}
	m.mu.Unlock()

	m.bus.Publish(TypeDisconnected, lifecycle(TypeDisconnected))
	if failed {
		m.bus.Publish(TypeReconnectFailed, lifecycle(TypeReconnectFailed))
	}
}

func (m *Manager) retry(gen uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if gen != m.gen {
		return
	}
	m.timer = nil
	m.connectLocked(m.parent, m.userID)
}

// Disconnect closes the socket, forgets the user and cancels any pending
// reconnect. It is safe to call more than once.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	m.gen++
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	conn := m.conn
	m.conn = nil
	m.userID = ""
	m.attempts = 0
	if conn != nil {
		m.state = StateClosing
	} else {
		m.state = StateClosed
	}
	m.mu.Unlock()

	if conn == nil {
		return
	}
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	if err := m.write(conn, websocket.CloseMessage, msg); err != nil {
		logrus.WithError(err).Debug("socket: close handshake failed")
	}
	conn.Close()

	m.mu.Lock()
	if m.state == StateClosing {
		m.state = StateClosed
	}
	m.mu.Unlock()

	m.bus.Publish(TypeDisconnected, lifecycle(TypeDisconnected))
}

// Send JSON-encodes v and writes it when the socket is open.
func (m *Manager) Send(v any) error {
	m.mu.Lock()
	conn := m.conn
	open := m.state == StateOpen
	m.mu.Unlock()

	if !open || conn == nil {
		return ErrNotConnected
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("socket: encoding message: %w", err)
	}
	if err := m.write(conn, websocket.TextMessage, data); err != nil {
		return fmt.Errorf("socket: sending: %w", err)
	}
	return nil
}

// Connected reports whether the socket is open.
func (m *Manager) Connected() bool {
	return m.State() == StateOpen
}

// State returns the ready state of the socket.
func (m *Manager) State() ConnState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Attempts returns the number of reconnects since the last open.
func (m *Manager) Attempts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.attempts
}
