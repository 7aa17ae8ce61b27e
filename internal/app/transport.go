package app

import (
	"context"
	"sync"

	"github.com/Hritik-Goblyte/raama-poetic-erp-sub000/internal/events"
	"github.com/Hritik-Goblyte/raama-poetic-erp-sub000/internal/socket"
	"github.com/Hritik-Goblyte/raama-poetic-erp-sub000/internal/stream"
)

// Transport names accepted by realtime.transport.
const (
	TransportSSE       = "sse"
	TransportWebSocket = "websocket"
	TransportNone      = "none"
)

// Transport is the realtime push channel for the logged-in user.
type Transport interface {
	Start(ctx context.Context, userID string)
	Stop()
	Status() string
	// RequestPermission asks once for desktop notification permission.
	RequestPermission(ctx context.Context) (bool, error)
}

// streamTransport adapts the event stream manager.
type streamTransport struct {
	m *stream.Manager
}

func (t streamTransport) Start(ctx context.Context, userID string) { t.m.Initialize(ctx, userID) }
func (t streamTransport) Stop()                                    { t.m.Disconnect() }
func (t streamTransport) Status() string                           { return t.m.State().String() }

func (t streamTransport) RequestPermission(ctx context.Context) (bool, error) {
	return t.m.RequestPermission(ctx)
}

// askPermission is shared by the transports without a stream manager.
func askPermission(ctx context.Context, p stream.PermissionRequester) (bool, error) {
	if p == nil {
		return false, nil
	}
	return p.Request(ctx)
}

// socketTransport adapts the websocket manager. Notification messages are
// handed to sink; lifecycle messages only trigger onChange.
type socketTransport struct {
	m        *socket.Manager
	sink     stream.Deliverer
	perms    stream.PermissionRequester
	onChange func()

	mu   sync.Mutex
	subs []*events.Subscription
}

func (t *socketTransport) Start(ctx context.Context, userID string) {
	t.mu.Lock()
	if t.subs == nil {
		t.subs = []*events.Subscription{
			t.m.On(events.Wildcard, func(msg socket.Message) {
				if n, ok := msg.Notification(); ok {
					t.sink.Deliver(ctx, n)
				}
			}),
			t.m.On(socket.TypeConnected, t.changed),
			t.m.On(socket.TypeDisconnected, t.changed),
			t.m.On(socket.TypeReconnectFailed, t.changed),
		}
	}
	t.mu.Unlock()

	t.m.Connect(ctx, userID)
}

func (t *socketTransport) changed(socket.Message) {
	if t.onChange != nil {
		t.onChange()
	}
}

func (t *socketTransport) Stop() {
	t.mu.Lock()
	for _, s := range t.subs {
		s.Unsubscribe()
	}
	t.subs = nil
	t.mu.Unlock()

	t.m.Disconnect()
}

func (t *socketTransport) Status() string {
	switch t.m.State() {
	case socket.StateOpen:
		return "live"
	case socket.StateConnecting:
		return "connecting"
	default:
		return "offline"
	}
}

func (t *socketTransport) RequestPermission(ctx context.Context) (bool, error) {
	return askPermission(ctx, t.perms)
}

// noTransport leaves delivery to the center poller.
type noTransport struct {
	perms stream.PermissionRequester
}

func (noTransport) Start(context.Context, string) {}
func (noTransport) Stop()                         {}
func (noTransport) Status() string                { return "polling" }

func (t noTransport) RequestPermission(ctx context.Context) (bool, error) {
	return askPermission(ctx, t.perms)
}
