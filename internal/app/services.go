package app

import (
	"io"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/Hritik-Goblyte/raama-poetic-erp-sub000/internal/api"
	"github.com/Hritik-Goblyte/raama-poetic-erp-sub000/internal/events"
	"github.com/Hritik-Goblyte/raama-poetic-erp-sub000/internal/inbox"
	"github.com/Hritik-Goblyte/raama-poetic-erp-sub000/internal/model"
	"github.com/Hritik-Goblyte/raama-poetic-erp-sub000/internal/notify"
	"github.com/Hritik-Goblyte/raama-poetic-erp-sub000/internal/session"
	"github.com/Hritik-Goblyte/raama-poetic-erp-sub000/internal/socket"
	"github.com/Hritik-Goblyte/raama-poetic-erp-sub000/internal/stream"
	appsync "github.com/Hritik-Goblyte/raama-poetic-erp-sub000/internal/sync"
	"github.com/Hritik-Goblyte/raama-poetic-erp-sub000/internal/ui/toast"
)

// Sender delivers messages into a running Bubble Tea program.
type Sender interface {
	Send(msg tea.Msg)
}

// relay forwards messages to the program once one is attached. Sends are
// asynchronous so callers inside Update never block the event loop.
// Messages sent before a program is attached are dropped.
type relay struct {
	mu sync.Mutex
	to Sender
}

func (r *relay) attach(s Sender) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.to = s
}

func (r *relay) Send(msg tea.Msg) {
	r.mu.Lock()
	to := r.to
	r.mu.Unlock()
	if to != nil {
		go to.Send(msg)
	}
}

// authExpiredMsg is sent when the backend rejects the session.
type authExpiredMsg struct {
	err *api.AuthError
}

// transportChangedMsg is sent when the realtime channel changes state.
type transportChangedMsg struct{}

// inboxChangedMsg is sent after every inbox change.
type inboxChangedMsg struct{}

// desktopClickedMsg is sent when the user clicks a desktop notification.
type desktopClickedMsg struct{}

// clickNotifier is implemented by desktop sinks that report clicks.
type clickNotifier interface {
	OnClick(fn func())
}

// receivedMsg is sent for every notification published on the bus.
type receivedMsg struct {
	at time.Time
}

// Services are the long-lived collaborators of the root model, created
// once per login.
type Services struct {
	Config      *model.AppConfig
	ConfigPath  string
	Session     *session.Session
	Client      *api.Client
	Bus         *events.Bus[model.Notification]
	Fanout      *notify.Fanout
	Permissions *notify.Permissions
	Transport   Transport
	Poller      *appsync.Poller
	Inbox       *inbox.Inbox

	relay   relay
	closers []io.Closer
}

// ServiceOption customizes NewServices.
type ServiceOption func(*serviceOptions)

type serviceOptions struct {
	sound      notify.Sound
	desktop    notify.Desktop
	desktopSet bool
	prompter   notify.Prompter
	client     []api.Option
}

// WithSinks replaces the audible and desktop sinks. Nil disables a sink.
func WithSinks(sound notify.Sound, desktop notify.Desktop) ServiceOption {
	return func(o *serviceOptions) {
		o.sound = sound
		o.desktop = desktop
		o.desktopSet = true
	}
}

// WithPrompter replaces the desktop permission prompt.
func WithPrompter(p notify.Prompter) ServiceOption {
	return func(o *serviceOptions) { o.prompter = p }
}

// WithClientOptions passes extra options to the API client.
func WithClientOptions(opts ...api.Option) ServiceOption {
	return func(o *serviceOptions) { o.client = append(o.client, opts...) }
}

// NewServices wires the client, the fan-out, the realtime transport
// selected by cfg.Realtime.Transport, the center poller and the inbox.
func NewServices(
	cfg *model.AppConfig,
	configPath string,
	sess *session.Session,
	opts ...ServiceOption,
) *Services {
	o := serviceOptions{
		sound:    notify.NewBeepSound(),
		prompter: notify.HuhPrompter{},
	}
	for _, opt := range opts {
		opt(&o)
	}
	if !o.desktopSet {
		o.desktop = defaultDesktop()
	}

	s := &Services{
		Config:     cfg,
		ConfigPath: configPath,
		Session:    sess,
		Bus:        events.NewBus[model.Notification](),
	}

	clientOpts := []api.Option{
		api.WithTimeout(time.Duration(cfg.Backend.TimeoutSec) * time.Second),
		api.WithUnauthorizedHandler(func(err *api.AuthError) {
			s.relay.Send(authExpiredMsg{err: err})
		}),
	}
	s.Client = api.NewClient(cfg.Backend.URL, sess, append(clientOpts, o.client...)...)

	s.Permissions = notify.NewPermissions(sess, o.prompter)
	s.Fanout = &notify.Fanout{
		Toaster: notify.ToasterFunc(func(t notify.Toast) {
			s.relay.Send(toast.ShowMsg{Toast: t})
		}),
		Bus:            s.Bus,
		Permission:     s.Permissions,
		ToastDuration:  time.Duration(cfg.Toast.DurationMs) * time.Millisecond,
		DesktopTimeout: time.Duration(cfg.Alerts.DesktopTimeoutMs) * time.Millisecond,
	}
	if o.sound != nil {
		s.Fanout.Sound = o.sound
	}
	if o.desktop != nil {
		s.Fanout.Desktop = o.desktop
		if c, ok := o.desktop.(clickNotifier); ok {
			c.OnClick(func() { s.relay.Send(desktopClickedMsg{}) })
		}
		if c, ok := o.desktop.(io.Closer); ok {
			s.closers = append(s.closers, c)
		}
	}
	s.Fanout.SetAlerts(cfg.Alerts.Sound, cfg.Alerts.Desktop)

	s.Bus.Subscribe(notify.TopicNewNotification, func(n model.Notification) {
		s.relay.Send(receivedMsg{at: time.Now()})
	})

	s.Transport = s.newTransport()
	s.Poller = appsync.New(s.Client, time.Duration(cfg.Center.PollIntervalSec)*time.Second)
	s.Inbox = inbox.New(s.Client)
	s.Inbox.OnChange(func() { s.relay.Send(inboxChangedMsg{}) })

	return s
}

// defaultDesktop prefers the session bus notification service, which
// supports expiry and clicks, and falls back to beeep elsewhere.
func defaultDesktop() notify.Desktop {
	d, err := notify.NewDBusDesktop()
	if err != nil {
		logrus.WithError(err).Info("desktop notifications via beeep")
		return notify.NewBeepDesktop()
	}
	return d
}

func (s *Services) newTransport() Transport {
	changed := func() { s.relay.Send(transportChangedMsg{}) }

	switch s.Config.Realtime.Transport {
	case TransportWebSocket:
		return &socketTransport{
			m:        socket.NewManager(socket.ConfigFrom(s.Config)),
			sink:     s.Fanout,
			perms:    s.Permissions,
			onChange: changed,
		}
	case TransportNone:
		return noTransport{perms: s.Permissions}
	case TransportSSE, "":
		return streamTransport{m: stream.NewManager(stream.ConfigFrom(s.Config), stream.Deps{
			Tokens:      s.Session,
			Dialer:      stream.HTTPDialer{},
			Sink:        s.Fanout,
			Lister:      s.Client,
			LastSeen:    s.Session,
			Permissions: s.Permissions,
			OnChange:    changed,
		})}
	default:
		logrus.WithField("transport", s.Config.Realtime.Transport).Warn("unknown realtime transport, falling back to polling")
		return noTransport{perms: s.Permissions}
	}
}

// Attach routes background messages to the running program.
func (s *Services) Attach(to Sender) {
	s.relay.attach(to)
}

// Shutdown stops the transport and the poller and releases the sinks.
func (s *Services) Shutdown() {
	s.Transport.Stop()
	s.Poller.Stop()
	for _, c := range s.closers {
		if err := c.Close(); err != nil {
			logrus.WithError(err).Warn("shutdown: closing sink failed")
		}
	}
	s.closers = nil
}
