package feed

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultReconnectDelay is the fixed pause between a lost connection and
	// the next dial.
	DefaultReconnectDelay = 2 * time.Second
	// UpdatesPath is where the backend serves the push channel.
	UpdatesPath = "/ws/updates"

	maxMessageSize = 4 << 20
	closeWait      = time.Second
)

// State is the link state reported through Options.OnState.
type State int

const (
	StateConnecting State = iota
	StateConnected
	StateDisconnected
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateDisconnected:
		return "disconnected"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Options configure a Manager.
type Options struct {
	URL            string
	ReconnectDelay time.Duration
	// Handler receives every parsed message in arrival order. It runs on the
	// read goroutine, so a slow handler delays reading rather than dropping
	// messages. A nil handler drops everything.
	Handler func(Message)
	OnState func(State)
	Dialer  *websocket.Dialer
	Header  http.Header
	// ReadTimeout bounds the wait for each frame. Zero waits forever.
	ReadTimeout time.Duration
	Logger      logrus.FieldLogger
}

// Manager owns a single push-channel connection and keeps it alive.
type Manager struct {
	opts     Options
	log      logrus.FieldLogger
	attempts atomic.Int64
	received atomic.Int64
	dropped  atomic.Int64
}

// New returns a Manager. Missing options fall back to defaults.
func New(opts Options) *Manager {
	if opts.ReconnectDelay <= 0 {
		opts.ReconnectDelay = DefaultReconnectDelay
	}
	if opts.Dialer == nil {
		opts.Dialer = websocket.DefaultDialer
	}
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Manager{
		opts: opts,
		log:  log.WithField("component", "feed"),
	}
}

// Attempts returns the number of dials made so far.
func (m *Manager) Attempts() int64 { return m.attempts.Load() }

// Received returns the number of parsed messages delivered to the handler.
func (m *Manager) Received() int64 { return m.received.Load() }

// Dropped returns the number of frames discarded as malformed.
func (m *Manager) Dropped() int64 { return m.dropped.Load() }

// Run connects and reconnects until ctx is done. Every lost connection,
// including a failed dial, is followed by the same fixed delay.
func (m *Manager) Run(ctx context.Context) error {
	for {
		m.setState(StateConnecting)
		err := m.session(ctx)
		m.setState(StateDisconnected)
		if ctx.Err() != nil {
			return nil
		}
		m.log.WithError(err).Warnf("connection lost, reconnecting in %s", m.opts.ReconnectDelay)

		timer := time.NewTimer(m.opts.ReconnectDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}
	}
}

func (m *Manager) session(ctx context.Context) error {
	n := m.attempts.Add(1)
	conn, _, err := m.opts.Dialer.DialContext(ctx, m.opts.URL, m.opts.Header)
	if err != nil {
		return fmt.Errorf("dial %s: %w", m.opts.URL, err)
	}
	defer conn.Close()

	m.log.WithField("attempt", n).Infof("connected to %s", m.opts.URL)
	m.setState(StateConnected)

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(closeWait))
			_ = conn.Close()
		case <-done:
		}
	}()

	conn.SetReadLimit(maxMessageSize)
	for {
		if m.opts.ReadTimeout > 0 {
			_ = conn.SetReadDeadline(time.Now().Add(m.opts.ReadTimeout))
		}
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				m.log.WithError(err).Debug("read error")
			}
			return err
		}

		msg, err := Parse(data)
		if err != nil {
			m.dropped.Add(1)
			m.log.WithError(err).Warn("discarding message")
			continue
		}
		m.deliver(msg)
	}
}

func (m *Manager) deliver(msg Message) {
	if m.opts.Handler == nil {
		m.dropped.Add(1)
		return
	}
	m.received.Add(1)
	m.opts.Handler(msg)
}

func (m *Manager) setState(s State) {
	if m.opts.OnState != nil {
		m.opts.OnState(s)
	}
}

// URLFromServer derives the push-channel URL from the backend's HTTP base URL.
func URLFromServer(base string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(base))
	if err != nil {
		return "", fmt.Errorf("parse server url: %w", err)
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported server scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("server url %q has no host", base)
	}
	u.Path = strings.TrimRight(u.Path, "/") + UpdatesPath
	u.RawQuery = ""
	u.Fragment = ""
	return u.String(), nil
}
