package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// TokenSupplier produces the bearer token presented on every (re)connection
// attempt. A failing supplier fails that attempt.
type TokenSupplier func(ctx context.Context) (string, error)

// WSConfig holds websocket transport settings.
type WSConfig struct {
	URL              string
	TokenSupplier    TokenSupplier
	HandshakeTimeout time.Duration
	RetryDelay       time.Duration
}

// wsEnvelope is one hub frame in either direction.
type wsEnvelope struct {
	Type      string          `json:"type"`
	Target    string          `json:"target,omitempty"`
	Arguments []any           `json:"arguments,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

const (
	frameInvoke = "invoke"
	frameEvent  = "event"
)

// WSTransport implements Transport over a websocket: named JSON event frames
// from the server, invoke frames to it, and an internal retry loop that
// re-dials (re-acquiring the auth token) whenever an established connection
// drops.
type WSTransport struct {
	cfg WSConfig
	log *slog.Logger

	cb Callbacks

	mu     sync.Mutex
	conn   *websocket.Conn
	closed bool

	writeMu sync.Mutex
}

// NewWSTransport creates the websocket transport.
func NewWSTransport(cfg WSConfig, log *slog.Logger) *WSTransport {
	if log == nil {
		log = slog.Default()
	}
	if cfg.HandshakeTimeout == 0 {
		cfg.HandshakeTimeout = 10 * time.Second
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = 5 * time.Second
	}
	return &WSTransport{cfg: cfg, log: log}
}

// SetCallbacks installs the lifecycle callbacks.
func (t *WSTransport) SetCallbacks(cb Callbacks) {
	t.cb = cb
}

// Connect dials the hub and starts the read loop.
func (t *WSTransport) Connect(ctx context.Context) error {
	conn, err := t.dial(ctx)
	if err != nil {
		return err
	}

	t.mu.Lock()
	t.conn = conn
	t.closed = false
	t.mu.Unlock()

	go t.readLoop(conn)
	return nil
}

func (t *WSTransport) dial(ctx context.Context) (*websocket.Conn, error) {
	header := http.Header{}
	if t.cfg.TokenSupplier != nil {
		token, err := t.cfg.TokenSupplier(ctx)
		if err != nil {
			return nil, fmt.Errorf("acquire auth token: %w", err)
		}
		header.Set("Authorization", token)
	}

	dialer := websocket.Dialer{HandshakeTimeout: t.cfg.HandshakeTimeout}
	conn, resp, err := dialer.DialContext(ctx, t.cfg.URL, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial %s: status %d: %w", t.cfg.URL, resp.StatusCode, err)
		}
		return nil, fmt.Errorf("dial %s: %w", t.cfg.URL, err)
	}
	return conn, nil
}

// Invoke sends a named request frame to the server.
func (t *WSTransport) Invoke(ctx context.Context, method string, args ...any) error {
	t.mu.Lock()
	conn := t.conn
	t.mu.Unlock()
	if conn == nil {
		return errors.New("transport not connected")
	}

	env := wsEnvelope{Type: frameInvoke, Target: method, Arguments: args}

	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetWriteDeadline(deadline)
		defer conn.SetWriteDeadline(time.Time{})
	}
	if err := conn.WriteJSON(env); err != nil {
		return fmt.Errorf("invoke %s: %w", method, err)
	}
	return nil
}

// Close shuts the transport down and stops retrying.
func (t *WSTransport) Close() error {
	t.mu.Lock()
	t.closed = true
	conn := t.conn
	t.conn = nil
	t.mu.Unlock()

	if conn != nil {
		return conn.Close()
	}
	return nil
}

func (t *WSTransport) isClosed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}

func (t *WSTransport) readLoop(conn *websocket.Conn) {
	for {
		var env wsEnvelope
		if err := conn.ReadJSON(&env); err != nil {
			if t.isClosed() {
				if t.cb.OnClosed != nil {
					t.cb.OnClosed(nil)
				}
				return
			}
			t.log.Warn("Hub read failed", "error", err)
			if t.cb.OnReconnecting != nil {
				t.cb.OnReconnecting()
			}
			t.retryLoop()
			return
		}

		if env.Type == frameEvent || env.Type == "" {
			if t.cb.OnEvent != nil && env.Target != "" {
				t.cb.OnEvent(env.Target, env.Payload)
			}
		}
	}
}

// retryLoop re-dials until it succeeds or the transport is closed. Each
// attempt re-acquires the auth token.
func (t *WSTransport) retryLoop() {
	for {
		if t.isClosed() {
			if t.cb.OnClosed != nil {
				t.cb.OnClosed(nil)
			}
			return
		}

		time.Sleep(t.cfg.RetryDelay)

		ctx, cancel := context.WithTimeout(context.Background(), t.cfg.HandshakeTimeout)
		conn, err := t.dial(ctx)
		cancel()
		if err != nil {
			t.log.Warn("Hub redial failed", "error", err)
			continue
		}

		t.mu.Lock()
		if t.closed {
			t.mu.Unlock()
			conn.Close()
			if t.cb.OnClosed != nil {
				t.cb.OnClosed(nil)
			}
			return
		}
		t.conn = conn
		t.mu.Unlock()

		if t.cb.OnReconnected != nil {
			t.cb.OnReconnected()
		}
		go t.readLoop(conn)
		return
	}
}
