package stream

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/algoscan/scand/internal/core/domain"
	"github.com/algoscan/scand/internal/metrics"
)

// State is the channel's connection state.
type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateReconnecting
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateReconnecting:
		return "reconnecting"
	}
	return "disconnected"
}

// CallbackID identifies a registered event callback for later removal.
type CallbackID uint64

type entry[T any] struct {
	id CallbackID
	fn func(T)
}

const (
	subscribeTimeout = 5000 * time.Millisecond
	subscribePoll    = 200 * time.Millisecond
	reconnectDelay   = 5000 * time.Millisecond
)

// Manager owns the single hub connection and all subscriber state: the
// pending filter set and the per-category callback registries. Public methods
// are safe for concurrent use.
type Manager struct {
	transport Transport
	log       *slog.Logger

	mu             sync.Mutex
	state          State
	closing        bool
	pending        []domain.SubscriptionFilter
	reconnectTimer *time.Timer
	nextID         CallbackID

	trades    []entry[domain.Trade]
	liquidity []entry[domain.Liquidity]
	pools     []entry[domain.Pool]
	aggPools  []entry[domain.AggregatedPool]
	blocks    []entry[domain.BlockEvent]
	assets    []entry[domain.AssetEvent]
}

// NewManager creates a channel manager over the transport. Nothing connects
// until Connect or the first Subscribe.
func NewManager(t Transport, log *slog.Logger) *Manager {
	if log == nil {
		log = slog.Default()
	}
	m := &Manager{transport: t, log: log}
	t.SetCallbacks(Callbacks{
		OnEvent:        m.dispatch,
		OnReconnecting: m.onReconnecting,
		OnReconnected:  m.onReconnected,
		OnClosed:       m.onClosed,
	})
	return m
}

// Connect starts a connection attempt unless one is already up or underway.
// Failures schedule a retry after a fixed delay; they are never surfaced to
// the caller.
func (m *Manager) Connect() {
	m.mu.Lock()
	if m.state == StateConnecting || m.state == StateConnected {
		m.mu.Unlock()
		return
	}
	m.state = StateConnecting
	m.closing = false
	m.mu.Unlock()

	go m.connect()
}

func (m *Manager) connect() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := m.transport.Connect(ctx); err != nil {
		m.log.Warn("Hub connection failed", "error", err)
		m.setState(StateDisconnected)
		m.scheduleReconnect()
		return
	}

	m.setState(StateConnected)
	m.log.Info("Hub connected")

	if err := m.transport.Invoke(context.Background(), "TestConnection"); err != nil {
		m.log.Debug("Test connection invoke failed", "error", err)
	}
}

// Disconnect tears the channel down: stops reconnect attempts, closes the
// transport, clears the pending filter set and detaches every event listener.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	m.closing = true
	if m.reconnectTimer != nil {
		m.reconnectTimer.Stop()
		m.reconnectTimer = nil
	}
	m.pending = nil
	m.trades = nil
	m.liquidity = nil
	m.pools = nil
	m.aggPools = nil
	m.blocks = nil
	m.assets = nil
	m.state = StateDisconnected
	m.mu.Unlock()

	metrics.StreamConnected.Set(0)
	if err := m.transport.Close(); err != nil {
		m.log.Debug("Transport close failed", "error", err)
	}
}

// ConnectionState reports whether the channel is currently connected.
func (m *Manager) ConnectionState() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state == StateConnected
}

// State returns the channel state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Subscribe registers the filter into the pending set (idempotent on
// structurally-equal filters) and sends the server the merged union of all
// pending filters. When the channel is not connected, Subscribe kicks off a
// connection and waits up to 5 s for it; on timeout the call is abandoned
// with a log line — the filter stays pending and will be issued by the
// reconnect path once a connection succeeds.
func (m *Manager) Subscribe(filter domain.SubscriptionFilter) {
	m.mu.Lock()
	known := false
	for _, f := range m.pending {
		if f.Equal(filter) {
			known = true
			break
		}
	}
	if !known {
		m.pending = append(m.pending, filter)
	}
	state := m.state
	m.mu.Unlock()

	if state == StateDisconnected {
		m.Connect()
	}

	if !m.waitConnected(subscribeTimeout) {
		m.log.Warn("Not subscribed: connection timeout", "timeout", subscribeTimeout)
		return
	}
	m.issueMerged()
}

// UnsubscribeFilter removes the structurally-matching filter from the pending
// set. With filters remaining the merged subscription is re-issued; with none
// remaining the upstream subscription is dropped.
func (m *Manager) UnsubscribeFilter(filter domain.SubscriptionFilter) {
	m.mu.Lock()
	for i, f := range m.pending {
		if f.Equal(filter) {
			m.pending = append(m.pending[:i], m.pending[i+1:]...)
			break
		}
	}
	remaining := len(m.pending)
	connected := m.state == StateConnected
	m.mu.Unlock()

	if !connected {
		return
	}
	if remaining > 0 {
		m.issueMerged()
		return
	}
	if err := m.transport.Invoke(context.Background(), "Unsubscribe"); err != nil {
		m.log.Warn("Error unsubscribing", "error", err)
		return
	}
	m.log.Info("Unsubscribed from all updates")
}

// Unsubscribe clears the entire pending set and drops the upstream
// subscription.
func (m *Manager) Unsubscribe() {
	m.mu.Lock()
	m.pending = nil
	connected := m.state == StateConnected
	m.mu.Unlock()

	if !connected {
		return
	}
	if err := m.transport.Invoke(context.Background(), "Unsubscribe"); err != nil {
		m.log.Warn("Error unsubscribing", "error", err)
	}
}

func (m *Manager) waitConnected(timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for {
		if m.ConnectionState() {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(subscribePoll)
	}
}

// issueMerged sends the union of all pending filters upstream.
func (m *Manager) issueMerged() {
	m.mu.Lock()
	if len(m.pending) == 0 {
		m.mu.Unlock()
		return
	}
	merged := domain.MergeSubscriptionFilters(m.pending)
	m.mu.Unlock()

	if err := m.transport.Invoke(context.Background(), "Subscribe", merged); err != nil {
		m.log.Warn("Error subscribing", "error", err)
		return
	}
	m.log.Info("Subscribed with merged filter",
		"pools", len(merged.PoolsAddresses),
		"aggregated_pools", len(merged.AggregatedPoolsIds),
		"assets", len(merged.AssetIds))
}

func (m *Manager) setState(s State) {
	m.mu.Lock()
	m.state = s
	m.mu.Unlock()
	if s == StateConnected {
		metrics.StreamConnected.Set(1)
	} else {
		metrics.StreamConnected.Set(0)
	}
}

func (m *Manager) onReconnecting() {
	m.log.Info("Hub reconnecting")
	metrics.StreamReconnects.Inc()
	m.setState(StateReconnecting)
}

// onReconnected re-issues the merged filter: the server keeps no subscription
// state across a physical reconnect.
func (m *Manager) onReconnected() {
	m.log.Info("Hub reconnected")
	m.setState(StateConnected)

	m.mu.Lock()
	hasPending := len(m.pending) > 0
	m.mu.Unlock()
	if hasPending {
		m.issueMerged()
	}
}

func (m *Manager) onClosed(err error) {
	m.mu.Lock()
	closing := m.closing
	m.mu.Unlock()

	m.setState(StateDisconnected)
	if closing {
		return
	}
	m.log.Warn("Hub connection closed", "error", err)
	m.scheduleReconnect()
}

func (m *Manager) scheduleReconnect() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closing {
		return
	}
	if m.reconnectTimer != nil {
		m.reconnectTimer.Stop()
	}
	m.reconnectTimer = time.AfterFunc(reconnectDelay, m.Connect)
}
