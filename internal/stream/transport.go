// Package stream keeps one physical connection to the scan hub alive and
// fans its pushed events out to any number of in-process subscribers, merging
// their interest filters into a single upstream subscription.
package stream

import (
	"context"
	"encoding/json"
)

// Callbacks receive transport lifecycle and event notifications. All of them
// are optional.
type Callbacks struct {
	// OnEvent delivers one named server event with its raw payload.
	OnEvent func(target string, payload json.RawMessage)
	// OnReconnecting fires when an established connection drops and the
	// transport starts retrying on its own.
	OnReconnecting func()
	// OnReconnected fires when the transport re-establishes the connection.
	OnReconnected func()
	// OnClosed fires when the transport shuts down for good.
	OnClosed func(err error)
}

// Transport is a bidirectional, auto-reconnecting push channel: named
// server-to-client events plus client-to-server invocations.
type Transport interface {
	// SetCallbacks installs the lifecycle/event callbacks. Must be called
	// before Connect.
	SetCallbacks(cb Callbacks)
	// Connect performs the initial handshake. After a successful Connect the
	// transport retries dropped connections by itself until Close.
	Connect(ctx context.Context) error
	// Invoke sends a named request to the server.
	Invoke(ctx context.Context, method string, args ...any) error
	// Close tears the connection down and stops any retrying.
	Close() error
}
