package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ResolverLookups tracks transaction resolution attempts per source and outcome.
	ResolverLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scand_resolver_lookups_total",
			Help: "Transaction resolver lookups by source and outcome",
		},
		[]string{"source", "outcome"},
	)

	// GatewayCalls tracks upstream calls per service and method.
	GatewayCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scand_gateway_calls_total",
			Help: "Upstream gateway calls",
		},
		[]string{"upstream", "method"},
	)

	// GatewayErrors tracks failed upstream calls.
	GatewayErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scand_gateway_errors_total",
			Help: "Failed upstream gateway calls",
		},
		[]string{"upstream", "method"},
	)

	// AssetFetches tracks asset metadata fetches by outcome.
	AssetFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scand_asset_fetches_total",
			Help: "Asset metadata fetches",
		},
		[]string{"outcome"},
	)

	// AssetQueueDepth tracks the pending asset request queue length.
	AssetQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "scand_asset_queue_depth",
			Help: "Pending asset metadata requests",
		},
	)

	// StreamEvents tracks hub events received per category.
	StreamEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scand_stream_events_total",
			Help: "Hub events received",
		},
		[]string{"category"},
	)

	// StreamReconnects tracks hub reconnect attempts.
	StreamReconnects = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scand_stream_reconnects_total",
			Help: "Hub reconnect attempts",
		},
	)

	// StreamConnected reports the current hub connection state (1 connected).
	StreamConnected = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "scand_stream_connected",
			Help: "Hub connection state",
		},
	)
)
