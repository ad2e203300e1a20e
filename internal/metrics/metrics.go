package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Connection metrics
	Connects = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_connects_total",
			Help: "Total accepted WebSocket connections",
		},
		[]string{"namespace"}, // "chat" or "webrtc"
	)

	Disconnects = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_disconnects_total",
			Help: "Total closed WebSocket connections",
		},
		[]string{"namespace"},
	)

	// Message metrics
	MessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gateway_messages_sent_total",
			Help: "Total chat messages accepted from clients",
		},
	)

	MessagesDelivered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gateway_messages_delivered_total",
			Help: "Total chat messages written to local clients",
		},
	)

	SignalsRelayed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gateway_signals_relayed_total",
			Help: "Total call signaling payloads relayed",
		},
	)

	// Bus metrics
	BusPublishes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_bus_publishes_total",
			Help: "Total payloads handed to the fanout bus",
		},
		[]string{"topic"},
	)

	BusSheds = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_bus_sheds_total",
			Help: "Total publishes shed from full per-room queues",
		},
		[]string{"topic"},
	)

	// Degradation metrics
	StoreDegradedOps = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gateway_store_degraded_ops_total",
			Help: "Total presence store operations served locally after a store failure",
		},
	)

	CacheDegradedOps = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gateway_cache_degraded_ops_total",
			Help: "Total message cache operations served from memory after a cache failure",
		},
	)

	ValidationFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gateway_validation_failures_total",
			Help: "Total inbound frames rejected at the protocol boundary",
		},
	)
)
