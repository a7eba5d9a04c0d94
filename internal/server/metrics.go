package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cropkit_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cropkit_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// Session lifecycle metrics
	sessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cropkit_sessions_active",
			Help: "Number of live editing sessions",
		},
	)

	sessionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cropkit_sessions_total",
			Help: "Total number of editing sessions created",
		},
	)

	// Gesture and save metrics
	gesturesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cropkit_gestures_total",
			Help: "Total number of recognized gestures by kind",
		},
		[]string{"kind"},
	)

	savesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cropkit_saves_total",
			Help: "Total number of save requests by outcome",
		},
		[]string{"outcome"}, // outcome: ok, rejected
	)

	websocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cropkit_websocket_connections",
			Help: "Number of active gesture stream connections",
		},
	)
)
