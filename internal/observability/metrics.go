// Package observability provides logging, metrics, and tracing.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// VIPAttempts counts guest-list verification attempts by step and result.
	VIPAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "archives_vip_attempts_total",
		Help: "Total VIP verification attempts by step and result",
	}, []string{"step", "result"})

	// Likes counts accepted likes.
	Likes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "archives_likes_total",
		Help: "Total number of accepted likes",
	})

	// Comments counts persisted comments.
	Comments = promauto.NewCounter(prometheus.CounterOpts{
		Name: "archives_comments_total",
		Help: "Total number of persisted comments",
	})

	// VaultUnlocks counts visitors entering the vault for the first time.
	VaultUnlocks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "archives_vault_unlocks_total",
		Help: "Total number of vault unlocks",
	})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "archives_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}

// RecordVIPAttempt increments the attempt counter for a flow step.
func RecordVIPAttempt(step string, ok bool) {
	result := "miss"
	if ok {
		result = "match"
	}
	VIPAttempts.WithLabelValues(step, result).Inc()
}
