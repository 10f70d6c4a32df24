package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ReportsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cloudban_reports_total",
		Help: "Report submissions by result (accepted, blocked).",
	}, []string{"result"})

	DecisionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cloudban_decisions_total",
		Help: "Admin decisions on ban records by action.",
	}, []string{"action"})

	CacheLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cloudban_cache_lookups_total",
		Help: "Read-through cache lookups by cache and result (hit, miss, error).",
	}, []string{"cache", "result"})

	HWICBlocksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cloudban_hwic_block_changes_total",
		Help: "Device block registry changes by action.",
	}, []string{"action"})

	FeedConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "cloudban_feed_connections",
		Help: "Open admin feed websocket connections on this instance.",
	})

	FeedEventsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cloudban_feed_events_dropped_total",
		Help: "Feed events dropped because a client send buffer was full.",
	})

	ExportsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cloudban_exports_total",
		Help: "Banlist snapshot exports by result.",
	}, []string{"result"})
)

// RecordReport records a report submission outcome.
func RecordReport(accepted bool) {
	if accepted {
		ReportsTotal.WithLabelValues("accepted").Inc()
	} else {
		ReportsTotal.WithLabelValues("blocked").Inc()
	}
}

// RecordDecision records an admin action such as approve_ban.
func RecordDecision(action string) {
	DecisionsTotal.WithLabelValues(action).Inc()
}

// RecordCacheLookup records the outcome of a read-through cache lookup.
func RecordCacheLookup(cache, result string) {
	CacheLookupsTotal.WithLabelValues(cache, result).Inc()
}

// RecordHWICChange records a block or unblock.
func RecordHWICChange(action string) {
	HWICBlocksTotal.WithLabelValues(action).Inc()
}

// RecordExport records a snapshot export attempt.
func RecordExport(success bool) {
	if success {
		ExportsTotal.WithLabelValues("success").Inc()
	} else {
		ExportsTotal.WithLabelValues("failure").Inc()
	}
}
