// Package metrics provides Prometheus instrumentation for the filetree
// search service.
//
// All metrics are prefixed with "filetree_search_" to avoid naming
// collisions with other applications. Metrics are registered with the
// default Prometheus registry via promauto; expose them by mounting
// promhttp.Handler() on the metrics endpoint:
//
//	import "github.com/prometheus/client_golang/prometheus/promhttp"
//
//	mux.Handle("/metrics", promhttp.Handler())
//
// # Metric Categories
//
//   - HTTP: request counts, duration, and in-flight gauge
//   - Database: query counts and latency, transaction duration, rows
//     affected, open connections, and file sizes (main, WAL, SHM)
//   - Scanner: library scan runs, duration, files scanned, tag read errors
//   - Index: rebuild counts and duration, node/entry gauges, search query
//     counts and latency, hidden-node gauge
//   - Export: selection export counts by format and entries per export
//   - Artwork: thumbnail request outcomes, generation latency, cache size
//   - Library: track/artist/album/genre totals
//   - Auth: authentication attempts and active sessions
//   - AppInfo: build version, commit, and Go version labels
//
// # Recording Metrics
//
// To record metrics from other packages, import this package and use the
// exported metric variables:
//
//	import "filetree-search/internal/metrics"
//
//	metrics.SearchesTotal.Inc()
//	metrics.DBQueryDuration.WithLabelValues("all_tracks").Observe(0.012)
//	metrics.IndexNodesTotal.Set(1234)
//
// # Collector
//
// The package provides a [Collector] type that periodically gathers
// statistics from a [StatsProvider] and updates the library gauges and
// database file size metrics:
//
//	collector := metrics.NewCollector(statsProvider, dbPath, 1*time.Minute)
//	collector.Start()
//	defer collector.Stop()
package metrics
