// Package metrics holds the per-run counters of a playlist refresh. Runs are
// short-lived (cron), so instead of a /metrics endpoint the registry is dumped
// to a node-exporter textfile.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "sctv_playlist"

// Page labels.
const (
	PageChannels = "channels"
	PageIcons    = "icons"
)

// Run records one refresh. Registry is private to the run; nothing is
// registered globally.
type Run struct {
	Registry *prometheus.Registry

	RowsParsed        *prometheus.CounterVec // by page
	FetchFailures     *prometheus.CounterVec // by page
	IconsIndexed      prometheus.Gauge
	ChannelsRaw       prometheus.Gauge
	ChannelsFiltered  prometheus.Gauge
	ChannelsProcessed prometheus.Gauge
	PlaylistEntries   *prometheus.GaugeVec // by mode
	LastRun           prometheus.Gauge
}

// New returns a Run with every collector registered.
func New() *Run {
	r := &Run{
		Registry: prometheus.NewRegistry(),
		RowsParsed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "rows_parsed_total",
			Help: "Table rows parsed from each EPG page.",
		}, []string{"page"}),
		FetchFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "fetch_failures_total",
			Help: "EPG page fetches that failed and were treated as empty.",
		}, []string{"page"}),
		IconsIndexed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "icons_indexed",
			Help: "Distinct channel names with a logo URL.",
		}),
		ChannelsRaw: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "channels_raw",
			Help: "Channel rows read from the multicast table.",
		}),
		ChannelsFiltered: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "channels_filtered",
			Help: "Channel rows dropped by filter keywords.",
		}),
		ChannelsProcessed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "channels_processed",
			Help: "Channels written to each playlist.",
		}),
		PlaylistEntries: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "playlist_entries",
			Help: "Entries in the last written playlist, by address mode.",
		}, []string{"mode"}),
		LastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "last_run_timestamp_seconds",
			Help: "Unix time the last successful run finished.",
		}),
	}
	r.Registry.MustRegister(
		r.RowsParsed, r.FetchFailures, r.IconsIndexed,
		r.ChannelsRaw, r.ChannelsFiltered, r.ChannelsProcessed,
		r.PlaylistEntries, r.LastRun,
	)
	return r
}

// MarkDone stamps LastRun with t.
func (r *Run) MarkDone(t time.Time) {
	r.LastRun.Set(float64(t.Unix()))
}

// WriteTextfile writes the registry in text exposition format to path,
// atomically (temp file + rename).
func (r *Run) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.Registry)
}
