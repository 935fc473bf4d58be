package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/transpoze/drivegate/pkg/folders"
	"github.com/transpoze/drivegate/pkg/metrics"
)

// folderMetrics is the Prometheus implementation of folders.Metrics.
type folderMetrics struct {
	lookups     *prometheus.CounterVec
	resolutions *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	cacheSize   prometheus.Gauge
}

// NewFolderMetrics creates path cache and resolver metrics.
//
// Returns nil if metrics are not enabled (InitRegistry not called).
func NewFolderMetrics() folders.Metrics {
	if !metrics.IsEnabled() {
		return nil
	}

	reg := metrics.GetRegistry()

	return &folderMetrics{
		lookups: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "drivegate_folder_cache_lookups_total",
				Help: "Total number of path cache lookups by result",
			},
			[]string{"result"}, // hit, miss
		),
		resolutions: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "drivegate_folder_resolutions_total",
				Help: "Total number of folder resolutions by outcome",
			},
			[]string{"outcome"}, // cached, found, created, error
		),
		duration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "drivegate_folder_resolution_duration_milliseconds",
				Help:    "Duration of folder resolutions in milliseconds",
				Buckets: []float64{0.1, 1, 10, 100, 250, 500, 1000, 2500, 5000},
			},
			[]string{"outcome"},
		),
		cacheSize: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "drivegate_folder_cache_entries",
				Help: "Number of entries currently held by the path cache",
			},
		),
	}
}

// RecordLookup implements folders.Metrics.
func (m *folderMetrics) RecordLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.lookups.WithLabelValues(result).Inc()
}

// RecordResolution implements folders.Metrics.
func (m *folderMetrics) RecordResolution(outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.resolutions.WithLabelValues(outcome).Inc()
	m.duration.WithLabelValues(outcome).Observe(float64(duration.Microseconds()) / 1000.0)
}

// SetCacheSize implements folders.Metrics.
func (m *folderMetrics) SetCacheSize(n int) {
	if m == nil {
		return
	}
	m.cacheSize.Set(float64(n))
}
