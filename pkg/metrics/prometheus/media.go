package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/transpoze/drivegate/pkg/metrics"
	"github.com/transpoze/drivegate/pkg/transcode"
	"github.com/transpoze/drivegate/pkg/uploads"
)

type uploadMetrics struct {
	uploads  *prometheus.CounterVec
	bytes    prometheus.Histogram
	duration prometheus.Histogram
}

// NewUploadMetrics creates upload metrics.
//
// Returns nil if metrics are not enabled (InitRegistry not called).
func NewUploadMetrics() uploads.Metrics {
	if !metrics.IsEnabled() {
		return nil
	}

	reg := metrics.GetRegistry()

	return &uploadMetrics{
		uploads: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "drivegate_uploads_total",
				Help: "Total number of file uploads by status",
			},
			[]string{"status"},
		),
		bytes: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Name: "drivegate_upload_bytes",
				Help: "Distribution of uploaded file sizes",
				Buckets: []float64{
					65536,     // 64KB
					1048576,   // 1MB
					10485760,  // 10MB - a few minutes of 16kHz PCM
					52428800,  // 50MB
					104857600, // 100MB
					536870912, // 512MB
				},
			},
		),
		duration: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "drivegate_upload_duration_seconds",
				Help:    "Duration of uploads in seconds",
				Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
			},
		),
	}
}

// ObserveUpload implements uploads.Metrics.
func (m *uploadMetrics) ObserveUpload(bytes int64, duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.uploads.WithLabelValues(errorStatus(err)).Inc()
	if err == nil {
		m.bytes.Observe(float64(bytes))
		m.duration.Observe(duration.Seconds())
	}
}

type transcodeMetrics struct {
	runs     *prometheus.CounterVec
	duration prometheus.Histogram
}

// NewTranscodeMetrics creates audio conversion metrics.
//
// Returns nil if metrics are not enabled (InitRegistry not called).
func NewTranscodeMetrics() transcode.Metrics {
	if !metrics.IsEnabled() {
		return nil
	}

	reg := metrics.GetRegistry()

	return &transcodeMetrics{
		runs: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "drivegate_transcode_total",
				Help: "Total number of ffmpeg conversions by status",
			},
			[]string{"status"},
		),
		duration: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "drivegate_transcode_duration_seconds",
				Help:    "Duration of ffmpeg conversions in seconds",
				Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
			},
		),
	}
}

// ObserveTranscode implements transcode.Metrics.
func (m *transcodeMetrics) ObserveTranscode(duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(errorStatus(err)).Inc()
	m.duration.Observe(duration.Seconds())
}
