package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/transpoze/drivegate/pkg/drive"
	gwerrors "github.com/transpoze/drivegate/pkg/errors"
	"github.com/transpoze/drivegate/pkg/metrics"
)

// driveMetrics is the Prometheus implementation of drive.Metrics.
type driveMetrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	bytes      *prometheus.CounterVec
}

// NewDriveMetrics creates Drive API metrics.
//
// Returns nil if metrics are not enabled (InitRegistry not called).
func NewDriveMetrics() drive.Metrics {
	if !metrics.IsEnabled() {
		return nil
	}

	reg := metrics.GetRegistry()

	return &driveMetrics{
		operations: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "drivegate_drive_operations_total",
				Help: "Total number of Drive API calls by operation and result",
			},
			[]string{"operation", "status"}, // status: ok, not_found, invalid, error
		),
		duration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "drivegate_drive_operation_duration_milliseconds",
				Help: "Duration of Drive API calls in milliseconds",
				Buckets: []float64{
					10,    // metadata calls on a warm connection
					50,    //
					100,   //
					250,   // typical list/create
					500,   //
					1000,  // 1s
					2500,  //
					5000,  // small uploads
					15000, //
					60000, // large uploads
				},
			},
			[]string{"operation"},
		),
		bytes: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "drivegate_drive_bytes_total",
				Help: "Total bytes transferred to Drive by operation",
			},
			[]string{"operation"},
		),
	}
}

// ObserveOperation implements drive.Metrics.
func (m *driveMetrics) ObserveOperation(operation string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(operation, errorStatus(err)).Inc()
	m.duration.WithLabelValues(operation).Observe(float64(duration.Microseconds()) / 1000.0)
}

// RecordBytes implements drive.Metrics.
func (m *driveMetrics) RecordBytes(operation string, n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.bytes.WithLabelValues(operation).Add(float64(n))
}

// errorStatus buckets an error into a low-cardinality label.
func errorStatus(err error) string {
	switch {
	case err == nil:
		return "ok"
	case gwerrors.IsNotFoundError(err):
		return "not_found"
	case gwerrors.IsInvalidArgumentsError(err):
		return "invalid"
	default:
		return "error"
	}
}
