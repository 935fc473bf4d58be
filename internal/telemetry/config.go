package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// ServiceName identifies the gateway in traces and profiles.
const ServiceName = "drivegate"

// Deployment describes the running gateway. It is attached to traces as
// resource attributes and to profiles as tags.
type Deployment struct {
	Version      string
	DriveBackend string // google or memory
	CacheType    string // memory, lru or badger
}

func (d Deployment) version() string {
	if d.Version == "" {
		return "dev"
	}
	return d.Version
}

// Tags returns the deployment as Pyroscope tags.
func (d Deployment) Tags() map[string]string {
	tags := map[string]string{"version": d.version()}
	if d.DriveBackend != "" {
		tags["drive_backend"] = d.DriveBackend
	}
	if d.CacheType != "" {
		tags["cache_type"] = d.CacheType
	}
	return tags
}

// Attributes returns the deployment as trace resource attributes.
func (d Deployment) Attributes() []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		semconv.ServiceName(ServiceName),
		semconv.ServiceVersion(d.version()),
	}
	if d.DriveBackend != "" {
		attrs = append(attrs, attribute.String(AttrDriveBackend, d.DriveBackend))
	}
	if d.CacheType != "" {
		attrs = append(attrs, attribute.String(AttrCacheType, d.CacheType))
	}
	return attrs
}

// Config configures trace export.
type Config struct {
	Enabled bool

	// Endpoint is the OTLP gRPC collector, host:port.
	Endpoint string

	// Insecure dials the collector without TLS.
	Insecure bool

	// SampleRate is the fraction of new traces kept. Incoming sampled
	// parents are always honored.
	SampleRate float64

	Deployment Deployment
}
