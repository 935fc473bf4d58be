// Package middleware provides HTTP middleware for the drivegate API.
package middleware

import "time"

// Metrics records HTTP request statistics. A nil Metrics disables
// collection.
type Metrics interface {
	// RecordRequest records a completed request. route is the matched chi
	// pattern, or "" when nothing matched.
	RecordRequest(method, route string, status int, duration time.Duration)

	// RecordRateLimited counts a request rejected by the rate limiter.
	RecordRateLimited()
}
