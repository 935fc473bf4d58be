package middleware

import (
	"net"
	"net/http"
)

// ClientIP returns the request's client address without the port.
// It expects chi's RealIP middleware to have run first.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
