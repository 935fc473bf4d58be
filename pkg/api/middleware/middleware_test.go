package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	method string
	route  string
	status int
}

type fakeMetrics struct {
	mu          sync.Mutex
	requests    []recordedRequest
	rateLimited int
}

func (m *fakeMetrics) RecordRequest(method, route string, status int, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, recordedRequest{method, route, status})
}

func (m *fakeMetrics) RecordRateLimited() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rateLimited++
}

func okHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.1.2.3:4567"
	assert.Equal(t, "10.1.2.3", ClientIP(req))

	req.RemoteAddr = "10.9.9.9"
	assert.Equal(t, "10.9.9.9", ClientIP(req))
}

func TestIsHealthPath(t *testing.T) {
	assert.True(t, isHealthPath("/health"))
	assert.True(t, isHealthPath("/health/ready"))
	assert.True(t, isHealthPath("/api/health"))
	assert.False(t, isHealthPath("/folders/find"))
	assert.False(t, isHealthPath("/api/folders/root"))
}

func TestRequestContextRecordsRoutePattern(t *testing.T) {
	m := &fakeMetrics{}
	r := chi.NewRouter()
	r.Use(RequestContext(m))
	r.Get("/files/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	r.Get("/ok", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("fine"))
	})

	for _, path := range []string{"/files/abc", "/ok"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	}

	require.Len(t, m.requests, 2)
	assert.Equal(t, recordedRequest{http.MethodGet, "/files/{id}", http.StatusNotFound}, m.requests[0])
	assert.Equal(t, recordedRequest{http.MethodGet, "/ok", http.StatusOK}, m.requests[1])
}

func TestRequestContextNilMetrics(t *testing.T) {
	h := RequestContext(nil)(http.HandlerFunc(okHandler))
	w := httptest.NewRecorder()

	assert.NotPanics(t, func() {
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimitRejectsBurstOverflow(t *testing.T) {
	m := &fakeMetrics{}
	h := RateLimit(RateLimitConfig{RequestsPerSecond: 0.001, Burst: 2}, m)(http.HandlerFunc(okHandler))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/folders/root", nil)
		req.RemoteAddr = "192.0.2.1:1000"
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
	assert.Equal(t, 1, m.rateLimited)
}

func TestRateLimitIsPerClient(t *testing.T) {
	h := RateLimit(RateLimitConfig{RequestsPerSecond: 0.001, Burst: 1}, nil)(http.HandlerFunc(okHandler))

	for _, addr := range []string{"192.0.2.1:1", "192.0.2.2:1"} {
		req := httptest.NewRequest(http.MethodGet, "/search", nil)
		req.RemoteAddr = addr
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, addr)
	}
}

func TestRateLimitExemptsHealth(t *testing.T) {
	h := RateLimit(RateLimitConfig{RequestsPerSecond: 0.001, Burst: 1}, nil)(http.HandlerFunc(okHandler))

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.RemoteAddr = "192.0.2.1:1"
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestRateLimitDisabled(t *testing.T) {
	h := RateLimit(RateLimitConfig{}, nil)(http.HandlerFunc(okHandler))

	for i := 0; i < 10; i++ {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/search", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestRateLimiterSweepsIdleEntries(t *testing.T) {
	l := newRateLimiter(RateLimitConfig{
		RequestsPerSecond: 1,
		Burst:             1,
		EntryTTL:          time.Minute,
		CleanupInterval:   time.Second,
	})
	now := time.Now()
	l.now = func() time.Time { return now }

	assert.True(t, l.allow("a"))
	assert.True(t, l.allow("b"))
	assert.Equal(t, 2, l.size())

	now = now.Add(2 * time.Minute)
	assert.True(t, l.allow("c"))
	assert.Equal(t, 1, l.size())
}
