package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/transpoze/drivegate/pkg/api/handlers"
	"github.com/transpoze/drivegate/pkg/api/middleware"
	"github.com/transpoze/drivegate/pkg/gateway"
)

// LegacyPrefix is an alias mount for clients written against the
// /api-prefixed paths.
const LegacyPrefix = middleware.LegacyPrefix

// NewRouter creates and configures the chi router with all middleware and routes.
//
// The router is configured with:
//   - Request ID middleware for request tracking
//   - Real IP extraction for proper client identification
//   - Request context: tracing span, log context, access log, metrics
//   - Panic recovery to prevent server crashes
//   - Per-client rate limiting (health probes exempt)
//   - Request timeout to prevent hung requests
//
// Every API route is served both at the root and under /api.
func NewRouter(cfg APIConfig, svc *gateway.Service, metrics middleware.Metrics) http.Handler {
	cfg.ApplyDefaults()

	r := chi.NewRouter()

	// Middleware stack - order matters
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestContext(metrics))
	r.Use(chimw.Recoverer)
	if cfg.RateLimit.Enabled {
		r.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}, metrics))
	}
	r.Use(chimw.Timeout(cfg.RequestTimeout))

	routes := apiRoutes(svc)
	r.Group(routes)
	r.Route(LegacyPrefix, routes)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		handlers.NotFound(w, "no route for "+r.Method+" "+r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		handlers.WriteProblem(w, http.StatusMethodNotAllowed, "Method Not Allowed",
			r.Method+" is not supported on "+r.URL.Path)
	})

	// Root redirect to health for convenience
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/health", http.StatusTemporaryRedirect)
	})

	return r
}

func apiRoutes(svc *gateway.Service) func(chi.Router) {
	healthHandler := handlers.NewHealthHandler(svc)
	folderHandler := handlers.NewFolderHandler(svc)
	fileHandler := handlers.NewFileHandler(svc)
	recordingHandler := handlers.NewRecordingHandler(svc)

	return func(r chi.Router) {
		r.Route("/health", func(r chi.Router) {
			r.Get("/", healthHandler.Liveness)
			r.Get("/ready", healthHandler.Readiness)
		})

		r.Route("/folders", func(r chi.Router) {
			r.Post("/find", folderHandler.Find)
			r.Post("/create", folderHandler.Create)
			r.Post("/ensure", folderHandler.Ensure)
			r.Post("/hierarchy", folderHandler.Hierarchy)
			r.Get("/root", folderHandler.Root)
			r.Post("/shareWithPersonal", folderHandler.ShareWithPersonal)
			r.Delete("/deleteAll", folderHandler.DeleteAll)
			r.Get("/{id}/contents", folderHandler.Contents)
			r.Delete("/{id}", folderHandler.Delete)
		})

		r.Route("/files", func(r chi.Router) {
			r.Post("/upload", fileHandler.Upload)
			r.Get("/{id}", fileHandler.Get)
			r.Post("/{id}/share", fileHandler.Share)
			r.Post("/{id}/getLink", fileHandler.GetLink)
			r.Post("/{id}/copy", fileHandler.Copy)
		})

		r.Get("/search", fileHandler.Search)
		r.Post("/recordings/save", recordingHandler.Save)
	}
}
