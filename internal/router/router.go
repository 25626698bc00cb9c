// Package router assembles the HTTP surface: middleware chain, public routes,
// and the authenticated subtree.
package router

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"buslink/internal/audit"
	feedbackhandler "buslink/internal/feedback/handler"
	identityhandler "buslink/internal/identity/handler"
	"buslink/internal/platform/metrics"
	"buslink/internal/platform/middleware"
	universityhandler "buslink/internal/university/handler"
	userhandler "buslink/internal/user/handler"
	"buslink/pkg/httputil"
)

// Handlers groups the route registrars the router mounts.
type Handlers struct {
	Identity   *identityhandler.Handler
	User       *userhandler.Handler
	Feedback   *feedbackhandler.Handler
	University *universityhandler.Handler
}

// Deps carries everything the router needs beyond the handlers themselves.
// Recorder and Ready may be nil: no audit trail for rejected credentials and
// an always-ready readiness probe.
type Deps struct {
	Verifier middleware.TokenVerifier
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
	Recorder audit.Recorder
	// Ready pings the record-store backend for the readiness probe.
	Ready func(ctx context.Context) error
}

// New builds the full request handler. basePath prefixes the API routes;
// health, readiness, and metrics stay at the root so probes and scrapers
// need no configuration.
func New(basePath string, h Handlers, deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.Logger(deps.Logger, deps.Metrics))
	r.Use(middleware.CORS)
	r.Use(middleware.ContentTypeJSON)
	r.Use(middleware.ClientMetadata)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/health", handleHealth)
	r.Get("/ready", handleReady(deps.Ready, deps.Logger))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route(basePath, func(api chi.Router) {
		h.Identity.Register(api)
		h.University.Register(api)
		h.Feedback.RegisterPublic(api)

		api.Group(func(protected chi.Router) {
			protected.Use(middleware.RequireAuth(deps.Verifier, deps.Logger, deps.Metrics, deps.Recorder))
			h.User.Register(protected)
			h.Feedback.RegisterProtected(protected)
		})
	})

	return r
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady reports whether the record-store backend is reachable. With no
// check configured the process is ready as soon as it serves.
func handleReady(ready func(ctx context.Context) error, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ready != nil {
			if err := ready(r.Context()); err != nil {
				logger.ErrorContext(r.Context(), "readiness check failed", "error", err)
				httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}
