// Package httptransport assembles the HTTP surface: router, middleware
// chain, and operational endpoints. Handlers delegate to domain services so
// transport concerns remain isolated.
package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	decisionhandler "verdict/internal/decision/handler"
	"verdict/internal/platform/middleware"
	"verdict/pkg/platform/httputil"
	"verdict/pkg/platform/middleware/requesttime"
)

// NewRouter wires all endpoints. Operational routes stay outside the auth
// chain; everything else requires a bearer token and runs with a pinned
// request time and project scope.
func NewRouter(decisions *decisionhandler.Handler, validator middleware.JWTValidator, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requesttime.Middleware)

	r.Get("/healthz", handleHealthz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(validator, logger))
		r.Use(middleware.ProjectScope)
		decisions.Register(r)
	})
	return r
}

func handleHealthz(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
