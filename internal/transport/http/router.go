// Package httptransport assembles the HTTP surface: the shared middleware
// chain, per-feature route registration, and operational endpoints.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"bims/internal/platform/metrics"
	"bims/internal/platform/middleware"
	"bims/internal/transport/http/shared"
)

// FeatureHandler registers a feature's routes on the router. All feature
// packages expose this shape.
type FeatureHandler interface {
	Register(r chi.Router)
}

// Deps carries everything the router needs wired in.
type Deps struct {
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
	Health   func() error
	Features []FeatureHandler
}

// NewRouter builds the full router. Every request passes through recovery,
// request-ID stamping, access logging, a request timeout, and latency
// measurement before reaching a feature handler.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.ContentTypeJSON)
	r.Use(middleware.Latency(deps.Metrics))

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if deps.Health != nil {
			if err := deps.Health(); err != nil {
				shared.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		shared.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	for _, feature := range deps.Features {
		feature.Register(r)
	}
	return r
}
