package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"trustgraph/internal/platform/metrics"
	"trustgraph/internal/platform/middleware"
)

// Registrar is anything that can mount its routes on a chi router.
type Registrar interface {
	Register(r chi.Router)
}

// HealthChecker reports readiness of an optional backing dependency.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// RouterConfig carries everything NewRouter needs to assemble the public
// surface. Handlers are mounted behind the full middleware chain; metrics and
// health stay outside it so probes never need a token.
type RouterConfig struct {
	Logger    *slog.Logger
	Metrics   *metrics.Metrics
	Validator middleware.CallerValidator
	Handlers  []Registrar
	Health    []HealthChecker
}

// NewRouter wires the HTTP surface. Every store route requires an
// authenticated caller; the caller account is only ever read from the token.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(cfg.Logger))
	if cfg.Metrics != nil {
		r.Use(middleware.Latency(cfg.Metrics))
	}

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		for _, h := range cfg.Health {
			if err := h.Health(req.Context()); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "error": err.Error()})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireCaller(cfg.Validator, cfg.Logger))
		for _, h := range cfg.Handlers {
			h.Register(r)
		}
	})

	return r
}
