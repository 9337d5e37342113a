// Package web serves the dashboard pages and the JSON endpoints the catalog
// page polls.
package web

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"ProductDash/internal/api"
	"ProductDash/internal/view"
	"ProductDash/pkg/kit"
)

type HTTPDeps struct {
	Log      *zap.Logger
	Service  string
	Registry *prometheus.Registry

	MetricsEnabled bool
	MetricsToken   string
}

// Probe is one dependency checked by /readyz.
type Probe struct {
	Name   string
	Pinger api.Pinger
}

// Backend is shown on the landing page.
type Backend struct {
	Name string
	URL  string
}

type Deps struct {
	Mode     api.Mode
	Admin    api.AdminAPI
	Catalog  *view.CatalogView
	Metrics  *view.Metrics
	Probes   []Probe
	Backends []Backend

	PollInterval time.Duration
	CORSOrigins  []string
	LikeLimiter  *kit.IPRateLimiter
}

const (
	readyTimeout      = 2 * time.Second
	readyProbeTimeout = 700 * time.Millisecond
)

type server struct {
	deps  Deps
	log   *zap.Logger
	pages *pages
}

func NewHandler(deps Deps, httpDeps HTTPDeps) (http.Handler, error) {
	if httpDeps.Log == nil {
		httpDeps.Log = zap.NewNop()
	}
	if deps.PollInterval <= 0 {
		deps.PollInterval = view.DefaultPollInterval
	}

	pg, err := loadPages()
	if err != nil {
		return nil, err
	}
	s := &server{deps: deps, log: httpDeps.Log, pages: pg}

	r := chi.NewRouter()
	setupMiddleware(r, httpDeps)
	setupMetrics(r, httpDeps)

	r.Get("/healthz", healthz)
	r.Get("/readyz", s.readyz)

	r.Get("/", s.home)

	r.Route("/admin", func(r chi.Router) {
		r.Get("/", s.adminPage)
		r.Post("/products", s.createProduct)
		r.Post("/products/{id}", s.updateProduct)
		r.Post("/products/{id}/delete", s.deleteProduct)
	})

	r.Get("/catalog", s.catalogPage)
	r.Post("/catalog/refresh", s.refreshCatalog)
	r.Route("/catalog/products", func(r chi.Router) {
		if len(deps.CORSOrigins) > 0 {
			r.Use(cors.Handler(cors.Options{
				AllowedOrigins: deps.CORSOrigins,
				AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
				AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
				ExposedHeaders: []string{"X-Request-Id", "Retry-After"},
				MaxAge:         300,
			}))
		}
		r.Get("/", s.catalogProducts)

		like := http.Handler(http.HandlerFunc(s.likeProduct))
		if deps.LikeLimiter != nil {
			like = deps.LikeLimiter.Middleware(like)
		}
		r.Method(http.MethodPost, "/{id}/like", like)
	})

	return r, nil
}

func setupMiddleware(r *chi.Mux, deps HTTPDeps) {
	r.Use(chimw.RequestID)
	r.Use(kit.Recoverer(deps.Log))
	r.Use(kit.Logging(deps.Log))
}

func setupMetrics(r *chi.Mux, deps HTTPDeps) {
	if deps.Registry == nil {
		return
	}

	metrics := kit.NewMetrics(deps.Registry)
	r.Use(metrics.Middleware(deps.Service))

	if !deps.MetricsEnabled {
		return
	}

	r.With(kit.MetricsAuth(deps.MetricsToken)).
		Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (s *server) readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	for _, p := range s.deps.Probes {
		if err := checkReady(ctx, p.Pinger); err != nil {
			s.log.Warn("readyz failed", zap.String("probe", p.Name), zap.Error(err))
			kit.WriteError(w, r, http.StatusServiceUnavailable, p.Name+" not ready", nil)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
}

func checkReady(ctx context.Context, p api.Pinger) error {
	cctx, cancel := context.WithTimeout(ctx, readyProbeTimeout)
	defer cancel()
	return p.Ping(cctx)
}
