// Package server exposes the simulation dashboard over HTTP: running
// experiments, browsing run history, serving caller-flow animations
// and the project citation.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/Bergam0t/ciw-example-animation/internal/citation"
	"github.com/Bergam0t/ciw-example-animation/internal/config"
	"github.com/Bergam0t/ciw-example-animation/internal/model"
	"github.com/Bergam0t/ciw-example-animation/internal/storage"
)

// Server wires the dashboard handlers to their dependencies.
type Server struct {
	cfg      *config.Config
	store    *storage.Store
	log      zerolog.Logger
	citation *citation.File
	limiter  *rate.Limiter
	registry *prometheus.Registry
	baseSeed int64

	simulationsTotal   prometheus.Counter
	replicationsTotal  prometheus.Counter
	requestsTotal      *prometheus.CounterVec
	simulationDuration prometheus.Histogram
}

// New builds a Server. cit may be nil when no CITATION.cff is
// available; the citation endpoint then returns 404.
func New(cfg *config.Config, store *storage.Store, log zerolog.Logger, cit *citation.File) *Server {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Server{
		cfg:      cfg,
		store:    store,
		log:      log,
		citation: cit,
		limiter:  rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst),
		registry: reg,
		baseSeed: model.DefaultSeed,
		simulationsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "callsim_simulations_total",
			Help: "Number of simulation runs executed via the API.",
		}),
		replicationsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "callsim_replications_total",
			Help: "Number of replications executed via the API.",
		}),
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "callsim_http_requests_total",
			Help: "HTTP requests by route and status code.",
		}, []string{"route", "code"}),
		simulationDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "callsim_simulation_duration_seconds",
			Help:    "Wall-clock duration of simulation runs.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// Router builds the HTTP routing table.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(s.requestLogger)
	r.Use(s.rateLimit)

	r.Get("/healthz", s.handleHealthz)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/runs", s.handleCreateRun)
		r.Get("/runs", s.handleListRuns)
		r.Get("/runs/{id}", s.handleGetRun)
		r.Delete("/runs/{id}", s.handleDeleteRun)
		r.Get("/runs/{id}/animation", s.handleAnimation)
		r.Get("/citation", s.handleCitation)
	})

	return r
}

// ListenAndServe runs the dashboard until the context is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	s.log.Info().Str("listen", s.cfg.Listen).Msg("dashboard listening")

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
