// Package server wires the goCred HTTP surface onto a chi router.
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	goCred "github.com/MrEthical07/goCred"
	"github.com/MrEthical07/goCred/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Pinger reports whether the credential store answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options configures NewRouter.
type Options struct {
	Verifier middleware.Verifier
	Pinger   Pinger
	Logger   *slog.Logger
	Gatherer prometheus.Gatherer
	Realm    string
	Timeout  time.Duration
}

// NewRouter creates the chi router with middleware and routes.
//
// Routes:
//   - POST /v1/verify - JSON credential check
//   - GET /v1/whoami - Basic-auth protected echo of the verified email
//   - GET /healthz - liveness
//   - GET /readyz - store reachability
//   - GET /metrics - Prometheus exposition, when a Gatherer is set
func NewRouter(opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(requestLogger(logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(timeout))

	r.Route("/v1", func(r chi.Router) {
		r.Method(http.MethodPost, "/verify", middleware.VerifyHandler(opts.Verifier))
		r.With(middleware.RequireBasicAuth(opts.Verifier, opts.Realm)).Get("/whoami", whoami)
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/readyz", readiness(opts.Pinger, logger))

	if opts.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}

	return r
}

func whoami(w http.ResponseWriter, r *http.Request) {
	email, _ := middleware.EmailFromContext(r.Context())
	writeJSON(w, http.StatusOK, map[string]string{"email": email})
}

func readiness(p Pinger, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if p == nil {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
			return
		}
		if err := p.Ping(r.Context()); err != nil {
			logger.Warn("readiness check failed", "error", err)
			w.Header().Set("Retry-After", "1")
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": goCred.ErrStoreUnavailable.Error()})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// requestLogger logs one line per request. Bodies are never logged.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.Info("http request",
				"request_id", chimw.GetReqID(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start).String(),
			)
		})
	}
}
