// Package server monta o roteador HTTP (chi) e controla o ciclo de vida do
// http.Server.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"employee-directory/directory"
	"employee-directory/internal/app"
	"employee-directory/internal/apperr"
	"employee-directory/middleware/ratelimit"
	"employee-directory/middleware/recovery"
	"employee-directory/middleware/requestid"
)

const (
	SearchPath      = "/search/employees"
	SearchAliasPath = "/employees/search"
)

// NewRouter registra as rotas. Ordem na busca (de fora para dentro):
// request id, access log, recovery, admission gate, limite de concorrência,
// handler.
func NewRouter(a *app.App) http.Handler {
	errs := apperr.Responder{Log: a.Log}

	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Use(accessLog(a.Log.Named("http")))
	r.Use(recovery.Middleware(errs))

	r.Get("/health", healthHandler(a))
	r.Handle("/metrics", promhttp.HandlerFor(a.Registry, promhttp.HandlerOpts{}))
	if a.MemStats != nil {
		r.Get("/admission/stats", statsHandler(a))
	}

	// gate e handler leem o tenant com a mesma função
	tenantOf := ratelimit.DefaultKeyFunc("org_id", a.Config.Rate.KeyHeader)
	search := directory.Handler{Engine: a.Engine, Errors: errs, Tenant: tenantOf}
	r.Group(func(r chi.Router) {
		if a.Config.Rate.Enabled {
			r.Use(ratelimit.Middleware(ratelimit.Options{
				Store:               a.Gate,
				Stats:               a.Stats,
				KeyFn:               tenantOf,
				KeyParam:            "org_id",
				ValidateKey:         a.Tenants.Validate,
				AddRateLimitHeaders: a.Config.Rate.AddHeaders,
				Errors:              errs,
			}))
		}
		r.Use(ratelimit.ConcurrencyMiddleware(ratelimit.ConcurrencyOptions{
			Pool:           a.Pool,
			AcquireTimeout: a.Config.Concurrency.Timeout,
			Errors:         errs,
		}))
		r.Method(http.MethodGet, SearchPath, search)
		r.Method(http.MethodGet, SearchAliasPath, search)
	})

	return r
}

func New(a *app.App) *http.Server {
	sc := a.Config.Server
	return &http.Server{
		Addr:              sc.ListenAddr,
		Handler:           NewRouter(a),
		ReadHeaderTimeout: sc.ReadHeaderTimeout,
		ReadTimeout:       sc.ReadTimeout,
		WriteTimeout:      sc.WriteTimeout,
		IdleTimeout:       sc.IdleTimeout,
	}
}

// Run serve até ctx ser cancelado e então faz shutdown com timeout.
func Run(ctx context.Context, srv *http.Server, shutdownTimeout time.Duration, log *zap.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	log.Info("shutting down http server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

func accessLog(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			route := r.URL.Path
			if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
				route = rc.RoutePattern()
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			log.Info("request",
				zap.String("method", r.Method),
				zap.String("route", route),
				zap.Int("status", status),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", requestid.From(r.Context())),
			)
		})
	}
}

type health struct {
	Status         string `json:"status"`
	TrackedTenants int    `json:"tracked_tenants"`
	InFlight       int    `json:"in_flight"`
	Capacity       int    `json:"capacity"`
}

func healthHandler(a *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h := health{Status: "ok", TrackedTenants: a.Gate.Len()}
		if a.Pool != nil {
			h.InFlight = a.Pool.InFlight()
			h.Capacity = a.Pool.Capacity()
		}
		writeJSON(w, http.StatusOK, h)
	}
}

func statsHandler(a *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"total":     a.MemStats.Total(),
			"by_tenant": a.MemStats.ByTenant(),
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
