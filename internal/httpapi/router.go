// Package httpapi is the JSON/REST surface of the broker. It shares the
// coordinator and identity service with the gRPC handlers.
package httpapi

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	brokerv1 "consult-broker/api/brokerv1"
	"consult-broker/internal/apperr"
	"consult-broker/internal/auth"
	"consult-broker/internal/directory"
	"consult-broker/internal/guard"
	"consult-broker/internal/identity"
	"consult-broker/internal/middleware"
	"consult-broker/internal/model"
	"consult-broker/internal/service"
)

type Config struct {
	Service   *service.Service
	Identity  *identity.Service
	Directory *directory.Directory
	Secret    string
	Limiter   *middleware.RateLimiter
	// TrustProxy rewrites RemoteAddr from X-Forwarded-For / X-Real-IP.
	// Leave it off unless a proxy in front overwrites those headers, or
	// clients can pick their own rate limit bucket.
	TrustProxy bool
	Gatherer   prometheus.Gatherer
	// GRPCWeb, when set, is mounted under the gRPC service path.
	GRPCWeb http.Handler
	// Ready reports whether dependencies are reachable; nil means always.
	Ready func(context.Context) error
	Log   *slog.Logger
}

type api struct {
	svc    *service.Service
	ident  *identity.Service
	dir    *directory.Directory
	secret string
	log    *slog.Logger
}

func NewRouter(cfg Config) http.Handler {
	a := &api{svc: cfg.Service, ident: cfg.Identity, dir: cfg.Directory, secret: cfg.Secret, log: cfg.Log}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	if cfg.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(requestLogger(cfg.Log))
	r.Use(chimw.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if cfg.Ready != nil {
			if err := cfg.Ready(r.Context()); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}
	if cfg.GRPCWeb != nil {
		r.Handle("/"+brokerv1.ServiceName+"/*", cfg.GRPCWeb)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Use(chimw.Timeout(30 * time.Second))

		r.Route("/auth", func(r chi.Router) {
			r.Use(limitIf(cfg.Limiter))
			r.Post("/register", a.register)
			r.Post("/login", a.login)
			r.Post("/refresh", a.refresh)
		})

		r.Group(func(r chi.Router) {
			r.Use(a.requireActor)
			r.Post("/appointments", a.createAppointment)
			r.Get("/appointments", a.listAppointments)
			r.Route("/appointments/{id}", func(r chi.Router) {
				r.Get("/", a.getAppointment)
				r.Post("/respond", a.respond)
				r.Post("/start", a.byID(a.svc.StartConsultation))
				r.Post("/complete", a.byID(a.svc.CompleteAppointment))
				r.Post("/cancel", a.byID(a.svc.CancelAppointment))
				r.Get("/messages", a.listMessages)
				r.With(limitIf(cfg.Limiter)).Post("/messages", a.sendMessage)
			})

			r.Get("/workers", a.listWorkers)
			r.Get("/workers/specializations", a.listSpecializations)
			r.Get("/workers/{id}/availability", a.listAvailability)
			r.Post("/availability", a.setAvailability)
			r.Delete("/availability/{date}/{slot}", a.removeAvailability)
		})
	})
	return r
}

// requireActor resolves the bearer token into an actor.
func (a *api) requireActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := middleware.BearerToken(r.Header.Get("Authorization"))
		if raw == "" {
			writeJSON(w, http.StatusUnauthorized, errorBody{Error: "unauthorized", Description: "missing bearer token"})
			return
		}
		actor, err := auth.ActorFromToken(raw, a.secret)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, errorBody{Error: "unauthorized", Description: "invalid token"})
			return
		}
		next.ServeHTTP(w, r.WithContext(middleware.WithActor(r.Context(), actor)))
	})
}

// rateLimit keys on RemoteAddr, which is the socket peer unless RealIP
// was installed.
func rateLimit(rl *middleware.RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			host, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				host = r.RemoteAddr
			}
			if !rl.Allow(host) {
				writeJSON(w, http.StatusTooManyRequests, errorBody{Error: "rate_limited", Description: "too many requests"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func limitIf(rl *middleware.RateLimiter) func(http.Handler) http.Handler {
	if rl == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return rateLimit(rl)
}

func requestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.InfoContext(r.Context(), "http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start),
				"request_id", chimw.GetReqID(r.Context()),
			)
		})
	}
}

func claimFrom(r *http.Request) (model.Actor, guard.Claim) {
	actor, _ := middleware.ActorFrom(r.Context())
	return actor, guard.ClaimOf(actor)
}

func pathID(r *http.Request) (int64, error) {
	return idParam(r, "appointment")
}

func idParam(r *http.Request, what string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.BadRequest("invalid %s id", what)
	}
	return id, nil
}
