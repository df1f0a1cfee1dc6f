package rest

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/ldc-construction/internal/audit"
	"github.com/frahmantamala/ldc-construction/internal/auth"
	"github.com/frahmantamala/ldc-construction/internal/hierarchy"
	"github.com/frahmantamala/ldc-construction/internal/tenancy"
	"github.com/frahmantamala/ldc-construction/internal/transport/middleware"
	"github.com/frahmantamala/ldc-construction/internal/transport/swagger"
	"github.com/frahmantamala/ldc-construction/internal/user"
	"github.com/frahmantamala/ldc-construction/internal/volunteer"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

type Handlers struct {
	Auth      *auth.Handler
	Tenancy   *tenancy.Middleware
	Hierarchy *hierarchy.Handler
	Volunteer *volunteer.Handler
	User      *user.Handler
	Audit     *audit.Handler
}

type Options struct {
	AllowedOrigins []string
	LoginLimiter   *middleware.RateLimiter
	Metrics        *middleware.HTTPMetrics
	MetricsPath    string
	MetricsHandler http.Handler
	OpenAPIPath    string
	HealthChecks   []HealthCheck
	// TrustProxyHeaders installs chi's RealIP so the login limiter and
	// request logs see the forwarded client address.
	TrustProxyHeaders bool
}

func RegisterAllRoutes(router *chi.Mux, db Pinger, h Handlers, opts Options, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db, opts.HealthChecks...)

	router.Use(middleware.CORS(opts.AllowedOrigins))
	router.Use(middleware.RequestID)
	if opts.TrustProxyHeaders {
		router.Use(chiMiddleware.RealIP)
	}
	router.Use(middleware.RecoveryMiddleware(logger))
	if opts.Metrics != nil {
		router.Use(opts.Metrics.Instrument)
	}
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(audit.CaptureRequestMeta)

	if opts.MetricsHandler != nil {
		path := opts.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		router.Handle(path, opts.MetricsHandler)
	}

	openAPIPath := opts.OpenAPIPath
	if openAPIPath == "" {
		openAPIPath = "./api/openapi.yml"
	}
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, openAPIPath)
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		r.Route("/auth", func(ar chi.Router) {
			ar.Group(func(lr chi.Router) {
				if opts.LoginLimiter != nil {
					lr.Use(opts.LoginLimiter.Middleware)
				}
				lr.Post("/login", h.Auth.Login)
			})
			ar.Post("/refresh", h.Auth.RefreshToken)
			ar.With(h.Auth.AuthMiddleware).Post("/logout", h.Auth.Logout)
		})

		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)
			pr.Use(h.Tenancy.ResolveScope)

			pr.Get("/users/me", h.User.GetCurrentUser)
			pr.With(h.Tenancy.RequireCGManager).Post("/users/{id}/link-volunteer", h.User.LinkVolunteer)

			pr.Get("/hierarchy", h.Hierarchy.GetHierarchy)
			pr.Get("/cg-info", h.Hierarchy.GetCGInfo)
			pr.With(h.Tenancy.RequireSuperAdmin).Post("/cg-filter", h.Hierarchy.SetCGFilter)

			pr.Route("/construction-groups", func(cr chi.Router) {
				cr.Get("/", h.Hierarchy.ListAccessibleConstructionGroups)
				cr.Get("/accessible", h.Hierarchy.ListAccessibleConstructionGroups)
				cr.Get("/{id}", h.Hierarchy.GetConstructionGroup)

				cr.Group(func(sr chi.Router) {
					sr.Use(h.Tenancy.RequireSuperAdmin)
					sr.Post("/", h.Hierarchy.CreateConstructionGroup)
					sr.Patch("/{id}", h.Hierarchy.UpdateConstructionGroup)
					sr.Delete("/{id}", h.Hierarchy.DeleteConstructionGroup)
				})
			})

			pr.Route("/volunteers", func(vr chi.Router) {
				vr.Get("/", h.Volunteer.ListVolunteers)
				vr.Get("/{id}", h.Volunteer.GetVolunteer)
				vr.With(h.Tenancy.RequireCGManager).Post("/", h.Volunteer.CreateVolunteer)
				vr.With(h.Tenancy.RequireCGManager).Post("/{id}/transfer", h.Volunteer.TransferVolunteer)
			})

			pr.Route("/audit-logs", func(lr chi.Router) {
				lr.Use(h.Tenancy.RequireSuperAdmin)
				lr.Get("/", h.Audit.ListAuditLogs)
				lr.Get("/export", h.Audit.ExportAuditLogs)
			})
		})
	})
}
