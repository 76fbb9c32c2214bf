package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/brightclass/backoffice/internal/health"
	"github.com/brightclass/backoffice/internal/http/handler"
	"github.com/brightclass/backoffice/internal/http/middleware"
	"github.com/brightclass/backoffice/internal/http/response"
	"github.com/brightclass/backoffice/internal/repository"
	"github.com/brightclass/backoffice/internal/service"
)

type Dependencies struct {
	AuthHandler   *handler.AuthHandler
	UserHandler   *handler.UserHandler
	SchoolHandler *handler.SchoolHandler
	ReportHandler *handler.ReportHandler

	SessionVerifier *service.SessionVerifier
	Users           repository.UserRepository
	Permissions     *service.PermissionEvaluator
	Clock           service.Clock

	CORSOrigins       []string
	AuthRateLimitRPM  int
	APIRateLimitRPM   int
	GlobalRateLimiter func(http.Handler) http.Handler
	AuthRateLimiter   func(http.Handler) http.Handler

	Readiness      *health.ProbeRunner
	EnableOTelHTTP bool
}

func NewRouter(dep Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.StructuredRequestLogger)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS(dep.CORSOrigins))
	r.Use(middleware.BodyLimit(1 << 20))
	if dep.GlobalRateLimiter != nil {
		r.Use(dep.GlobalRateLimiter)
	} else {
		r.Use(middleware.NewRateLimiter(dep.APIRateLimitRPM, time.Minute).Middleware())
	}

	authLimiter := dep.AuthRateLimiter
	if authLimiter == nil {
		authLimiter = middleware.NewRateLimiter(dep.AuthRateLimitRPM, time.Minute).Middleware()
	}
	authenticated := middleware.AuthMiddleware(dep.SessionVerifier, dep.Users, dep.Clock)

	r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		if dep.Readiness == nil {
			response.JSON(w, r, http.StatusOK, map[string]any{"status": "ready", "checks": []any{}})
			return
		}
		ready, results := dep.Readiness.Ready(r.Context())
		if ready {
			response.JSON(w, r, http.StatusOK, map[string]any{"status": "ready", "checks": results})
			return
		}
		response.Error(w, r, http.StatusServiceUnavailable, "DEPENDENCY_UNREADY", "dependencies are not ready", map[string]any{"checks": results})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(authLimiter).Post("/login", dep.AuthHandler.Login)
			r.With(authLimiter).Post("/mfa/verify", dep.AuthHandler.MfaVerify)
			r.With(authLimiter).Post("/mfa/recover", dep.AuthHandler.MfaRecover)
			r.With(authLimiter).Post("/refresh", dep.AuthHandler.Refresh)
			r.Group(func(r chi.Router) {
				r.Use(authenticated)
				r.Use(middleware.RequirePermission(dep.Permissions, "mfa:self:manage"))
				r.Post("/mfa/enroll", dep.AuthHandler.MfaEnroll)
				r.Post("/mfa/confirm", dep.AuthHandler.MfaConfirm)
				r.Post("/mfa/disable", dep.AuthHandler.MfaDisable)
			})
		})

		r.With(authenticated).Get("/me", dep.UserHandler.Me)

		r.Route("/admin", func(r chi.Router) {
			r.Use(authenticated)
			r.With(middleware.RequirePermission(dep.Permissions, "users:school:read")).Get("/users", dep.UserHandler.ListUsers)
		})

		r.Route("/schools", func(r chi.Router) {
			r.Use(authenticated)
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequirePermission(dep.Permissions, "schools:read"))
				r.Get("/", dep.SchoolHandler.List)
				r.Get("/{id}", dep.SchoolHandler.GetByID)
			})
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequirePermission(dep.Permissions, "schools:write"))
				r.Post("/", dep.SchoolHandler.Create)
				r.Put("/{id}", dep.SchoolHandler.Update)
			})
		})

		r.Route("/reports", func(r chi.Router) {
			r.Use(authenticated)
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequirePermission(dep.Permissions, "reports:school:read"))
				r.Get("/", dep.ReportHandler.List)
				r.Get("/{id}", dep.ReportHandler.GetByID)
			})
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequirePermission(dep.Permissions, "reports:school:write"))
				r.Post("/", dep.ReportHandler.Create)
				r.Put("/{id}", dep.ReportHandler.Update)
			})
		})
	})

	var h http.Handler = r
	if dep.EnableOTelHTTP {
		h = otelhttp.NewHandler(r, "http.server")
	}
	return h
}
