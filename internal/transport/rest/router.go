package rest

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"

	"github.com/frahmantamala/teamchat/internal/auth"
	"github.com/frahmantamala/teamchat/internal/company"
	"github.com/frahmantamala/teamchat/internal/department"
	"github.com/frahmantamala/teamchat/internal/group"
	"github.com/frahmantamala/teamchat/internal/message"
	"github.com/frahmantamala/teamchat/internal/metrics"
	"github.com/frahmantamala/teamchat/internal/transport/middleware"
	"github.com/frahmantamala/teamchat/internal/transport/swagger"
	"github.com/frahmantamala/teamchat/internal/user"
)

// Handlers collects everything the router mounts. Nil handlers are skipped.
type Handlers struct {
	Auth       *auth.Handler
	Company    *company.Handler
	Department *department.Handler
	Group      *group.Handler
	User       *user.Handler
	Message    *message.Handler
	Realtime   http.Handler
	Health     *HealthHandler

	Metrics     *metrics.Metrics
	MetricsPath string
}

func RegisterAllRoutes(router *chi.Mux, h Handlers, origins []string, logger *slog.Logger) {
	// Apply global middleware
	router.Use(middleware.CORS(origins))
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))
	if h.Metrics != nil {
		router.Use(h.Metrics.Middleware)
		path := h.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		router.Handle(path, h.Metrics.Handler())
	}

	// API document and UI at root (outside API prefix)
	router.Get("/openapi.yml", swagger.SpecHandler)
	router.Handle("/swagger/*", swagger.Handler())

	// The upgrade authenticates itself from the header or the token query parameter.
	if h.Realtime != nil {
		router.Handle("/ws", h.Realtime)
	}

	router.Route("/api/v1", func(r chi.Router) {
		if h.Health != nil {
			r.Get("/health", h.Health.healthCheckHandler)
			r.Get("/ping", h.Health.pingHandler)
		}

		if h.Auth == nil {
			return
		}
		r.Post("/auth/login", h.Auth.Login)

		// Protected routes that require authentication
		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)

			pr.Get("/auth/me", h.Auth.Me)

			if h.Company != nil {
				pr.Route("/companies", func(cr chi.Router) {
					cr.Post("/", h.Company.Create)
					cr.Get("/{companyId}", h.Company.Get)
					cr.Put("/{companyId}", h.Company.Update)
				})
			}

			if h.Department != nil {
				pr.Route("/departments", func(dr chi.Router) {
					dr.Post("/", h.Department.Create)
					dr.Get("/", h.Department.List)
					dr.Get("/{departmentId}", h.Department.Get)
					dr.Put("/{departmentId}", h.Department.Update)
				})
			}

			if h.User != nil {
				pr.Route("/users", func(ur chi.Router) {
					ur.Post("/", h.User.Create)
					ur.Get("/", h.User.List)
					ur.Get("/{userId}", h.User.Get)
					ur.Put("/{userId}/department", h.User.AssignDepartment)
					ur.Put("/{userId}/status", h.User.ToggleStatus)
				})
			}

			if h.Group != nil {
				pr.Route("/groups", func(gr chi.Router) {
					gr.Get("/", h.Group.List)
					gr.Post("/", h.Group.Create)
					gr.Get("/{groupId}", h.Group.Get)
				})
			}

			if h.Message != nil {
				pr.Route("/messages", func(mr chi.Router) {
					mr.Post("/", h.Message.Send)
					mr.Get("/group/{groupId}", h.Message.History)
					mr.Delete("/{messageId}", h.Message.Delete)
				})
			}
		})
	})
}
