package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/good-yellow-bee/timesheet/internal/api/auth"
	"github.com/good-yellow-bee/timesheet/internal/api/clients"
	"github.com/good-yellow-bee/timesheet/internal/api/middleware"
	"github.com/good-yellow-bee/timesheet/internal/api/projects"
	"github.com/good-yellow-bee/timesheet/internal/api/reports"
	"github.com/good-yellow-bee/timesheet/internal/api/tasks"
	"github.com/good-yellow-bee/timesheet/internal/api/timeentries"
	"github.com/good-yellow-bee/timesheet/internal/api/users"
)

// setupRouter creates and configures the chi router with all routes.
func (s *Server) setupRouter() *chi.Mux {
	r := chi.NewRouter()

	jwtService := auth.NewJWTService(s.config.JWTSecret, s.config.AccessTokenTTL)
	lockoutTracker := auth.NewLockoutTracker(s.config.LockoutThreshold, s.config.LockoutDuration)

	ipLimiter := middleware.NewRateLimiter(s.config.RateLimitPerIP)
	userLimiter := middleware.NewRateLimiter(s.config.RateLimitPerUser)

	// Global middleware
	r.Use(middleware.RequestLogger(s.config.Verbose))
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.PrometheusMiddleware)
	r.Use(middleware.Recoverer)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Auth routes (mostly public)
		r.Route("/auth", func(r chi.Router) {
			authHandler := auth.NewHandler(
				s.storage,
				jwtService,
				lockoutTracker,
				s.config.RefreshTokenTTL,
			)

			// Public routes with IP rate limiting
			r.Group(func(r chi.Router) {
				r.Use(middleware.RateLimitByIP(ipLimiter))
				r.Post("/register", authHandler.Register)
				r.Post("/login", authHandler.Login)
				r.Post("/refresh", authHandler.Refresh)
			})

			// Protected routes
			r.Group(func(r chi.Router) {
				r.Use(middleware.JWTAuth(jwtService))
				r.Post("/logout", authHandler.Logout)
			})
		})

		// Everything below requires a valid token.
		r.Group(func(r chi.Router) {
			r.Use(middleware.JWTAuth(jwtService))
			r.Use(middleware.RateLimitByUser(userLimiter))

			r.Route("/users", func(r chi.Router) {
				userHandler := users.NewHandler(s.storage)

				// Current user endpoints (any authenticated user)
				r.Get("/me", userHandler.GetCurrentUser)
				r.Put("/me/password", userHandler.ChangePassword)

				// Admin-only endpoints
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireAdmin)
					r.Get("/", userHandler.List)
					r.Post("/", userHandler.Create)
				})

				// Per-user endpoints (admin or self)
				r.Route("/{id}", func(r chi.Router) {
					r.Use(middleware.RequireAdminOrSelf)
					r.Get("/", userHandler.GetByID)
					r.Put("/", userHandler.Update)

					r.Group(func(r chi.Router) {
						r.Use(middleware.RequireAdmin)
						r.Delete("/", userHandler.Delete)
					})
				})
			})

			r.Route("/clients", func(r chi.Router) {
				clientHandler := clients.NewHandler(s.service)

				r.Get("/", clientHandler.List)
				r.Get("/{id}", clientHandler.GetByID)

				// Client books are manager territory.
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireManager)
					r.Post("/", clientHandler.Create)
					r.Put("/{id}", clientHandler.Update)
					r.Delete("/{id}", clientHandler.Delete)
				})
			})

			r.Route("/projects", func(r chi.Router) {
				projectHandler := projects.NewHandler(s.service)

				r.Get("/", projectHandler.List)
				r.Get("/{id}", projectHandler.GetByID)
				r.Get("/{id}/members", projectHandler.ListMembers)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireManager)
					r.Post("/", projectHandler.Create)
					r.Put("/{id}", projectHandler.Update)
					r.Delete("/{id}", projectHandler.Delete)
					r.Post("/{id}/members", projectHandler.AddMember)
					r.Delete("/{id}/members/{userID}", projectHandler.RemoveMember)
				})
			})

			r.Route("/tasks", func(r chi.Router) {
				taskHandler := tasks.NewHandler(s.service)

				r.Get("/", taskHandler.List)
				r.Get("/{id}", taskHandler.GetByID)
				r.Post("/", taskHandler.Create)
				r.Put("/{id}", taskHandler.Update)
				r.Put("/{id}/assignee", taskHandler.Reassign)
				r.Delete("/{id}", taskHandler.Delete)
			})

			r.Route("/time-entries", func(r chi.Router) {
				entryHandler := timeentries.NewHandler(s.service)

				r.Get("/", entryHandler.List)
				r.Get("/{id}", entryHandler.GetByID)
				r.Post("/", entryHandler.Create)
				r.Delete("/{id}", entryHandler.Delete)
			})

			r.Route("/reports", func(r chi.Router) {
				reportHandler := reports.NewHandler(s.service)

				r.Get("/hours-by-project", reportHandler.HoursByProject)
				r.Get("/hours-by-user", reportHandler.HoursByUser)
				r.Get("/task-status", reportHandler.TaskStatus)
			})
		})
	})

	// Health check (public, no rate limit)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.storage.Ping(ctx); err != nil {
			JSONError(w, &Error{
				Code:    ErrCodeInternalError,
				Message: "database unavailable",
				Status:  http.StatusServiceUnavailable,
			})
			return
		}
		OK(w, map[string]string{"status": "ok"})
	})

	return r
}
