package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/good-yellow-bee/timesheet/internal/models"
)

// RequireRole returns middleware that requires one of the given roles.
// Admins always pass.
func RequireRole(allowedRoles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userRole := GetRole(r.Context())
			if userRole == "" {
				jsonForbidden(w)
				return
			}

			for _, role := range allowedRoles {
				if userRole == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			if userRole == models.RoleAdmin {
				next.ServeHTTP(w, r)
				return
			}

			jsonForbidden(w)
		})
	}
}

// RequireAdmin is shorthand for RequireRole(RoleAdmin).
func RequireAdmin(next http.Handler) http.Handler {
	return RequireRole(models.RoleAdmin)(next)
}

// RequireManager allows admins and managers. Managers run the client and
// project books; plain members only work on what they belong to.
func RequireManager(next http.Handler) http.Handler {
	return RequireRole(models.RoleManager, models.RoleAdmin)(next)
}

// RequireAdminOrSelf allows access if user is admin or accessing their own
// resource. Expects {id} URL parameter.
func RequireAdminOrSelf(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := GetUserID(r.Context())
		userRole := GetRole(r.Context())

		if userRole == models.RoleAdmin {
			next.ServeHTTP(w, r)
			return
		}

		resourceID := chi.URLParam(r, "id")
		if resourceID != "" && resourceID == userID {
			next.ServeHTTP(w, r)
			return
		}

		jsonForbidden(w)
	})
}
