package middleware

import (
	"net/http"

	"github.com/s/courseStore/internal/auth"
	"github.com/s/courseStore/internal/handlers"
	"github.com/s/courseStore/internal/models"
	"github.com/s/courseStore/internal/storage"
)

// resolve maps the session cookie to a stored user, creating the row on
// first use. ok is false when nobody is signed in.
func resolve(h *handlers.Handler, r *http.Request) (*models.User, bool, error) {
	id, signedIn := auth.SessionIdentity(r, h.Store)
	if !signedIn {
		return nil, false, nil
	}
	user, err := storage.EnsureUser(r.Context(), h.DB, models.User{
		Email: id.Email,
		Name:  id.Name,
		Image: id.PictureURL,
	}, h.Cfg.AdminEmails)
	if err != nil {
		return nil, false, err
	}
	return user, true, nil
}

// RequireUser rejects anonymous requests with 401 and puts the user in the
// request context.
func RequireUser(h *handlers.Handler) func(next http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			user, ok, err := resolve(h, r)
			if err != nil {
				h.Fail(w, r, err, "Failed to load user")
				return
			}
			if !ok {
				handlers.JSONError(w, "Not authenticated", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithUser(r.Context(), user)))
		}
	}
}

// OptionalUser attaches the user when one is signed in and never rejects.
func OptionalUser(h *handlers.Handler) func(next http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			user, ok, err := resolve(h, r)
			if err != nil {
				h.Log.Warn("session user lookup failed", "error", err)
			}
			if ok {
				r = r.WithContext(auth.WithUser(r.Context(), user))
			}
			next.ServeHTTP(w, r)
		}
	}
}

// RequiredRole is RequireUser plus a role check answered with 403.
func RequiredRole(h *handlers.Handler, requiredRoleID uint) func(next http.HandlerFunc) http.HandlerFunc {
	requireUser := RequireUser(h)
	return func(next http.HandlerFunc) http.HandlerFunc {
		return requireUser(func(w http.ResponseWriter, r *http.Request) {
			user, _ := auth.UserFrom(r.Context())
			if user.RoleID != requiredRoleID {
				handlers.JSONError(w, "Access Denied: Insufficient permissions", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
