// Package admin serves the catalog management and back-office endpoints.
// Every route here is mounted behind middleware.RequiredRole(h, models.RoleAdmin).
package admin

import (
	"net/http"

	"github.com/s/courseStore/internal/handlers"
	"github.com/s/courseStore/internal/storage"
)

type Service struct {
	handlers.Handler
}

// GET /api/admin/overview
func (s *Service) OverviewAPI(w http.ResponseWriter, r *http.Request) {
	stats, err := storage.LoadStats(r.Context(), s.DB)
	if err != nil {
		s.Fail(w, r, err, "Failed to load overview")
		return
	}

	user, _ := handlers.CurrentUser(r)
	handlers.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"admin": map[string]string{"id": user.ID, "name": user.Name, "email": user.Email},
		"stats": stats,
	})
}
