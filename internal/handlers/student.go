package handlers

import (
	"net/http"

	"github.com/s/courseStore/internal/models"
	"github.com/s/courseStore/internal/progress"
	"github.com/s/courseStore/internal/storage"
)

// POST /api/progress
func (h *Handler) SaveProgressAPI(w http.ResponseWriter, r *http.Request) {
	user, _ := CurrentUser(r)

	var req progress.Update
	if err := decodeJSON(r, &req); err != nil {
		h.Fail(w, r, err, "Failed to save progress")
		return
	}

	row, err := h.Tracker.Record(r.Context(), user.ID, req)
	if err != nil {
		h.Fail(w, r, err, "Failed to save progress")
		return
	}
	WriteJSON(w, http.StatusOK, row)
}

// GET /api/progress
func (h *Handler) GetProgressAPI(w http.ResponseWriter, r *http.Request) {
	user, _ := CurrentUser(r)

	rows, err := h.Tracker.List(r.Context(), user.ID)
	if err != nil {
		h.Fail(w, r, err, "Failed to fetch progress")
		return
	}
	WriteJSON(w, http.StatusOK, rows)
}

// POST /api/progress/complete
func (h *Handler) CompleteLessonAPI(w http.ResponseWriter, r *http.Request) {
	user, _ := CurrentUser(r)

	var req struct {
		LessonID  string `json:"lesson_id"`
		TimeSpent int    `json:"time_spent"`
	}
	if err := decodeJSON(r, &req); err != nil {
		h.Fail(w, r, err, "Failed to complete lesson")
		return
	}

	result, err := h.Tracker.CompleteLesson(r.Context(), user.ID, req.LessonID, req.TimeSpent)
	if err != nil {
		h.Fail(w, r, err, "Failed to complete lesson")
		return
	}
	WriteJSON(w, http.StatusOK, result)
}

type MeResponse struct {
	ID                  string               `json:"id"`
	Email               string               `json:"email"`
	Name                string               `json:"name"`
	Image               string               `json:"image"`
	RoleID              uint                 `json:"role_id"`
	Points              int                  `json:"points"`
	CompletedProducts   []string             `json:"completed_products"`
	PurchasedProductIDs []string             `json:"purchased_product_ids"`
	Badges              []models.Achievement `json:"badges"`
	Progress            map[string]int       `json:"progress"`
}

func (h *Handler) loadMe(r *http.Request, userID string) (*MeResponse, error) {
	ctx := r.Context()

	// 1. Fresh row, points may have changed since the middleware ran
	user, err := storage.GetUser(ctx, h.DB, userID)
	if err != nil {
		return nil, err
	}

	// 2. Advisory owned list for display
	owned, err := h.Cache.ProductIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	badges, err := storage.ListAchievements(ctx, h.DB, userID)
	if err != nil {
		return nil, err
	}

	rows, err := h.Tracker.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	completed := []string(user.CompletedProducts)
	if completed == nil {
		completed = []string{}
	}
	if owned == nil {
		owned = []string{}
	}

	return &MeResponse{
		ID:                  user.ID,
		Email:               user.Email,
		Name:                user.Name,
		Image:               user.Image,
		RoleID:              user.RoleID,
		Points:              user.Points,
		CompletedProducts:   completed,
		PurchasedProductIDs: owned,
		Badges:              badges,
		Progress:            progress.ProgressMap(rows),
	}, nil
}

// GET /api/auth/me
func (h *Handler) GetMeAPI(w http.ResponseWriter, r *http.Request) {
	user, _ := CurrentUser(r)

	me, err := h.loadMe(r, user.ID)
	if err != nil {
		h.Fail(w, r, err, "Failed to fetch user")
		return
	}
	WriteJSON(w, http.StatusOK, me)
}

// PUT /api/auth/me
// Points and completed_products are derived server-side; the client copies
// are accepted in the payload and ignored.
func (h *Handler) UpdateMeAPI(w http.ResponseWriter, r *http.Request) {
	user, _ := CurrentUser(r)

	var req struct {
		Name     string         `json:"name"`
		Image    string         `json:"image"`
		Progress map[string]int `json:"progress"`
	}
	if err := decodeJSON(r, &req); err != nil {
		h.Fail(w, r, err, "Failed to update user")
		return
	}

	ctx := r.Context()
	if err := storage.UpdateProfile(ctx, h.DB, user.ID, req.Name, req.Image); err != nil {
		h.Fail(w, r, err, "Failed to update user")
		return
	}

	completions := []progress.CourseCompletion{}
	if len(req.Progress) > 0 {
		var err error
		completions, err = h.Tracker.ApplyProgressMap(ctx, user.ID, req.Progress)
		if err != nil {
			h.Fail(w, r, err, "Failed to update user")
			return
		}
	}

	me, err := h.loadMe(r, user.ID)
	if err != nil {
		h.Fail(w, r, err, "Failed to update user")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"user":        me,
		"completions": completions,
	})
}
