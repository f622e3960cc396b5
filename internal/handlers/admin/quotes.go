package admin

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/s/courseStore/internal/handlers"
	"github.com/s/courseStore/internal/storage"
)

// ==========================================
// GET /api/admin/quotes?page=&limit=&status=&search=
// ==========================================
func (s *Service) ListQuotesAPI(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	page, _ := strconv.Atoi(query.Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(query.Get("limit"))
	if limit < 1 {
		limit = 10
	}

	quotes, total, err := storage.ListQuotes(r.Context(), s.DB, storage.QuoteFilter{
		Page:   page,
		Limit:  limit,
		Status: query.Get("status"),
		Search: query.Get("search"),
	})
	if err != nil {
		s.Fail(w, r, err, "Failed to fetch quotes")
		return
	}

	handlers.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"data":  quotes,
		"total": total,
		"page":  page,
		"pages": int(math.Ceil(float64(total) / float64(limit))),
	})
}

// ==========================================
// PUT /api/admin/quotes/{id} {status}
// ==========================================
func (s *Service) UpdateQuoteStatusAPI(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req struct {
		Status string `json:"status"` // pending, contacted or closed
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if err := storage.SetQuoteStatus(r.Context(), s.DB, id, req.Status); err != nil {
		s.Fail(w, r, err, "Failed to update status")
		return
	}
	handlers.WriteJSON(w, http.StatusOK, map[string]string{"result": "success"})
}
