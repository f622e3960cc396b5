package admin

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/s/courseStore/internal/handlers"
	"github.com/s/courseStore/internal/storage"
)

// ==========================================
// Products
// POST   /api/products
// PUT    /api/products/{id}
// DELETE /api/products/{id} (soft delete)
// ==========================================

func (s *Service) CreateProductAPI(w http.ResponseWriter, r *http.Request) {
	var input storage.ProductInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		jsonError(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}

	product, err := storage.CreateProduct(r.Context(), s.DB, input)
	if err != nil {
		s.Fail(w, r, err, "Failed to create product")
		return
	}

	s.Log.Info("product created", "product_id", product.ID, "name", product.Name)
	handlers.WriteJSON(w, http.StatusCreated, product)
}

func (s *Service) UpdateProductAPI(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var input storage.ProductInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		jsonError(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	product, err := storage.UpdateProduct(r.Context(), s.DB, id, input)
	if err != nil {
		s.Fail(w, r, err, "Failed to update product")
		return
	}
	handlers.WriteJSON(w, http.StatusOK, product)
}

// Purchases of a deleted product stay in place, so owners keep access to
// anything already bought.
func (s *Service) DeleteProductAPI(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := storage.DeactivateProduct(r.Context(), s.DB, id); err != nil {
		s.Fail(w, r, err, "Failed to delete product")
		return
	}

	s.Log.Info("product deactivated", "product_id", id)
	handlers.WriteJSON(w, http.StatusOK, map[string]string{"message": "Product deleted successfully"})
}

// ==========================================
// Lessons
// ==========================================

func (s *Service) CreateLessonAPI(w http.ResponseWriter, r *http.Request) {
	var input storage.LessonInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		jsonError(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}

	lesson, err := storage.CreateLesson(r.Context(), s.DB, input)
	if err != nil {
		s.Fail(w, r, err, "Failed to create lesson")
		return
	}
	handlers.WriteJSON(w, http.StatusCreated, lesson)
}

func (s *Service) UpdateLessonAPI(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var input storage.LessonInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		jsonError(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	lesson, err := storage.UpdateLesson(r.Context(), s.DB, id, input)
	if err != nil {
		s.Fail(w, r, err, "Failed to update lesson")
		return
	}
	handlers.WriteJSON(w, http.StatusOK, lesson)
}

func (s *Service) DeleteLessonAPI(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := storage.DeactivateLesson(r.Context(), s.DB, id); err != nil {
		s.Fail(w, r, err, "Failed to delete lesson")
		return
	}
	handlers.WriteJSON(w, http.StatusOK, map[string]string{"message": "Lesson deleted successfully"})
}

// ==========================================
// Downloads
// ==========================================

func (s *Service) CreateDownloadAPI(w http.ResponseWriter, r *http.Request) {
	var input storage.DownloadInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		jsonError(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}

	download, err := storage.CreateDownload(r.Context(), s.DB, input)
	if err != nil {
		s.Fail(w, r, err, "Failed to create download")
		return
	}
	handlers.WriteJSON(w, http.StatusCreated, download)
}

func jsonError(w http.ResponseWriter, message string, code int) {
	handlers.JSONError(w, message, code)
}
