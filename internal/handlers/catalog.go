package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"gorm.io/datatypes"

	"github.com/s/courseStore/internal/apperr"
	"github.com/s/courseStore/internal/database"
	"github.com/s/courseStore/internal/entitlement"
	"github.com/s/courseStore/internal/models"
	"github.com/s/courseStore/internal/storage"
)

// gate blanks the buyer-only lesson fields the caller may not see.
func (h *Handler) gate(r *http.Request, lessons []models.Lesson) error {
	user, signedIn := CurrentUser(r)
	if signedIn && user.IsAdmin() {
		return nil
	}

	owned := map[string]bool{}
	if signedIn && len(lessons) > 0 {
		ids := make([]string, 0, len(lessons))
		for _, l := range lessons {
			ids = append(ids, l.ProductID)
		}
		var err error
		owned, err = entitlement.OwnedCourseIDs(r.Context(), h.DB, user.ID, ids)
		if err != nil {
			return err
		}
	}
	for i := range lessons {
		if !owned[lessons[i].ProductID] {
			lessons[i].Redact()
		}
	}
	return nil
}

// GET /api/products
func (h *Handler) ListProductsAPI(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	products, err := storage.ListProducts(r.Context(), h.DB, storage.ProductFilter{
		CourseType:     q.Get("course_type"),
		IncludeLessons: q.Get("include_lessons") == "true",
	})
	if err != nil {
		h.Fail(w, r, err, "Failed to fetch products")
		return
	}
	for i := range products {
		if err := h.gate(r, products[i].Lessons); err != nil {
			h.Fail(w, r, err, "Failed to fetch products")
			return
		}
	}
	WriteJSON(w, http.StatusOK, products)
}

// GET /api/products/{id}
func (h *Handler) GetProductAPI(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	product, err := storage.GetProduct(r.Context(), h.DB, id, true)
	if err != nil {
		h.Fail(w, r, err, "Failed to fetch product")
		return
	}
	if err := h.gate(r, product.Lessons); err != nil {
		h.Fail(w, r, err, "Failed to fetch product")
		return
	}
	WriteJSON(w, http.StatusOK, product)
}

// GET /api/products/access?productId=
func (h *Handler) ProductAccessAPI(w http.ResponseWriter, r *http.Request) {
	user, ok := CurrentUser(r)
	if !ok {
		JSONError(w, "Not authenticated", http.StatusUnauthorized)
		return
	}
	productID := r.URL.Query().Get("productId")
	if productID == "" {
		JSONError(w, "Product ID required", http.StatusBadRequest)
		return
	}

	hasAccess, err := entitlement.HasAccess(r.Context(), h.DB, user.ID, productID)
	if err != nil {
		h.Fail(w, r, err, "Failed to check access")
		return
	}
	owned, err := entitlement.OwnedProductIDs(r.Context(), h.DB, user.ID)
	if err != nil {
		h.Fail(w, r, err, "Failed to check access")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"hasAccess":          hasAccess,
		"productId":          productID,
		"accessibleProducts": owned,
	})
}

// GET /api/lessons?productId=
func (h *Handler) ListLessonsAPI(w http.ResponseWriter, r *http.Request) {
	lessons, err := storage.ListLessons(r.Context(), h.DB, r.URL.Query().Get("productId"))
	if err != nil {
		h.Fail(w, r, err, "Failed to fetch lessons")
		return
	}
	if err := h.gate(r, lessons); err != nil {
		h.Fail(w, r, err, "Failed to fetch lessons")
		return
	}
	WriteJSON(w, http.StatusOK, lessons)
}

// GET /api/downloads
func (h *Handler) ListDownloadsAPI(w http.ResponseWriter, r *http.Request) {
	downloads, err := storage.ListDownloads(r.Context(), h.DB)
	if err != nil {
		h.Fail(w, r, err, "Failed to fetch downloads")
		return
	}
	WriteJSON(w, http.StatusOK, downloads)
}

// Week is the older week-numbered view of an individual course.
type Week struct {
	ID          string          `json:"id"`
	WeekNumber  int             `json:"week_number"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	ContentData datatypes.JSON  `json:"content_data"`
	Lessons     []models.Lesson `json:"lessons"`
}

func weekOf(p models.Product, n int) Week {
	lessons := p.Lessons
	if lessons == nil {
		lessons = []models.Lesson{}
	}
	return Week{
		ID:          p.ID,
		WeekNumber:  n,
		Title:       p.Name,
		Description: p.Description,
		ContentData: p.ContentData,
		Lessons:     lessons,
	}
}

// GET /api/weeks[?week=N]
func (h *Handler) WeeksAPI(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if raw := r.URL.Query().Get("week"); raw != "" {
		n, err := strconv.Atoi(raw)
		key, known := database.WeekKeys[n]
		if err != nil || !known {
			JSONError(w, "Product not found", http.StatusNotFound)
			return
		}
		product, err := storage.GetProductByKey(ctx, h.DB, key, true)
		if err == nil && product.CourseType != models.CourseTypeIndividual {
			err = apperr.NotFound("Product not found")
		}
		if err == nil {
			err = h.gate(r, product.Lessons)
		}
		if err != nil {
			h.Fail(w, r, err, "Internal server error")
			return
		}
		WriteJSON(w, http.StatusOK, weekOf(*product, n))
		return
	}

	products, err := storage.ListProducts(ctx, h.DB, storage.ProductFilter{
		CourseType:     models.CourseTypeIndividual,
		IncludeLessons: true,
	})
	if err != nil {
		h.Fail(w, r, err, "Internal server error")
		return
	}
	byKey := make(map[string]models.Product, len(products))
	for _, p := range products {
		byKey[p.Key] = p
	}

	// Numbered by WeekKeys, the same mapping ?week=N resolves through.
	weeks := make([]Week, 0, len(database.WeekKeys))
	for n := 1; n <= len(database.WeekKeys); n++ {
		p, ok := byKey[database.WeekKeys[n]]
		if !ok {
			continue
		}
		if err := h.gate(r, p.Lessons); err != nil {
			h.Fail(w, r, err, "Internal server error")
			return
		}
		weeks = append(weeks, weekOf(p, n))
	}
	WriteJSON(w, http.StatusOK, weeks)
}
