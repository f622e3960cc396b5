// Package server wires the HTTP routes.
package server

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/s/courseStore/internal/handlers"
	"github.com/s/courseStore/internal/handlers/admin"
	"github.com/s/courseStore/internal/handlers/portal"
	"github.com/s/courseStore/internal/middleware"
	"github.com/s/courseStore/internal/models"
)

func NewRouter(h *handlers.Handler) http.Handler {
	adminService := admin.Service{Handler: *h}
	portalService := portal.Service{Handler: *h}

	adminOnly := middleware.RequiredRole(h, models.RoleAdmin)
	signedIn := middleware.RequireUser(h)
	anyone := middleware.OptionalUser(h)

	r := mux.NewRouter()

	// --- Auth ---
	r.HandleFunc("/auth/google/login", h.HandleGoogleLogin).Methods("GET")
	r.HandleFunc("/auth/google/callback", h.HandleGoogleCallback).Methods("GET")
	r.HandleFunc("/logout", h.HandleLogout).Methods("GET", "POST")

	// --- Catalog ---
	r.HandleFunc("/api/products", anyone(h.ListProductsAPI)).Methods("GET")
	r.HandleFunc("/api/products", adminOnly(adminService.CreateProductAPI)).Methods("POST")
	r.HandleFunc("/api/products/access", signedIn(h.ProductAccessAPI)).Methods("GET")
	r.HandleFunc("/api/products/{id}", anyone(h.GetProductAPI)).Methods("GET")
	r.HandleFunc("/api/products/{id}", adminOnly(adminService.UpdateProductAPI)).Methods("PUT")
	r.HandleFunc("/api/products/{id}", adminOnly(adminService.DeleteProductAPI)).Methods("DELETE")

	r.HandleFunc("/api/lessons", anyone(h.ListLessonsAPI)).Methods("GET")
	r.HandleFunc("/api/lessons", adminOnly(adminService.CreateLessonAPI)).Methods("POST")
	r.HandleFunc("/api/lessons/{id}", adminOnly(adminService.UpdateLessonAPI)).Methods("PUT")
	r.HandleFunc("/api/lessons/{id}", adminOnly(adminService.DeleteLessonAPI)).Methods("DELETE")

	r.HandleFunc("/api/downloads", h.ListDownloadsAPI).Methods("GET")
	r.HandleFunc("/api/downloads", adminOnly(adminService.CreateDownloadAPI)).Methods("POST")
	r.HandleFunc("/api/weeks", anyone(h.WeeksAPI)).Methods("GET")

	// --- Payments ---
	r.HandleFunc("/api/stripe/checkout", signedIn(h.CreateCheckoutAPI)).Methods("POST")
	r.HandleFunc("/api/stripe/webhook", h.StripeWebhookAPI).Methods("POST")

	// --- Progress and profile ---
	r.HandleFunc("/api/progress", signedIn(h.GetProgressAPI)).Methods("GET")
	r.HandleFunc("/api/progress", signedIn(h.SaveProgressAPI)).Methods("POST")
	r.HandleFunc("/api/progress/complete", signedIn(h.CompleteLessonAPI)).Methods("POST")
	r.HandleFunc("/api/auth/me", signedIn(h.GetMeAPI)).Methods("GET")
	r.HandleFunc("/api/auth/me", signedIn(h.UpdateMeAPI)).Methods("PUT")
	r.HandleFunc("/api/me/courses", signedIn(portalService.MyCoursesAPI)).Methods("GET")

	// --- Consultant ---
	r.HandleFunc("/api/consultant/quote", h.SubmitQuoteAPI).Methods("POST")
	r.HandleFunc("/api/consultant/upload", h.UploadFileAPI).Methods("POST")

	// --- Back office ---
	r.HandleFunc("/api/admin/overview", adminOnly(adminService.OverviewAPI)).Methods("GET")
	r.HandleFunc("/api/admin/quotes", adminOnly(adminService.ListQuotesAPI)).Methods("GET")
	r.HandleFunc("/api/admin/quotes/{id}", adminOnly(adminService.UpdateQuoteStatusAPI)).Methods("PUT")

	r.HandleFunc("/healthz", h.HealthAPI).Methods("GET")

	var handler http.Handler = r
	handler = middleware.AccessLog(h.Log)(handler)
	handler = middleware.CORS(h.Cfg.HTTP.AllowedOrigin)(handler)
	return handler
}
