package handlers

import (
	"errors"
	"net/http"

	"github.com/s/courseStore/internal/email"
	"github.com/s/courseStore/internal/models"
	"github.com/s/courseStore/internal/storage"
)

// POST /api/consultant/quote
func (h *Handler) SubmitQuoteAPI(w http.ResponseWriter, r *http.Request) {
	var req storage.QuoteInput
	if err := decodeJSON(r, &req); err != nil {
		h.Fail(w, r, err, "Internal server error. Please try again later.")
		return
	}

	quote, err := storage.CreateQuote(r.Context(), h.DB, req)
	if err != nil {
		h.Fail(w, r, err, "Internal server error. Please try again later.")
		return
	}

	h.notifyQuote(r, quote)

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"id":      quote.ID,
		"message": "Quote request submitted successfully",
	})
}

// notifyQuote emails the admin. The quote is already stored, so failures
// are only logged.
func (h *Handler) notifyQuote(r *http.Request, q *models.ConsultantQuote) {
	if h.Mailer == nil || h.Cfg.Brevo.AdminEmail == "" {
		h.Log.Debug("quote notification skipped", "quote_id", q.ID)
		return
	}

	msg := email.QuoteRequestMessage(email.QuoteNotification{
		FullName:          q.FullName,
		Email:             q.Email,
		IssueDescription:  q.IssueDescription,
		SuccessCriteria:   q.SuccessCriteria,
		Urgency:           q.Urgency,
		PreferredFormat:   q.PreferredFormat,
		FileURLs:          q.FileURLs,
		AgreementAccepted: q.AgreementAccepted,
	}, h.Cfg.Brevo.AdminEmail)

	if _, err := h.Mailer.Send(r.Context(), msg); err != nil {
		h.Log.Error("quote notification failed", "quote_id", q.ID, "error", err)
		return
	}
	h.Log.Info("quote notification sent", "quote_id", q.ID)
}

// POST /api/consultant/upload
func (h *Handler) UploadFileAPI(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.Uploads.MaxBytes()+1<<20)

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			JSONError(w, "File too large", http.StatusBadRequest)
			return
		}
		JSONError(w, "No file provided", http.StatusBadRequest)
		return
	}
	defer file.Close()

	up, err := h.Uploads.Accept(r.Context(), header.Filename, header.Size, file)
	if err != nil {
		h.Fail(w, r, err, "Upload failed")
		return
	}
	WriteJSON(w, http.StatusOK, up)
}
