package storage

import (
	"context"
	"strings"

	"github.com/s/courseStore/internal/apperr"
	"github.com/s/courseStore/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const QuotePending = "pending"

type QuoteInput struct {
	FullName          string `json:"fullName"`
	Email             string `json:"email"`
	IssueDescription  string `json:"issueDescription"`
	SuccessCriteria   string `json:"successCriteria"`
	Urgency           string `json:"urgency"`
	PreferredFormat   string `json:"preferredFormat"`
	AgreementAccepted bool   `json:"agreementAccepted"`
	Files             []struct {
		URL string `json:"url"`
	} `json:"files"`
}

func (in QuoteInput) Validate() error {
	if strings.TrimSpace(in.FullName) == "" ||
		strings.TrimSpace(in.Email) == "" ||
		strings.TrimSpace(in.IssueDescription) == "" ||
		strings.TrimSpace(in.SuccessCriteria) == "" {
		return apperr.Validation("Missing required fields")
	}
	return nil
}

// FileURLs drops blank entries from the uploaded file list.
func (in QuoteInput) FileURLs() []string {
	urls := []string{}
	for _, f := range in.Files {
		if u := strings.TrimSpace(f.URL); u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}

func CreateQuote(ctx context.Context, db *gorm.DB, in QuoteInput) (*models.ConsultantQuote, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	quote := models.ConsultantQuote{
		FullName:          strings.TrimSpace(in.FullName),
		Email:             strings.TrimSpace(in.Email),
		IssueDescription:  in.IssueDescription,
		SuccessCriteria:   in.SuccessCriteria,
		Urgency:           in.Urgency,
		PreferredFormat:   in.PreferredFormat,
		FileURLs:          datatypes.JSONSlice[string](in.FileURLs()),
		AgreementAccepted: in.AgreementAccepted,
		Status:            QuotePending,
	}
	if err := db.WithContext(ctx).Create(&quote).Error; err != nil {
		return nil, err
	}
	return &quote, nil
}

var quoteStatuses = map[string]bool{"pending": true, "contacted": true, "closed": true}

type QuoteFilter struct {
	Page   int
	Limit  int
	Status string
	Search string
}

// ListQuotes returns one page of quotes, newest first, and the total match count.
func ListQuotes(ctx context.Context, db *gorm.DB, f QuoteFilter) ([]models.ConsultantQuote, int64, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 10
	}

	q := db.WithContext(ctx).Model(&models.ConsultantQuote{})
	if f.Status != "" && f.Status != "all" {
		q = q.Where("status = ?", f.Status)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(full_name) LIKE ? OR LOWER(email) LIKE ?", like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	quotes := []models.ConsultantQuote{}
	err := q.Order("created_at desc").
		Limit(f.Limit).
		Offset((f.Page - 1) * f.Limit).
		Find(&quotes).Error
	if err != nil {
		return nil, 0, err
	}
	return quotes, total, nil
}

func SetQuoteStatus(ctx context.Context, db *gorm.DB, id, status string) error {
	if !quoteStatuses[status] {
		return apperr.Validation("Invalid status")
	}
	res := db.WithContext(ctx).Model(&models.ConsultantQuote{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("Quote not found")
	}
	return nil
}
