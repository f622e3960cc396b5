package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ConsultantQuote is a 1-on-1 consultation request from the contact form.
type ConsultantQuote struct {
	ID        string    `gorm:"primaryKey;size:64" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	FullName          string                      `gorm:"not null" json:"full_name"`
	Email             string                      `gorm:"size:255;not null" json:"email"`
	IssueDescription  string                      `gorm:"type:text;not null" json:"issue_description"`
	SuccessCriteria   string                      `gorm:"type:text;not null" json:"success_criteria"`
	Urgency           string                      `json:"urgency"`
	PreferredFormat   string                      `json:"preferred_format"`
	FileURLs          datatypes.JSONSlice[string] `json:"file_urls"`
	AgreementAccepted bool                        `json:"agreement_accepted"`
	Status            string                      `gorm:"size:32;default:pending" json:"status"`
}

func (q *ConsultantQuote) BeforeCreate(tx *gorm.DB) error {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	if q.FileURLs == nil {
		q.FileURLs = datatypes.JSONSlice[string]{}
	}
	return nil
}
