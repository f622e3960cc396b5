package models

import (
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// BundleKey is the product key that grants access to every course.
const BundleKey = "complete_bundle"

const (
	CourseTypeIndividual = "individual"
	CourseTypeBundle     = "bundle"
)

// Product (a sellable course or the bundle)
type Product struct {
	ID        string    `gorm:"primaryKey;size:64" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name         string         `gorm:"not null" json:"name"`
	Description  string         `json:"description"`
	Price        float64        `gorm:"type:decimal(10,2);not null;default:0" json:"price"`
	DisplayPrice *float64       `gorm:"type:decimal(10,2)" json:"display_price"`
	StripeID     string         `gorm:"size:255" json:"stripe_id"`
	SortOrder    int            `gorm:"index;default:0" json:"sort_order"`
	Key          string         `gorm:"index;size:64" json:"key"`
	CourseType   string         `gorm:"size:32;default:individual" json:"course_type"`
	ContentData  datatypes.JSON `json:"content_data"`
	IsActive     bool           `gorm:"index;default:true" json:"is_active"`

	Lessons []Lesson `json:"lessons,omitempty" gorm:"foreignKey:ProductID"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CourseType == "" {
		p.CourseType = CourseTypeIndividual
	}
	if len(p.ContentData) == 0 {
		p.ContentData = datatypes.JSON("{}")
	}
	return nil
}

// IsBundle reports whether the product is the complete bundle sentinel.
func (p Product) IsBundle() bool {
	return p.Key == BundleKey || p.ID == BundleKey
}

// UnitAmount is the price in minor currency units.
func (p Product) UnitAmount() int64 {
	return int64(math.Round(p.Price * 100))
}

// Lesson (belongs to a product)
type Lesson struct {
	ID        string    `gorm:"primaryKey;size:64" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ProductID        string `gorm:"index;size:64;not null" json:"product_id"`
	Title            string `gorm:"not null" json:"title"`
	Description      string `json:"description"`
	Content          string `gorm:"type:text" json:"content"` // JSON document, see LessonContent
	VideoURL         string `json:"video_url"`
	PracticeSheetURL string `json:"practice_sheet_url"`
	Duration         int    `json:"duration"` // minutes
	SortOrder        int    `gorm:"index;default:0" json:"sort_order"`
	IsActive         bool   `gorm:"index;default:true" json:"is_active"`

	Product *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}

func (l *Lesson) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}

// LessonContent is the loosely typed document stored in Lesson.Content.
type LessonContent struct {
	Overview       string   `json:"overview,omitempty"`
	WhyMatters     string   `json:"why_matters,omitempty"`
	CorePractices  []string `json:"core_practices,omitempty"`
	CommonMistakes []string `json:"common_mistakes,omitempty"`
	KeyTakeaway    string   `json:"key_takeaway,omitempty"`
}

// Redact blanks the fields only buyers may see.
func (l *Lesson) Redact() {
	l.Content = ""
	l.VideoURL = ""
	l.PracticeSheetURL = ""
}
