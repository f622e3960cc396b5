package database

import (
	"fmt"

	"github.com/s/courseStore/internal/models"
	"gorm.io/gorm"
)

// WeekKeys maps the legacy week numbers to course keys.
var WeekKeys = map[int]string{
	1: "foundations",
	2: "formulas",
	3: "functions",
	4: "analysis",
	5: "modelling",
	6: "presenting",
}

func float(v float64) *float64 { return &v }

func catalog() []models.Product {
	return []models.Product{
		{ID: "foundations", Key: "foundations", Name: "Excel Foundations", Description: "Workbooks, navigation and clean data entry.", Price: 29, DisplayPrice: float(49), SortOrder: 1},
		{ID: "formulas", Key: "formulas", Name: "Formulas That Work", Description: "References, operators and formula auditing.", Price: 49, SortOrder: 2},
		{ID: "functions", Key: "functions", Name: "Essential Functions", Description: "Lookups, logic and text functions.", Price: 49, SortOrder: 3},
		{ID: "analysis", Key: "analysis", Name: "Data Analysis", Description: "Tables, pivots and conditional summaries.", Price: 49, SortOrder: 4},
		{ID: "modelling", Key: "modelling", Name: "Financial Modelling", Description: "Assumptions, scenarios and model structure.", Price: 49, SortOrder: 5},
		{ID: "presenting", Key: "presenting", Name: "Presenting Numbers", Description: "Charts, dashboards and reporting.", Price: 49, SortOrder: 6},
		{ID: models.BundleKey, Key: models.BundleKey, Name: "Complete Bundle", Description: "Every course with lifetime access.", Price: 199, DisplayPrice: float(274), SortOrder: 10, CourseType: models.CourseTypeBundle},
	}
}

// Seed is idempotent: existing rows are left as they are.
func Seed(db *gorm.DB) error {
	roles := []models.Role{{ID: models.RoleUser, Name: "User"}, {ID: models.RoleAdmin, Name: "Admin"}}
	for _, r := range roles {
		if err := db.FirstOrCreate(&models.Role{}, r).Error; err != nil {
			return fmt.Errorf("seed role %s: %w", r.Name, err)
		}
	}

	for _, p := range catalog() {
		p := p
		if p.CourseType == "" {
			p.CourseType = models.CourseTypeIndividual
		}
		p.IsActive = true
		if err := db.Where(models.Product{ID: p.ID}).FirstOrCreate(&p).Error; err != nil {
			return fmt.Errorf("seed product %s: %w", p.ID, err)
		}
	}
	return nil
}
