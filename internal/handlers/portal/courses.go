// Package portal serves the signed-in member's own course list.
package portal

import (
	"net/http"

	"github.com/s/courseStore/internal/entitlement"
	"github.com/s/courseStore/internal/handlers"
	"github.com/s/courseStore/internal/models"
	"github.com/s/courseStore/internal/storage"
)

type Service struct {
	handlers.Handler
}

// CourseView is one owned course with the member's progress through it.
type CourseView struct {
	Product         models.Product `json:"product"`
	TotalLessons    int            `json:"total_lessons"`
	DoneLessons     int            `json:"done_lessons"`
	ProgressPercent int            `json:"progress_percent"`
	NextLessonID    string         `json:"next_lesson_id,omitempty"`
	Completed       bool           `json:"completed"`
}

// BuildCourseViews computes per-course progress from the done-lesson set.
func BuildCourseViews(products []models.Product, done map[string]bool, completed []string) []CourseView {
	finished := make(map[string]bool, len(completed))
	for _, id := range completed {
		finished[id] = true
	}

	views := make([]CourseView, 0, len(products))
	for _, p := range products {
		v := CourseView{Product: p, TotalLessons: len(p.Lessons), Completed: finished[p.ID]}

		// 1. Count finished lessons and find the first open one
		for _, l := range p.Lessons {
			if done[l.ID] {
				v.DoneLessons++
			} else if v.NextLessonID == "" {
				v.NextLessonID = l.ID
			}
		}

		// 2. Percent
		if v.TotalLessons > 0 {
			v.ProgressPercent = v.DoneLessons * 100 / v.TotalLessons
		}
		views = append(views, v)
	}
	return views
}

// GET /api/me/courses
func (s *Service) MyCoursesAPI(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, _ := handlers.CurrentUser(r)

	products, err := storage.ListProducts(ctx, s.DB, storage.ProductFilter{
		CourseType:     models.CourseTypeIndividual,
		IncludeLessons: true,
	})
	if err != nil {
		s.Fail(w, r, err, "Failed to fetch courses")
		return
	}

	ids := make([]string, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
	}
	owned, err := entitlement.OwnedCourseIDs(ctx, s.DB, user.ID, ids)
	if err != nil {
		s.Fail(w, r, err, "Failed to fetch courses")
		return
	}

	mine := make([]models.Product, 0, len(owned))
	for _, p := range products {
		if owned[p.ID] && !p.IsBundle() {
			mine = append(mine, p)
		}
	}

	rows, err := s.Tracker.List(ctx, user.ID)
	if err != nil {
		s.Fail(w, r, err, "Failed to fetch courses")
		return
	}
	done := make(map[string]bool, len(rows))
	for _, row := range rows {
		if row.Completed {
			done[row.LessonID] = true
		}
	}

	fresh, err := storage.GetUser(ctx, s.DB, user.ID)
	if err != nil {
		s.Fail(w, r, err, "Failed to fetch courses")
		return
	}

	handlers.WriteJSON(w, http.StatusOK, BuildCourseViews(mine, done, fresh.CompletedProducts))
}
