package portal

import (
	"testing"

	"github.com/s/courseStore/internal/models"
)

func TestBuildCourseViews(t *testing.T) {
	products := []models.Product{
		{ID: "A", Lessons: []models.Lesson{{ID: "a1"}, {ID: "a2"}, {ID: "a3"}}},
		{ID: "B", Lessons: []models.Lesson{{ID: "b1"}}},
		{ID: "C"},
	}
	done := map[string]bool{"a1": true, "a3": true, "b1": true}

	views := BuildCourseViews(products, done, []string{"B"})
	if len(views) != 3 {
		t.Fatalf("views = %d, want 3", len(views))
	}

	tests := []struct {
		id        string
		done      int
		percent   int
		next      string
		completed bool
	}{
		{"A", 2, 66, "a2", false},
		{"B", 1, 100, "", true},
		{"C", 0, 0, "", false},
	}
	for i, tt := range tests {
		v := views[i]
		if v.Product.ID != tt.id || v.DoneLessons != tt.done || v.ProgressPercent != tt.percent || v.NextLessonID != tt.next || v.Completed != tt.completed {
			t.Fatalf("view %s = %+v", tt.id, v)
		}
	}
}
