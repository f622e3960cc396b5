package progress

import (
	"context"
	"testing"

	"github.com/s/courseStore/internal/apperr"
	"github.com/s/courseStore/internal/logger"
	"github.com/s/courseStore/internal/models"
	"github.com/s/courseStore/internal/testutil"
	"gorm.io/gorm"
)

func lessons(t *testing.T, db *gorm.DB, productID string, ids ...string) {
	t.Helper()
	for i, id := range ids {
		l := models.Lesson{ID: id, ProductID: productID, Title: "Lesson " + id, SortOrder: i + 1, IsActive: true}
		if err := db.Create(&l).Error; err != nil {
			t.Fatalf("create lesson: %v", err)
		}
	}
}

func setup(t *testing.T) (*gorm.DB, *Tracker, models.User) {
	t.Helper()
	db := testutil.NewDB(t)
	testutil.SeedCatalog(t, db, 49, "A", "B")
	lessons(t, db, "A", "a1", "a2")
	lessons(t, db, "B", "b1")
	u := testutil.NewUser(t, db, "learner@example.com")
	testutil.GrantPurchase(t, db, u.ID, "A")
	return db, NewTracker(db, logger.Nop()), u
}

func TestRecordIsIdempotentPerLesson(t *testing.T) {
	db, tr, u := setup(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		row, err := tr.Record(ctx, u.ID, Update{LessonID: "a1", Completed: true, Progress: 100, TimeSpent: 15})
		if err != nil {
			t.Fatalf("Record #%d: %v", i+1, err)
		}
		if row.TimeSpent != 15 || !row.Completed || row.Progress != 100 {
			t.Fatalf("row = %+v", row)
		}
	}

	var count int64
	db.Model(&models.UserProgress{}).Where("user_id = ? AND lesson_id = ?", u.ID, "a1").Count(&count)
	if count != 1 {
		t.Fatalf("rows = %d, want 1", count)
	}

	row, err := tr.Record(ctx, u.ID, Update{LessonID: "a1", Progress: 100, TimeSpent: 42})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if row.TimeSpent != 42 {
		t.Fatalf("TimeSpent = %d, want the caller's 42", row.TimeSpent)
	}
}

func TestRecordNormalizesCompletion(t *testing.T) {
	_, tr, u := setup(t)
	ctx := context.Background()

	tests := []struct {
		name          string
		in            Update
		wantProgress  int
		wantCompleted bool
	}{
		{"partial", Update{LessonID: "a1", Progress: 50}, 50, false},
		{"complete action", Update{LessonID: "a1", Progress: 25, Action: ActionComplete}, 100, true},
		{"hundred percent", Update{LessonID: "a2", Progress: 100}, 100, true},
		{"completed flag", Update{LessonID: "a2", Progress: 75, Completed: true}, 100, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row, err := tr.Record(ctx, u.ID, tt.in)
			if err != nil {
				t.Fatalf("Record: %v", err)
			}
			if row.Progress != tt.wantProgress || row.Completed != tt.wantCompleted {
				t.Fatalf("row = %d/%v, want %d/%v", row.Progress, row.Completed, tt.wantProgress, tt.wantCompleted)
			}
		})
	}
}

func TestRecordRejects(t *testing.T) {
	_, tr, u := setup(t)
	ctx := context.Background()

	if _, err := tr.Record(ctx, u.ID, Update{LessonID: "b1", Progress: 50}); apperr.KindOf(err) != apperr.KindForbidden {
		t.Fatalf("unowned lesson err = %v, want forbidden", err)
	}
	if _, err := tr.Record(ctx, u.ID, Update{LessonID: "a1", Progress: 150}); apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("progress 150 err = %v, want validation", err)
	}
	if _, err := tr.Record(ctx, u.ID, Update{LessonID: "nope"}); apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("missing lesson err = %v, want not found", err)
	}
}

func TestCompleteLessonAwardsOnce(t *testing.T) {
	db, tr, u := setup(t)
	ctx := context.Background()

	c, err := tr.CompleteLesson(ctx, u.ID, "a1", 10)
	if err != nil {
		t.Fatalf("CompleteLesson a1: %v", err)
	}
	if c.Percent != 50 || c.Awarded {
		t.Fatalf("after a1 = %+v, want 50%% not awarded", c)
	}

	c, err = tr.CompleteLesson(ctx, u.ID, "a2", 10)
	if err != nil {
		t.Fatalf("CompleteLesson a2: %v", err)
	}
	if c.Percent != 100 || !c.Awarded || c.Points != CompletionPoints {
		t.Fatalf("after a2 = %+v, want awarded", c)
	}

	// Replaying the completion changes nothing.
	c, err = tr.CompleteLesson(ctx, u.ID, "a2", 10)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if c.Awarded || c.Points != CompletionPoints {
		t.Fatalf("replay = %+v, want no second award", c)
	}

	var user models.User
	db.First(&user, "id = ?", u.ID)
	if user.Points != CompletionPoints || len(user.CompletedProducts) != 1 || user.CompletedProducts[0] != "A" {
		t.Fatalf("user = points %d completed %v", user.Points, user.CompletedProducts)
	}
	var achievements int64
	db.Model(&models.Achievement{}).Where("user_id = ?", u.ID).Count(&achievements)
	if achievements != 1 {
		t.Fatalf("achievements = %d, want 1", achievements)
	}
}

func TestApplyProgressMap(t *testing.T) {
	db, tr, u := setup(t)
	ctx := context.Background()

	if _, err := tr.Record(ctx, u.ID, Update{LessonID: "a1", Progress: 25, TimeSpent: 7}); err != nil {
		t.Fatalf("Record: %v", err)
	}

	got, err := tr.ApplyProgressMap(ctx, u.ID, map[string]int{
		LessonKey("A", "a1"): 100,
		LessonKey("A", "a2"): 100,
		"points":             100000,
	})
	if err != nil {
		t.Fatalf("ApplyProgressMap: %v", err)
	}
	if len(got) != 1 || got[0].Percent != 100 || !got[0].Awarded {
		t.Fatalf("completions = %+v", got)
	}

	var row models.UserProgress
	db.Where("user_id = ? AND lesson_id = ?", u.ID, "a1").First(&row)
	if row.TimeSpent != 7 {
		t.Fatalf("TimeSpent = %d, want stored 7 kept", row.TimeSpent)
	}

	rows, err := tr.List(ctx, u.ID)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	m := ProgressMap(rows)
	if m[LessonKey("A", "a1")] != 100 || m[LessonKey("A", "a2")] != 100 {
		t.Fatalf("ProgressMap = %v", m)
	}

	if _, err := tr.ApplyProgressMap(ctx, u.ID, map[string]int{LessonKey("B", "b1"): 100}); apperr.KindOf(err) != apperr.KindForbidden {
		t.Fatalf("unowned err = %v, want forbidden", err)
	}
}

func TestParseLessonKey(t *testing.T) {
	if id, ok := ParseLessonKey("foundations_lesson_abc"); !ok || id != "abc" {
		t.Fatalf("ParseLessonKey = %q, %v", id, ok)
	}
	if _, ok := ParseLessonKey("points"); ok {
		t.Fatalf("ParseLessonKey(points) ok")
	}
}
