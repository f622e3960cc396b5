// Package progress records per-lesson progress and awards course completion.
package progress

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/s/courseStore/internal/apperr"
	"github.com/s/courseStore/internal/entitlement"
	"github.com/s/courseStore/internal/logger"
	"github.com/s/courseStore/internal/models"
	"github.com/s/courseStore/internal/storage"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CompletionPoints is awarded once per completed course.
const CompletionPoints = 100

const ActionComplete = "complete"

type Update struct {
	LessonID  string `json:"lesson_id"`
	Completed bool   `json:"completed"`
	Progress  int    `json:"progress"`
	TimeSpent int    `json:"time_spent"`
	Action    string `json:"action"`
}

func (u *Update) normalize() error {
	if u.LessonID == "" {
		return apperr.Validation("lesson_id is required")
	}
	if u.Progress < 0 || u.Progress > 100 {
		return apperr.Validation("progress must be between 0 and 100")
	}
	if u.TimeSpent < 0 {
		return apperr.Validation("time_spent must not be negative")
	}
	if u.Action == ActionComplete {
		u.Progress = 100
	}
	u.Completed = u.Completed || u.Progress == 100
	if u.Completed {
		u.Progress = 100
	}
	return nil
}

// CourseCompletion is the server-derived state of one course.
type CourseCompletion struct {
	ProductID        string `json:"product_id"`
	TotalLessons     int64  `json:"total_lessons"`
	CompletedLessons int64  `json:"completed_lessons"`
	Percent          int    `json:"percent"`
	Awarded          bool   `json:"awarded"`
	Points           int    `json:"points"`
}

type Tracker struct {
	db  *gorm.DB
	log *logger.Logger
	now func() time.Time
}

func NewTracker(db *gorm.DB, log *logger.Logger) *Tracker {
	return &Tracker{db: db, log: log.With("service", "ProgressTracker"), now: time.Now}
}

func upsert(ctx context.Context, tx *gorm.DB, userID string, u Update, at time.Time) (*models.UserProgress, error) {
	row := models.UserProgress{
		UserID:       userID,
		LessonID:     u.LessonID,
		Completed:    u.Completed,
		Progress:     u.Progress,
		TimeSpent:    u.TimeSpent,
		LastAccessed: at,
	}
	err := tx.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "lesson_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"completed", "progress", "time_spent", "last_accessed", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return nil, err
	}

	var saved models.UserProgress
	if err := tx.WithContext(ctx).Where("user_id = ? AND lesson_id = ?", userID, u.LessonID).First(&saved).Error; err != nil {
		return nil, err
	}
	return &saved, nil
}

// Record upserts the (user, lesson) progress row. time_spent is stored as
// the caller passed it. The caller must own the lesson's product.
func (t *Tracker) Record(ctx context.Context, userID string, u Update) (*models.UserProgress, error) {
	if err := u.normalize(); err != nil {
		return nil, err
	}

	lesson, err := storage.GetLesson(ctx, t.db, u.LessonID)
	if err != nil {
		return nil, err
	}
	ok, err := entitlement.HasLessonAccess(ctx, t.db, userID, lesson)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.Forbidden("You do not have access to this lesson")
	}

	return upsert(ctx, t.db, userID, u, t.now())
}

// List returns the user's progress rows with lesson and product loaded.
func (t *Tracker) List(ctx context.Context, userID string) ([]models.UserProgress, error) {
	rows := []models.UserProgress{}
	err := t.db.WithContext(ctx).
		Preload("Lesson.Product").
		Where("user_id = ?", userID).
		Order("last_accessed desc").
		Find(&rows).Error
	return rows, err
}

// ProgressMap keys progress by "{productId}_lesson_{lessonId}".
func ProgressMap(rows []models.UserProgress) map[string]int {
	out := make(map[string]int, len(rows))
	for _, p := range rows {
		if p.Lesson == nil {
			continue
		}
		out[LessonKey(p.Lesson.ProductID, p.LessonID)] = p.Progress
	}
	return out
}

func LessonKey(productID, lessonID string) string {
	return fmt.Sprintf("%s_lesson_%s", productID, lessonID)
}

// ParseLessonKey extracts the lesson id from a progress map key.
func ParseLessonKey(key string) (string, bool) {
	i := strings.Index(key, "_lesson_")
	if i < 0 {
		return "", false
	}
	id := key[i+len("_lesson_"):]
	return id, id != ""
}

// CompleteLesson marks a lesson done and re-derives course completion from
// the stored progress rows, awarding points once when it reaches 100%.
func (t *Tracker) CompleteLesson(ctx context.Context, userID, lessonID string, timeSpent int) (*CourseCompletion, error) {
	u := Update{LessonID: lessonID, TimeSpent: timeSpent, Action: ActionComplete}
	if err := u.normalize(); err != nil {
		return nil, err
	}

	lesson, err := storage.GetLesson(ctx, t.db, lessonID)
	if err != nil {
		return nil, err
	}
	ok, err := entitlement.HasLessonAccess(ctx, t.db, userID, lesson)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.Forbidden("You do not have access to this lesson")
	}

	var result *CourseCompletion
	err = t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := upsert(ctx, tx, userID, u, t.now()); err != nil {
			return err
		}
		result, err = t.evaluate(ctx, tx, userID, lesson.ProductID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ApplyProgressMap upserts the lesson keys of a client progress map and
// then re-derives completion for every course it touched.
func (t *Tracker) ApplyProgressMap(ctx context.Context, userID string, progress map[string]int) ([]CourseCompletion, error) {
	products := map[string]bool{}
	var order []string

	err := t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for key, value := range progress {
			lessonID, ok := ParseLessonKey(key)
			if !ok {
				continue
			}
			u := Update{LessonID: lessonID, Progress: value}
			if err := u.normalize(); err != nil {
				return err
			}

			lesson, err := storage.GetLesson(ctx, tx, lessonID)
			if err != nil {
				return err
			}
			ok, err = entitlement.HasLessonAccess(ctx, tx, userID, lesson)
			if err != nil {
				return err
			}
			if !ok {
				return apperr.Forbidden("You do not have access to this lesson")
			}

			// time_spent is not part of the map; keep the stored value
			var existing models.UserProgress
			err = tx.Where("user_id = ? AND lesson_id = ?", userID, lessonID).First(&existing).Error
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			u.TimeSpent = existing.TimeSpent

			if _, err := upsert(ctx, tx, userID, u, t.now()); err != nil {
				return err
			}
			if !products[lesson.ProductID] {
				products[lesson.ProductID] = true
				order = append(order, lesson.ProductID)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := make([]CourseCompletion, 0, len(order))
	for _, productID := range order {
		var c *CourseCompletion
		err := t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var err error
			c, err = t.evaluate(ctx, tx, userID, productID)
			return err
		})
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, nil
}

// evaluate computes completion for one product from progress rows and, at
// 100%, records the completion, points and achievement exactly once.
func (t *Tracker) evaluate(ctx context.Context, tx *gorm.DB, userID, productID string) (*CourseCompletion, error) {
	total, err := storage.CountActiveLessons(ctx, tx, productID)
	if err != nil {
		return nil, err
	}

	var done int64
	err = tx.WithContext(ctx).Model(&models.UserProgress{}).
		Joins("JOIN lessons ON lessons.id = user_progress.lesson_id").
		Where("user_progress.user_id = ? AND user_progress.completed = ?", userID, true).
		Where("lessons.product_id = ? AND lessons.is_active = ?", productID, true).
		Count(&done).Error
	if err != nil {
		return nil, err
	}

	c := &CourseCompletion{ProductID: productID, TotalLessons: total, CompletedLessons: done}
	if total > 0 {
		c.Percent = int(done * 100 / total)
	}

	var user models.User
	if err := tx.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, err
	}
	c.Points = user.Points

	if total == 0 || c.Percent < 100 || user.HasCompleted(productID) {
		return c, nil
	}

	// 1. Achievement row is the once-only guard
	var product models.Product
	if err := tx.WithContext(ctx).Select("id", "name").First(&product, "id = ?", productID).Error; err != nil {
		return nil, err
	}
	ach := models.Achievement{
		UserID:      userID,
		ProductID:   productID,
		Title:       product.Name + " completed",
		Description: fmt.Sprintf("Completed every lesson in %s", product.Name),
		Points:      CompletionPoints,
		EarnedAt:    t.now(),
	}
	res := tx.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&ach)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return c, nil
	}

	// 2. Completed list and points
	completed := append(datatypes.JSONSlice[string]{}, user.CompletedProducts...)
	completed = append(completed, productID)
	err = tx.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"completed_products": completed,
		"points":             gorm.Expr("points + ?", CompletionPoints),
	}).Error
	if err != nil {
		return nil, err
	}

	c.Awarded = true
	c.Points = user.Points + CompletionPoints
	t.log.Info("course completed", "user_id", userID, "product_id", productID, "points", c.Points)
	return c, nil
}
