package services

import (
	"context"
	"errors"
	"math"
	"time"

	"courseplatform/backend/apperr"
	"courseplatform/backend/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CompleteLesson adds the lesson to the student's completed set and recomputes progress.
// Completing an already completed lesson changes nothing but the recomputation.
func (s *LearningService) CompleteLesson(ctx context.Context, studentID, lessonID uint) (*models.Enrollment, error) {
	return s.updateLesson(ctx, "CompleteLesson", studentID, lessonID, func(e *models.Enrollment) {
		e.MarkCompleted(lessonID)
	})
}

// ResetLesson removes the lesson from the completed set; a course completed before
// loses its completion once progress falls below 100.
func (s *LearningService) ResetLesson(ctx context.Context, studentID, lessonID uint) (*models.Enrollment, error) {
	return s.updateLesson(ctx, "ResetLesson", studentID, lessonID, func(e *models.Enrollment) {
		e.Unmark(lessonID)
	})
}

func (s *LearningService) updateLesson(ctx context.Context, op string, studentID, lessonID uint, change func(*models.Enrollment)) (*models.Enrollment, error) {
	var enrollment *models.Enrollment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		courseID, err := courseIDForLesson(tx, lessonID)
		if err != nil {
			return err
		}
		if enrollment, err = lockEnrollment(tx, studentID, courseID); err != nil {
			return err
		}
		change(enrollment)
		return recomputeAndSave(tx, enrollment)
	})
	if err != nil {
		return nil, logInternal(s.log, op, err)
	}
	return enrollment, nil
}

// CompleteModule checks that every lesson of the module is completed and refreshes
// the enrollment's progress. It never marks lessons itself.
func (s *LearningService) CompleteModule(ctx context.Context, studentID, moduleID uint) (*models.Enrollment, error) {
	var enrollment *models.Enrollment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var module models.Module
		if err := tx.First(&module, moduleID).Error; err != nil {
			return notFoundOr(err, "Module not found")
		}
		var lessonIDs []uint
		if err := tx.Model(&models.Lesson{}).Where("module_id = ?", moduleID).Pluck("id", &lessonIDs).Error; err != nil {
			return err
		}
		if len(lessonIDs) == 0 {
			return apperr.Validation("Module has no lessons")
		}
		var err error
		if enrollment, err = lockEnrollment(tx, studentID, module.CourseID); err != nil {
			return err
		}
		if done := countCompleted(enrollment, lessonIDs); done < len(lessonIDs) {
			return apperr.Validation("Complete all lessons of the module first (%d of %d done)", done, len(lessonIDs))
		}
		return recomputeAndSave(tx, enrollment)
	})
	if err != nil {
		return nil, logInternal(s.log, "CompleteModule", err)
	}
	return enrollment, nil
}

// CompleteCourse checks that every lesson of the course is completed and marks the
// enrollment complete.
func (s *LearningService) CompleteCourse(ctx context.Context, studentID, courseID uint) (*models.Enrollment, error) {
	var enrollment *models.Enrollment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var course models.Course
		if err := tx.Select("id").First(&course, courseID).Error; err != nil {
			return notFoundOr(err, "Course not found")
		}
		var err error
		if enrollment, err = lockEnrollment(tx, studentID, courseID); err != nil {
			return err
		}
		lessonIDs, err := courseLessonIDs(tx, courseID)
		if err != nil {
			return err
		}
		if len(lessonIDs) == 0 {
			return apperr.Validation("Course has no lessons")
		}
		if done := countCompleted(enrollment, lessonIDs); done < len(lessonIDs) {
			return apperr.Validation("Complete all lessons of the course first (%d of %d done)", done, len(lessonIDs))
		}
		applyProgress(enrollment, lessonIDs, time.Now().UTC())
		return saveProgress(tx, enrollment)
	})
	if err != nil {
		return nil, logInternal(s.log, "CompleteCourse", err)
	}
	s.log.Info("course completed", "student_id", studentID, "course_id", courseID)
	return enrollment, nil
}

func lockEnrollment(tx *gorm.DB, studentID, courseID uint) (*models.Enrollment, error) {
	var enrollment models.Enrollment
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("student_id = ? AND course_id = ?", studentID, courseID).
		First(&enrollment).Error
	if err != nil {
		return nil, notFoundOrForbidden(err)
	}
	return &enrollment, nil
}

func notFoundOrForbidden(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.Forbidden("You are not enrolled in this course")
	}
	return err
}

func recomputeAndSave(tx *gorm.DB, enrollment *models.Enrollment) error {
	lessonIDs, err := courseLessonIDs(tx, enrollment.CourseID)
	if err != nil {
		return err
	}
	applyProgress(enrollment, lessonIDs, time.Now().UTC())
	return saveProgress(tx, enrollment)
}

// applyProgress sets progress from the completed lessons that still belong to the
// course. The enrollment is complete exactly when progress reaches 100.
func applyProgress(e *models.Enrollment, lessonIDs []uint, now time.Time) {
	total := len(lessonIDs)
	done := countCompleted(e, lessonIDs)

	progress := 0.0
	if total > 0 {
		progress = math.Round(float64(done)/float64(total)*10000) / 100
	}
	e.ProgressPercent = math.Max(0, math.Min(100, progress))

	complete := total > 0 && done == total
	switch {
	case complete && !e.IsCompleted:
		e.CompletedAt = &now
	case !complete:
		e.CompletedAt = nil
	}
	e.IsCompleted = complete
	if complete {
		e.ProgressPercent = 100
	}
}

func countCompleted(e *models.Enrollment, lessonIDs []uint) int {
	done := 0
	for _, id := range lessonIDs {
		if e.HasCompleted(id) {
			done++
		}
	}
	return done
}

func saveProgress(tx *gorm.DB, e *models.Enrollment) error {
	return tx.Model(e).
		Select("completed_lessons", "progress_percent", "is_completed", "completed_at").
		Updates(e).Error
}
