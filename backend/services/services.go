// Package services holds the platform's business operations. Each service gets the
// store handle and a logger at construction; every mutating operation runs inside a
// single store transaction and returns *apperr.Error values for expected failures.
package services

import (
	"context"
	"errors"
	"fmt"

	"courseplatform/backend/apperr"
	"courseplatform/backend/models"
	"courseplatform/backend/utils"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

var tracer = otel.Tracer("courseplatform/backend/services")

// Actor is the authenticated caller of an operation.
type Actor struct {
	UserID uint
	Role   models.Role
}

func (a Actor) IsAdmin() bool { return a.Role == models.RoleAdmin }

func (a Actor) IsStaff() bool { return a.Role == models.RoleAdmin || a.Role == models.RoleTeacher }

func startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return tracer.Start(ctx, name)
}

func endSpan(span trace.Span, err error) {
	if err != nil && apperr.KindOf(err) == apperr.KindInternal {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// notFoundOr turns gorm.ErrRecordNotFound into a NotFound error with the given
// message and anything else into an Internal error.
func notFoundOr(err error, format string, args ...any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(format, args...)
	}
	return asInternal(err)
}

// asInternal keeps *apperr.Error values as they are and wraps everything else.
func asInternal(err error) error {
	if err == nil {
		return nil
	}
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	return apperr.Internal(err)
}

// logInternal records the cause of an internal failure before it is returned.
func logInternal(log *utils.Logger, op string, err error) error {
	if err == nil {
		return nil
	}
	err = asInternal(err)
	if apperr.KindOf(err) == apperr.KindInternal {
		log.Error(op+" failed", "error", errors.Unwrap(err))
	}
	return err
}

func courseIDForLesson(tx *gorm.DB, lessonID uint) (uint, error) {
	var row struct{ CourseID uint }
	err := tx.Table("lessons").
		Select("modules.course_id AS course_id").
		Joins("JOIN modules ON modules.id = lessons.module_id").
		Where("lessons.id = ?", lessonID).
		Take(&row).Error
	if err != nil {
		return 0, notFoundOr(err, "Lesson not found")
	}
	return row.CourseID, nil
}

func courseLessonIDs(tx *gorm.DB, courseID uint) ([]uint, error) {
	var ids []uint
	err := tx.Model(&models.Lesson{}).
		Joins("JOIN modules ON modules.id = lessons.module_id").
		Where("modules.course_id = ?", courseID).
		Order("modules.sort_order ASC, lessons.sort_order ASC, lessons.id ASC").
		Pluck("lessons.id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("list course lessons: %w", err)
	}
	return ids, nil
}

func mustBeStaff(actor Actor) error {
	if !actor.IsStaff() {
		return apperr.Forbidden("Only teachers and admins can manage courses")
	}
	return nil
}
