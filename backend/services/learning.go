package services

import (
	"context"
	"errors"
	"time"

	"courseplatform/backend/apperr"
	"courseplatform/backend/models"
	"courseplatform/backend/utils"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type LearningService struct {
	db  *gorm.DB
	log *utils.Logger
}

func NewLearningService(db *gorm.DB, log *utils.Logger) *LearningService {
	return &LearningService{db: db, log: log.With("service", "LearningService")}
}

// Enroll registers the student in a published course. For priced courses the
// student's balance is debited, the teacher credited and a ledger row written in the
// same transaction as the enrollment, so a failure at any step leaves no trace.
func (s *LearningService) Enroll(ctx context.Context, studentID, courseID uint) (enrollment *models.Enrollment, err error) {
	ctx, span := startSpan(ctx, "LearningService.Enroll")
	span.SetAttributes(attribute.Int64("course.id", int64(courseID)))
	defer func() { endSpan(span, err) }()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var course models.Course
		if err := tx.Where("id = ? AND is_published = ?", courseID, true).First(&course).Error; err != nil {
			return notFoundOr(err, "Course not found or not published")
		}

		var existing int64
		if err := tx.Model(&models.Enrollment{}).
			Where("student_id = ? AND course_id = ?", studentID, courseID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return apperr.Conflict("Already enrolled in this course")
		}

		if course.Price > 0 {
			if err := transfer(tx, studentID, course.TeacherID, course.Price); err != nil {
				return err
			}
		}

		now := time.Now().UTC()
		enrollment = &models.Enrollment{
			StudentID:        studentID,
			CourseID:         courseID,
			CompletedLessons: datatypes.JSONSlice[uint]{},
			EnrolledAt:       now,
		}
		if err := tx.Omit("Course", "Certificate").Create(enrollment).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperr.Conflict("Already enrolled in this course")
			}
			return err
		}

		return tx.Create(&models.Transaction{
			StudentID:   studentID,
			TeacherID:   course.TeacherID,
			CourseID:    &course.ID,
			CourseTitle: course.Title,
			Amount:      course.Price,
			CreatedAt:   now,
		}).Error
	})
	if err != nil {
		return nil, logInternal(s.log, "Enroll", err)
	}
	s.log.Info("student enrolled", "student_id", studentID, "course_id", courseID)
	return enrollment, nil
}

// transfer moves amount from the student to the teacher. The debit is conditional on
// the balance so concurrent purchases cannot overdraw it.
func transfer(tx *gorm.DB, studentID, teacherID uint, amount float64) error {
	debit := tx.Model(&models.User{}).
		Where("id = ? AND balance >= ?", studentID, amount).
		Update("balance", gorm.Expr("balance - ?", amount))
	if debit.Error != nil {
		return debit.Error
	}
	if debit.RowsAffected == 0 {
		var student models.User
		if err := tx.Select("id", "balance").First(&student, studentID).Error; err != nil {
			return notFoundOr(err, "Student not found")
		}
		return apperr.Validation("Insufficient balance: course costs %.2f, available %.2f", amount, student.Balance)
	}

	credit := tx.Model(&models.User{}).
		Where("id = ?", teacherID).
		Update("balance", gorm.Expr("balance + ?", amount))
	if credit.Error != nil {
		return credit.Error
	}
	if credit.RowsAffected == 0 {
		return apperr.NotFound("Course teacher not found")
	}
	return nil
}

func (s *LearningService) Enrollments(ctx context.Context, studentID uint) ([]models.Enrollment, error) {
	var enrollments []models.Enrollment
	err := s.db.WithContext(ctx).
		Preload("Course").
		Preload("Certificate").
		Where("student_id = ?", studentID).
		Order("enrolled_at DESC, id DESC").
		Find(&enrollments).Error
	if err != nil {
		return nil, logInternal(s.log, "Enrollments", err)
	}
	return enrollments, nil
}

func (s *LearningService) Enrollment(ctx context.Context, studentID, courseID uint) (*models.Enrollment, error) {
	var enrollment models.Enrollment
	err := s.db.WithContext(ctx).
		Preload("Course").
		Preload("Certificate").
		Where("student_id = ? AND course_id = ?", studentID, courseID).
		First(&enrollment).Error
	if err != nil {
		return nil, logInternal(s.log, "Enrollment", notFoundOr(err, "Enrollment not found"))
	}
	return &enrollment, nil
}

// LessonForStudent returns lesson content to an enrolled student.
func (s *LearningService) LessonForStudent(ctx context.Context, studentID, lessonID uint) (*models.Lesson, error) {
	db := s.db.WithContext(ctx)
	var lesson models.Lesson
	if err := db.Preload("Quiz").First(&lesson, lessonID).Error; err != nil {
		return nil, logInternal(s.log, "LessonForStudent", notFoundOr(err, "Lesson not found"))
	}
	if err := requireEnrollmentForLesson(db, studentID, lessonID); err != nil {
		return nil, logInternal(s.log, "LessonForStudent", err)
	}
	return &lesson, nil
}
