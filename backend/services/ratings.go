package services

import (
	"context"
	"strings"

	"courseplatform/backend/apperr"
	"courseplatform/backend/models"
	"courseplatform/backend/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CourseRating struct {
	CourseID      uint    `json:"course_id"`
	Rating        float64 `json:"rating"`
	RatingCount   int     `json:"rating_count"`
	StudentRating int     `json:"student_rating"`
}

type TeacherRating struct {
	TeacherID     uint    `json:"teacher_id"`
	Rating        float64 `json:"rating"`
	RatingCount   int     `json:"rating_count"`
	StudentRating int     `json:"student_rating"`
}

type RatingService struct {
	db  *gorm.DB
	log *utils.Logger
}

func NewRatingService(db *gorm.DB, log *utils.Logger) *RatingService {
	return &RatingService{db: db, log: log.With("service", "RatingService")}
}

// RateCourse stores the student's rating of a completed course; a second rating
// replaces the first. The course aggregate is recomputed from all reviews.
func (s *RatingService) RateCourse(ctx context.Context, studentID, courseID uint, rating int, comment string) (*CourseRating, error) {
	if err := validateRating(rating); err != nil {
		return nil, err
	}
	var course models.Course
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		enrollment, err := completedEnrollment(tx, studentID, courseID)
		if err != nil {
			return err
		}
		review := models.CourseReview{
			StudentID:    studentID,
			CourseID:     courseID,
			EnrollmentID: enrollment.ID,
			Rating:       rating,
			Comment:      strings.TrimSpace(comment),
		}
		err = tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "student_id"}, {Name: "course_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"rating", "comment", "enrollment_id", "updated_at"}),
		}).Omit("Student").Create(&review).Error
		if err != nil {
			return err
		}
		if err := refreshCourseRating(tx, courseID); err != nil {
			return err
		}
		return tx.Select("id", "rating", "rating_count").First(&course, courseID).Error
	})
	if err != nil {
		return nil, logInternal(s.log, "RateCourse", err)
	}
	return &CourseRating{CourseID: courseID, Rating: course.Rating, RatingCount: course.RatingCount, StudentRating: rating}, nil
}

// RateTeacher rates the teacher of a course the student has completed. One rating per
// student and teacher, whichever course it was given through.
func (s *RatingService) RateTeacher(ctx context.Context, studentID, courseID uint, rating int, comment string) (*TeacherRating, error) {
	if err := validateRating(rating); err != nil {
		return nil, err
	}
	var teacher models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		enrollment, err := completedEnrollment(tx, studentID, courseID)
		if err != nil {
			return err
		}
		var course models.Course
		if err := tx.Select("id", "teacher_id").First(&course, courseID).Error; err != nil {
			return notFoundOr(err, "Course not found")
		}
		review := models.TeacherReview{
			StudentID:    studentID,
			TeacherID:    course.TeacherID,
			CourseID:     courseID,
			EnrollmentID: enrollment.ID,
			Rating:       rating,
			Comment:      strings.TrimSpace(comment),
		}
		err = tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "student_id"}, {Name: "teacher_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"rating", "comment", "course_id", "enrollment_id", "updated_at"}),
		}).Create(&review).Error
		if err != nil {
			return err
		}
		if err := refreshTeacherRating(tx, course.TeacherID); err != nil {
			return err
		}
		return tx.Select("id", "rating", "rating_count").First(&teacher, course.TeacherID).Error
	})
	if err != nil {
		return nil, logInternal(s.log, "RateTeacher", err)
	}
	return &TeacherRating{TeacherID: teacher.ID, Rating: teacher.Rating, RatingCount: teacher.RatingCount, StudentRating: rating}, nil
}

func validateRating(rating int) error {
	if rating < 1 || rating > 5 {
		return apperr.Validation("Rating must be between 1 and 5")
	}
	return nil
}

func completedEnrollment(tx *gorm.DB, studentID, courseID uint) (*models.Enrollment, error) {
	var count int64
	if err := tx.Model(&models.Course{}).Where("id = ?", courseID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, apperr.NotFound("Course not found")
	}
	var enrollment models.Enrollment
	err := tx.Where("student_id = ? AND course_id = ?", studentID, courseID).First(&enrollment).Error
	if err != nil {
		return nil, notFoundOrForbidden(err)
	}
	if !enrollment.IsCompleted {
		return nil, apperr.Validation("Complete the course before rating it")
	}
	return &enrollment, nil
}

func refreshCourseRating(tx *gorm.DB, courseID uint) error {
	return tx.Model(&models.Course{}).Where("id = ?", courseID).Updates(map[string]interface{}{
		"rating":       gorm.Expr("COALESCE((SELECT AVG(rating) FROM course_reviews WHERE course_id = ?), 0)", courseID),
		"rating_count": gorm.Expr("(SELECT COUNT(*) FROM course_reviews WHERE course_id = ?)", courseID),
	}).Error
}

func refreshTeacherRating(tx *gorm.DB, teacherID uint) error {
	return tx.Model(&models.User{}).Where("id = ?", teacherID).Updates(map[string]interface{}{
		"rating":       gorm.Expr("COALESCE((SELECT AVG(rating) FROM teacher_reviews WHERE teacher_id = ?), 0)", teacherID),
		"rating_count": gorm.Expr("(SELECT COUNT(*) FROM teacher_reviews WHERE teacher_id = ?)", teacherID),
	}).Error
}
