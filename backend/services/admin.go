package services

import (
	"context"
	"math"

	"courseplatform/backend/apperr"
	"courseplatform/backend/models"
	"courseplatform/backend/utils"

	"gorm.io/gorm"
)

// UserSummary is a user row in the admin listing. Teachers also carry their course
// and distinct student counts.
type UserSummary struct {
	models.User
	CoursesCount  *int64 `json:"courses_count,omitempty"`
	StudentsCount *int64 `json:"students_count,omitempty"`
}

type AdminService struct {
	db  *gorm.DB
	log *utils.Logger
}

func NewAdminService(db *gorm.DB, log *utils.Logger) *AdminService {
	return &AdminService{db: db, log: log.With("service", "AdminService")}
}

func (s *AdminService) ListUsers(ctx context.Context, role *models.Role) ([]UserSummary, error) {
	db := s.db.WithContext(ctx)
	query := db.Order("id ASC")
	if role != nil {
		if !role.Valid() {
			return nil, apperr.Validation("Unknown role %q", *role)
		}
		query = query.Where("role = ?", *role)
	}
	var users []models.User
	if err := query.Find(&users).Error; err != nil {
		return nil, logInternal(s.log, "ListUsers", err)
	}

	type teacherCount struct {
		TeacherID uint
		N         int64
	}
	var courses, students []teacherCount
	err := db.Model(&models.Course{}).
		Select("teacher_id, COUNT(*) AS n").
		Group("teacher_id").
		Scan(&courses).Error
	if err != nil {
		return nil, logInternal(s.log, "ListUsers", err)
	}
	err = db.Table("enrollments").
		Select("courses.teacher_id, COUNT(DISTINCT enrollments.student_id) AS n").
		Joins("JOIN courses ON courses.id = enrollments.course_id").
		Group("courses.teacher_id").
		Scan(&students).Error
	if err != nil {
		return nil, logInternal(s.log, "ListUsers", err)
	}
	courseCounts := make(map[uint]int64, len(courses))
	for _, c := range courses {
		courseCounts[c.TeacherID] = c.N
	}
	studentCounts := make(map[uint]int64, len(students))
	for _, c := range students {
		studentCounts[c.TeacherID] = c.N
	}

	summaries := make([]UserSummary, 0, len(users))
	for _, u := range users {
		summary := UserSummary{User: u}
		if u.Role == models.RoleTeacher {
			nc, ns := courseCounts[u.ID], studentCounts[u.ID]
			summary.CoursesCount, summary.StudentsCount = &nc, &ns
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// DeleteUser removes a student or teacher with everything they own. Ledger rows are
// kept for revenue history.
func (s *AdminService) DeleteUser(ctx context.Context, userID uint) (err error) {
	ctx, span := startSpan(ctx, "AdminService.DeleteUser")
	defer func() { endSpan(span, err) }()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, userID).Error; err != nil {
			return notFoundOr(err, "User not found")
		}
		if user.Role == models.RoleAdmin {
			return apperr.Validation("Admin accounts cannot be deleted")
		}

		if user.Role == models.RoleTeacher {
			var courseIDs []uint
			if err := tx.Model(&models.Course{}).Where("teacher_id = ?", userID).Pluck("id", &courseIDs).Error; err != nil {
				return err
			}
			if err := deleteCourses(tx, courseIDs); err != nil {
				return err
			}
			if err := tx.Where("teacher_id = ?", userID).Delete(&models.TeacherReview{}).Error; err != nil {
				return err
			}
		}

		var enrollmentIDs []uint
		if err := tx.Model(&models.Enrollment{}).Where("student_id = ?", userID).Pluck("id", &enrollmentIDs).Error; err != nil {
			return err
		}
		if err := deleteEnrollments(tx, enrollmentIDs); err != nil {
			return err
		}

		var teacherIDs []uint
		if err := tx.Model(&models.TeacherReview{}).Where("student_id = ?", userID).Distinct().Pluck("teacher_id", &teacherIDs).Error; err != nil {
			return err
		}
		if err := tx.Where("student_id = ?", userID).Delete(&models.TeacherReview{}).Error; err != nil {
			return err
		}
		for _, id := range teacherIDs {
			if err := refreshTeacherRating(tx, id); err != nil {
				return err
			}
		}

		var reviewedCourses []uint
		if err := tx.Model(&models.CourseReview{}).Where("student_id = ?", userID).Pluck("course_id", &reviewedCourses).Error; err != nil {
			return err
		}
		if err := tx.Where("student_id = ?", userID).Delete(&models.CourseReview{}).Error; err != nil {
			return err
		}
		for _, id := range reviewedCourses {
			if err := refreshCourseRating(tx, id); err != nil {
				return err
			}
		}

		if err := tx.Where("student_id = ?", userID).Delete(&models.QuizAttempt{}).Error; err != nil {
			return err
		}
		return tx.Delete(&user).Error
	})
	if err != nil {
		return logInternal(s.log, "DeleteUser", err)
	}
	s.log.Info("user deleted", "user_id", userID)
	return nil
}

func (s *AdminService) SetBalance(ctx context.Context, userID uint, balance float64) (*models.User, error) {
	if balance < 0 || math.IsNaN(balance) || math.IsInf(balance, 0) {
		return nil, apperr.Validation("Balance must be a non-negative number")
	}
	var user models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&user, userID).Error; err != nil {
			return notFoundOr(err, "User not found")
		}
		return tx.Model(&user).Update("balance", balance).Error
	})
	if err != nil {
		return nil, logInternal(s.log, "SetBalance", err)
	}
	user.Balance = balance
	s.log.Info("balance set", "user_id", userID, "balance", balance)
	return &user, nil
}
