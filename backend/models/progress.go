package models

import (
	"slices"
	"time"

	"gorm.io/datatypes"
)

type Enrollment struct {
	ID               uint                      `gorm:"primaryKey" json:"id"`
	StudentID        uint                      `gorm:"not null;uniqueIndex:idx_enrollment_student_course" json:"student_id"`
	CourseID         uint                      `gorm:"not null;uniqueIndex:idx_enrollment_student_course;index" json:"course_id"`
	Course           *Course                   `gorm:"constraint:OnDelete:CASCADE" json:"course,omitempty"`
	CompletedLessons datatypes.JSONSlice[uint] `gorm:"not null" json:"completed_lessons"`
	ProgressPercent  float64                   `gorm:"not null;default:0" json:"progress_percent"`
	IsCompleted      bool                      `gorm:"not null;default:false" json:"is_completed"`
	Certificate      *Certificate              `gorm:"constraint:OnDelete:CASCADE" json:"certificate,omitempty"`
	EnrolledAt       time.Time                 `gorm:"not null" json:"enrolled_at"`
	CompletedAt      *time.Time                `json:"completed_at,omitempty"`
}

func (e *Enrollment) HasCompleted(lessonID uint) bool {
	return slices.Contains(e.CompletedLessons, lessonID)
}

// MarkCompleted adds the lesson to the completed set and reports whether it was absent.
func (e *Enrollment) MarkCompleted(lessonID uint) bool {
	if e.HasCompleted(lessonID) {
		return false
	}
	e.CompletedLessons = append(e.CompletedLessons, lessonID)
	return true
}

// Unmark removes the lesson from the completed set and reports whether it was present.
func (e *Enrollment) Unmark(lessonID uint) bool {
	i := slices.Index(e.CompletedLessons, lessonID)
	if i < 0 {
		return false
	}
	e.CompletedLessons = slices.Delete(e.CompletedLessons, i, i+1)
	return true
}

type Certificate struct {
	ID           string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	EnrollmentID uint      `gorm:"not null;uniqueIndex" json:"enrollment_id"`
	IssuedAt     time.Time `gorm:"not null" json:"issued_at"`
}
