package models

import "time"

type CourseReview struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	StudentID    uint      `gorm:"not null;uniqueIndex:idx_course_review_student_course" json:"student_id"`
	Student      User      `gorm:"foreignKey:StudentID" json:"-"`
	CourseID     uint      `gorm:"not null;uniqueIndex:idx_course_review_student_course;index" json:"course_id"`
	EnrollmentID uint      `gorm:"not null" json:"enrollment_id"`
	Rating       int       `gorm:"not null;check:chk_course_review_rating,rating >= 1 AND rating <= 5" json:"rating"`
	Comment      string    `json:"comment,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type TeacherReview struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	StudentID    uint      `gorm:"not null;uniqueIndex:idx_teacher_review_student_teacher" json:"student_id"`
	TeacherID    uint      `gorm:"not null;uniqueIndex:idx_teacher_review_student_teacher;index" json:"teacher_id"`
	CourseID     uint      `gorm:"not null" json:"course_id"`
	EnrollmentID uint      `gorm:"not null" json:"enrollment_id"`
	Rating       int       `gorm:"not null;check:chk_teacher_review_rating,rating >= 1 AND rating <= 5" json:"rating"`
	Comment      string    `json:"comment,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
