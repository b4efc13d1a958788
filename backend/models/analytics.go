package models

import "time"

// Transaction is an immutable ledger row written on enrollment. CourseID is cleared
// when the course is deleted; CourseTitle keeps the name for reports.
type Transaction struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	StudentID   uint      `gorm:"not null;index" json:"student_id"`
	TeacherID   uint      `gorm:"not null;index" json:"teacher_id"`
	CourseID    *uint     `gorm:"index" json:"course_id"`
	CourseTitle string    `gorm:"not null" json:"course_title"`
	Amount      float64   `gorm:"not null" json:"amount"`
	CreatedAt   time.Time `gorm:"not null;index" json:"date"`
}

type CourseRevenue struct {
	CourseID    *uint   `json:"course_id"`
	CourseTitle string  `json:"course_title"`
	Revenue     float64 `json:"revenue"`
	Sales       int64   `json:"sales"`
}

type TeacherRevenue struct {
	TeacherID        uint            `json:"teacher_id"`
	TotalRevenue     float64         `json:"total_revenue"`
	PeriodRevenue    float64         `json:"period_revenue"`
	PeriodDays       int             `json:"period_days"`
	TransactionCount int64           `json:"transaction_count"`
	RevenueByCourse  []CourseRevenue `json:"revenue_by_course"`
}

type PopularCourse struct {
	CourseID    uint    `json:"course_id"`
	Title       string  `json:"title"`
	Enrollments int64   `gorm:"column:enrollment_count" json:"enrollments"`
	Rating      float64 `json:"rating"`
}

type CategoryStats struct {
	Category    Category `json:"category"`
	Courses     int64    `gorm:"column:course_count" json:"courses"`
	Enrollments int64    `gorm:"column:enrollment_count" json:"enrollments"`
}

type CoursePopularity struct {
	TopCourses    []PopularCourse `json:"top_courses"`
	CategoryStats []CategoryStats `json:"category_stats"`
}

type PlatformStats struct {
	TotalUsers           int64   `json:"total_users"`
	Students             int64   `json:"students"`
	Teachers             int64   `json:"teachers"`
	Admins               int64   `json:"admins"`
	TotalCourses         int64   `json:"total_courses"`
	PublishedCourses     int64   `json:"published_courses"`
	UnpublishedCourses   int64   `json:"unpublished_courses"`
	TotalEnrollments     int64   `json:"total_enrollments"`
	CompletedEnrollments int64   `json:"completed_enrollments"`
	CompletionRate       float64 `json:"completion_rate"`
	TotalRevenue         float64 `json:"total_revenue"`
}

type CourseProgressLine struct {
	CourseID        uint    `json:"course_id"`
	CourseTitle     string  `json:"course_title"`
	ProgressPercent float64 `json:"progress_percent"`
	IsCompleted     bool    `json:"is_completed"`
}

type StudentProgress struct {
	TotalEnrollments    int                  `json:"total_enrollments"`
	CompletedCourses    int                  `json:"completed_courses"`
	InProgressCourses   int                  `json:"in_progress_courses"`
	AverageProgress     float64              `json:"average_progress"`
	QuizAttempts        int64                `json:"quiz_attempts"`
	PassedAttempts      int64                `json:"passed_attempts"`
	QuizPassRate        float64              `json:"quiz_pass_rate"`
	AverageScorePercent float64              `json:"average_score_percent"`
	Courses             []CourseProgressLine `json:"courses"`
}
