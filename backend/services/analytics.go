package services

import (
	"context"
	"math"
	"time"

	"courseplatform/backend/models"
	"courseplatform/backend/utils"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const (
	DefaultRevenueDays = 30
	topCoursesLimit    = 10
)

type AnalyticsService struct {
	db  *gorm.DB
	log *utils.Logger
}

func NewAnalyticsService(db *gorm.DB, log *utils.Logger) *AnalyticsService {
	return &AnalyticsService{db: db, log: log.With("service", "AnalyticsService")}
}

// TeacherRevenue sums the ledger rows credited to a teacher, overall and for the last
// days days.
func (s *AnalyticsService) TeacherRevenue(ctx context.Context, teacherID uint, days int) (report *models.TeacherRevenue, err error) {
	ctx, span := startSpan(ctx, "AnalyticsService.TeacherRevenue")
	defer func() { endSpan(span, err) }()

	if days <= 0 {
		days = DefaultRevenueDays
	}
	db := s.db.WithContext(ctx)
	if err := requireTeacher(db, teacherID); err != nil {
		return nil, logInternal(s.log, "TeacherRevenue", err)
	}

	report = &models.TeacherRevenue{TeacherID: teacherID, PeriodDays: days}
	ledger := func() *gorm.DB { return db.Model(&models.Transaction{}).Where("teacher_id = ?", teacherID) }

	if err := ledger().Select("COALESCE(SUM(amount), 0)").Scan(&report.TotalRevenue).Error; err != nil {
		return nil, logInternal(s.log, "TeacherRevenue", err)
	}

	since := time.Now().UTC().AddDate(0, 0, -days)
	var window struct {
		Revenue float64
		Sales   int64
	}
	err = ledger().Where("created_at >= ?", since).
		Select("COALESCE(SUM(amount), 0) AS revenue, COUNT(*) AS sales").
		Scan(&window).Error
	if err != nil {
		return nil, logInternal(s.log, "TeacherRevenue", err)
	}
	report.PeriodRevenue = window.Revenue
	report.TransactionCount = window.Sales

	report.RevenueByCourse = []models.CourseRevenue{}
	err = ledger().
		Select("course_id, course_title, SUM(amount) AS revenue, COUNT(*) AS sales").
		Group("course_id, course_title").
		Order("revenue DESC, course_title ASC").
		Scan(&report.RevenueByCourse).Error
	if err != nil {
		return nil, logInternal(s.log, "TeacherRevenue", err)
	}
	return report, nil
}

// CoursePopularity ranks published courses by enrollment count and counts courses
// and enrollments per category.
func (s *AnalyticsService) CoursePopularity(ctx context.Context) (*models.CoursePopularity, error) {
	db := s.db.WithContext(ctx)
	report := &models.CoursePopularity{TopCourses: []models.PopularCourse{}, CategoryStats: []models.CategoryStats{}}

	err := db.Table("courses").
		Select("courses.id AS course_id, courses.title, courses.rating, COUNT(enrollments.id) AS enrollment_count").
		Joins("LEFT JOIN enrollments ON enrollments.course_id = courses.id").
		Where("courses.is_published = ?", true).
		Group("courses.id, courses.title, courses.rating").
		Order("enrollment_count DESC, courses.rating DESC, courses.id ASC").
		Limit(topCoursesLimit).
		Scan(&report.TopCourses).Error
	if err != nil {
		return nil, logInternal(s.log, "CoursePopularity", err)
	}

	err = db.Table("courses").
		Select("courses.category, COUNT(DISTINCT courses.id) AS course_count, COUNT(enrollments.id) AS enrollment_count").
		Joins("LEFT JOIN enrollments ON enrollments.course_id = courses.id").
		Group("courses.category").
		Order("courses.category ASC").
		Scan(&report.CategoryStats).Error
	if err != nil {
		return nil, logInternal(s.log, "CoursePopularity", err)
	}
	return report, nil
}

// PlatformStats gathers the platform-wide counters. The counts are independent reads
// and run concurrently.
func (s *AnalyticsService) PlatformStats(ctx context.Context) (stats *models.PlatformStats, err error) {
	ctx, span := startSpan(ctx, "AnalyticsService.PlatformStats")
	defer func() { endSpan(span, err) }()

	stats = &models.PlatformStats{}
	g, gctx := errgroup.WithContext(ctx)
	count := func(dst *int64, model interface{}, query string, args ...interface{}) {
		g.Go(func() error {
			q := s.db.WithContext(gctx).Model(model)
			if query != "" {
				q = q.Where(query, args...)
			}
			return q.Count(dst).Error
		})
	}

	count(&stats.TotalUsers, &models.User{}, "")
	count(&stats.Students, &models.User{}, "role = ?", models.RoleStudent)
	count(&stats.Teachers, &models.User{}, "role = ?", models.RoleTeacher)
	count(&stats.Admins, &models.User{}, "role = ?", models.RoleAdmin)
	count(&stats.TotalCourses, &models.Course{}, "")
	count(&stats.PublishedCourses, &models.Course{}, "is_published = ?", true)
	count(&stats.TotalEnrollments, &models.Enrollment{}, "")
	count(&stats.CompletedEnrollments, &models.Enrollment{}, "is_completed = ?", true)
	g.Go(func() error {
		return s.db.WithContext(gctx).Model(&models.Transaction{}).
			Select("COALESCE(SUM(amount), 0)").
			Scan(&stats.TotalRevenue).Error
	})

	if err := g.Wait(); err != nil {
		return nil, logInternal(s.log, "PlatformStats", err)
	}
	stats.UnpublishedCourses = stats.TotalCourses - stats.PublishedCourses
	if stats.TotalEnrollments > 0 {
		stats.CompletionRate = round2(float64(stats.CompletedEnrollments) / float64(stats.TotalEnrollments) * 100)
	}
	return stats, nil
}

// StudentProgress summarizes a student's enrollments and quiz results.
func (s *AnalyticsService) StudentProgress(ctx context.Context, studentID uint) (*models.StudentProgress, error) {
	db := s.db.WithContext(ctx)
	report := &models.StudentProgress{Courses: []models.CourseProgressLine{}}

	err := db.Table("enrollments").
		Select("enrollments.course_id, courses.title AS course_title, enrollments.progress_percent, enrollments.is_completed").
		Joins("JOIN courses ON courses.id = enrollments.course_id").
		Where("enrollments.student_id = ?", studentID).
		Order("enrollments.enrolled_at DESC, enrollments.id DESC").
		Scan(&report.Courses).Error
	if err != nil {
		return nil, logInternal(s.log, "StudentProgress", err)
	}

	var progressSum float64
	for _, line := range report.Courses {
		progressSum += line.ProgressPercent
		if line.IsCompleted {
			report.CompletedCourses++
		}
	}
	report.TotalEnrollments = len(report.Courses)
	report.InProgressCourses = report.TotalEnrollments - report.CompletedCourses
	if report.TotalEnrollments > 0 {
		report.AverageProgress = round2(progressSum / float64(report.TotalEnrollments))
	}

	var attempts struct {
		Total  int64
		Passed int64
		Ratio  float64
	}
	err = db.Model(&models.QuizAttempt{}).
		Where("student_id = ?", studentID).
		Select(`COUNT(*) AS total,
			COALESCE(SUM(CASE WHEN passed THEN 1 ELSE 0 END), 0) AS passed,
			COALESCE(AVG(CASE WHEN total_score > 0 THEN score * 1.0 / total_score END), 0) AS ratio`).
		Scan(&attempts).Error
	if err != nil {
		return nil, logInternal(s.log, "StudentProgress", err)
	}
	report.QuizAttempts = attempts.Total
	report.PassedAttempts = attempts.Passed
	if attempts.Total > 0 {
		report.QuizPassRate = round2(float64(attempts.Passed) / float64(attempts.Total) * 100)
	}
	report.AverageScorePercent = round2(attempts.Ratio * 100)
	return report, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
