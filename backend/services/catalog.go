package services

import (
	"context"
	"strings"

	"courseplatform/backend/apperr"
	"courseplatform/backend/models"
	"courseplatform/backend/utils"

	"gorm.io/gorm"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type CourseFilter struct {
	Category           models.Category
	Level              models.Level
	MinPrice           *float64
	MaxPrice           *float64
	TeacherID          uint
	TeacherSearch      string
	IncludeUnpublished bool
	Page               int
	PageSize           int
}

// normalize clamps paging values and returns the offset.
func (f *CourseFilter) normalize() int {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = DefaultPageSize
	}
	if f.PageSize > MaxPageSize {
		f.PageSize = MaxPageSize
	}
	return (f.Page - 1) * f.PageSize
}

type CourseStats struct {
	CourseID             uint  `json:"course_id"`
	TotalModules         int64 `json:"total_modules"`
	TotalLessons         int64 `json:"total_lessons"`
	TotalDurationMinutes int64 `json:"total_duration_minutes"`
	TotalEnrollments     int64 `json:"total_enrollments"`
}

type CatalogService struct {
	db  *gorm.DB
	log *utils.Logger
}

func NewCatalogService(db *gorm.DB, log *utils.Logger) *CatalogService {
	return &CatalogService{db: db, log: log.With("service", "CatalogService")}
}

// ListCourses returns one page of courses matching f together with the total match count.
func (s *CatalogService) ListCourses(ctx context.Context, f CourseFilter, sort SortKey) ([]models.Course, int64, error) {
	offset := f.normalize()
	query := func() *gorm.DB {
		q := s.db.WithContext(ctx).Model(&models.Course{})
		if !f.IncludeUnpublished {
			q = q.Where("courses.is_published = ?", true)
		}
		if f.Category != "" {
			q = q.Where("courses.category = ?", f.Category)
		}
		if f.Level != "" {
			q = q.Where("courses.level = ?", f.Level)
		}
		if f.MinPrice != nil {
			q = q.Where("courses.price >= ?", *f.MinPrice)
		}
		if f.MaxPrice != nil {
			q = q.Where("courses.price <= ?", *f.MaxPrice)
		}
		if f.TeacherID != 0 {
			q = q.Where("courses.teacher_id = ?", f.TeacherID)
		}
		if term := strings.TrimSpace(f.TeacherSearch); term != "" {
			pattern := likePattern(term)
			q = q.Where("courses.teacher_id IN (?)",
				s.db.Model(&models.User{}).Select("id").
					Where("LOWER(full_name) LIKE ? OR LOWER(email) LIKE ?", pattern, pattern))
		}
		return q
	}

	var total int64
	if err := query().Count(&total).Error; err != nil {
		return nil, 0, logInternal(s.log, "ListCourses", err)
	}

	var courses []models.Course
	err := query().
		Preload("Teacher").
		Order(sort.OrderClause()).
		Limit(f.PageSize).
		Offset(offset).
		Find(&courses).Error
	if err != nil {
		return nil, 0, logInternal(s.log, "ListCourses", err)
	}
	return courses, total, nil
}

func (s *CatalogService) SearchCourses(ctx context.Context, keyword string) ([]models.Course, error) {
	var courses []models.Course
	q := s.db.WithContext(ctx).Preload("Teacher").Where("is_published = ?", true)
	if term := strings.TrimSpace(keyword); term != "" {
		pattern := likePattern(term)
		q = q.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}
	if err := q.Order(SortNewest.OrderClause()).Find(&courses).Error; err != nil {
		return nil, logInternal(s.log, "SearchCourses", err)
	}
	return courses, nil
}

// GetCourseDetails loads the course tree ordered by position. Lessons stored without
// a valid type are rewritten to text.
func (s *CatalogService) GetCourseDetails(ctx context.Context, courseID uint) (*models.Course, error) {
	db := s.db.WithContext(ctx)
	byPosition := func(tx *gorm.DB) *gorm.DB { return tx.Order("sort_order ASC, id ASC") }

	var course models.Course
	err := db.Preload("Teacher").
		Preload("Modules", byPosition).
		Preload("Modules.Lessons", byPosition).
		Preload("Modules.Lessons.Quiz").
		First(&course, courseID).Error
	if err != nil {
		return nil, logInternal(s.log, "GetCourseDetails", notFoundOr(err, "Course not found"))
	}

	var fix []uint
	for i := range course.Modules {
		for j := range course.Modules[i].Lessons {
			lesson := &course.Modules[i].Lessons[j]
			if !lesson.LessonType.Valid() {
				lesson.LessonType = models.LessonText
				fix = append(fix, lesson.ID)
			}
		}
	}
	if len(fix) > 0 {
		err := db.Model(&models.Lesson{}).Where("id IN ?", fix).Update("lesson_type", models.LessonText).Error
		if err != nil {
			return nil, logInternal(s.log, "GetCourseDetails", err)
		}
		s.log.Info("normalized lesson types", "course_id", courseID, "lessons", len(fix))
	}
	return &course, nil
}

func (s *CatalogService) GetCourseStats(ctx context.Context, courseID uint) (*CourseStats, error) {
	db := s.db.WithContext(ctx)
	var course models.Course
	if err := db.Select("id").First(&course, courseID).Error; err != nil {
		return nil, logInternal(s.log, "GetCourseStats", notFoundOr(err, "Course not found"))
	}

	stats := &CourseStats{CourseID: courseID}
	if err := db.Model(&models.Module{}).Where("course_id = ?", courseID).Count(&stats.TotalModules).Error; err != nil {
		return nil, logInternal(s.log, "GetCourseStats", err)
	}
	lessons := func() *gorm.DB {
		return db.Model(&models.Lesson{}).
			Joins("JOIN modules ON modules.id = lessons.module_id").
			Where("modules.course_id = ?", courseID)
	}
	if err := lessons().Count(&stats.TotalLessons).Error; err != nil {
		return nil, logInternal(s.log, "GetCourseStats", err)
	}
	if err := lessons().Select("COALESCE(SUM(lessons.duration_minutes), 0)").Scan(&stats.TotalDurationMinutes).Error; err != nil {
		return nil, logInternal(s.log, "GetCourseStats", err)
	}
	if err := db.Model(&models.Enrollment{}).Where("course_id = ?", courseID).Count(&stats.TotalEnrollments).Error; err != nil {
		return nil, logInternal(s.log, "GetCourseStats", err)
	}
	return stats, nil
}

// TeacherCourses lists every course of a teacher, drafts included.
func (s *CatalogService) TeacherCourses(ctx context.Context, teacherID uint) ([]models.Course, error) {
	var courses []models.Course
	err := s.db.WithContext(ctx).
		Where("teacher_id = ?", teacherID).
		Order(SortNewest.OrderClause()).
		Find(&courses).Error
	if err != nil {
		return nil, logInternal(s.log, "TeacherCourses", err)
	}
	return courses, nil
}

func (s *CatalogService) CourseReviews(ctx context.Context, courseID uint) ([]models.CourseReview, error) {
	db := s.db.WithContext(ctx)
	var count int64
	if err := db.Model(&models.Course{}).Where("id = ?", courseID).Count(&count).Error; err != nil {
		return nil, logInternal(s.log, "CourseReviews", err)
	}
	if count == 0 {
		return nil, apperr.NotFound("Course not found")
	}
	var reviews []models.CourseReview
	err := db.Preload("Student").
		Where("course_id = ?", courseID).
		Order("updated_at DESC, id DESC").
		Find(&reviews).Error
	if err != nil {
		return nil, logInternal(s.log, "CourseReviews", err)
	}
	return reviews, nil
}

func likePattern(term string) string {
	return "%" + strings.ToLower(term) + "%"
}
