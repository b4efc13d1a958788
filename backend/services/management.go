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

type CourseInput struct {
	Title       string
	Description string
	Price       float64
	Category    models.Category
	Level       models.Level
	TeacherID   *uint
}

type CourseUpdate struct {
	Title       *string
	Description *string
	Price       *float64
	Category    *models.Category
	Level       *models.Level
	TeacherID   *uint
}

type ModuleInput struct {
	Title       string
	Description string
	Order       *int
}

type ModuleUpdate struct {
	Title       *string
	Description *string
	Order       *int
}

type LessonInput struct {
	Title           string
	LessonType      models.LessonType
	VideoURL        string
	ContentText     string
	DurationMinutes int
	Order           *int
}

type LessonUpdate struct {
	Title           *string
	LessonType      *models.LessonType
	VideoURL        *string
	ContentText     *string
	DurationMinutes *int
	Order           *int
}

type ManagementService struct {
	db  *gorm.DB
	log *utils.Logger
}

func NewManagementService(db *gorm.DB, log *utils.Logger) *ManagementService {
	return &ManagementService{db: db, log: log.With("service", "ManagementService")}
}

func (s *ManagementService) CreateCourse(ctx context.Context, actor Actor, in CourseInput) (*models.Course, error) {
	if err := mustBeStaff(actor); err != nil {
		return nil, err
	}
	if err := validateCourseFields(in.Title, in.Price, in.Category, in.Level); err != nil {
		return nil, err
	}

	course := models.Course{
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Price:       in.Price,
		Category:    in.Category,
		Level:       in.Level,
		TeacherID:   actor.UserID,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if in.TeacherID != nil && *in.TeacherID != actor.UserID {
			if !actor.IsAdmin() {
				return apperr.Forbidden("Only admins can assign a course to another teacher")
			}
			if err := requireTeacher(tx, *in.TeacherID); err != nil {
				return err
			}
			course.TeacherID = *in.TeacherID
		}
		return tx.Omit(clause.Associations).Create(&course).Error
	})
	if err != nil {
		return nil, logInternal(s.log, "CreateCourse", err)
	}
	s.log.Info("course created", "course_id", course.ID, "teacher_id", course.TeacherID)
	return &course, nil
}

func (s *ManagementService) UpdateCourse(ctx context.Context, actor Actor, courseID uint, in CourseUpdate) (*models.Course, error) {
	var course *models.Course
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if course, err = ownedCourse(tx, actor, courseID); err != nil {
			return err
		}
		if in.Title != nil {
			course.Title = strings.TrimSpace(*in.Title)
		}
		if in.Description != nil {
			course.Description = *in.Description
		}
		if in.Price != nil {
			course.Price = *in.Price
		}
		if in.Category != nil {
			course.Category = *in.Category
		}
		if in.Level != nil {
			course.Level = *in.Level
		}
		if err := validateCourseFields(course.Title, course.Price, course.Category, course.Level); err != nil {
			return err
		}
		if in.TeacherID != nil && *in.TeacherID != course.TeacherID {
			if !actor.IsAdmin() {
				return apperr.Forbidden("Only admins can reassign a course")
			}
			if err := requireTeacher(tx, *in.TeacherID); err != nil {
				return err
			}
			course.TeacherID = *in.TeacherID
		}
		return tx.Omit(clause.Associations).Save(course).Error
	})
	if err != nil {
		return nil, logInternal(s.log, "UpdateCourse", err)
	}
	return course, nil
}

func (s *ManagementService) DeleteCourse(ctx context.Context, actor Actor, courseID uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := ownedCourse(tx, actor, courseID); err != nil {
			return err
		}
		return deleteCourses(tx, []uint{courseID})
	})
	if err != nil {
		return logInternal(s.log, "DeleteCourse", err)
	}
	s.log.Info("course deleted", "course_id", courseID, "actor_id", actor.UserID)
	return nil
}

// Publish makes the course visible in the catalog. A course needs at least one module.
func (s *ManagementService) Publish(ctx context.Context, actor Actor, courseID uint) (*models.Course, error) {
	return s.setPublished(ctx, actor, courseID, true)
}

func (s *ManagementService) Unpublish(ctx context.Context, actor Actor, courseID uint) (*models.Course, error) {
	return s.setPublished(ctx, actor, courseID, false)
}

func (s *ManagementService) setPublished(ctx context.Context, actor Actor, courseID uint, published bool) (*models.Course, error) {
	var course *models.Course
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if course, err = ownedCourse(tx, actor, courseID); err != nil {
			return err
		}
		if published {
			var modules int64
			if err := tx.Model(&models.Module{}).Where("course_id = ?", courseID).Count(&modules).Error; err != nil {
				return err
			}
			if modules == 0 {
				return apperr.Validation("Cannot publish a course without modules")
			}
		}
		course.IsPublished = published
		return tx.Model(course).Update("is_published", published).Error
	})
	if err != nil {
		return nil, logInternal(s.log, "setPublished", err)
	}
	s.log.Info("course visibility changed", "course_id", courseID, "published", published)
	return course, nil
}

func (s *ManagementService) CreateModule(ctx context.Context, actor Actor, courseID uint, in ModuleInput) (*models.Module, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, apperr.Validation("Module title is required")
	}
	module := models.Module{CourseID: courseID, Title: strings.TrimSpace(in.Title), Description: in.Description}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := ownedCourse(tx, actor, courseID); err != nil {
			return err
		}
		order, err := positionOrNext(tx, in.Order, &models.Module{}, "course_id = ?", courseID)
		if err != nil {
			return err
		}
		module.Order = order
		return tx.Omit(clause.Associations).Create(&module).Error
	})
	if err != nil {
		return nil, logInternal(s.log, "CreateModule", err)
	}
	return &module, nil
}

func (s *ManagementService) UpdateModule(ctx context.Context, actor Actor, moduleID uint, in ModuleUpdate) (*models.Module, error) {
	var module *models.Module
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if module, err = ownedModule(tx, actor, moduleID); err != nil {
			return err
		}
		if in.Title != nil {
			if strings.TrimSpace(*in.Title) == "" {
				return apperr.Validation("Module title is required")
			}
			module.Title = strings.TrimSpace(*in.Title)
		}
		if in.Description != nil {
			module.Description = *in.Description
		}
		if in.Order != nil {
			if *in.Order < 0 {
				return apperr.Validation("Order must not be negative")
			}
			module.Order = *in.Order
		}
		return tx.Omit(clause.Associations).Save(module).Error
	})
	if err != nil {
		return nil, logInternal(s.log, "UpdateModule", err)
	}
	return module, nil
}

func (s *ManagementService) DeleteModule(ctx context.Context, actor Actor, moduleID uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := ownedModule(tx, actor, moduleID); err != nil {
			return err
		}
		return deleteModules(tx, []uint{moduleID})
	})
	return logInternal(s.log, "DeleteModule", err)
}

func (s *ManagementService) CreateLesson(ctx context.Context, actor Actor, moduleID uint, in LessonInput) (*models.Lesson, error) {
	if in.LessonType == "" {
		in.LessonType = models.LessonText
	}
	if err := validateLessonFields(in.Title, in.LessonType, in.DurationMinutes); err != nil {
		return nil, err
	}
	lesson := models.Lesson{
		ModuleID:        moduleID,
		Title:           strings.TrimSpace(in.Title),
		LessonType:      in.LessonType,
		VideoURL:        in.VideoURL,
		ContentText:     in.ContentText,
		DurationMinutes: in.DurationMinutes,
	}
	clearInapplicableContent(&lesson)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := ownedModule(tx, actor, moduleID); err != nil {
			return err
		}
		order, err := positionOrNext(tx, in.Order, &models.Lesson{}, "module_id = ?", moduleID)
		if err != nil {
			return err
		}
		lesson.Order = order
		return tx.Omit(clause.Associations).Create(&lesson).Error
	})
	if err != nil {
		return nil, logInternal(s.log, "CreateLesson", err)
	}
	return &lesson, nil
}

func (s *ManagementService) UpdateLesson(ctx context.Context, actor Actor, lessonID uint, in LessonUpdate) (*models.Lesson, error) {
	var lesson *models.Lesson
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if lesson, err = ownedLesson(tx, actor, lessonID); err != nil {
			return err
		}
		if in.Title != nil {
			lesson.Title = strings.TrimSpace(*in.Title)
		}
		if in.VideoURL != nil {
			lesson.VideoURL = *in.VideoURL
		}
		if in.ContentText != nil {
			lesson.ContentText = *in.ContentText
		}
		if in.DurationMinutes != nil {
			lesson.DurationMinutes = *in.DurationMinutes
		}
		if in.Order != nil {
			if *in.Order < 0 {
				return apperr.Validation("Order must not be negative")
			}
			lesson.Order = *in.Order
		}
		if in.LessonType != nil {
			lesson.LessonType = *in.LessonType
		}
		if err := validateLessonFields(lesson.Title, lesson.LessonType, lesson.DurationMinutes); err != nil {
			return err
		}
		clearInapplicableContent(lesson)
		return tx.Omit(clause.Associations).Save(lesson).Error
	})
	if err != nil {
		return nil, logInternal(s.log, "UpdateLesson", err)
	}
	return lesson, nil
}

func (s *ManagementService) DeleteLesson(ctx context.Context, actor Actor, lessonID uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := ownedLesson(tx, actor, lessonID); err != nil {
			return err
		}
		return deleteLessons(tx, []uint{lessonID})
	})
	return logInternal(s.log, "DeleteLesson", err)
}

// clearInapplicableContent drops the content fields the lesson's type does not use.
func clearInapplicableContent(lesson *models.Lesson) {
	switch lesson.LessonType {
	case models.LessonVideo:
		lesson.ContentText = ""
	case models.LessonText:
		lesson.VideoURL = ""
	case models.LessonQuiz:
		lesson.VideoURL = ""
		lesson.ContentText = ""
	}
}

func validateCourseFields(title string, price float64, category models.Category, level models.Level) error {
	switch {
	case strings.TrimSpace(title) == "":
		return apperr.Validation("Course title is required")
	case price < 0:
		return apperr.Validation("Price must not be negative")
	case !category.Valid():
		return apperr.Validation("Unknown category %q", category)
	case !level.Valid():
		return apperr.Validation("Unknown level %q", level)
	}
	return nil
}

func validateLessonFields(title string, lessonType models.LessonType, duration int) error {
	switch {
	case strings.TrimSpace(title) == "":
		return apperr.Validation("Lesson title is required")
	case !lessonType.Valid():
		return apperr.Validation("Lesson type must be one of video, text, quiz")
	case duration < 0:
		return apperr.Validation("Duration must not be negative")
	}
	return nil
}

func requireTeacher(tx *gorm.DB, userID uint) error {
	var user models.User
	if err := tx.Select("id", "role").First(&user, userID).Error; err != nil {
		return notFoundOr(err, "Teacher not found")
	}
	if user.Role != models.RoleTeacher {
		return apperr.Validation("User %d is not a teacher", userID)
	}
	return nil
}

func ownedCourse(tx *gorm.DB, actor Actor, courseID uint) (*models.Course, error) {
	if err := mustBeStaff(actor); err != nil {
		return nil, err
	}
	var course models.Course
	if err := tx.First(&course, courseID).Error; err != nil {
		return nil, notFoundOr(err, "Course not found")
	}
	if !actor.IsAdmin() && course.TeacherID != actor.UserID {
		return nil, apperr.Forbidden("You can only manage your own courses")
	}
	return &course, nil
}

func ownedModule(tx *gorm.DB, actor Actor, moduleID uint) (*models.Module, error) {
	var module models.Module
	if err := tx.First(&module, moduleID).Error; err != nil {
		return nil, notFoundOr(err, "Module not found")
	}
	if _, err := ownedCourse(tx, actor, module.CourseID); err != nil {
		return nil, err
	}
	return &module, nil
}

func ownedLesson(tx *gorm.DB, actor Actor, lessonID uint) (*models.Lesson, error) {
	var lesson models.Lesson
	if err := tx.First(&lesson, lessonID).Error; err != nil {
		return nil, notFoundOr(err, "Lesson not found")
	}
	if _, err := ownedModule(tx, actor, lesson.ModuleID); err != nil {
		return nil, err
	}
	return &lesson, nil
}

// positionOrNext returns the requested position, or max(sort_order)+1 among the siblings.
func positionOrNext(tx *gorm.DB, requested *int, model interface{}, where string, args ...interface{}) (int, error) {
	if requested != nil {
		if *requested < 0 {
			return 0, apperr.Validation("Order must not be negative")
		}
		return *requested, nil
	}
	var max int
	err := tx.Model(model).Where(where, args...).Select("COALESCE(MAX(sort_order), 0)").Scan(&max).Error
	return max + 1, err
}

func deleteLessons(tx *gorm.DB, lessonIDs []uint) error {
	if len(lessonIDs) == 0 {
		return nil
	}
	var quizIDs []uint
	if err := tx.Model(&models.Quiz{}).Where("lesson_id IN ?", lessonIDs).Pluck("id", &quizIDs).Error; err != nil {
		return err
	}
	if err := deleteQuizzes(tx, quizIDs); err != nil {
		return err
	}
	return tx.Where("id IN ?", lessonIDs).Delete(&models.Lesson{}).Error
}

func deleteModules(tx *gorm.DB, moduleIDs []uint) error {
	if len(moduleIDs) == 0 {
		return nil
	}
	var lessonIDs []uint
	if err := tx.Model(&models.Lesson{}).Where("module_id IN ?", moduleIDs).Pluck("id", &lessonIDs).Error; err != nil {
		return err
	}
	if err := deleteLessons(tx, lessonIDs); err != nil {
		return err
	}
	return tx.Where("id IN ?", moduleIDs).Delete(&models.Module{}).Error
}

// deleteCourses removes the courses with everything hanging off them. Ledger rows
// stay, detached from the course, so revenue reports keep their history.
func deleteCourses(tx *gorm.DB, courseIDs []uint) error {
	if len(courseIDs) == 0 {
		return nil
	}
	var moduleIDs []uint
	if err := tx.Model(&models.Module{}).Where("course_id IN ?", courseIDs).Pluck("id", &moduleIDs).Error; err != nil {
		return err
	}
	if err := deleteModules(tx, moduleIDs); err != nil {
		return err
	}

	var enrollmentIDs []uint
	if err := tx.Model(&models.Enrollment{}).Where("course_id IN ?", courseIDs).Pluck("id", &enrollmentIDs).Error; err != nil {
		return err
	}
	if err := deleteEnrollments(tx, enrollmentIDs); err != nil {
		return err
	}
	if err := tx.Where("course_id IN ?", courseIDs).Delete(&models.CourseReview{}).Error; err != nil {
		return err
	}
	if err := tx.Model(&models.Transaction{}).Where("course_id IN ?", courseIDs).Update("course_id", nil).Error; err != nil {
		return err
	}
	return tx.Where("id IN ?", courseIDs).Delete(&models.Course{}).Error
}

// deleteEnrollments removes enrollments with their certificates and the teacher
// reviews given through them, then refreshes the affected teacher ratings.
func deleteEnrollments(tx *gorm.DB, enrollmentIDs []uint) error {
	if len(enrollmentIDs) == 0 {
		return nil
	}
	var teacherIDs []uint
	if err := tx.Model(&models.TeacherReview{}).Where("enrollment_id IN ?", enrollmentIDs).
		Distinct().Pluck("teacher_id", &teacherIDs).Error; err != nil {
		return err
	}
	if err := tx.Where("enrollment_id IN ?", enrollmentIDs).Delete(&models.TeacherReview{}).Error; err != nil {
		return err
	}
	if err := tx.Where("enrollment_id IN ?", enrollmentIDs).Delete(&models.Certificate{}).Error; err != nil {
		return err
	}
	if err := tx.Where("id IN ?", enrollmentIDs).Delete(&models.Enrollment{}).Error; err != nil {
		return err
	}
	for _, teacherID := range teacherIDs {
		if err := refreshTeacherRating(tx, teacherID); err != nil {
			return err
		}
	}
	return nil
}

func deleteQuizzes(tx *gorm.DB, quizIDs []uint) error {
	if len(quizIDs) == 0 {
		return nil
	}
	if err := tx.Where("quiz_id IN ?", quizIDs).Delete(&models.QuizAttempt{}).Error; err != nil {
		return err
	}
	if err := tx.Where("quiz_id IN ?", quizIDs).Delete(&models.QuizQuestion{}).Error; err != nil {
		return err
	}
	return tx.Where("id IN ?", quizIDs).Delete(&models.Quiz{}).Error
}
