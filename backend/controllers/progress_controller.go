package controllers

import (
	"courseplatform/backend/middleware"
	"courseplatform/backend/services"
	"courseplatform/backend/utils"

	"github.com/gofiber/fiber/v2"
)

// ProgressController covers the student side: enrollment, lesson access and progress.
type ProgressController struct {
	Learning  *services.LearningService
	Analytics *services.AnalyticsService
}

func NewProgressController(learning *services.LearningService, analytics *services.AnalyticsService) *ProgressController {
	return &ProgressController{Learning: learning, Analytics: analytics}
}

// Enroll godoc
// @Summary Enroll in a course
// @Description Debits the course price from the student and credits the teacher
// @Tags students
// @Produce json
// @Param course_id path int true "Course ID"
// @Success 201 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /students/enroll/{course_id} [post]
func (pc *ProgressController) Enroll(c *fiber.Ctx) error {
	courseID, err := paramID(c, "course_id")
	if err != nil {
		return utils.HandleError(c, err)
	}
	enrollment, err := pc.Learning.Enroll(c.UserContext(), middleware.CurrentUser(c).ID, courseID)
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.Created(c, enrollment)
}

func (pc *ProgressController) Enrollments(c *fiber.Ctx) error {
	enrollments, err := pc.Learning.Enrollments(c.UserContext(), middleware.CurrentUser(c).ID)
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, enrollments)
}

func (pc *ProgressController) EnrollmentByCourse(c *fiber.Ctx) error {
	courseID, err := paramID(c, "course_id")
	if err != nil {
		return utils.HandleError(c, err)
	}
	enrollment, err := pc.Learning.Enrollment(c.UserContext(), middleware.CurrentUser(c).ID, courseID)
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, enrollment)
}

func (pc *ProgressController) Lesson(c *fiber.Ctx) error {
	lessonID, err := paramID(c, "id")
	if err != nil {
		return utils.HandleError(c, err)
	}
	lesson, err := pc.Learning.LessonForStudent(c.UserContext(), middleware.CurrentUser(c).ID, lessonID)
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, lesson)
}

// CompleteLesson godoc
// @Summary Mark a lesson completed
// @Tags students
// @Produce json
// @Param id path int true "Lesson ID"
// @Success 200 {object} utils.SuccessResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /students/lessons/{id}/complete [post]
func (pc *ProgressController) CompleteLesson(c *fiber.Ctx) error {
	lessonID, err := paramID(c, "id")
	if err != nil {
		return utils.HandleError(c, err)
	}
	enrollment, err := pc.Learning.CompleteLesson(c.UserContext(), middleware.CurrentUser(c).ID, lessonID)
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, enrollment)
}

func (pc *ProgressController) ResetLesson(c *fiber.Ctx) error {
	lessonID, err := paramID(c, "id")
	if err != nil {
		return utils.HandleError(c, err)
	}
	enrollment, err := pc.Learning.ResetLesson(c.UserContext(), middleware.CurrentUser(c).ID, lessonID)
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, enrollment)
}

func (pc *ProgressController) CompleteModule(c *fiber.Ctx) error {
	moduleID, err := paramID(c, "id")
	if err != nil {
		return utils.HandleError(c, err)
	}
	enrollment, err := pc.Learning.CompleteModule(c.UserContext(), middleware.CurrentUser(c).ID, moduleID)
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, enrollment)
}

func (pc *ProgressController) CompleteCourse(c *fiber.Ctx) error {
	courseID, err := paramID(c, "id")
	if err != nil {
		return utils.HandleError(c, err)
	}
	enrollment, err := pc.Learning.CompleteCourse(c.UserContext(), middleware.CurrentUser(c).ID, courseID)
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, enrollment)
}

// GetProgress godoc
// @Summary Get student progress
// @Description Returns enrollment progress and quiz statistics for the current student
// @Tags students
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /students/progress [get]
func (pc *ProgressController) GetProgress(c *fiber.Ctx) error {
	progress, err := pc.Analytics.StudentProgress(c.UserContext(), middleware.CurrentUser(c).ID)
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, progress)
}
