package controllers

import (
	"courseplatform/backend/middleware"
	"courseplatform/backend/models"
	"courseplatform/backend/services"
	"courseplatform/backend/utils"

	"github.com/gofiber/fiber/v2"
)

// CoursesController handles course authoring for teachers and admins.
type CoursesController struct {
	Management *services.ManagementService
}

func NewCoursesController(management *services.ManagementService) *CoursesController {
	return &CoursesController{Management: management}
}

type CreateCourseRequest struct {
	Title       string          `json:"title" validate:"required,max=200" example:"Blues guitar"`
	Description string          `json:"description" validate:"max=5000"`
	Price       float64         `json:"price" validate:"gte=0" example:"49.9"`
	Category    models.Category `json:"category" validate:"required,oneof=guitar drums vocals keyboards theory"`
	Level       models.Level    `json:"level" validate:"required,oneof=beginner intermediate advanced master"`
	TeacherID   *uint           `json:"teacher_id" validate:"omitempty,gt=0"`
}

type UpdateCourseRequest struct {
	Title       *string          `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string          `json:"description" validate:"omitempty,max=5000"`
	Price       *float64         `json:"price" validate:"omitempty,gte=0"`
	Category    *models.Category `json:"category" validate:"omitempty,oneof=guitar drums vocals keyboards theory"`
	Level       *models.Level    `json:"level" validate:"omitempty,oneof=beginner intermediate advanced master"`
	TeacherID   *uint            `json:"teacher_id" validate:"omitempty,gt=0"`
}

type ModuleRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,max=5000"`
	Order       *int    `json:"order" validate:"omitempty,gte=0"`
}

type LessonRequest struct {
	Title           *string            `json:"title" validate:"omitempty,min=1,max=200"`
	LessonType      *models.LessonType `json:"lesson_type" validate:"omitempty,oneof=video text quiz"`
	VideoURL        *string            `json:"video_url" validate:"omitempty,url"`
	ContentText     *string            `json:"content_text"`
	DurationMinutes *int               `json:"duration_minutes" validate:"omitempty,gte=0"`
	Order           *int               `json:"order" validate:"omitempty,gte=0"`
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

// CreateCourse godoc
// @Summary Create a course
// @Description Creates an unpublished course owned by the caller; admins may pass teacher_id
// @Tags courses
// @Accept json
// @Produce json
// @Param input body CreateCourseRequest true "Course data"
// @Success 201 {object} utils.SuccessResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /courses [post]
func (cc *CoursesController) CreateCourse(c *fiber.Ctx) error {
	var input CreateCourseRequest
	if ok, err := bindJSON(c, &input); !ok {
		return err
	}
	course, err := cc.Management.CreateCourse(c.UserContext(), middleware.CurrentActor(c), services.CourseInput{
		Title:       input.Title,
		Description: input.Description,
		Price:       input.Price,
		Category:    input.Category,
		Level:       input.Level,
		TeacherID:   input.TeacherID,
	})
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.Created(c, course)
}

// UpdateCourse godoc
// @Summary Update a course
// @Tags courses
// @Accept json
// @Produce json
// @Param id path int true "Course ID"
// @Param input body UpdateCourseRequest true "Changed fields"
// @Success 200 {object} utils.SuccessResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /courses/{id} [put]
func (cc *CoursesController) UpdateCourse(c *fiber.Ctx) error {
	courseID, err := paramID(c, "id")
	if err != nil {
		return utils.HandleError(c, err)
	}
	var input UpdateCourseRequest
	if ok, err := bindJSON(c, &input); !ok {
		return err
	}
	course, err := cc.Management.UpdateCourse(c.UserContext(), middleware.CurrentActor(c), courseID, services.CourseUpdate{
		Title:       input.Title,
		Description: input.Description,
		Price:       input.Price,
		Category:    input.Category,
		Level:       input.Level,
		TeacherID:   input.TeacherID,
	})
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, course)
}

func (cc *CoursesController) DeleteCourse(c *fiber.Ctx) error {
	courseID, err := paramID(c, "id")
	if err != nil {
		return utils.HandleError(c, err)
	}
	if err := cc.Management.DeleteCourse(c.UserContext(), middleware.CurrentActor(c), courseID); err != nil {
		return utils.HandleError(c, err)
	}
	return utils.Message(c, "Course deleted", nil)
}

// PublishCourse godoc
// @Summary Publish a course
// @Description A course needs at least one module to be published
// @Tags courses
// @Produce json
// @Param id path int true "Course ID"
// @Success 200 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /courses/{id}/publish [post]
func (cc *CoursesController) PublishCourse(c *fiber.Ctx) error {
	return cc.setPublished(c, true)
}

func (cc *CoursesController) UnpublishCourse(c *fiber.Ctx) error {
	return cc.setPublished(c, false)
}

func (cc *CoursesController) setPublished(c *fiber.Ctx, published bool) error {
	courseID, err := paramID(c, "id")
	if err != nil {
		return utils.HandleError(c, err)
	}
	var course *models.Course
	if published {
		course, err = cc.Management.Publish(c.UserContext(), middleware.CurrentActor(c), courseID)
	} else {
		course, err = cc.Management.Unpublish(c.UserContext(), middleware.CurrentActor(c), courseID)
	}
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, course)
}

func (cc *CoursesController) AddModule(c *fiber.Ctx) error {
	courseID, err := paramID(c, "id")
	if err != nil {
		return utils.HandleError(c, err)
	}
	var input ModuleRequest
	if ok, err := bindJSON(c, &input); !ok {
		return err
	}
	module, err := cc.Management.CreateModule(c.UserContext(), middleware.CurrentActor(c), courseID, services.ModuleInput{
		Title:       deref(input.Title),
		Description: deref(input.Description),
		Order:       input.Order,
	})
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.Created(c, module)
}

func (cc *CoursesController) UpdateModule(c *fiber.Ctx) error {
	moduleID, err := paramID(c, "id")
	if err != nil {
		return utils.HandleError(c, err)
	}
	var input ModuleRequest
	if ok, err := bindJSON(c, &input); !ok {
		return err
	}
	module, err := cc.Management.UpdateModule(c.UserContext(), middleware.CurrentActor(c), moduleID, services.ModuleUpdate{
		Title:       input.Title,
		Description: input.Description,
		Order:       input.Order,
	})
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, module)
}

func (cc *CoursesController) DeleteModule(c *fiber.Ctx) error {
	moduleID, err := paramID(c, "id")
	if err != nil {
		return utils.HandleError(c, err)
	}
	if err := cc.Management.DeleteModule(c.UserContext(), middleware.CurrentActor(c), moduleID); err != nil {
		return utils.HandleError(c, err)
	}
	return utils.Message(c, "Module deleted", nil)
}

// AddLesson godoc
// @Summary Add a lesson to a module
// @Tags courses
// @Accept json
// @Produce json
// @Param id path int true "Module ID"
// @Param input body LessonRequest true "Lesson data"
// @Success 201 {object} utils.SuccessResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /courses/modules/{id}/lessons [post]
func (cc *CoursesController) AddLesson(c *fiber.Ctx) error {
	moduleID, err := paramID(c, "id")
	if err != nil {
		return utils.HandleError(c, err)
	}
	var input LessonRequest
	if ok, err := bindJSON(c, &input); !ok {
		return err
	}
	lesson, err := cc.Management.CreateLesson(c.UserContext(), middleware.CurrentActor(c), moduleID, services.LessonInput{
		Title:           deref(input.Title),
		LessonType:      deref(input.LessonType),
		VideoURL:        deref(input.VideoURL),
		ContentText:     deref(input.ContentText),
		DurationMinutes: deref(input.DurationMinutes),
		Order:           input.Order,
	})
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.Created(c, lesson)
}

func (cc *CoursesController) UpdateLesson(c *fiber.Ctx) error {
	lessonID, err := paramID(c, "id")
	if err != nil {
		return utils.HandleError(c, err)
	}
	var input LessonRequest
	if ok, err := bindJSON(c, &input); !ok {
		return err
	}
	lesson, err := cc.Management.UpdateLesson(c.UserContext(), middleware.CurrentActor(c), lessonID, services.LessonUpdate{
		Title:           input.Title,
		LessonType:      input.LessonType,
		VideoURL:        input.VideoURL,
		ContentText:     input.ContentText,
		DurationMinutes: input.DurationMinutes,
		Order:           input.Order,
	})
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, lesson)
}

func (cc *CoursesController) DeleteLesson(c *fiber.Ctx) error {
	lessonID, err := paramID(c, "id")
	if err != nil {
		return utils.HandleError(c, err)
	}
	if err := cc.Management.DeleteLesson(c.UserContext(), middleware.CurrentActor(c), lessonID); err != nil {
		return utils.HandleError(c, err)
	}
	return utils.Message(c, "Lesson deleted", nil)
}
