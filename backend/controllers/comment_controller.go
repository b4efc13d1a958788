package controllers

import (
	"courseplatform/backend/middleware"
	"courseplatform/backend/services"
	"courseplatform/backend/utils"

	"github.com/gofiber/fiber/v2"
)

// CommentsController records student reviews of courses and their teachers.
type CommentsController struct {
	Ratings *services.RatingService
}

func NewCommentsController(ratings *services.RatingService) *CommentsController {
	return &CommentsController{Ratings: ratings}
}

// AddCommentRequest defines the request body for a review
type AddCommentRequest struct {
	Rating  int    `json:"rating" example:"5" minimum:"1" maximum:"5"`
	Comment string `json:"comment" validate:"max=2000" example:"This course was amazing!"`
}

// RateCourse godoc
// @Summary Rate a completed course
// @Description Creates or replaces the student's review of the course and refreshes its average
// @Tags comments
// @Accept json
// @Produce json
// @Param id path int true "Course ID"
// @Param input body AddCommentRequest true "Review"
// @Success 200 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /students/courses/{id}/rating [post]
func (cc *CommentsController) RateCourse(c *fiber.Ctx) error {
	courseID, err := paramID(c, "id")
	if err != nil {
		return utils.HandleError(c, err)
	}
	var input AddCommentRequest
	if ok, err := bindJSON(c, &input); !ok {
		return err
	}
	rating, err := cc.Ratings.RateCourse(c.UserContext(), middleware.CurrentUser(c).ID, courseID, input.Rating, input.Comment)
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, rating)
}

// RateTeacher godoc
// @Summary Rate the teacher of a completed course
// @Tags comments
// @Accept json
// @Produce json
// @Param id path int true "Course ID"
// @Param input body AddCommentRequest true "Review"
// @Success 200 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /students/courses/{id}/teacher-rating [post]
func (cc *CommentsController) RateTeacher(c *fiber.Ctx) error {
	courseID, err := paramID(c, "id")
	if err != nil {
		return utils.HandleError(c, err)
	}
	var input AddCommentRequest
	if ok, err := bindJSON(c, &input); !ok {
		return err
	}
	rating, err := cc.Ratings.RateTeacher(c.UserContext(), middleware.CurrentUser(c).ID, courseID, input.Rating, input.Comment)
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, rating)
}
