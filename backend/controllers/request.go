package controllers

import (
	"strconv"

	"courseplatform/backend/apperr"
	"courseplatform/backend/models"
	"courseplatform/backend/utils"

	"github.com/gofiber/fiber/v2"
)

// paramID parses a positive numeric route parameter.
func paramID(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.Validation("Invalid %s", name)
	}
	return uint(id), nil
}

// bindJSON parses and validates the request body. When ok is false the error
// response has been written and the handler returns err as is.
func bindJSON(c *fiber.Ctx, dst interface{}) (ok bool, err error) {
	if err := c.BodyParser(dst); err != nil {
		return false, utils.BadRequest(c, "Cannot parse JSON")
	}
	if errs := utils.ValidateStruct(dst); errs != nil {
		return false, utils.ValidationError(c, errs)
	}
	return true, nil
}

// CourseResponse is a course with its teacher summary.
type CourseResponse struct {
	models.Course
	Teacher *models.UserBrief `json:"teacher,omitempty"`
}

func courseResponse(course models.Course) CourseResponse {
	resp := CourseResponse{Course: course}
	if course.Teacher.ID != 0 {
		brief := course.Teacher.Brief()
		resp.Teacher = &brief
	}
	return resp
}

func courseResponses(courses []models.Course) []CourseResponse {
	out := make([]CourseResponse, 0, len(courses))
	for _, course := range courses {
		out = append(out, courseResponse(course))
	}
	return out
}
