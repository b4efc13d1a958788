package controllers

import (
	"strconv"

	"courseplatform/backend/apperr"
	"courseplatform/backend/middleware"
	"courseplatform/backend/models"
	"courseplatform/backend/services"
	"courseplatform/backend/utils"

	"github.com/gofiber/fiber/v2"
)

// OverviewController serves the public catalog.
type OverviewController struct {
	Catalog *services.CatalogService
}

func NewOverviewController(catalog *services.CatalogService) *OverviewController {
	return &OverviewController{Catalog: catalog}
}

// SearchCourses godoc
// @Summary List published courses
// @Description Filters by category, level, price range and teacher; sorts by sort_by
// @Tags catalog
// @Produce json
// @Param category query string false "Category"
// @Param level query string false "Level"
// @Param min_price query number false "Minimum price"
// @Param max_price query number false "Maximum price"
// @Param teacher query string false "Teacher name or email fragment"
// @Param sort_by query string false "newest, price_asc, price_desc, rating, popularity, title, title_desc"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} utils.PaginatedResponse
// @Failure 400 {object} utils.ErrorResponse
// @Router /courses [get]
func (oc *OverviewController) ListCourses(c *fiber.Ctx) error {
	filter, err := courseFilter(c)
	if err != nil {
		return utils.HandleError(c, err)
	}
	return oc.list(c, filter)
}

// AdminCourses lists every course, drafts included.
func (oc *OverviewController) AdminCourses(c *fiber.Ctx) error {
	filter, err := courseFilter(c)
	if err != nil {
		return utils.HandleError(c, err)
	}
	filter.IncludeUnpublished = true
	return oc.list(c, filter)
}

func (oc *OverviewController) list(c *fiber.Ctx, filter services.CourseFilter) error {
	courses, total, err := oc.Catalog.ListCourses(c.UserContext(), filter, services.ParseSortKey(c.Query("sort_by")))
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.Paginate(c, courseResponses(courses), total, max(filter.Page, 1), pageSizeOrDefault(filter.PageSize))
}

func pageSizeOrDefault(size int) int {
	switch {
	case size < 1:
		return services.DefaultPageSize
	case size > services.MaxPageSize:
		return services.MaxPageSize
	}
	return size
}

func courseFilter(c *fiber.Ctx) (services.CourseFilter, error) {
	filter := services.CourseFilter{
		Category:      models.Category(c.Query("category")),
		Level:         models.Level(c.Query("level")),
		TeacherSearch: c.Query("teacher"),
		Page:          c.QueryInt("page", 1),
		PageSize:      c.QueryInt("page_size", services.DefaultPageSize),
	}
	if filter.Category != "" && !filter.Category.Valid() {
		return filter, apperr.Validation("Unknown category %q", filter.Category)
	}
	if filter.Level != "" && !filter.Level.Valid() {
		return filter, apperr.Validation("Unknown level %q", filter.Level)
	}
	var err error
	if filter.MinPrice, err = queryFloat(c, "min_price"); err != nil {
		return filter, err
	}
	if filter.MaxPrice, err = queryFloat(c, "max_price"); err != nil {
		return filter, err
	}
	return filter, nil
}

func queryFloat(c *fiber.Ctx, key string) (*float64, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, apperr.Validation("Invalid %s", key)
	}
	return &v, nil
}

// SearchCourses godoc
// @Summary Keyword search over published courses
// @Tags catalog
// @Produce json
// @Param q query string true "Keyword"
// @Success 200 {object} utils.SuccessResponse
// @Router /courses/search [get]
func (oc *OverviewController) SearchCourses(c *fiber.Ctx) error {
	courses, err := oc.Catalog.SearchCourses(c.UserContext(), c.Query("q"))
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, courseResponses(courses))
}

// GetCourseDetails godoc
// @Summary Course with modules and lessons
// @Tags catalog
// @Produce json
// @Param id path int true "Course ID"
// @Success 200 {object} utils.SuccessResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /courses/{id} [get]
func (oc *OverviewController) GetCourseDetails(c *fiber.Ctx) error {
	courseID, err := paramID(c, "id")
	if err != nil {
		return utils.HandleError(c, err)
	}
	course, err := oc.Catalog.GetCourseDetails(c.UserContext(), courseID)
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, courseResponse(*course))
}

func (oc *OverviewController) GetCourseStats(c *fiber.Ctx) error {
	courseID, err := paramID(c, "id")
	if err != nil {
		return utils.HandleError(c, err)
	}
	stats, err := oc.Catalog.GetCourseStats(c.UserContext(), courseID)
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, stats)
}

type ReviewResponse struct {
	models.CourseReview
	Student models.UserBrief `json:"student"`
}

func (oc *OverviewController) GetCourseReviews(c *fiber.Ctx) error {
	courseID, err := paramID(c, "id")
	if err != nil {
		return utils.HandleError(c, err)
	}
	reviews, err := oc.Catalog.CourseReviews(c.UserContext(), courseID)
	if err != nil {
		return utils.HandleError(c, err)
	}
	out := make([]ReviewResponse, 0, len(reviews))
	for _, review := range reviews {
		out = append(out, ReviewResponse{CourseReview: review, Student: review.Student.Brief()})
	}
	return utils.Success(c, fiber.StatusOK, out)
}

// TeacherCourses lists the caller's own courses, drafts included.
func (oc *OverviewController) TeacherCourses(c *fiber.Ctx) error {
	courses, err := oc.Catalog.TeacherCourses(c.UserContext(), middleware.CurrentUser(c).ID)
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, courseResponses(courses))
}
