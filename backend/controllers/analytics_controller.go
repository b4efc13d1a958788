package controllers

import (
	"strconv"

	"courseplatform/backend/apperr"
	"courseplatform/backend/middleware"
	"courseplatform/backend/services"
	"courseplatform/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type AnalyticsController struct {
	Analytics *services.AnalyticsService
}

func NewAnalyticsController(analytics *services.AnalyticsService) *AnalyticsController {
	return &AnalyticsController{Analytics: analytics}
}

// TeacherRevenue возвращает доход преподавателя за период
// @Summary Teacher revenue
// @Description Teachers see their own revenue; admins must pass teacher_id
// @Tags analytics
// @Produce json
// @Param days query int false "Period in days" default(30)
// @Param teacher_id query int false "Teacher ID (admin only)"
// @Success 200 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /analytics/teacher/revenue [get]
func (ac *AnalyticsController) TeacherRevenue(c *fiber.Ctx) error {
	days := services.DefaultRevenueDays
	if raw := c.Query("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return utils.HandleError(c, apperr.Validation("days must be a positive integer"))
		}
		days = parsed
	}

	// Преподаватель видит только свой доход
	actor := middleware.CurrentActor(c)
	teacherID := actor.UserID
	if actor.IsAdmin() {
		raw := c.Query("teacher_id")
		if raw == "" {
			return utils.HandleError(c, apperr.Validation("teacher_id is required"))
		}
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || parsed == 0 {
			return utils.HandleError(c, apperr.Validation("Invalid teacher_id"))
		}
		teacherID = uint(parsed)
	}

	report, err := ac.Analytics.TeacherRevenue(c.UserContext(), teacherID, days)
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, report)
}

// CoursePopularity возвращает самые популярные курсы и статистику по категориям
func (ac *AnalyticsController) CoursePopularity(c *fiber.Ctx) error {
	report, err := ac.Analytics.CoursePopularity(c.UserContext())
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, report)
}

// PlatformStats возвращает общую статистику платформы
func (ac *AnalyticsController) PlatformStats(c *fiber.Ctx) error {
	stats, err := ac.Analytics.PlatformStats(c.UserContext())
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, stats)
}
