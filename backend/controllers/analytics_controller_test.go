package controllers_test

import (
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTeacherRevenue(t *testing.T) {
	teacher := register(t, "teacher")
	student := register(t, "student")
	courseID, _ := publishedCourse(t, teacher, "Paid harmony", 120, 1)
	resp, _ := request(t, "POST", fmt.Sprintf("/api/students/enroll/%d", courseID), student.Token, nil)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp, body := request(t, "GET", "/api/analytics/teacher/revenue?days=7", teacher.Token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var report struct {
		TeacherID        uint    `json:"teacher_id"`
		TotalRevenue     float64 `json:"total_revenue"`
		PeriodRevenue    float64 `json:"period_revenue"`
		PeriodDays       int     `json:"period_days"`
		TransactionCount int64   `json:"transaction_count"`
	}
	body.decode(t, &report)
	assert.Equal(t, teacher.ID, report.TeacherID)
	assert.Equal(t, 120.0, report.TotalRevenue)
	assert.Equal(t, 120.0, report.PeriodRevenue)
	assert.Equal(t, 7, report.PeriodDays)
	assert.Equal(t, int64(1), report.TransactionCount)

	resp, _ = request(t, "GET", "/api/analytics/teacher/revenue?days=zero", teacher.Token, nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	resp, _ = request(t, "GET", "/api/analytics/teacher/revenue", student.Token, nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	admin := login(t, adminEmail, adminPassword)
	resp, _ = request(t, "GET", "/api/analytics/teacher/revenue", admin, nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	resp, body = request(t, "GET", fmt.Sprintf("/api/analytics/teacher/revenue?teacher_id=%d", teacher.ID), admin, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body.decode(t, &report)
	assert.Equal(t, 30, report.PeriodDays)
	assert.Equal(t, 120.0, report.TotalRevenue)
	resp, _ = request(t, "GET", fmt.Sprintf("/api/analytics/teacher/revenue?teacher_id=%d", student.ID), admin, nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestPlatformAnalytics(t *testing.T) {
	teacher := register(t, "teacher")
	admin := login(t, adminEmail, adminPassword)

	resp, _ := request(t, "GET", "/api/analytics/platform", teacher.Token, nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp, body := request(t, "GET", "/api/analytics/platform", admin, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var stats struct {
		TotalUsers int64 `json:"total_users"`
		Admins     int64 `json:"admins"`
		Teachers   int64 `json:"teachers"`
	}
	body.decode(t, &stats)
	assert.Equal(t, int64(1), stats.Admins)
	assert.GreaterOrEqual(t, stats.Teachers, int64(1))
	assert.GreaterOrEqual(t, stats.TotalUsers, stats.Admins+stats.Teachers)

	resp, body = request(t, "GET", "/api/analytics/courses/popularity", teacher.Token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body.Data), "top_courses")
}
