package controllers_test

import (
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminUsers(t *testing.T) {
	admin := login(t, adminEmail, adminPassword)
	student := register(t, "student")

	resp, _ := request(t, "GET", "/api/admin/users", student.Token, nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp, body := request(t, "GET", "/api/admin/users?role=student", admin, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var users []struct {
		ID   uint   `json:"id"`
		Role string `json:"role"`
	}
	body.decode(t, &users)
	require.NotEmpty(t, users)
	for _, u := range users {
		assert.Equal(t, "student", u.Role)
	}

	resp, _ = request(t, "GET", "/api/admin/users?role=pirate", admin, nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	balancePath := fmt.Sprintf("/api/admin/users/%d/balance", student.ID)
	resp, _ = request(t, "PUT", balancePath, admin, map[string]interface{}{"balance": -5})
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	resp, body = request(t, "PUT", balancePath, admin, map[string]interface{}{"balance": 42.5})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body.Data), `"balance":42.5`)

	resp, _ = request(t, "DELETE", fmt.Sprintf("/api/admin/users/%d", student.ID), admin, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp, _ = request(t, "GET", "/api/auth/me", student.Token, nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	resp, _ = request(t, "DELETE", fmt.Sprintf("/api/admin/users/%d", student.ID), admin, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestAdminCourses(t *testing.T) {
	admin := login(t, adminEmail, adminPassword)
	teacher := register(t, "teacher")

	resp, body := request(t, "POST", "/api/courses", teacher.Token, map[string]interface{}{
		"title": "Unreleased drafts", "category": "drums", "level": "master",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp, body = request(t, "GET", "/api/courses?teacher="+teacher.Email, "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, int64(0), body.Total)

	resp, body = request(t, "GET", "/api/admin/courses?teacher="+teacher.Email, admin, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, int64(1), body.Total)

	resp, _ = request(t, "GET", "/api/admin/courses", teacher.Token, nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}
