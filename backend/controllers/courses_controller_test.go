package controllers_test

import (
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCourse(t *testing.T) {
	teacher := register(t, "teacher")
	student := register(t, "student")
	course := map[string]interface{}{"title": "Slide guitar", "price": 20, "category": "guitar", "level": "advanced"}

	resp, _ := request(t, "POST", "/api/courses", "", course)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp, body := request(t, "POST", "/api/courses", student.Token, course)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "forbidden", body.Code)

	resp, body = request(t, "POST", "/api/courses", teacher.Token, map[string]interface{}{"title": "Bad", "category": "banjo", "level": "beginner"})
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, string(body.Details), "category")

	resp, body = request(t, "POST", "/api/courses", teacher.Token, course)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var created struct {
		ID          uint   `json:"id"`
		TeacherID   uint   `json:"teacher_id"`
		IsPublished bool   `json:"is_published"`
		Title       string `json:"title"`
	}
	body.decode(t, &created)
	assert.Equal(t, teacher.ID, created.TeacherID)
	assert.False(t, created.IsPublished)

	// Без модулей курс не публикуется
	resp, _ = request(t, "POST", fmt.Sprintf("/api/courses/%d/publish", created.ID), teacher.Token, nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	other := register(t, "teacher")
	resp, _ = request(t, "PUT", fmt.Sprintf("/api/courses/%d", created.ID), other.Token, map[string]interface{}{"title": "Mine now"})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp, body = request(t, "PUT", fmt.Sprintf("/api/courses/%d", created.ID), teacher.Token, map[string]interface{}{"price": 35.5})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var updated struct {
		Price float64 `json:"price"`
		Title string  `json:"title"`
	}
	body.decode(t, &updated)
	assert.Equal(t, 35.5, updated.Price)
	assert.Equal(t, "Slide guitar", updated.Title)

	resp, _ = request(t, "GET", "/api/courses/teacher/my", teacher.Token, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, _ = request(t, "DELETE", fmt.Sprintf("/api/courses/%d", created.ID), teacher.Token, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp, _ = request(t, "PUT", fmt.Sprintf("/api/courses/%d", created.ID), teacher.Token, map[string]interface{}{"price": 1})
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestGetCourseDetails(t *testing.T) {
	teacher := register(t, "teacher")
	courseID, lessons := publishedCourse(t, teacher, "Jazz voicings for keys", 0, 2)
	require.Len(t, lessons, 2)

	resp, body := request(t, "GET", fmt.Sprintf("/api/courses/%d", courseID), "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var details struct {
		Title   string `json:"title"`
		Teacher struct {
			ID uint `json:"id"`
		} `json:"teacher"`
		Modules []struct {
			Lessons []struct {
				ID uint `json:"id"`
			} `json:"lessons"`
		} `json:"modules"`
	}
	body.decode(t, &details)
	assert.Equal(t, "Jazz voicings for keys", details.Title)
	assert.Equal(t, teacher.ID, details.Teacher.ID)
	require.Len(t, details.Modules, 1)
	assert.Len(t, details.Modules[0].Lessons, 2)

	resp, body = request(t, "GET", fmt.Sprintf("/api/courses/%d/stats", courseID), "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body.Data), `"total_lessons":2`)

	resp, _ = request(t, "GET", "/api/courses/999999", "", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, body = request(t, "GET", "/api/courses/abc", "", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "validation", body.Code)
}

func TestListAndSearchCourses(t *testing.T) {
	teacher := register(t, "teacher")
	courseID, _ := publishedCourse(t, teacher, "Fingerstyle zebra", 15, 1)

	resp, body := request(t, "GET", "/api/courses/search?q=zebra", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var found []idOnly
	body.decode(t, &found)
	require.Len(t, found, 1)
	assert.Equal(t, courseID, found[0].ID)

	resp, body = request(t, "GET", "/api/courses?teacher="+teacher.Email+"&sort_by=price_desc", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, int64(1), body.Total)

	resp, _ = request(t, "GET", "/api/courses?category=banjo", "", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = request(t, "GET", "/api/courses?min_price=cheap", "", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestModulesAndLessons(t *testing.T) {
	teacher := register(t, "teacher")
	courseID, lessons := publishedCourse(t, teacher, "Odd meters", 0, 1)

	resp, body := request(t, "PUT", fmt.Sprintf("/api/courses/lessons/%d", lessons[0]), teacher.Token, map[string]interface{}{"duration_minutes": 90})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body.Data), `"duration_minutes":90`)

	resp, _ = request(t, "PUT", fmt.Sprintf("/api/courses/lessons/%d", lessons[0]), teacher.Token, map[string]interface{}{"video_url": "not a url"})
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)

	resp, body = request(t, "POST", fmt.Sprintf("/api/courses/%d/modules", courseID), teacher.Token, map[string]interface{}{"title": "Second"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var module struct {
		ID    uint `json:"id"`
		Order int  `json:"order"`
	}
	body.decode(t, &module)
	assert.Equal(t, 2, module.Order)

	resp, _ = request(t, "DELETE", fmt.Sprintf("/api/courses/modules/%d", module.ID), teacher.Token, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp, _ = request(t, "DELETE", fmt.Sprintf("/api/courses/lessons/%d", lessons[0]), teacher.Token, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp, _ = request(t, "DELETE", fmt.Sprintf("/api/courses/lessons/%d", lessons[0]), teacher.Token, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
