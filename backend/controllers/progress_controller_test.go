package controllers_test

import (
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type enrollmentBody struct {
	ID              uint    `json:"id"`
	CourseID        uint    `json:"course_id"`
	ProgressPercent float64 `json:"progress_percent"`
	IsCompleted     bool    `json:"is_completed"`
}

func TestEnrollAndComplete(t *testing.T) {
	teacher := register(t, "teacher")
	student := register(t, "student")
	courseID, lessons := publishedCourse(t, teacher, "Groove fundamentals", 150, 2)

	resp, _ := request(t, "POST", fmt.Sprintf("/api/students/enroll/%d", courseID), teacher.Token, nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp, _ = request(t, "GET", fmt.Sprintf("/api/students/lessons/%d", lessons[0]), student.Token, nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp, body := request(t, "POST", fmt.Sprintf("/api/students/enroll/%d", courseID), student.Token, nil)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var enrollment enrollmentBody
	body.decode(t, &enrollment)
	assert.Equal(t, courseID, enrollment.CourseID)

	resp, body = request(t, "POST", fmt.Sprintf("/api/students/enroll/%d", courseID), student.Token, nil)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Equal(t, "conflict", body.Code)

	resp, body = request(t, "GET", "/api/auth/me", student.Token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var me struct {
		Balance float64 `json:"balance"`
	}
	body.decode(t, &me)
	assert.Equal(t, 850.0, me.Balance)

	resp, _ = request(t, "GET", fmt.Sprintf("/api/students/lessons/%d", lessons[0]), student.Token, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, body = request(t, "POST", fmt.Sprintf("/api/students/lessons/%d/complete", lessons[0]), student.Token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body.decode(t, &enrollment)
	assert.Equal(t, 50.0, enrollment.ProgressPercent)
	assert.False(t, enrollment.IsCompleted)

	resp, body = request(t, "POST", fmt.Sprintf("/api/students/courses/%d/complete", courseID), student.Token, nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, body = request(t, "POST", fmt.Sprintf("/api/students/lessons/%d/complete", lessons[1]), student.Token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body.decode(t, &enrollment)
	assert.Equal(t, 100.0, enrollment.ProgressPercent)
	assert.True(t, enrollment.IsCompleted)

	resp, body = request(t, "GET", fmt.Sprintf("/api/students/enrollments/course/%d", courseID), student.Token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body.decode(t, &enrollment)
	assert.True(t, enrollment.IsCompleted)

	resp, body = request(t, "GET", "/api/students/enrollments", student.Token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var all []enrollmentBody
	body.decode(t, &all)
	assert.Len(t, all, 1)

	resp, body = request(t, "GET", "/api/students/progress", student.Token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body.Data), `"completed_courses":1`)
}

func TestInsufficientBalance(t *testing.T) {
	teacher := register(t, "teacher")
	student := register(t, "student")
	courseID, _ := publishedCourse(t, teacher, "Masterclass", 5000, 1)

	resp, body := request(t, "POST", fmt.Sprintf("/api/students/enroll/%d", courseID), student.Token, nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "validation", body.Code)

	resp, _ = request(t, "GET", fmt.Sprintf("/api/students/enrollments/course/%d", courseID), student.Token, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestCertificateAndRatings(t *testing.T) {
	teacher := register(t, "teacher")
	student := register(t, "student")
	courseID, lessons := publishedCourse(t, teacher, "Sight reading", 0, 1)

	resp, body := request(t, "POST", fmt.Sprintf("/api/students/enroll/%d", courseID), student.Token, nil)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var enrollment enrollmentBody
	body.decode(t, &enrollment)

	resp, _ = request(t, "POST", fmt.Sprintf("/api/students/enrollments/%d/certificate", enrollment.ID), student.Token, nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	resp, _ = request(t, "POST", fmt.Sprintf("/api/students/courses/%d/rating", courseID), student.Token, map[string]interface{}{"rating": 5})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = request(t, "POST", fmt.Sprintf("/api/students/lessons/%d/complete", lessons[0]), student.Token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, body = request(t, "POST", fmt.Sprintf("/api/students/enrollments/%d/certificate", enrollment.ID), student.Token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var cert struct {
		ID          string  `json:"id"`
		TotalHours  float64 `json:"total_hours"`
		DownloadURL string  `json:"download_url"`
	}
	body.decode(t, &cert)
	assert.Equal(t, "/api/students/certificates/"+cert.ID+"/download", cert.DownloadURL)
	assert.Equal(t, 1.0, cert.TotalHours)

	resp, _ = request(t, "GET", cert.DownloadURL, student.Token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), cert.ID)
	pdf, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(pdf), "%PDF"))

	outsider := register(t, "student")
	resp, _ = request(t, "GET", cert.DownloadURL, outsider.Token, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	resp, _ = request(t, "GET", "/api/students/certificates/not-a-uuid/download", student.Token, nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, body = request(t, "POST", fmt.Sprintf("/api/students/courses/%d/rating", courseID), student.Token, map[string]interface{}{"rating": 4, "comment": "clear"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var rating struct {
		Rating      float64 `json:"rating"`
		RatingCount int     `json:"rating_count"`
	}
	body.decode(t, &rating)
	assert.Equal(t, 4.0, rating.Rating)
	assert.Equal(t, 1, rating.RatingCount)

	resp, _ = request(t, "POST", fmt.Sprintf("/api/students/courses/%d/teacher-rating", courseID), student.Token, map[string]interface{}{"rating": 9})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	resp, _ = request(t, "POST", fmt.Sprintf("/api/students/courses/%d/teacher-rating", courseID), student.Token, map[string]interface{}{"rating": 5})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, body = request(t, "GET", fmt.Sprintf("/api/courses/%d/reviews", courseID), "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body.Data), `"comment":"clear"`)
}
