package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"courseplatform/backend/certificates"
	"courseplatform/backend/config"
	"courseplatform/backend/migrations"
	"courseplatform/backend/routes"
	"courseplatform/backend/services"
	"courseplatform/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	adminEmail    = "admin@example.com"
	adminPassword = "admin-secret"
)

var (
	app     *fiber.App
	db      *gorm.DB
	cfg     *config.Config
	tempDir string
	userSeq atomic.Int64
)

func TestMain(m *testing.M) {
	// Setup
	if err := setup(); err != nil {
		fmt.Fprintln(os.Stderr, "setup:", err)
		os.Exit(1)
	}
	// Run tests
	code := m.Run()
	// Cleanup
	teardown()
	os.Exit(code)
}

func setup() error {
	var err error
	tempDir, err = os.MkdirTemp("", "controllers-test")
	if err != nil {
		return err
	}

	cfg = &config.Config{
		AppEnv:     "test",
		JWTSecret:  "testsecret",
		JWTTTL:     time.Hour,
		ServerPort: "8080",
	}
	log := utils.NopLogger()

	db, err = utils.OpenSQLite(filepath.Join(tempDir, "controllers.db"))
	if err != nil {
		return err
	}
	ctx := context.Background()
	if err := migrations.Up(ctx, db, log); err != nil {
		return err
	}
	if err := services.NewAuthService(db, log, cfg).SeedAdmin(ctx, adminEmail, adminPassword, "Admin"); err != nil {
		return err
	}

	store, err := certificates.NewLocalStore(filepath.Join(tempDir, "certificates"))
	if err != nil {
		return err
	}
	renderer, err := certificates.NewPDFRenderer()
	if err != nil {
		return err
	}

	app = fiber.New(fiber.Config{ErrorHandler: utils.HandleError})
	routes.SetupRoutes(app, routes.Dependencies{DB: db, Cfg: cfg, Log: log, Renderer: renderer, Store: store})
	return nil
}

func teardown() {
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	os.RemoveAll(tempDir)
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Code    string          `json:"code"`
	Data    json.RawMessage `json:"data"`
	Total   int64           `json:"total"`
	Details json.RawMessage `json:"details"`
}

func (e envelope) decode(t *testing.T, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(e.Data, dst))
}

func request(t *testing.T, method, path, token string, body interface{}) (*http.Response, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var out envelope
	if resp.Header.Get("Content-Type") == fiber.MIMEApplicationJSON {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	}
	return resp, out
}

type account struct {
	ID    uint
	Email string
	Token string
}

type session struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	User        struct {
		ID      uint    `json:"id"`
		Email   string  `json:"email"`
		Role    string  `json:"role"`
		Balance float64 `json:"balance"`
	} `json:"user"`
}

func register(t *testing.T, role string) account {
	t.Helper()
	email := fmt.Sprintf("%s%d@example.com", role, userSeq.Add(1))
	resp, body := request(t, "POST", "/api/auth/register?role="+role, "", map[string]string{
		"email":     email,
		"password":  "secret1",
		"full_name": "User " + email,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var s session
	body.decode(t, &s)
	return account{ID: s.User.ID, Email: email, Token: s.AccessToken}
}

func login(t *testing.T, email, password string) string {
	t.Helper()
	resp, body := request(t, "POST", "/api/auth/login", "", map[string]string{"email": email, "password": password})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var s session
	body.decode(t, &s)
	return s.AccessToken
}

type idOnly struct {
	ID uint `json:"id"`
}

// publishedCourse builds a one-module course with the given lessons through the API.
func publishedCourse(t *testing.T, teacher account, title string, price float64, lessons int) (courseID uint, lessonIDs []uint) {
	t.Helper()
	resp, body := request(t, "POST", "/api/courses", teacher.Token, map[string]interface{}{
		"title":    title,
		"price":    price,
		"category": "guitar",
		"level":    "beginner",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var course idOnly
	body.decode(t, &course)

	resp, body = request(t, "POST", fmt.Sprintf("/api/courses/%d/modules", course.ID), teacher.Token, map[string]interface{}{"title": "Basics"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var module idOnly
	body.decode(t, &module)

	for i := 0; i < lessons; i++ {
		resp, body = request(t, "POST", fmt.Sprintf("/api/courses/modules/%d/lessons", module.ID), teacher.Token, map[string]interface{}{
			"title":            fmt.Sprintf("Lesson %d", i+1),
			"lesson_type":      "text",
			"content_text":     "Play the chord",
			"duration_minutes": 45,
		})
		require.Equal(t, fiber.StatusCreated, resp.StatusCode)
		var lesson idOnly
		body.decode(t, &lesson)
		lessonIDs = append(lessonIDs, lesson.ID)
	}

	resp, _ = request(t, "POST", fmt.Sprintf("/api/courses/%d/publish", course.ID), teacher.Token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	return course.ID, lessonIDs
}
