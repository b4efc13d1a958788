package middleware

import (
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"courseplatform/backend/config"
	"courseplatform/backend/migrations"
	"courseplatform/backend/models"
	"courseplatform/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
)

func setupApp(t *testing.T) (*fiber.App, *gorm.DB, *config.Config) {
	t.Helper()
	db, err := utils.OpenSQLite(filepath.Join(t.TempDir(), "middleware.db"))
	require.NoError(t, err)
	require.NoError(t, migrations.Up(t.Context(), db, utils.NopLogger()))
	cfg := &config.Config{JWTSecret: "middleware-secret", JWTTTL: time.Hour}

	app := fiber.New()
	app.Get("/me", AuthMiddleware(db, cfg), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"id": CurrentActor(c).UserID})
	})
	app.Get("/admin", AuthMiddleware(db, cfg), RequireRoles(models.RoleAdmin), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app, db, cfg
}

func bearer(t *testing.T, cfg *config.Config, user *models.User) string {
	t.Helper()
	token, err := utils.GenerateJWTToken(user.ID, user.Role, cfg)
	require.NoError(t, err)
	return "Bearer " + token
}

func TestAuthMiddleware(t *testing.T) {
	app, db, cfg := setupApp(t)
	student := &models.User{Email: "s@example.com", PasswordHash: "x", FullName: "S", Role: models.RoleStudent}
	require.NoError(t, db.Create(student).Error)

	req := httptest.NewRequest("GET", "/me", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	req = httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", bearer(t, cfg, student))
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	ghost := &models.User{ID: 9999, Role: models.RoleStudent}
	req = httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", bearer(t, cfg, ghost))
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestRequireRoles(t *testing.T) {
	app, db, cfg := setupApp(t)
	student := &models.User{Email: "s@example.com", PasswordHash: "x", FullName: "S", Role: models.RoleStudent}
	admin := &models.User{Email: "a@example.com", PasswordHash: "x", FullName: "A", Role: models.RoleAdmin}
	require.NoError(t, db.Create(student).Error)
	require.NoError(t, db.Create(admin).Error)

	req := httptest.NewRequest("GET", "/admin", nil)
	req.Header.Set("Authorization", bearer(t, cfg, student))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	req = httptest.NewRequest("GET", "/admin", nil)
	req.Header.Set("Authorization", bearer(t, cfg, admin))
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestLoggingMiddlewareLevels(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	logger := &utils.Logger{SugaredLogger: zap.New(core).Sugar()}

	app := fiber.New()
	app.Use(LoggingMiddleware(logger))
	app.Get("/ok", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	app.Get("/missing", func(c *fiber.Ctx) error { return fiber.ErrNotFound })

	_, err := app.Test(httptest.NewRequest("GET", "/ok", nil))
	require.NoError(t, err)
	_, err = app.Test(httptest.NewRequest("GET", "/missing", nil))
	require.NoError(t, err)

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zap.InfoLevel, entries[0].Level)
	assert.Equal(t, zap.WarnLevel, entries[1].Level)
	assert.Equal(t, int64(fiber.StatusNotFound), entries[1].ContextMap()["status"])
}
