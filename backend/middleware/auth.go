package middleware

import (
	"errors"
	"slices"

	"courseplatform/backend/config"
	"courseplatform/backend/models"
	"courseplatform/backend/services"
	"courseplatform/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const userKey = "user"

// AuthMiddleware resolves the bearer token to a stored user. Tokens of deleted users
// are rejected.
func AuthMiddleware(db *gorm.DB, cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := utils.ExtractClaimsFromToken(c, cfg)
		if err != nil {
			return utils.Unauthorized(c, "Could not validate credentials")
		}

		var user models.User
		if err := db.WithContext(c.UserContext()).First(&user, claims.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.Unauthorized(c, "Could not validate credentials")
			}
			return utils.HandleError(c, err)
		}

		c.Locals(userKey, &user)
		return c.Next()
	}
}

// RequireRoles lets the request through only for users holding one of roles. It must
// run after AuthMiddleware.
func RequireRoles(roles ...models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil {
			return utils.Unauthorized(c, "Could not validate credentials")
		}
		if !slices.Contains(roles, user.Role) {
			return utils.Forbidden(c, "Access denied for role "+string(user.Role))
		}
		return c.Next()
	}
}

func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(userKey).(*models.User)
	return user
}

func CurrentActor(c *fiber.Ctx) services.Actor {
	user := CurrentUser(c)
	if user == nil {
		return services.Actor{}
	}
	return services.Actor{UserID: user.ID, Role: user.Role}
}
