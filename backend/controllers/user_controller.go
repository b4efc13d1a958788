package controllers

import (
	"courseplatform/backend/middleware"
	"courseplatform/backend/models"
	"courseplatform/backend/services"
	"courseplatform/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type UserController struct {
	Auth  *services.AuthService
	Admin *services.AdminService
}

func NewUserController(auth *services.AuthService, admin *services.AdminService) *UserController {
	return &UserController{Auth: auth, Admin: admin}
}

type UpdateProfileRequest struct {
	FullName *string `json:"full_name" validate:"omitempty,min=1,max=200"`
	Bio      *string `json:"bio" validate:"omitempty,max=2000"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6"`
}

type SetBalanceRequest struct {
	Balance *float64 `json:"balance" validate:"required,gte=0"`
}

// GetProfile godoc
// @Summary Get current user profile
// @Tags users
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /auth/me [get]
func (uc *UserController) GetProfile(c *fiber.Ctx) error {
	user, err := uc.Auth.Me(c.UserContext(), middleware.CurrentUser(c).ID)
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, user)
}

// UpdateProfile godoc
// @Summary Update current user profile
// @Tags users
// @Accept json
// @Produce json
// @Param input body UpdateProfileRequest true "Profile fields"
// @Success 200 {object} utils.SuccessResponse
// @Failure 422 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /auth/me [put]
func (uc *UserController) UpdateProfile(c *fiber.Ctx) error {
	var input UpdateProfileRequest
	if ok, err := bindJSON(c, &input); !ok {
		return err
	}
	user, err := uc.Auth.UpdateProfile(c.UserContext(), middleware.CurrentUser(c).ID, input.FullName, input.Bio)
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, user)
}

func (uc *UserController) ChangePassword(c *fiber.Ctx) error {
	var input ChangePasswordRequest
	if ok, err := bindJSON(c, &input); !ok {
		return err
	}
	err := uc.Auth.ChangePassword(c.UserContext(), middleware.CurrentUser(c).ID, input.OldPassword, input.NewPassword)
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.Message(c, "Password changed", nil)
}

// ListUsers godoc
// @Summary List users (admin)
// @Tags admin
// @Produce json
// @Param role query string false "student, teacher or admin"
// @Success 200 {object} utils.SuccessResponse
// @Failure 403 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /admin/users [get]
func (uc *UserController) ListUsers(c *fiber.Ctx) error {
	var role *models.Role
	if raw := c.Query("role"); raw != "" {
		r := models.Role(raw)
		role = &r
	}
	users, err := uc.Admin.ListUsers(c.UserContext(), role)
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, users)
}

func (uc *UserController) DeleteUser(c *fiber.Ctx) error {
	userID, err := paramID(c, "id")
	if err != nil {
		return utils.HandleError(c, err)
	}
	if err := uc.Admin.DeleteUser(c.UserContext(), userID); err != nil {
		return utils.HandleError(c, err)
	}
	return utils.Message(c, "User deleted", nil)
}

func (uc *UserController) SetBalance(c *fiber.Ctx) error {
	userID, err := paramID(c, "id")
	if err != nil {
		return utils.HandleError(c, err)
	}
	var input SetBalanceRequest
	if ok, err := bindJSON(c, &input); !ok {
		return err
	}
	user, err := uc.Admin.SetBalance(c.UserContext(), userID, *input.Balance)
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, user)
}
