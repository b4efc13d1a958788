package controllers

import (
	"courseplatform/backend/models"
	"courseplatform/backend/services"
	"courseplatform/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type AuthController struct {
	Auth *services.AuthService
}

func NewAuthController(auth *services.AuthService) *AuthController {
	return &AuthController{Auth: auth}
}

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email" example:"ann@example.com"`
	Password string `json:"password" validate:"required,min=6" example:"secret1"`
	FullName string `json:"full_name" validate:"required,max=200" example:"Ann Lee"`
	Bio      string `json:"bio" validate:"max=2000"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// [+] Register godoc
// @Summary Register a new user
// @Description Creates a student (default) or teacher account and returns a token
// @Tags auth
// @Accept json
// @Produce json
// @Param role query string false "student or teacher"
// @Param user body RegisterRequest true "User registration data"
// @Success 201 {object} utils.SuccessResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Router /auth/register [post]
func (ac *AuthController) Register(c *fiber.Ctx) error {
	var input RegisterRequest
	if ok, err := bindJSON(c, &input); !ok {
		return err
	}

	session, err := ac.Auth.Register(c.UserContext(), services.RegisterInput{
		Email:    input.Email,
		Password: input.Password,
		FullName: input.FullName,
		Bio:      input.Bio,
	}, models.Role(c.Query("role", string(models.RoleStudent))))
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.Created(c, session)
}

// [+] Login godoc
// @Summary User login
// @Description Authenticate user and return JWT token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} utils.SuccessResponse
// @Failure 401 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Router /auth/login [post]
func (ac *AuthController) Login(c *fiber.Ctx) error {
	var input LoginRequest
	if ok, err := bindJSON(c, &input); !ok {
		return err
	}

	session, err := ac.Auth.Login(c.UserContext(), input.Email, input.Password)
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, session)
}
