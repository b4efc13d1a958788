package services

import (
	"context"
	"errors"
	"strings"

	"courseplatform/backend/apperr"
	"courseplatform/backend/config"
	"courseplatform/backend/models"
	"courseplatform/backend/utils"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const MinPasswordLength = 6

type RegisterInput struct {
	Email    string
	Password string
	FullName string
	Bio      string
}

type Session struct {
	Token string       `json:"access_token"`
	Type  string       `json:"token_type"`
	User  *models.User `json:"user"`
}

type AuthService struct {
	db  *gorm.DB
	log *utils.Logger
	cfg *config.Config
}

func NewAuthService(db *gorm.DB, log *utils.Logger, cfg *config.Config) *AuthService {
	return &AuthService{db: db, log: log.With("service", "AuthService"), cfg: cfg}
}

// buildUser maps a self-registration role onto a new account. Admin accounts are
// never created through registration.
func buildUser(in RegisterInput, role models.Role) (*models.User, error) {
	user := &models.User{
		Email:    normalizeEmail(in.Email),
		FullName: strings.TrimSpace(in.FullName),
		Bio:      strings.TrimSpace(in.Bio),
		Balance:  models.DefaultBalance,
	}
	switch role {
	case models.RoleStudent, "":
		user.Role = models.RoleStudent
	case models.RoleTeacher:
		user.Role = models.RoleTeacher
	case models.RoleAdmin:
		return nil, apperr.Forbidden("Admin accounts cannot be registered")
	default:
		return nil, apperr.Validation("Unknown role %q", role)
	}
	if user.Email == "" || user.FullName == "" {
		return nil, apperr.Validation("Email and full name are required")
	}
	return user, nil
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput, role models.Role) (*Session, error) {
	user, err := buildUser(in, role)
	if err != nil {
		return nil, err
	}
	if user.PasswordHash, err = hashPassword(in.Password); err != nil {
		return nil, logInternal(s.log, "Register", err)
	}

	db := s.db.WithContext(ctx)
	var taken int64
	if err := db.Model(&models.User{}).Where("email = ?", user.Email).Count(&taken).Error; err != nil {
		return nil, logInternal(s.log, "Register", err)
	}
	if taken > 0 {
		return nil, apperr.Conflict("Email already registered")
	}
	if err := db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflict("Email already registered")
		}
		return nil, logInternal(s.log, "Register", err)
	}
	s.log.Info("user registered", "user_id", user.ID, "role", user.Role)
	return s.session(user)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Unauthorized("Invalid email or password")
	}
	if err != nil {
		return nil, logInternal(s.log, "Login", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, apperr.Unauthorized("Invalid email or password")
	}
	return s.session(&user)
}

func (s *AuthService) Me(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		return nil, logInternal(s.log, "Me", notFoundOr(err, "User not found"))
	}
	return &user, nil
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID uint, fullName, bio *string) (*models.User, error) {
	updates := map[string]interface{}{}
	if fullName != nil {
		name := strings.TrimSpace(*fullName)
		if name == "" {
			return nil, apperr.Validation("Full name cannot be empty")
		}
		updates["full_name"] = name
	}
	if bio != nil {
		updates["bio"] = strings.TrimSpace(*bio)
	}

	user, err := s.Me(ctx, userID)
	if err != nil || len(updates) == 0 {
		return user, err
	}
	if err := s.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
		return nil, logInternal(s.log, "UpdateProfile", err)
	}
	return user, nil
}

func (s *AuthService) ChangePassword(ctx context.Context, userID uint, oldPassword, newPassword string) error {
	user, err := s.Me(ctx, userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)) != nil {
		return apperr.Validation("Current password is incorrect")
	}
	hash, err := hashPassword(newPassword)
	if err != nil {
		return logInternal(s.log, "ChangePassword", err)
	}
	if err := s.db.WithContext(ctx).Model(user).Update("password_hash", hash).Error; err != nil {
		return logInternal(s.log, "ChangePassword", err)
	}
	return nil
}

// SeedAdmin makes sure the configured admin account exists. An existing account with
// the same email is left untouched.
func (s *AuthService) SeedAdmin(ctx context.Context, email, password, fullName string) error {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil
	}
	db := s.db.WithContext(ctx)
	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	hash, err := hashPassword(password)
	if err != nil {
		return err
	}
	admin := &models.User{
		Email:        email,
		PasswordHash: hash,
		FullName:     fullName,
		Role:         models.RoleAdmin,
		Balance:      models.DefaultBalance,
	}
	if err := db.Create(admin).Error; err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
		return err
	}
	s.log.Info("default admin created", "email", email)
	return nil
}

func (s *AuthService) session(user *models.User) (*Session, error) {
	token, err := utils.GenerateJWTToken(user.ID, user.Role, s.cfg)
	if err != nil {
		return nil, logInternal(s.log, "session", err)
	}
	return &Session{Token: token, Type: "bearer", User: user}, nil
}

func hashPassword(password string) (string, error) {
	if len(password) < MinPasswordLength {
		return "", apperr.Validation("Password must be at least %d characters", MinPasswordLength)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
