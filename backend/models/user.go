package models

import "time"

type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleTeacher, RoleAdmin:
		return true
	}
	return false
}

const DefaultBalance = 1000.0

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	FullName     string    `gorm:"not null" json:"full_name"`
	Bio          string    `json:"bio,omitempty"`
	Role         Role      `gorm:"type:varchar(16);not null;default:student;index" json:"role"`
	Balance      float64   `gorm:"not null;default:1000" json:"balance"`
	Rating       float64   `gorm:"not null;default:0" json:"rating"`
	RatingCount  int       `gorm:"not null;default:0" json:"rating_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserBrief is the nested user shape used inside course and review payloads.
type UserBrief struct {
	ID          uint    `json:"id"`
	FullName    string  `json:"full_name"`
	Rating      float64 `json:"rating"`
	RatingCount int     `json:"rating_count"`
}

func (u User) Brief() UserBrief {
	return UserBrief{ID: u.ID, FullName: u.FullName, Rating: u.Rating, RatingCount: u.RatingCount}
}
