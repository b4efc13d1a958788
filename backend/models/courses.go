package models

import "time"

type Category string

const (
	CategoryGuitar    Category = "guitar"
	CategoryDrums     Category = "drums"
	CategoryVocals    Category = "vocals"
	CategoryKeyboards Category = "keyboards"
	CategoryTheory    Category = "theory"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryGuitar, CategoryDrums, CategoryVocals, CategoryKeyboards, CategoryTheory:
		return true
	}
	return false
}

type Level string

const (
	LevelBeginner     Level = "beginner"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
	LevelMaster       Level = "master"
)

func (l Level) Valid() bool {
	switch l {
	case LevelBeginner, LevelIntermediate, LevelAdvanced, LevelMaster:
		return true
	}
	return false
}

type LessonType string

const (
	LessonVideo LessonType = "video"
	LessonText  LessonType = "text"
	LessonQuiz  LessonType = "quiz"
)

func (t LessonType) Valid() bool {
	switch t {
	case LessonVideo, LessonText, LessonQuiz:
		return true
	}
	return false
}

type Course struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"not null" json:"title"`
	Description string    `json:"description"`
	Price       float64   `gorm:"not null;default:0" json:"price"`
	Category    Category  `gorm:"type:varchar(32);not null;index" json:"category"`
	Level       Level     `gorm:"type:varchar(32);not null;index" json:"level"`
	IsPublished bool      `gorm:"not null;default:false;index" json:"is_published"`
	TeacherID   uint      `gorm:"not null;index" json:"teacher_id"`
	Teacher     User      `gorm:"foreignKey:TeacherID" json:"-"`
	Rating      float64   `gorm:"not null;default:0" json:"rating"`
	RatingCount int       `gorm:"not null;default:0" json:"rating_count"`
	Modules     []Module  `gorm:"constraint:OnDelete:CASCADE" json:"modules,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Module struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CourseID    uint      `gorm:"not null;index" json:"course_id"`
	Title       string    `gorm:"not null" json:"title"`
	Description string    `json:"description"`
	Order       int       `gorm:"column:sort_order;not null;default:0" json:"order"`
	Lessons     []Lesson  `gorm:"constraint:OnDelete:CASCADE" json:"lessons,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type Lesson struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	ModuleID        uint       `gorm:"not null;index" json:"module_id"`
	Title           string     `gorm:"not null" json:"title"`
	LessonType      LessonType `gorm:"type:varchar(16);not null;default:text" json:"lesson_type"`
	VideoURL        string     `json:"video_url,omitempty"`
	ContentText     string     `json:"content_text,omitempty"`
	DurationMinutes int        `gorm:"not null;default:0" json:"duration_minutes"`
	Order           int        `gorm:"column:sort_order;not null;default:0" json:"order"`
	Quiz            *Quiz      `gorm:"constraint:OnDelete:CASCADE" json:"quiz,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}
