package models

import (
	"time"

	"gorm.io/datatypes"
)

type Quiz struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	LessonID     uint           `gorm:"not null;uniqueIndex" json:"lesson_id"`
	Title        string         `gorm:"not null" json:"title"`
	PassingScore int            `gorm:"not null;default:0" json:"passing_score"`
	Questions    []QuizQuestion `gorm:"constraint:OnDelete:CASCADE" json:"questions,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// TotalPoints sums the point values of the loaded questions.
func (q Quiz) TotalPoints() int {
	total := 0
	for _, question := range q.Questions {
		total += question.Points
	}
	return total
}

type QuizQuestion struct {
	ID                 uint                        `gorm:"primaryKey" json:"id"`
	QuizID             uint                        `gorm:"not null;index" json:"quiz_id"`
	QuestionText       string                      `gorm:"not null" json:"question_text"`
	Options            datatypes.JSONSlice[string] `gorm:"not null" json:"options"`
	CorrectOptionIndex int                         `gorm:"not null" json:"correct_option_index"`
	Points             int                         `gorm:"not null;default:1" json:"points"`
	Order              int                         `gorm:"column:sort_order;not null;default:0" json:"order"`
}

// QuizAttempt is never updated once written.
type QuizAttempt struct {
	ID          uint              `gorm:"primaryKey" json:"id"`
	StudentID   uint              `gorm:"not null;index:idx_attempt_student_quiz" json:"student_id"`
	QuizID      uint              `gorm:"not null;index:idx_attempt_student_quiz" json:"quiz_id"`
	Score       int               `gorm:"not null" json:"score"`
	TotalScore  int               `gorm:"not null" json:"total_score"`
	Passed      bool              `gorm:"not null" json:"passed"`
	Answers     datatypes.JSONMap `json:"answers"`
	AttemptedAt time.Time         `gorm:"not null;index" json:"attempted_at"`
}
