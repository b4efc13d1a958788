package services

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"courseplatform/backend/apperr"
	"courseplatform/backend/models"
	"courseplatform/backend/utils"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultPassingRatio applies when a quiz is saved without a passing score.
const DefaultPassingRatio = 0.7

type QuestionInput struct {
	QuestionText       string
	Options            []string
	CorrectOptionIndex int
	Points             int
}

type QuizInput struct {
	Title        string
	PassingScore *int
	Questions    []QuestionInput
}

type QuizService struct {
	db  *gorm.DB
	log *utils.Logger
}

func NewQuizService(db *gorm.DB, log *utils.Logger) *QuizService {
	return &QuizService{db: db, log: log.With("service", "QuizService")}
}

// CreateQuiz attaches a quiz to a lesson; a lesson holds at most one quiz.
func (s *QuizService) CreateQuiz(ctx context.Context, actor Actor, lessonID uint, in QuizInput) (*models.Quiz, error) {
	questions, passing, err := buildQuestions(in)
	if err != nil {
		return nil, err
	}
	quiz := models.Quiz{LessonID: lessonID, Title: strings.TrimSpace(in.Title), PassingScore: passing, Questions: questions}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := ownedLesson(tx, actor, lessonID); err != nil {
			return err
		}
		var existing int64
		if err := tx.Model(&models.Quiz{}).Where("lesson_id = ?", lessonID).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return apperr.Validation("Lesson already has a quiz")
		}
		if err := tx.Create(&quiz).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperr.Validation("Lesson already has a quiz")
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, logInternal(s.log, "CreateQuiz", err)
	}
	s.log.Info("quiz created", "quiz_id", quiz.ID, "lesson_id", lessonID, "questions", len(questions))
	return &quiz, nil
}

// UpdateQuiz swaps the whole question set while keeping the quiz id.
func (s *QuizService) UpdateQuiz(ctx context.Context, actor Actor, quizID uint, in QuizInput) (*models.Quiz, error) {
	questions, passing, err := buildQuestions(in)
	if err != nil {
		return nil, err
	}
	var quiz models.Quiz
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&quiz, quizID).Error; err != nil {
			return notFoundOr(err, "Quiz not found")
		}
		if _, err := ownedLesson(tx, actor, quiz.LessonID); err != nil {
			return err
		}
		if err := tx.Where("quiz_id = ?", quiz.ID).Delete(&models.QuizQuestion{}).Error; err != nil {
			return err
		}
		for i := range questions {
			questions[i].QuizID = quiz.ID
		}
		if err := tx.Create(&questions).Error; err != nil {
			return err
		}
		quiz.Title = strings.TrimSpace(in.Title)
		quiz.PassingScore = passing
		if err := tx.Omit(clause.Associations).Save(&quiz).Error; err != nil {
			return err
		}
		quiz.Questions = questions
		return nil
	})
	if err != nil {
		return nil, logInternal(s.log, "UpdateQuiz", err)
	}
	return &quiz, nil
}

func (s *QuizService) DeleteQuiz(ctx context.Context, actor Actor, quizID uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var quiz models.Quiz
		if err := tx.First(&quiz, quizID).Error; err != nil {
			return notFoundOr(err, "Quiz not found")
		}
		if _, err := ownedLesson(tx, actor, quiz.LessonID); err != nil {
			return err
		}
		return deleteQuizzes(tx, []uint{quizID})
	})
	return logInternal(s.log, "DeleteQuiz", err)
}

// GetQuiz is the owner's view, answers included.
func (s *QuizService) GetQuiz(ctx context.Context, actor Actor, quizID uint) (*models.Quiz, error) {
	db := s.db.WithContext(ctx)
	quiz, err := loadQuiz(db, quizID)
	if err != nil {
		return nil, logInternal(s.log, "GetQuiz", err)
	}
	if _, err := ownedLesson(db, actor, quiz.LessonID); err != nil {
		return nil, logInternal(s.log, "GetQuiz", err)
	}
	return quiz, nil
}

// QuizForStudent returns the quiz for an enrolled student. Callers must not expose
// the correct option indexes.
func (s *QuizService) QuizForStudent(ctx context.Context, studentID, quizID uint) (*models.Quiz, error) {
	db := s.db.WithContext(ctx)
	quiz, err := loadQuiz(db, quizID)
	if err != nil {
		return nil, logInternal(s.log, "QuizForStudent", err)
	}
	if err := requireEnrollmentForLesson(db, studentID, quiz.LessonID); err != nil {
		return nil, logInternal(s.log, "QuizForStudent", err)
	}
	return quiz, nil
}

// SubmitQuiz scores the answers and records a new attempt. Earlier attempts are kept
// and lesson progress is not touched.
func (s *QuizService) SubmitQuiz(ctx context.Context, studentID, quizID uint, answers map[string]interface{}) (attempt *models.QuizAttempt, err error) {
	ctx, span := startSpan(ctx, "QuizService.SubmitQuiz")
	defer func() { endSpan(span, err) }()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		quiz, err := loadQuiz(tx, quizID)
		if err != nil {
			return err
		}
		if err := requireEnrollmentForLesson(tx, studentID, quiz.LessonID); err != nil {
			return err
		}
		normalized := normalizeAnswers(answers)
		score, total := ScoreQuiz(quiz.Questions, normalized)

		recorded := make(datatypes.JSONMap, len(normalized))
		for id, choice := range normalized {
			recorded[strconv.FormatUint(uint64(id), 10)] = choice
		}
		attempt = &models.QuizAttempt{
			StudentID:   studentID,
			QuizID:      quiz.ID,
			Score:       score,
			TotalScore:  total,
			Passed:      score >= quiz.PassingScore,
			Answers:     recorded,
			AttemptedAt: time.Now().UTC(),
		}
		return tx.Create(attempt).Error
	})
	if err != nil {
		return nil, logInternal(s.log, "SubmitQuiz", err)
	}
	s.log.Info("quiz submitted", "quiz_id", quizID, "student_id", studentID, "score", attempt.Score, "passed", attempt.Passed)
	return attempt, nil
}

func (s *QuizService) QuizAttempts(ctx context.Context, studentID, quizID uint) ([]models.QuizAttempt, error) {
	db := s.db.WithContext(ctx)
	var count int64
	if err := db.Model(&models.Quiz{}).Where("id = ?", quizID).Count(&count).Error; err != nil {
		return nil, logInternal(s.log, "QuizAttempts", err)
	}
	if count == 0 {
		return nil, apperr.NotFound("Quiz not found")
	}
	var attempts []models.QuizAttempt
	err := db.Where("student_id = ? AND quiz_id = ?", studentID, quizID).
		Order("attempted_at DESC, id DESC").
		Find(&attempts).Error
	if err != nil {
		return nil, logInternal(s.log, "QuizAttempts", err)
	}
	return attempts, nil
}

// ScoreQuiz awards each question's points when the chosen option matches the
// correct one. It returns the earned and the total possible points.
func ScoreQuiz(questions []models.QuizQuestion, answers map[uint]int) (score, total int) {
	for _, q := range questions {
		points := q.Points
		if points < 1 {
			points = 1
		}
		total += points
		if choice, ok := answers[q.ID]; ok && choice == q.CorrectOptionIndex {
			score += points
		}
	}
	return score, total
}

// normalizeAnswers keys answers by question id. Keys and values may arrive as
// strings or numbers; entries that do not parse are dropped.
func normalizeAnswers(raw map[string]interface{}) map[uint]int {
	out := make(map[uint]int, len(raw))
	for key, value := range raw {
		id, err := strconv.ParseUint(strings.TrimSpace(key), 10, 64)
		if err != nil {
			continue
		}
		if choice, ok := optionIndex(value); ok {
			out[uint(id)] = choice
		}
	}
	return out
}

func optionIndex(v interface{}) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case int64:
		return int(t), true
	case uint:
		return int(t), true
	case float64:
		if t != math.Trunc(t) {
			return 0, false
		}
		return int(t), true
	case json.Number:
		n, err := t.Int64()
		return int(n), err == nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		return n, err == nil
	}
	return 0, false
}

func buildQuestions(in QuizInput) ([]models.QuizQuestion, int, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, 0, apperr.Validation("Quiz title is required")
	}
	if len(in.Questions) == 0 {
		return nil, 0, apperr.Validation("A quiz needs at least one question")
	}
	questions := make([]models.QuizQuestion, 0, len(in.Questions))
	total := 0
	for i, q := range in.Questions {
		n := i + 1
		switch {
		case strings.TrimSpace(q.QuestionText) == "":
			return nil, 0, apperr.Validation("Question %d: text is required", n)
		case len(q.Options) < 2:
			return nil, 0, apperr.Validation("Question %d: at least two options are required", n)
		case q.CorrectOptionIndex < 0 || q.CorrectOptionIndex >= len(q.Options):
			return nil, 0, apperr.Validation("Question %d: correct option index out of range", n)
		case q.Points < 0:
			return nil, 0, apperr.Validation("Question %d: points must be at least 1", n)
		}
		points := q.Points
		if points == 0 {
			points = 1
		}
		total += points
		questions = append(questions, models.QuizQuestion{
			QuestionText:       strings.TrimSpace(q.QuestionText),
			Options:            datatypes.NewJSONSlice(q.Options),
			CorrectOptionIndex: q.CorrectOptionIndex,
			Points:             points,
			Order:              n,
		})
	}

	passing := int(math.Ceil(float64(total) * DefaultPassingRatio))
	if in.PassingScore != nil {
		passing = *in.PassingScore
	}
	if passing < 0 || passing > total {
		return nil, 0, apperr.Validation("Passing score must be between 0 and %d", total)
	}
	return questions, passing, nil
}

func loadQuiz(db *gorm.DB, quizID uint) (*models.Quiz, error) {
	var quiz models.Quiz
	err := db.Preload("Questions", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("sort_order ASC, id ASC")
	}).First(&quiz, quizID).Error
	if err != nil {
		return nil, notFoundOr(err, "Quiz not found")
	}
	return &quiz, nil
}

func requireEnrollmentForLesson(db *gorm.DB, studentID, lessonID uint) error {
	courseID, err := courseIDForLesson(db, lessonID)
	if err != nil {
		return err
	}
	var count int64
	if err := db.Model(&models.Enrollment{}).
		Where("student_id = ? AND course_id = ?", studentID, courseID).
		Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return apperr.Forbidden("You are not enrolled in this course")
	}
	return nil
}
