package controllers

import (
	"courseplatform/backend/middleware"
	"courseplatform/backend/models"
	"courseplatform/backend/services"
	"courseplatform/backend/utils"

	"github.com/gofiber/fiber/v2"
)

// QuizzesController serves quiz authoring for staff and quiz taking for students.
type QuizzesController struct {
	Quizzes *services.QuizService
}

func NewQuizzesController(quizzes *services.QuizService) *QuizzesController {
	return &QuizzesController{Quizzes: quizzes}
}

type QuestionRequest struct {
	QuestionText       string   `json:"question_text" validate:"required"`
	Options            []string `json:"options" validate:"required,min=2,dive,required"`
	CorrectOptionIndex int      `json:"correct_option_index" validate:"gte=0"`
	Points             int      `json:"points" validate:"gte=0"`
}

type QuizRequest struct {
	Title        string            `json:"title" validate:"required,max=200"`
	PassingScore *int              `json:"passing_score" validate:"omitempty,gte=0"`
	Questions    []QuestionRequest `json:"questions" validate:"required,min=1,dive"`
}

type SubmitQuizRequest struct {
	Answers map[string]interface{} `json:"answers"`
}

// StudentQuestion hides the correct option.
type StudentQuestion struct {
	ID           uint     `json:"id"`
	QuestionText string   `json:"question_text"`
	Options      []string `json:"options"`
	Points       int      `json:"points"`
}

type StudentQuiz struct {
	ID           uint              `json:"id"`
	LessonID     uint              `json:"lesson_id"`
	Title        string            `json:"title"`
	PassingScore int               `json:"passing_score"`
	TotalPoints  int               `json:"total_points"`
	Questions    []StudentQuestion `json:"questions"`
}

func studentQuiz(quiz *models.Quiz) StudentQuiz {
	out := StudentQuiz{
		ID:           quiz.ID,
		LessonID:     quiz.LessonID,
		Title:        quiz.Title,
		PassingScore: quiz.PassingScore,
		TotalPoints:  quiz.TotalPoints(),
		Questions:    make([]StudentQuestion, 0, len(quiz.Questions)),
	}
	for _, q := range quiz.Questions {
		out.Questions = append(out.Questions, StudentQuestion{
			ID:           q.ID,
			QuestionText: q.QuestionText,
			Options:      q.Options,
			Points:       q.Points,
		})
	}
	return out
}

func (r QuizRequest) input() services.QuizInput {
	in := services.QuizInput{Title: r.Title, PassingScore: r.PassingScore}
	for _, q := range r.Questions {
		in.Questions = append(in.Questions, services.QuestionInput{
			QuestionText:       q.QuestionText,
			Options:            q.Options,
			CorrectOptionIndex: q.CorrectOptionIndex,
			Points:             q.Points,
		})
	}
	return in
}

// CreateQuiz godoc
// @Summary Attach a quiz to a lesson
// @Description passing_score defaults to 70% of the total points
// @Tags quizzes
// @Accept json
// @Produce json
// @Param id path int true "Lesson ID"
// @Param input body QuizRequest true "Quiz"
// @Success 201 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /courses/lessons/{id}/quiz [post]
func (qc *QuizzesController) CreateQuiz(c *fiber.Ctx) error {
	lessonID, err := paramID(c, "id")
	if err != nil {
		return utils.HandleError(c, err)
	}
	var input QuizRequest
	if ok, err := bindJSON(c, &input); !ok {
		return err
	}
	quiz, err := qc.Quizzes.CreateQuiz(c.UserContext(), middleware.CurrentActor(c), lessonID, input.input())
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.Created(c, quiz)
}

func (qc *QuizzesController) GetQuiz(c *fiber.Ctx) error {
	quizID, err := paramID(c, "id")
	if err != nil {
		return utils.HandleError(c, err)
	}
	quiz, err := qc.Quizzes.GetQuiz(c.UserContext(), middleware.CurrentActor(c), quizID)
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, quiz)
}

func (qc *QuizzesController) UpdateQuiz(c *fiber.Ctx) error {
	quizID, err := paramID(c, "id")
	if err != nil {
		return utils.HandleError(c, err)
	}
	var input QuizRequest
	if ok, err := bindJSON(c, &input); !ok {
		return err
	}
	quiz, err := qc.Quizzes.UpdateQuiz(c.UserContext(), middleware.CurrentActor(c), quizID, input.input())
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, quiz)
}

func (qc *QuizzesController) DeleteQuiz(c *fiber.Ctx) error {
	quizID, err := paramID(c, "id")
	if err != nil {
		return utils.HandleError(c, err)
	}
	if err := qc.Quizzes.DeleteQuiz(c.UserContext(), middleware.CurrentActor(c), quizID); err != nil {
		return utils.HandleError(c, err)
	}
	return utils.Message(c, "Quiz deleted", nil)
}

// StudentQuiz returns a quiz without its answer key.
func (qc *QuizzesController) StudentQuiz(c *fiber.Ctx) error {
	quizID, err := paramID(c, "id")
	if err != nil {
		return utils.HandleError(c, err)
	}
	quiz, err := qc.Quizzes.QuizForStudent(c.UserContext(), middleware.CurrentUser(c).ID, quizID)
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, studentQuiz(quiz))
}

// SubmitQuiz godoc
// @Summary Submit quiz answers
// @Description answers maps question id to the chosen option index; every submission is a new attempt
// @Tags quizzes
// @Accept json
// @Produce json
// @Param id path int true "Quiz ID"
// @Param input body SubmitQuizRequest true "Answers"
// @Success 201 {object} utils.SuccessResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /students/quizzes/{id}/submit [post]
func (qc *QuizzesController) SubmitQuiz(c *fiber.Ctx) error {
	quizID, err := paramID(c, "id")
	if err != nil {
		return utils.HandleError(c, err)
	}
	var input SubmitQuizRequest
	if ok, err := bindJSON(c, &input); !ok {
		return err
	}
	attempt, err := qc.Quizzes.SubmitQuiz(c.UserContext(), middleware.CurrentUser(c).ID, quizID, input.Answers)
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.Created(c, attempt)
}

func (qc *QuizzesController) Attempts(c *fiber.Ctx) error {
	quizID, err := paramID(c, "id")
	if err != nil {
		return utils.HandleError(c, err)
	}
	attempts, err := qc.Quizzes.QuizAttempts(c.UserContext(), middleware.CurrentUser(c).ID, quizID)
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, attempts)
}
