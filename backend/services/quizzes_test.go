package services

import (
	"context"
	"encoding/json"
	"strconv"
	"testing"

	"courseplatform/backend/apperr"
	"courseplatform/backend/models"
	"courseplatform/backend/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func weightedQuiz(passing int) QuizInput {
	return QuizInput{
		Title:        "Chords",
		PassingScore: &passing,
		Questions: []QuestionInput{
			{QuestionText: "C major?", Options: []string{"C-E-G", "C-Eb-G"}, CorrectOptionIndex: 0, Points: 1},
			{QuestionText: "A minor?", Options: []string{"A-C#-E", "A-C-E"}, CorrectOptionIndex: 1, Points: 2},
			{QuestionText: "G7?", Options: []string{"G-B-D-F", "G-B-D", "G-Bb-D"}, CorrectOptionIndex: 0, Points: 3},
		},
	}
}

type quizFixture struct {
	quizzes  *QuizService
	learning *LearningService
	teacher  *models.User
	student  *models.User
	lesson   models.Lesson
	quiz     *models.Quiz
}

func newQuizFixture(t *testing.T) *quizFixture {
	t.Helper()
	db := newTestDB(t)
	f := &quizFixture{
		quizzes:  NewQuizService(db, utils.NopLogger()),
		learning: NewLearningService(db, utils.NopLogger()),
		teacher:  seedUser(t, db, models.RoleTeacher, 1000),
		student:  seedUser(t, db, models.RoleStudent, 1000),
	}
	course, lessons := seedCourse(t, db, f.teacher.ID, courseSeed{published: true, modules: []int{2}})
	f.lesson = lessons[0]
	_, err := f.learning.Enroll(context.Background(), f.student.ID, course.ID)
	require.NoError(t, err)
	f.quiz, err = f.quizzes.CreateQuiz(context.Background(), teacherActor(f.teacher), f.lesson.ID, weightedQuiz(4))
	require.NoError(t, err)
	require.Len(t, f.quiz.Questions, 3)
	return f
}

func (f *quizFixture) answers(choices ...int) map[string]interface{} {
	out := map[string]interface{}{}
	for i, q := range f.quiz.Questions {
		if choices[i] >= 0 {
			out[strconv.FormatUint(uint64(q.ID), 10)] = choices[i]
		}
	}
	return out
}

func TestSubmitQuizScoresByPoints(t *testing.T) {
	f := newQuizFixture(t)
	ctx := context.Background()

	// first two right: 1 + 2 points, below the passing score of 4
	attempt, err := f.quizzes.SubmitQuiz(ctx, f.student.ID, f.quiz.ID, f.answers(0, 1, 2))
	require.NoError(t, err)
	assert.Equal(t, 3, attempt.Score)
	assert.Equal(t, 6, attempt.TotalScore)
	assert.False(t, attempt.Passed)

	// last two right: 2 + 3 points
	attempt, err = f.quizzes.SubmitQuiz(ctx, f.student.ID, f.quiz.ID, f.answers(1, 1, 0))
	require.NoError(t, err)
	assert.Equal(t, 5, attempt.Score)
	assert.True(t, attempt.Passed)

	attempts, err := f.quizzes.QuizAttempts(ctx, f.student.ID, f.quiz.ID)
	require.NoError(t, err)
	assert.Len(t, attempts, 2)
}

func TestSubmitQuizDoesNotCompleteTheLesson(t *testing.T) {
	f := newQuizFixture(t)
	ctx := context.Background()

	_, err := f.quizzes.SubmitQuiz(ctx, f.student.ID, f.quiz.ID, f.answers(0, 1, 0))
	require.NoError(t, err)

	var enrollment models.Enrollment
	require.NoError(t, f.learning.db.Where("student_id = ?", f.student.ID).First(&enrollment).Error)
	assert.False(t, enrollment.HasCompleted(f.lesson.ID))
	assert.Equal(t, 0.0, enrollment.ProgressPercent)
}

func TestSubmitQuizUnansweredQuestionsScoreZero(t *testing.T) {
	f := newQuizFixture(t)
	attempt, err := f.quizzes.SubmitQuiz(context.Background(), f.student.ID, f.quiz.ID, map[string]interface{}{})
	require.NoError(t, err)
	assert.Equal(t, 0, attempt.Score)
	assert.Equal(t, 6, attempt.TotalScore)
	assert.False(t, attempt.Passed)
}

func TestSubmitQuizRequiresEnrollment(t *testing.T) {
	f := newQuizFixture(t)
	outsider := seedUser(t, f.quizzes.db, models.RoleStudent, 1000)
	_, err := f.quizzes.SubmitQuiz(context.Background(), outsider.ID, f.quiz.ID, f.answers(0, 1, 0))
	assert.True(t, apperr.Is(err, apperr.KindForbidden))
}

func TestCreateSecondQuizOnLessonIsRejected(t *testing.T) {
	f := newQuizFixture(t)
	_, err := f.quizzes.CreateQuiz(context.Background(), teacherActor(f.teacher), f.lesson.ID, weightedQuiz(2))
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestCreateQuizByAnotherTeacherIsForbidden(t *testing.T) {
	f := newQuizFixture(t)
	other := seedUser(t, f.quizzes.db, models.RoleTeacher, 1000)
	var lesson models.Lesson
	require.NoError(t, f.quizzes.db.Where("id <> ?", f.lesson.ID).First(&lesson).Error)

	_, err := f.quizzes.CreateQuiz(context.Background(), teacherActor(other), lesson.ID, weightedQuiz(2))
	assert.True(t, apperr.Is(err, apperr.KindForbidden))
}

func TestUpdateQuizReplacesQuestions(t *testing.T) {
	f := newQuizFixture(t)
	in := QuizInput{
		Title: "Scales",
		Questions: []QuestionInput{
			{QuestionText: "Notes in a major scale?", Options: []string{"7", "5"}, CorrectOptionIndex: 0, Points: 10},
		},
	}
	quiz, err := f.quizzes.UpdateQuiz(context.Background(), teacherActor(f.teacher), f.quiz.ID, in)
	require.NoError(t, err)
	assert.Equal(t, f.quiz.ID, quiz.ID)
	assert.Equal(t, 7, quiz.PassingScore)

	stored, err := f.quizzes.GetQuiz(context.Background(), teacherActor(f.teacher), f.quiz.ID)
	require.NoError(t, err)
	require.Len(t, stored.Questions, 1)
	assert.Equal(t, "Scales", stored.Title)
}

func TestBuildQuestionsValidation(t *testing.T) {
	tooHigh := 7
	cases := map[string]QuizInput{
		"no title":        {Questions: weightedQuiz(1).Questions},
		"no questions":    {Title: "Empty"},
		"one option":      {Title: "x", Questions: []QuestionInput{{QuestionText: "q", Options: []string{"a"}}}},
		"index too large": {Title: "x", Questions: []QuestionInput{{QuestionText: "q", Options: []string{"a", "b"}, CorrectOptionIndex: 2}}},
		"negative points": {Title: "x", Questions: []QuestionInput{{QuestionText: "q", Options: []string{"a", "b"}, Points: -1}}},
		"passing > total": {Title: "x", PassingScore: &tooHigh, Questions: weightedQuiz(1).Questions},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, _, err := buildQuestions(in)
			assert.True(t, apperr.Is(err, apperr.KindValidation))
		})
	}

	questions, passing, err := buildQuestions(QuizInput{Title: "x", Questions: []QuestionInput{
		{QuestionText: "q", Options: []string{"a", "b"}},
		{QuestionText: "r", Options: []string{"a", "b"}, Points: 2},
	}})
	require.NoError(t, err)
	assert.Equal(t, 1, questions[0].Points)
	assert.Equal(t, 3, passing)
}

func TestNormalizeAnswersAcceptsNumbersAndStrings(t *testing.T) {
	got := normalizeAnswers(map[string]interface{}{
		"1":    float64(2),
		"2":    "1",
		"3":    json.Number("0"),
		"4":    1.5,
		"five": 1,
		"6":    true,
	})
	assert.Equal(t, map[uint]int{1: 2, 2: 1, 3: 0}, got)
}
