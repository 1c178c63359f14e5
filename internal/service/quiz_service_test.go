package service

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/courseward-api/internal/domain/entity"
	apperrors "github.com/yourusername/courseward-api/internal/pkg/errors"
)

// jsonCache — кеш с настоящей JSON-сериализацией: значения проходят
// Marshal/Unmarshal так же, как в Redis-репозитории.
type jsonCache struct {
	data map[string][]byte
}

func newJSONCache() *jsonCache {
	return &jsonCache{data: make(map[string][]byte)}
}

func (c *jsonCache) Set(key string, value interface{}, _ time.Duration) error {
	c.data[key] = []byte(fmt.Sprint(value))
	return nil
}

func (c *jsonCache) Get(key string) (string, error) {
	v, ok := c.data[key]
	if !ok {
		return "", apperrors.ErrNotFound
	}
	return string(v), nil
}

func (c *jsonCache) Delete(key string) error {
	delete(c.data, key)
	return nil
}

func (c *jsonCache) SetJSON(key string, value interface{}, _ time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.data[key] = b
	return nil
}

func (c *jsonCache) GetJSON(key string, dest interface{}) error {
	b, ok := c.data[key]
	if !ok {
		return apperrors.ErrNotFound
	}
	return json.Unmarshal(b, dest)
}

func (c *jsonCache) SetNX(key string, value interface{}, _ time.Duration) (bool, error) {
	if _, ok := c.data[key]; ok {
		return false, nil
	}
	c.data[key] = []byte(fmt.Sprint(value))
	return true, nil
}

func TestQuizService_GetSchemaCachePreservesAnswerKey(t *testing.T) {
	// Arrange: схема уходит в кеш через настоящий JSON-раунд-трип.
	// Флаги is_correct скрыты от API (json:"-"), но ключ правильных
	// ответов обязан пережить кеширование.
	quizRepo := new(MockQuizRepository)
	courseRepo := new(MockCourseRepository)
	attemptRepo := new(MockAttemptRepository)
	userRepo := new(MockUserRepository)
	cache := newJSONCache()

	quizRepo.On("GetWithQuestions", uint(1)).Return(testQuiz(0.5), nil).Once()

	svc := NewQuizService(quizRepo, courseRepo, attemptRepo, userRepo, cache)

	// Act: первый вызов наполняет кеш, второй обслуживается из него
	first, err := svc.GetSchema(1)
	require.NoError(t, err)
	second, err := svc.GetSchema(1)
	require.NoError(t, err)

	// Assert: репозиторий опрошен ровно один раз, и у кешированной
	// схемы сохранились правильные варианты
	quizRepo.AssertExpectations(t)
	require.Len(t, second.Questions, len(first.Questions))
	for i, q := range second.Questions {
		correct := q.CorrectOption()
		require.NotNil(t, correct, "вопрос %d потерял правильный вариант в кеше", q.ID)
		assert.Equal(t, first.Questions[i].CorrectOption().ID, correct.ID)
	}

	// Подсчет по кешированной схеме: все ответы верные — полный зачет
	result := ScoreQuiz(second, map[uint]uint{10: 100, 11: 111})
	assert.Equal(t, 2, result.CorrectCount)
	assert.Equal(t, 2, result.Total)
	assert.True(t, result.Passed)
}

func TestQuizService_DeleteInvalidatesSchemaCache(t *testing.T) {
	// Arrange
	quizRepo := new(MockQuizRepository)
	courseRepo := new(MockCourseRepository)
	attemptRepo := new(MockAttemptRepository)
	userRepo := new(MockUserRepository)
	cache := newJSONCache()

	quiz := testQuiz(0.5)
	quiz.CourseID = 3
	quizRepo.On("GetWithQuestions", uint(1)).Return(quiz, nil).Once()
	quizRepo.On("GetByID", uint(1)).Return(quiz, nil)
	quizRepo.On("Delete", uint(1)).Return(nil)
	courseRepo.On("GetByID", uint(3)).Return(&entity.Course{ID: 3, OwnerID: 7}, nil)

	svc := NewQuizService(quizRepo, courseRepo, attemptRepo, userRepo, cache)

	_, err := svc.GetSchema(1)
	require.NoError(t, err)
	require.Contains(t, cache.data, quizSchemaKey(1))

	// Act
	require.NoError(t, svc.Delete(1, 7))

	// Assert
	assert.NotContains(t, cache.data, quizSchemaKey(1))
}

func TestQuizService_GetCourseProgress(t *testing.T) {
	// Arrange: две викторины, первая пройдена полностью, вторая не начата
	quizRepo := new(MockQuizRepository)
	courseRepo := new(MockCourseRepository)
	attemptRepo := new(MockAttemptRepository)
	userRepo := new(MockUserRepository)

	courseRepo.On("GetByID", uint(3)).Return(&entity.Course{ID: 3, Title: "Анализ", OwnerID: 1}, nil)
	courseRepo.On("IsOwnerOrMember", uint(3), uint(5)).Return(true, nil)
	quizRepo.On("GetByCourseID", uint(3)).Return([]entity.Quiz{
		{ID: 1, CourseID: 3, Title: "Пределы", MinCorrectRatio: 0.5},
		{ID: 2, CourseID: 3, Title: "Производные", MinCorrectRatio: 0.5},
	}, nil)
	attemptRepo.On("GetByUserAndQuiz", uint(5), uint(1)).Return(&entity.QuizAttempt{
		QuizID: 1, UserID: 5, CorrectAnswers: 2, TotalAnswers: 2,
	}, nil)
	attemptRepo.On("GetByUserAndQuiz", uint(5), uint(2)).Return(nil, apperrors.ErrNotFound)

	svc := NewQuizService(quizRepo, courseRepo, attemptRepo, userRepo, newJSONCache())

	// Act
	progress, err := svc.GetCourseProgress(3, 5)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "Анализ", progress.Title)
	require.Len(t, progress.Quizzes, 2)

	done := progress.Quizzes[0]
	assert.True(t, done.IsComplete)
	require.NotNil(t, done.CorrectRatio)
	assert.InDelta(t, 1.0, *done.CorrectRatio, 1e-9)

	untouched := progress.Quizzes[1]
	assert.False(t, untouched.IsComplete)
	assert.Nil(t, untouched.CorrectRatio)
}

func TestQuizService_GetCourseProgressForbiddenForOutsider(t *testing.T) {
	quizRepo := new(MockQuizRepository)
	courseRepo := new(MockCourseRepository)
	attemptRepo := new(MockAttemptRepository)
	userRepo := new(MockUserRepository)

	courseRepo.On("GetByID", uint(3)).Return(&entity.Course{ID: 3, OwnerID: 1}, nil)
	courseRepo.On("IsOwnerOrMember", uint(3), uint(9)).Return(false, nil)

	svc := NewQuizService(quizRepo, courseRepo, attemptRepo, userRepo, newJSONCache())

	_, err := svc.GetCourseProgress(3, 9)

	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}
