package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/yourusername/courseward-api/internal/domain/entity"
	"github.com/yourusername/courseward-api/internal/domain/repository"
	"github.com/yourusername/courseward-api/internal/llm"
	apperrors "github.com/yourusername/courseward-api/internal/pkg/errors"
)

// QuizSchemaProvider отдает викторину с вопросами и вариантами ответов
// (реализуется QuizService с кешированием схемы)
type QuizSchemaProvider interface {
	GetSchema(quizID uint) (*entity.Quiz, error)
}

// AnswerInput — выбранный вариант ответа на один вопрос
type AnswerInput struct {
	QuestionID     uint `json:"id_question" binding:"required"`
	AnswerOptionID uint `json:"id_answer" binding:"required"`
}

// SubmitResult — итог прохождения викторины
type SubmitResult struct {
	Attempt *entity.QuizAttempt `json:"attempt"`
	Ratio   float64             `json:"ratio"`
	Passed  bool                `json:"is_min_correct_ratio"`
}

// AttemptService предоставляет методы для прохождения викторин
// и получения результатов
type AttemptService struct {
	attemptRepo repository.AttemptRepository
	courseRepo  repository.CourseRepository
	schemas     QuizSchemaProvider
	completer   llm.Completer
}

// NewAttemptService создает новый сервис попыток
func NewAttemptService(
	attemptRepo repository.AttemptRepository,
	courseRepo repository.CourseRepository,
	schemas QuizSchemaProvider,
	completer llm.Completer,
) *AttemptService {
	return &AttemptService{
		attemptRepo: attemptRepo,
		courseRepo:  courseRepo,
		schemas:     schemas,
		completer:   completer,
	}
}

// Submit засчитывает попытку прохождения викторины.
// Порядок фиксированный: попытка с ответами и маркером уведомления
// коммитится сразу после подсчета, и только затем делается best-effort
// генерация обратной связи. Сбой LLM оставляет зачтенную попытку
// с пустым feedback, а не откатывает её.
// Повторная попытка дает ErrConflict: предварительная проверка отсекает
// очевидные дубли, гонку закрывает уникальный индекс в БД.
func (s *AttemptService) Submit(ctx context.Context, userID, quizID uint, answers []AnswerInput) (*SubmitResult, error) {
	quiz, err := s.schemas.GetSchema(quizID)
	if err != nil {
		return nil, err
	}

	course, err := s.courseRepo.GetByID(quiz.CourseID)
	if err != nil {
		return nil, err
	}
	ok, err := s.courseRepo.IsOwnerOrMember(quiz.CourseID, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.ErrForbidden
	}

	taken, err := s.attemptRepo.ExistsByUserAndQuiz(userID, quizID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("%w: quiz already taken", apperrors.ErrConflict)
	}

	selections := make(map[uint]uint, len(answers))
	for _, a := range answers {
		selections[a.QuestionID] = a.AnswerOptionID
	}
	score := ScoreQuiz(quiz, selections)

	attempt := &entity.QuizAttempt{
		QuizID:         quizID,
		UserID:         userID,
		AttemptedAt:    time.Now().UTC(),
		CorrectAnswers: score.CorrectCount,
		TotalAnswers:   score.Total,
	}
	for _, a := range answers {
		attempt.Answers = append(attempt.Answers, entity.QuizAttemptAnswer{
			QuestionID:     a.QuestionID,
			AnswerOptionID: a.AnswerOptionID,
		})
	}

	if err := s.attemptRepo.CreateWithAnswers(attempt); err != nil {
		return nil, err
	}

	// Попытка зачтена. Дальше только обогащение.
	s.attachFeedback(ctx, course, quiz, attempt, score)

	return &SubmitResult{
		Attempt: attempt,
		Ratio:   score.Ratio,
		Passed:  score.Passed,
	}, nil
}

// attachFeedback генерирует и сохраняет обратную связь. Любой сбой
// здесь логируется и не влияет на результат попытки.
func (s *AttemptService) attachFeedback(ctx context.Context, course *entity.Course, quiz *entity.Quiz, attempt *entity.QuizAttempt, score ScoreResult) {
	prompt := BuildFeedbackPrompt(course, quiz, score.Questions)

	feedback, err := s.completer.Complete(ctx, []llm.Message{
		{Role: llm.RoleUser, Content: prompt},
	})
	if err != nil {
		log.Printf("[AttemptService] Не удалось сгенерировать обратную связь для попытки %d: %v", attempt.ID, err)
		return
	}

	if err := s.attemptRepo.SetFeedback(attempt.ID, feedback); err != nil {
		log.Printf("[AttemptService] Не удалось сохранить обратную связь попытки %d: %v", attempt.ID, err)
		return
	}
	attempt.Feedback = feedback
}

// GetResult возвращает попытку пользователя для викторины
func (s *AttemptService) GetResult(userID, quizID uint) (*entity.QuizAttempt, error) {
	return s.attemptRepo.GetByUserAndQuiz(userID, quizID)
}
