package repository

import (
	"github.com/yourusername/courseward-api/internal/domain/entity"
)

// AttemptRepository определяет методы для работы с попытками прохождения викторин
// и маркерами уведомлений.
type AttemptRepository interface {
	// CreateWithAnswers атомарно создает попытку, её ответы и unhandled-маркер
	// уведомления (одна транзакция). Повторная попытка по (user_id, quiz_id)
	// обязана вернуть apperrors.ErrConflict (unique violation 23505).
	CreateWithAnswers(attempt *entity.QuizAttempt) error
	GetByID(id uint) (*entity.QuizAttempt, error)
	GetByUserAndQuiz(userID, quizID uint) (*entity.QuizAttempt, error)
	ExistsByUserAndQuiz(userID, quizID uint) (bool, error)
	// GetByQuizID возвращает все попытки прохождения викторины
	GetByQuizID(quizID uint) ([]entity.QuizAttempt, error)
	// GetAnswers возвращает выбранные в попытке варианты ответов
	GetAnswers(attemptID uint) ([]entity.QuizAttemptAnswer, error)
	// SetFeedback точечно обновляет feedback попытки без полного Save
	SetFeedback(attemptID uint, feedback string) error

	// DistinctUnhandledQuizIDs возвращает ID викторин пользователя,
	// у которых есть хотя бы один необработанный маркер уведомления.
	DistinctUnhandledQuizIDs(userID uint) ([]uint, error)
	// MarkHandledByQuiz помечает обработанными все unhandled-маркеры попыток
	// данной викторины. Возвращает число обновленных строк.
	MarkHandledByQuiz(quizID uint) (int64, error)
}
