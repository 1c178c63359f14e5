package postgres

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/yourusername/courseward-api/internal/domain/entity"
	apperrors "github.com/yourusername/courseward-api/internal/pkg/errors"
)

// AttemptRepo реализует repository.AttemptRepository
type AttemptRepo struct {
	db *gorm.DB
}

// NewAttemptRepo создает новый репозиторий попыток
func NewAttemptRepo(db *gorm.DB) *AttemptRepo {
	return &AttemptRepo{db: db}
}

// CreateWithAnswers атомарно создает попытку, её ответы и unhandled-маркер уведомления.
// Уникальность (user_id, quiz_id) гарантирует idx_attempt_user_quiz:
// - 23505 (unique violation) → ErrConflict ("уже проходил")
// - Другая DB ошибка → возвращается как есть
func (r *AttemptRepo) CreateWithAnswers(attempt *entity.QuizAttempt) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(attempt).Error; err != nil {
			return err
		}
		marker := &entity.HandleQuizAttempt{AttemptID: attempt.ID, Handled: false}
		return tx.Create(marker).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: quiz #%d already taken by user #%d", apperrors.ErrConflict, attempt.QuizID, attempt.UserID)
		}
		return err
	}
	return nil
}

// GetByID возвращает попытку по ID
func (r *AttemptRepo) GetByID(id uint) (*entity.QuizAttempt, error) {
	var attempt entity.QuizAttempt
	err := r.db.First(&attempt, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &attempt, nil
}

// GetByUserAndQuiz возвращает попытку пользователя для викторины
func (r *AttemptRepo) GetByUserAndQuiz(userID, quizID uint) (*entity.QuizAttempt, error) {
	var attempt entity.QuizAttempt
	err := r.db.
		Where("user_id = ? AND quiz_id = ?", userID, quizID).
		Order("attempted_at DESC").
		First(&attempt).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &attempt, nil
}

// ExistsByUserAndQuiz проверяет, проходил ли пользователь викторину
func (r *AttemptRepo) ExistsByUserAndQuiz(userID, quizID uint) (bool, error) {
	var count int64
	err := r.db.Model(&entity.QuizAttempt{}).
		Where("user_id = ? AND quiz_id = ?", userID, quizID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetByQuizID возвращает все попытки прохождения викторины
func (r *AttemptRepo) GetByQuizID(quizID uint) ([]entity.QuizAttempt, error) {
	var attempts []entity.QuizAttempt
	err := r.db.Where("quiz_id = ?", quizID).Order("attempted_at").Find(&attempts).Error
	if err != nil {
		return nil, err
	}
	return attempts, nil
}

// GetAnswers возвращает выбранные в попытке варианты ответов
func (r *AttemptRepo) GetAnswers(attemptID uint) ([]entity.QuizAttemptAnswer, error) {
	var answers []entity.QuizAttemptAnswer
	err := r.db.Where("attempt_id = ?", attemptID).Order("id").Find(&answers).Error
	if err != nil {
		return nil, err
	}
	return answers, nil
}

// SetFeedback точечно обновляет feedback попытки без полного Save
func (r *AttemptRepo) SetFeedback(attemptID uint, feedback string) error {
	return r.db.Model(&entity.QuizAttempt{}).
		Where("id = ?", attemptID).
		Update("feedback", feedback).
		Error
}

// DistinctUnhandledQuizIDs возвращает ID викторин пользователя с необработанными маркерами
func (r *AttemptRepo) DistinctUnhandledQuizIDs(userID uint) ([]uint, error) {
	var quizIDs []uint
	err := r.db.Model(&entity.QuizAttempt{}).
		Distinct("quiz_attempts.quiz_id").
		Joins("JOIN handle_quiz_attempts ON handle_quiz_attempts.attempt_id = quiz_attempts.id").
		Where("quiz_attempts.user_id = ? AND handle_quiz_attempts.handled = ?", userID, false).
		Pluck("quiz_attempts.quiz_id", &quizIDs).Error
	if err != nil {
		return nil, err
	}
	return quizIDs, nil
}

// MarkHandledByQuiz помечает обработанными все unhandled-маркеры попыток данной викторины
func (r *AttemptRepo) MarkHandledByQuiz(quizID uint) (int64, error) {
	result := r.db.Model(&entity.HandleQuizAttempt{}).
		Where("handled = ? AND attempt_id IN (?)", false,
			r.db.Model(&entity.QuizAttempt{}).Select("id").Where("quiz_id = ?", quizID)).
		Update("handled", true)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
