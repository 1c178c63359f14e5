package repository

import (
	"github.com/yourusername/courseward-api/internal/domain/entity"
)

// QuizRepository определяет методы для работы с викторинами
type QuizRepository interface {
	// CreateWithQuestions атомарно создает викторину вместе с вопросами
	// и вариантами ответов (одна транзакция).
	CreateWithQuestions(quiz *entity.Quiz) error
	GetByID(id uint) (*entity.Quiz, error)
	GetByCourseID(courseID uint) ([]entity.Quiz, error)
	// GetWithQuestions возвращает викторину вместе с вопросами и вариантами ответов
	GetWithQuestions(id uint) (*entity.Quiz, error)
	Delete(id uint) error
}
