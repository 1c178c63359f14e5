package repository

import (
	"github.com/yourusername/courseward-api/internal/domain/entity"
)

// CourseRepository определяет методы для работы с курсами и членством
type CourseRepository interface {
	Create(course *entity.Course) error
	GetByID(id uint) (*entity.Course, error)
	// GetByOwner возвращает курсы, созданные пользователем
	GetByOwner(ownerID uint) ([]entity.Course, error)
	// GetByMember возвращает курсы, в которых пользователь состоит участником
	GetByMember(userID uint) ([]entity.Course, error)
	Delete(id uint) error

	// AddMember создает членство. Дубликат по (course_id, user_id) обязан
	// вернуть apperrors.ErrConflict (unique violation 23505).
	AddMember(member *entity.CourseMember) error
	RemoveMember(courseID, userID uint) error
	IsMember(courseID, userID uint) (bool, error)
	// IsOwnerOrMember проверяет, что пользователь — владелец курса или его участник
	IsOwnerOrMember(courseID, userID uint) (bool, error)
	GetMembers(courseID uint) ([]entity.User, error)
}
