package repository

import (
	"github.com/yourusername/courseward-api/internal/domain/entity"
)

// FileRepository определяет методы для работы с записями загруженных документов
type FileRepository interface {
	Create(file *entity.CourseFile) error
	GetByID(id uint) (*entity.CourseFile, error)
	GetByCourseID(courseID uint) ([]entity.CourseFile, error)
	Delete(id uint) error
}
