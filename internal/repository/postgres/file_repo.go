package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/yourusername/courseward-api/internal/domain/entity"
	apperrors "github.com/yourusername/courseward-api/internal/pkg/errors"
)

// FileRepo реализует repository.FileRepository
type FileRepo struct {
	db *gorm.DB
}

// NewFileRepo создает новый репозиторий записей документов
func NewFileRepo(db *gorm.DB) *FileRepo {
	return &FileRepo{db: db}
}

// Create создает запись о загруженном документе
func (r *FileRepo) Create(file *entity.CourseFile) error {
	return r.db.Create(file).Error
}

// GetByID возвращает запись документа по ID
func (r *FileRepo) GetByID(id uint) (*entity.CourseFile, error) {
	var file entity.CourseFile
	err := r.db.First(&file, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &file, nil
}

// GetByCourseID возвращает все документы курса
func (r *FileRepo) GetByCourseID(courseID uint) ([]entity.CourseFile, error) {
	var files []entity.CourseFile
	err := r.db.Where("course_id = ?", courseID).Order("id").Find(&files).Error
	if err != nil {
		return nil, err
	}
	return files, nil
}

// Delete удаляет запись документа
func (r *FileRepo) Delete(id uint) error {
	return r.db.Delete(&entity.CourseFile{}, id).Error
}
