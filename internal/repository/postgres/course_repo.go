package postgres

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/yourusername/courseward-api/internal/domain/entity"
	apperrors "github.com/yourusername/courseward-api/internal/pkg/errors"
)

// CourseRepo реализует repository.CourseRepository
type CourseRepo struct {
	db *gorm.DB
}

// NewCourseRepo создает новый репозиторий курсов
func NewCourseRepo(db *gorm.DB) *CourseRepo {
	return &CourseRepo{db: db}
}

// Create создает новый курс
func (r *CourseRepo) Create(course *entity.Course) error {
	return r.db.Create(course).Error
}

// GetByID возвращает курс по ID
func (r *CourseRepo) GetByID(id uint) (*entity.Course, error) {
	var course entity.Course
	err := r.db.First(&course, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &course, nil
}

// GetByOwner возвращает курсы, созданные пользователем
func (r *CourseRepo) GetByOwner(ownerID uint) ([]entity.Course, error) {
	var courses []entity.Course
	err := r.db.Where("owner_id = ?", ownerID).Order("id").Find(&courses).Error
	if err != nil {
		return nil, err
	}
	return courses, nil
}

// GetByMember возвращает курсы, в которых пользователь состоит участником
func (r *CourseRepo) GetByMember(userID uint) ([]entity.Course, error) {
	var courses []entity.Course
	err := r.db.
		Joins("JOIN course_members ON course_members.course_id = courses.id").
		Where("course_members.user_id = ?", userID).
		Order("courses.id").
		Find(&courses).Error
	if err != nil {
		return nil, err
	}
	return courses, nil
}

// Delete удаляет курс. Викторины, членства и файлы удаляются каскадно (FK в миграциях).
func (r *CourseRepo) Delete(id uint) error {
	return r.db.Delete(&entity.Course{}, id).Error
}

// AddMember создает членство в курсе.
// Unique violation по idx_course_member транслируется в ErrConflict:
// именно констрейнт, а не предварительная проверка, закрывает гонку двойного приглашения.
func (r *CourseRepo) AddMember(member *entity.CourseMember) error {
	err := r.db.Create(member).Error
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: user #%d is already a member of course #%d", apperrors.ErrConflict, member.UserID, member.CourseID)
		}
		return err
	}
	return nil
}

// RemoveMember удаляет членство пользователя в курсе
func (r *CourseRepo) RemoveMember(courseID, userID uint) error {
	return r.db.
		Where("course_id = ? AND user_id = ?", courseID, userID).
		Delete(&entity.CourseMember{}).Error
}

// IsMember проверяет членство пользователя в курсе
func (r *CourseRepo) IsMember(courseID, userID uint) (bool, error) {
	var count int64
	err := r.db.Model(&entity.CourseMember{}).
		Where("course_id = ? AND user_id = ?", courseID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// IsOwnerOrMember проверяет, что пользователь — владелец курса или его участник
func (r *CourseRepo) IsOwnerOrMember(courseID, userID uint) (bool, error) {
	var count int64
	err := r.db.Model(&entity.Course{}).
		Where("id = ? AND owner_id = ?", courseID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	if count > 0 {
		return true, nil
	}
	return r.IsMember(courseID, userID)
}

// GetMembers возвращает пользователей-участников курса (малый join, как в members by course)
func (r *CourseRepo) GetMembers(courseID uint) ([]entity.User, error) {
	var users []entity.User
	err := r.db.Model(&entity.User{}).
		Joins("JOIN course_members ON course_members.user_id = users.id").
		Where("course_members.course_id = ?", courseID).
		Order("users.id").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}
