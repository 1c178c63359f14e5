package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/yourusername/courseward-api/internal/domain/entity"
	"github.com/yourusername/courseward-api/internal/domain/repository"
	apperrors "github.com/yourusername/courseward-api/internal/pkg/errors"
	"github.com/yourusername/courseward-api/internal/rag/vectorstore"
)

// CourseService предоставляет методы для работы с курсами и членством
type CourseService struct {
	courseRepo  repository.CourseRepository
	userRepo    repository.UserRepository
	vectorStore vectorstore.Store
	emailSvc    EmailService
}

// NewCourseService создает новый сервис курсов
func NewCourseService(
	courseRepo repository.CourseRepository,
	userRepo repository.UserRepository,
	vectorStore vectorstore.Store,
	emailSvc EmailService,
) *CourseService {
	return &CourseService{
		courseRepo:  courseRepo,
		userRepo:    userRepo,
		vectorStore: vectorStore,
		emailSvc:    emailSvc,
	}
}

// Create создает курс от имени владельца
func (s *CourseService) Create(ownerID uint, title, description string) (*entity.Course, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: course title is required", apperrors.ErrValidation)
	}

	course := &entity.Course{
		Title:       title,
		Description: description,
		OwnerID:     ownerID,
	}
	if err := s.courseRepo.Create(course); err != nil {
		return nil, err
	}

	log.Printf("[CourseService] Создан курс id=%d owner=%d", course.ID, ownerID)
	return course, nil
}

// GetForUser возвращает курс, если пользователь — владелец или участник
func (s *CourseService) GetForUser(courseID, userID uint) (*entity.Course, error) {
	course, err := s.courseRepo.GetByID(courseID)
	if err != nil {
		return nil, err
	}

	ok, err := s.courseRepo.IsOwnerOrMember(courseID, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.ErrForbidden
	}
	return course, nil
}

// ListForUser возвращает курсы пользователя: созданные им и те, где он участник
func (s *CourseService) ListForUser(userID uint) ([]entity.Course, error) {
	owned, err := s.courseRepo.GetByOwner(userID)
	if err != nil {
		return nil, err
	}
	member, err := s.courseRepo.GetByMember(userID)
	if err != nil {
		return nil, err
	}
	return append(owned, member...), nil
}

// Delete удаляет курс вместе с коллекцией векторного индекса.
// Разрешено только владельцу.
func (s *CourseService) Delete(ctx context.Context, courseID, userID uint) error {
	course, err := s.courseRepo.GetByID(courseID)
	if err != nil {
		return err
	}
	if course.OwnerID != userID {
		return apperrors.ErrForbidden
	}

	if err := s.courseRepo.Delete(courseID); err != nil {
		return err
	}

	// Чанки документов курса больше никому не нужны
	if err := s.vectorStore.DeleteCollection(ctx, course.VectorCollection()); err != nil {
		log.Printf("[CourseService] Не удалось удалить коллекцию %s: %v", course.VectorCollection(), err)
	}
	return nil
}

// InviteByEmail добавляет пользователя в курс по email.
// Только владелец может приглашать. Неизвестный email — NotFound,
// повторное приглашение — Conflict. Письмо отправляется best-effort:
// его сбой не откатывает членство.
func (s *CourseService) InviteByEmail(ctx context.Context, courseID, inviterID uint, email string) (*entity.User, error) {
	course, err := s.courseRepo.GetByID(courseID)
	if err != nil {
		return nil, err
	}
	if course.OwnerID != inviterID {
		return nil, apperrors.ErrForbidden
	}

	invited, err := s.userRepo.GetByEmail(strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: no user with this email", apperrors.ErrNotFound)
		}
		return nil, err
	}

	if invited.ID == course.OwnerID {
		return nil, fmt.Errorf("%w: user owns this course", apperrors.ErrConflict)
	}

	member := &entity.CourseMember{CourseID: courseID, UserID: invited.ID}
	if err := s.courseRepo.AddMember(member); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, fmt.Errorf("%w: user is already a member", apperrors.ErrConflict)
		}
		return nil, err
	}

	inviter, err := s.userRepo.GetByID(inviterID)
	inviterName := "The course owner"
	if err == nil {
		inviterName = inviter.Username
	}
	if err := s.emailSvc.SendCourseInvitation(ctx, invited.Email, course.Title, inviterName); err != nil {
		log.Printf("[CourseService] Не удалось отправить приглашение на %s: %v", invited.Email, err)
	}

	return invited, nil
}

// RemoveMember исключает участника из курса. Разрешено владельцу
// или самому участнику.
func (s *CourseService) RemoveMember(courseID, actorID, memberID uint) error {
	course, err := s.courseRepo.GetByID(courseID)
	if err != nil {
		return err
	}
	if course.OwnerID != actorID && actorID != memberID {
		return apperrors.ErrForbidden
	}

	isMember, err := s.courseRepo.IsMember(courseID, memberID)
	if err != nil {
		return err
	}
	if !isMember {
		return fmt.Errorf("%w: user is not a member of this course", apperrors.ErrNotFound)
	}

	return s.courseRepo.RemoveMember(courseID, memberID)
}

// GetMembers возвращает участников курса (доступно владельцу и участникам)
func (s *CourseService) GetMembers(courseID, userID uint) ([]entity.User, error) {
	ok, err := s.courseRepo.IsOwnerOrMember(courseID, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.ErrForbidden
	}
	return s.courseRepo.GetMembers(courseID)
}
