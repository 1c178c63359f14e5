package service

import (
	"fmt"
	"strings"

	"github.com/yourusername/courseward-api/internal/domain/entity"
	"github.com/yourusername/courseward-api/internal/domain/repository"
	apperrors "github.com/yourusername/courseward-api/internal/pkg/errors"
)

// UserService предоставляет методы для работы с профилями пользователей
type UserService struct {
	userRepo repository.UserRepository
}

// NewUserService создает новый сервис пользователей
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// GetByID возвращает пользователя по ID
func (s *UserService) GetByID(id uint) (*entity.User, error) {
	return s.userRepo.GetByID(id)
}

// UpdateProfile обновляет имя и фамилию пользователя
func (s *UserService) UpdateProfile(userID uint, firstName, lastName string) (*entity.User, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}

	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	if len(firstName) > 100 || len(lastName) > 100 {
		return nil, fmt.Errorf("%w: name is too long", apperrors.ErrValidation)
	}

	user.FirstName = firstName
	user.LastName = lastName
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}
