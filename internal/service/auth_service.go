package service

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/yourusername/courseward-api/internal/domain/entity"
	"github.com/yourusername/courseward-api/internal/domain/repository"
	apperrors "github.com/yourusername/courseward-api/internal/pkg/errors"
	"github.com/yourusername/courseward-api/pkg/auth"
)

// AuthService предоставляет методы для регистрации и входа пользователей
type AuthService struct {
	userRepo   repository.UserRepository
	jwtService *auth.JWTService
}

// NewAuthService создает новый сервис аутентификации
func NewAuthService(userRepo repository.UserRepository, jwtService *auth.JWTService) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtService: jwtService,
	}
}

// Register создает нового пользователя. Пароль хешируется bcrypt-хуком
// сущности перед сохранением.
func (s *AuthService) Register(username, email, password, firstName, lastName string) (*entity.User, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))

	if username == "" || email == "" {
		return nil, fmt.Errorf("%w: username and email are required", apperrors.ErrValidation)
	}
	if len(password) < 8 {
		return nil, fmt.Errorf("%w: password must be at least 8 characters", apperrors.ErrValidation)
	}

	user := &entity.User{
		Username:  username,
		Email:     email,
		Password:  password,
		FirstName: firstName,
		LastName:  lastName,
	}

	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, fmt.Errorf("%w: username or email already taken", apperrors.ErrConflict)
		}
		return nil, err
	}

	log.Printf("[AuthService] Зарегистрирован пользователь id=%d username=%s", user.ID, user.Username)
	return user, nil
}

// Login проверяет учетные данные и возвращает JWT токен.
// Неверный логин и неверный пароль неразличимы для вызывающей стороны.
func (s *AuthService) Login(usernameOrEmail, password string) (string, *entity.User, error) {
	usernameOrEmail = strings.TrimSpace(usernameOrEmail)

	user, err := s.userRepo.GetByUsername(usernameOrEmail)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			return "", nil, err
		}
		user, err = s.userRepo.GetByEmail(strings.ToLower(usernameOrEmail))
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return "", nil, apperrors.ErrUnauthorized
			}
			return "", nil, err
		}
	}

	if !user.CheckPassword(password) {
		return "", nil, apperrors.ErrUnauthorized
	}

	token, err := s.jwtService.GenerateToken(user.ID, user.Username)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return token, user, nil
}
