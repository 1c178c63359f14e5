package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/yourusername/courseward-api/internal/domain/repository"
	"github.com/yourusername/courseward-api/internal/llm"
	apperrors "github.com/yourusername/courseward-api/internal/pkg/errors"
	"github.com/yourusername/courseward-api/internal/rag/composer"
)

// ChatMessage — сообщение истории диалога в терминах клиента
type ChatMessage struct {
	From string `json:"from" binding:"required,oneof=user bot"`
	Text string `json:"text" binding:"required"`
}

// ChatRequest — запрос ассистенту в контексте курса
type ChatRequest struct {
	UserMessage  string        `json:"user_message" binding:"required"`
	PrevMessages []ChatMessage `json:"prev_messages"`
	Help         QuizHelpInput `json:"help"`
}

// ChatService отвечает на вопросы пользователя, обогащая их материалами
// курса через векторный индекс
type ChatService struct {
	courseRepo repository.CourseRepository
	composer   *composer.Composer
	completer  llm.Completer
}

// NewChatService создает новый сервис ассистента
func NewChatService(courseRepo repository.CourseRepository, comp *composer.Composer, completer llm.Completer) *ChatService {
	return &ChatService{
		courseRepo: courseRepo,
		composer:   comp,
		completer:  completer,
	}
}

// Ask отвечает на сообщение пользователя. Сообщение обогащается
// контекстом из коллекции курса; если документов в курс еще не загружали,
// диалог уходит модели без изменений.
func (s *ChatService) Ask(ctx context.Context, userID, courseID uint, req ChatRequest) (string, error) {
	course, err := s.courseRepo.GetByID(courseID)
	if err != nil {
		return "", err
	}
	ok, err := s.courseRepo.IsOwnerOrMember(courseID, userID)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", apperrors.ErrForbidden
	}

	if strings.TrimSpace(req.UserMessage) == "" {
		return "", fmt.Errorf("%w: user_message is required", apperrors.ErrValidation)
	}

	grounded, err := s.composer.Compose(ctx, req.UserMessage, course.VectorCollection())
	if err != nil {
		return "", err
	}

	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: BuildQuizHelpPrompt(req.Help)},
	}
	for _, m := range req.PrevMessages {
		role := llm.RoleUser
		if m.From == "bot" {
			role = llm.RoleAssistant
		}
		messages = append(messages, llm.Message{Role: role, Content: m.Text})
	}
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: grounded})

	return s.completer.Complete(ctx, messages)
}
