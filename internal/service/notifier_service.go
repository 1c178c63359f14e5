package service

import (
	"log"
	"time"

	"github.com/yourusername/courseward-api/internal/domain/repository"
)

// QuizResultEvent — событие "результат викторины готов"
type QuizResultEvent struct {
	QuizID uint   `json:"quiz_id"`
	Time   string `json:"time"`
}

// ChangeFeed — источник событий о новых результатах пользователя.
// Сейчас реализован опросом БД; интерфейс позволяет заменить его
// push-механизмом без изменения потребителей.
type ChangeFeed interface {
	NextBatch(userID uint) ([]QuizResultEvent, error)
}

// NotifierService находит необработанные результаты викторин и выдает
// их пакетами, помечая маркеры обработанными
type NotifierService struct {
	attemptRepo repository.AttemptRepository
}

// NewNotifierService создает новый сервис уведомлений
func NewNotifierService(attemptRepo repository.AttemptRepository) *NotifierService {
	return &NotifierService{attemptRepo: attemptRepo}
}

// NextBatch возвращает по одному событию на каждую викторину пользователя
// с необработанными маркерами и помечает все такие маркеры обработанными.
// Маркер поглощается не более одного раза за вызов; если процесс упадет
// между выдачей события и отметкой, событие повторится на следующем
// тике (доставка at-least-once).
func (s *NotifierService) NextBatch(userID uint) ([]QuizResultEvent, error) {
	quizIDs, err := s.attemptRepo.DistinctUnhandledQuizIDs(userID)
	if err != nil {
		return nil, err
	}

	events := make([]QuizResultEvent, 0, len(quizIDs))
	for _, quizID := range quizIDs {
		events = append(events, QuizResultEvent{
			QuizID: quizID,
			Time:   time.Now().UTC().Format(time.RFC3339),
		})

		updated, err := s.attemptRepo.MarkHandledByQuiz(quizID)
		if err != nil {
			// Событие уже в пакете: при сбое отметки оно продублируется
			// на следующем тике, что допустимо при at-least-once
			log.Printf("[Notifier] Не удалось пометить маркеры викторины %d: %v", quizID, err)
			continue
		}
		if updated == 0 {
			log.Printf("[Notifier] Маркеры викторины %d уже обработаны параллельным тиком", quizID)
		}
	}
	return events, nil
}
