package entity

import (
	"time"
)

// QuizAttempt представляет единственную зачётную попытку пользователя пройти викторину.
// Уникальность пары (user_id, quiz_id) гарантируется индексом idx_attempt_user_quiz:
// проверка "уже проходил" в сервисе остаётся, но гонку закрывает именно констрейнт.
type QuizAttempt struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	QuizID      uint      `gorm:"not null;index;uniqueIndex:idx_attempt_user_quiz" json:"quiz_id"`
	UserID      uint      `gorm:"not null;index;uniqueIndex:idx_attempt_user_quiz" json:"user_id"`
	AttemptedAt time.Time `gorm:"not null" json:"attempted_at"`

	CorrectAnswers int `gorm:"not null;default:0" json:"correct_answers"`
	TotalAnswers   int `gorm:"not null;default:0" json:"total_answers"`

	// Feedback — текст обратной связи от LLM. Пустая строка означает, что
	// генерация обратной связи не удалась; попытка при этом остаётся зачтённой.
	Feedback string `gorm:"type:text;not null;default:''" json:"feedback"`

	Answers []QuizAttemptAnswer `gorm:"foreignKey:AttemptID" json:"answers,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (QuizAttempt) TableName() string {
	return "quiz_attempts"
}

// QuizAttemptAnswer представляет выбранный пользователем вариант ответа на один вопрос.
// Строки принадлежат попытке и каскадно удаляются вместе с ней.
type QuizAttemptAnswer struct {
	ID             uint `gorm:"primaryKey" json:"id"`
	AttemptID      uint `gorm:"not null;index" json:"attempt_id"`
	QuestionID     uint `gorm:"not null;index" json:"question_id"`
	AnswerOptionID uint `gorm:"not null" json:"answer_option_id"`
}

// TableName определяет имя таблицы для GORM
func (QuizAttemptAnswer) TableName() string {
	return "quiz_attempt_answers"
}

// HandleQuizAttempt — маркер очереди уведомлений: создаётся вместе с попыткой,
// поглощается поллером ровно один раз (handled = true).
type HandleQuizAttempt struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	AttemptID uint `gorm:"not null;index" json:"attempt_id"`
	Handled   bool `gorm:"not null;default:false;index" json:"handled"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (HandleQuizAttempt) TableName() string {
	return "handle_quiz_attempts"
}
