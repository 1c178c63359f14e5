package entity

import (
	"time"
)

// Question представляет вопрос викторины.
// Вопрос существует только внутри своей викторины (cascade delete в миграциях).
type Question struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	QuizID uint   `gorm:"not null;index" json:"quiz_id"`
	Title  string `gorm:"size:255;not null" json:"title"`
	Text   string `gorm:"type:text;not null" json:"text"`

	// StudyMaterials — дополнительные учебные материалы к вопросу (опционально)
	StudyMaterials string `gorm:"type:text;not null;default:''" json:"study_materials,omitempty"`

	Options []AnswerOption `gorm:"foreignKey:QuestionID" json:"answers,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Question) TableName() string {
	return "questions"
}

// CorrectOption возвращает первый вариант ответа с флагом is_correct.
// Инвариант "ровно один правильный вариант" системой не навязывается:
// при нескольких помеченных побеждает первый, при нуле возвращается nil.
func (q *Question) CorrectOption() *AnswerOption {
	for i := range q.Options {
		if q.Options[i].IsCorrect {
			return &q.Options[i]
		}
	}
	return nil
}

// AnswerOption представляет вариант ответа на вопрос
type AnswerOption struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	QuestionID uint   `gorm:"not null;index" json:"question_id"`
	Text       string `gorm:"type:text;not null" json:"text"`
	IsCorrect  bool   `gorm:"not null;default:false" json:"-"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName определяет имя таблицы для GORM
func (AnswerOption) TableName() string {
	return "answer_options"
}
