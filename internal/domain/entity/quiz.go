package entity

import (
	"time"
)

// Quiz представляет викторину, привязанную к курсу
type Quiz struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	CourseID    uint   `gorm:"not null;index" json:"course_id"`
	Title       string `gorm:"size:255;not null" json:"title"`
	Description string `gorm:"type:text;not null;default:''" json:"description"`

	// RewardCoins — условная награда за успешное прохождение
	RewardCoins int `gorm:"not null;default:0" json:"coins"`

	// MinCorrectRatio — минимальная доля правильных ответов для зачёта (0.0–1.0)
	MinCorrectRatio float64 `gorm:"not null;default:0" json:"min_correct_ratio"`

	Questions []Question `gorm:"foreignKey:QuizID" json:"questions,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Quiz) TableName() string {
	return "quizzes"
}
