package entity

import (
	"time"
)

// Course представляет учебный курс, созданный пользователем
type Course struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"type:text;not null;default:''" json:"description"`
	OwnerID     uint      `gorm:"not null;index" json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Course) TableName() string {
	return "courses"
}

// VectorCollection возвращает имя коллекции векторного индекса для курса.
// Все загруженные в курс документы индексируются в одну коллекцию.
func (c *Course) VectorCollection() string {
	return vectorCollectionName(c.ID)
}

// CourseMember представляет членство пользователя в курсе
type CourseMember struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	CourseID uint `gorm:"not null;index;uniqueIndex:idx_course_member" json:"course_id"`
	UserID   uint `gorm:"not null;index;uniqueIndex:idx_course_member" json:"user_id"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName определяет имя таблицы для GORM
func (CourseMember) TableName() string {
	return "course_members"
}
