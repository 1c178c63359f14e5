package entity

import (
	"fmt"
	"time"
)

// CourseFile представляет загруженный в курс документ (PDF).
// Сам файл лежит в объектном хранилище, его чанки — в векторном индексе курса.
type CourseFile struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	CourseID    uint   `gorm:"not null;index" json:"course_id"`
	FileName    string `gorm:"size:255;not null" json:"file_name"`
	ContentType string `gorm:"size:100;not null;default:''" json:"content_type"`
	Size        int64  `gorm:"not null;default:0" json:"size"`

	// ChunkCount — сколько чанков документа проиндексировано в коллекции курса
	ChunkCount int `gorm:"not null;default:0" json:"chunk_count"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName определяет имя таблицы для GORM
func (CourseFile) TableName() string {
	return "course_files"
}

// StorageKey возвращает ключ объекта в файловом хранилище
func (f *CourseFile) StorageKey() string {
	return fmt.Sprintf("course%d/%s", f.CourseID, f.FileName)
}

// ChunkIDPrefix возвращает префикс id чанков документа в коллекции курса.
// id чанка = <имя файла>:<порядковый номер>.
func (f *CourseFile) ChunkIDPrefix() string {
	return f.FileName + ":"
}

// vectorCollectionName формирует имя коллекции векторного индекса по ID курса
func vectorCollectionName(courseID uint) string {
	return fmt.Sprintf("course%d", courseID)
}
