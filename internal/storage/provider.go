package storage

import (
	"context"
	"io"
)

// Provider — хранилище загруженных документов курса.
// Реализация (локальный диск или MinIO) выбирается конфигурацией.
type Provider interface {
	// Upload сохраняет содержимое под заданным ключом
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	// Download возвращает содержимое объекта; закрыть reader обязан вызывающий
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete удаляет объект; отсутствие объекта ошибкой не считается
	Delete(ctx context.Context, key string) error
}
