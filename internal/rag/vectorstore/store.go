package vectorstore

import (
	"context"
	"errors"
)

// ErrCollectionNotFound возвращается при запросе к несуществующей коллекции.
// Пустая коллекция ошибкой не является и дает пустой результат.
var ErrCollectionNotFound = errors.New("vector collection not found")

// Record — одна запись индекса: фрагмент документа и его вектор.
type Record struct {
	ID       string    `json:"id"`
	Vector   []float32 `json:"vector"`
	Document string    `json:"document"`
}

// Result — результат поиска: фрагмент и косинусное расстояние до запроса.
type Result struct {
	Document string
	Distance float64
}

// Store — векторный индекс с разбиением на именованные коллекции
// (одна коллекция на курс). Поиска между коллекциями нет.
type Store interface {
	// Upsert добавляет записи в коллекцию, создавая её при необходимости.
	// Повторное использование id перезаписывает прежнее содержимое.
	Upsert(ctx context.Context, collection string, records []Record) error

	// Query возвращает не более k ближайших фрагментов по возрастанию
	// расстояния. Для несуществующей коллекции — ErrCollectionNotFound.
	Query(ctx context.Context, collection string, vector []float32, k int) ([]Result, error)

	// DeleteByPrefix удаляет записи коллекции с данным префиксом id
	// (используется при удалении файла курса).
	DeleteByPrefix(ctx context.Context, collection string, prefix string) error

	// DeleteCollection удаляет коллекцию целиком.
	DeleteCollection(ctx context.Context, collection string) error
}
