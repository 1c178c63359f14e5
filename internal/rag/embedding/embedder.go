package embedding

import "context"

// Embedder отображает тексты в числовые векторы фиксированной длины.
// Реализация подключается через конфигурацию; ядро не делает предположений
// о размерности векторов.
type Embedder interface {
	// Embed возвращает ровно по одному вектору на каждый входной текст,
	// с сохранением порядка.
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}
