package composer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/yourusername/courseward-api/internal/rag/embedding"
	"github.com/yourusername/courseward-api/internal/rag/vectorstore"
)

const defaultTopK = 5

// Composer собирает обоснованный промпт: извлекает ближайшие фрагменты
// документов курса и подставляет их контекстом к сообщению пользователя.
type Composer struct {
	embedder embedding.Embedder
	store    vectorstore.Store
	topK     int
}

// NewComposer создает композер. topK <= 0 заменяется умолчанием.
func NewComposer(embedder embedding.Embedder, store vectorstore.Store, topK int) *Composer {
	if topK <= 0 {
		topK = defaultTopK
	}
	return &Composer{embedder: embedder, store: store, topK: topK}
}

// Compose возвращает промпт с секциями CONTEXT и QUERY.
// Если коллекция не существует (в курс еще не загружали документы),
// сообщение возвращается без изменений — это штатное поведение,
// а не ошибка.
func (c *Composer) Compose(ctx context.Context, userMessage, collection string) (string, error) {
	vectors, err := c.embedder.Embed(ctx, []string{userMessage})
	if err != nil {
		return "", fmt.Errorf("failed to embed user message: %w", err)
	}
	if len(vectors) != 1 {
		return "", fmt.Errorf("embedder returned %d vectors for a single message", len(vectors))
	}

	results, err := c.store.Query(ctx, collection, vectors[0], c.topK)
	if err != nil {
		if errors.Is(err, vectorstore.ErrCollectionNotFound) {
			log.Printf("[Composer] Коллекция %s не существует, передаем сообщение без контекста", collection)
			return userMessage, nil
		}
		return "", fmt.Errorf("failed to query collection %s: %w", collection, err)
	}
	if len(results) == 0 {
		return userMessage, nil
	}

	var sb strings.Builder
	sb.WriteString("Use the course materials below to answer. Ignore context that is not relevant to the query.\n\n")
	sb.WriteString("CONTEXT:\n")
	for i, r := range results {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, strings.TrimSpace(r.Document)))
	}
	sb.WriteString("\nQUERY:\n")
	sb.WriteString(userMessage)
	return sb.String(), nil
}
