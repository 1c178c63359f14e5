package composer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/courseward-api/internal/rag/vectorstore"
)

// stubEmbedder возвращает заранее заданные векторы по тексту
type stubEmbedder struct {
	vectors map[string][]float32
}

func (s *stubEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, ok := s.vectors[t]
		if !ok {
			v = []float32{0, 0}
		}
		out[i] = v
	}
	return out, nil
}

func TestComposer_FallbackOnMissingCollection(t *testing.T) {
	// Arrange
	store, err := vectorstore.NewFileStore(t.TempDir())
	require.NoError(t, err)
	embedder := &stubEmbedder{vectors: map[string][]float32{}}
	comp := NewComposer(embedder, store, 5)

	// Act: в курс еще не загружали документы
	prompt, err := comp.Compose(context.Background(), "Что такое интеграл?", "course1")

	// Assert: сообщение проходит без изменений, без ошибки
	require.NoError(t, err)
	assert.Equal(t, "Что такое интеграл?", prompt)
}

func TestComposer_GroundedPrompt(t *testing.T) {
	// Arrange
	store, err := vectorstore.NewFileStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, store.Upsert(ctx, "course1", []vectorstore.Record{
		{ID: "doc.pdf:0", Vector: []float32{1, 0}, Document: "Интеграл — это площадь под кривой."},
		{ID: "doc.pdf:1", Vector: []float32{0, 1}, Document: "Производная — это скорость изменения."},
	}))
	embedder := &stubEmbedder{vectors: map[string][]float32{
		"Что такое интеграл?": {1, 0},
	}}
	comp := NewComposer(embedder, store, 1)

	// Act
	prompt, err := comp.Compose(ctx, "Что такое интеграл?", "course1")

	// Assert: ближайший фрагмент пронумерован в секции CONTEXT,
	// исходное сообщение — в секции QUERY
	require.NoError(t, err)
	assert.Contains(t, prompt, "CONTEXT:\n1. Интеграл — это площадь под кривой.")
	assert.Contains(t, prompt, "QUERY:\nЧто такое интеграл?")
	assert.NotContains(t, prompt, "Производная")
}

func TestComposer_EmptyCollectionFallsBack(t *testing.T) {
	store, err := vectorstore.NewFileStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, store.Upsert(ctx, "course1", []vectorstore.Record{
		{ID: "doc.pdf:0", Vector: []float32{1, 0}, Document: "фрагмент"},
	}))
	require.NoError(t, store.DeleteByPrefix(ctx, "course1", "doc.pdf:"))

	comp := NewComposer(&stubEmbedder{}, store, 5)

	prompt, err := comp.Compose(ctx, "вопрос", "course1")

	require.NoError(t, err)
	assert.Equal(t, "вопрос", prompt)
}
