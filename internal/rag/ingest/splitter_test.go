package ingest

import (
	"fmt"
	"strings"
	"testing"
	"unicode"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stripWhitespace убирает все пробельные символы для сравнения содержимого
func stripWhitespace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

func TestTextSplitter_EmptyText(t *testing.T) {
	splitter := NewTextSplitter(1000, 200)

	assert.Empty(t, splitter.Split(""))
	assert.Empty(t, splitter.Split("   \n\n  \t "))
}

func TestTextSplitter_ShortText(t *testing.T) {
	splitter := NewTextSplitter(1000, 200)

	chunks := splitter.Split("Короткий текст, влезающий в один фрагмент.")

	require.Len(t, chunks, 1)
	assert.Equal(t, "Короткий текст, влезающий в один фрагмент.", chunks[0])
}

func TestTextSplitter_ChunkSizeRespected(t *testing.T) {
	splitter := NewTextSplitter(100, 20)

	// Текст из множества коротких предложений
	var sb strings.Builder
	for i := 0; i < 50; i++ {
		sb.WriteString("Это предложение номер очередное. ")
	}

	chunks := splitter.Split(sb.String())

	require.NotEmpty(t, chunks)
	for i, c := range chunks {
		assert.LessOrEqualf(t, len(c), 100, "chunk %d exceeds target size", i)
	}
}

func TestTextSplitter_RoundTrip(t *testing.T) {
	// Arrange
	splitter := NewTextSplitter(120, 30)
	text := "Первый абзац о курсе.\n\nВторой абзац. Он содержит несколько предложений. " +
		"Каждое предложение заканчивается точкой.\n\nТретий абзац состоит из слов " +
		"достаточно длинного перечисления чтобы не влезть в один фрагмент целиком."

	// Act
	chunks := splitter.Split(text)

	// Assert: каждый непробельный символ исходного текста встречается
	// в склейке фрагментов в исходном порядке (перекрытие дает дубликаты,
	// но ничего не теряется)
	require.NotEmpty(t, chunks)
	joined := stripWhitespace(strings.Join(chunks, ""))
	pos := 0
	for _, r := range stripWhitespace(text) {
		idx := strings.IndexRune(joined[pos:], r)
		require.GreaterOrEqualf(t, idx, 0, "символ %q не найден после позиции %d", r, pos)
		pos += idx + len(string(r))
	}
}

func TestTextSplitter_Overlap(t *testing.T) {
	splitter := NewTextSplitter(80, 30)

	// Одно длинное "предложение" из пронумерованных слов: режется по словам
	var sb strings.Builder
	for i := 0; i < 40; i++ {
		sb.WriteString(fmt.Sprintf("слово%02d ", i))
	}

	chunks := splitter.Split(sb.String())

	require.Greater(t, len(chunks), 1)
	// Начало каждого следующего фрагмента должно встречаться в конце предыдущего
	for i := 1; i < len(chunks); i++ {
		head := chunks[i]
		if len(head) > 20 {
			head = head[:20]
		}
		assert.Containsf(t, chunks[i-1], strings.TrimSpace(head),
			"фрагмент %d не перекрывается с предыдущим", i)
	}
}

func TestTextSplitter_HardCutWithoutSeparators(t *testing.T) {
	splitter := NewTextSplitter(50, 10)

	// Одно "слово" длиннее целевого размера: режем жестко
	text := strings.Repeat("a", 130)
	chunks := splitter.Split(text)

	require.NotEmpty(t, chunks)
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c), 50)
	}
	assert.Equal(t, text, stripWhitespace(strings.Join(chunks, "")))
}
