package ingest

import (
	"strings"
)

// Порядок границ, по которым режем текст: абзац -> строка -> предложение -> слово.
var separators = []string{"\n\n", "\n", ". ", " "}

// TextSplitter режет текст на перекрывающиеся фрагменты фиксированного
// целевого размера, стараясь сохранять смысловые границы.
type TextSplitter struct {
	chunkSize int
	overlap   int
}

// NewTextSplitter создает сплиттер. overlap должен быть меньше chunkSize.
func NewTextSplitter(chunkSize, overlap int) *TextSplitter {
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = chunkSize / 5
	}
	return &TextSplitter{chunkSize: chunkSize, overlap: overlap}
}

// Split возвращает упорядоченную последовательность фрагментов.
// Последний фрагмент может быть короче целевого размера.
func (s *TextSplitter) Split(text string) []string {
	parts := splitRecursive(text, separators, s.chunkSize)
	return s.merge(parts)
}

// splitRecursive режет текст по первому подходящему разделителю; части,
// не влезающие в size, рекурсивно режутся по более мелкой границе.
func splitRecursive(text string, seps []string, size int) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if len(text) <= size {
		return []string{text}
	}
	if len(seps) == 0 {
		// Граница не нашлась, режем жестко по размеру
		var out []string
		for len(text) > size {
			out = append(out, text[:size])
			text = text[size:]
		}
		if text != "" {
			out = append(out, text)
		}
		return out
	}

	var parts []string
	for _, piece := range strings.SplitAfter(text, seps[0]) {
		if strings.TrimSpace(piece) == "" {
			continue
		}
		if len(piece) <= size {
			parts = append(parts, piece)
		} else {
			parts = append(parts, splitRecursive(piece, seps[1:], size)...)
		}
	}
	return parts
}

// merge склеивает мелкие части в чанки целевого размера, перенося
// хвост предыдущего чанка в начало следующего для перекрытия.
func (s *TextSplitter) merge(parts []string) []string {
	var chunks []string
	var window []string
	winLen := 0

	flush := func() {
		chunk := strings.TrimSpace(strings.Join(window, ""))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
	}

	for _, p := range parts {
		if winLen+len(p) > s.chunkSize && winLen > 0 {
			flush()
			// Сдвигаем окно: оставляем хвост не длиннее overlap
			for winLen > s.overlap || (winLen+len(p) > s.chunkSize && winLen > 0) {
				winLen -= len(window[0])
				window = window[1:]
			}
		}
		window = append(window, p)
		winLen += len(p)
	}
	if winLen > 0 {
		flush()
	}
	return chunks
}
