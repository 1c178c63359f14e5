package ingest

import (
	"bytes"
	"fmt"
	"log"
	"strings"

	"github.com/ledongthuc/pdf"

	apperrors "github.com/yourusername/courseward-api/internal/pkg/errors"
)

// isPDF проверяет магические байты PDF ("%PDF-")
func isPDF(data []byte) bool {
	return len(data) >= 5 && string(data[:5]) == "%PDF-"
}

// ExtractPDF извлекает текст из PDF постранично.
// Страницы без текста дают пустую строку и не прерывают извлечение целиком.
// Не-PDF содержимое отклоняется как ошибка валидации.
func ExtractPDF(data []byte) (string, error) {
	if !isPDF(data) {
		return "", fmt.Errorf("%w: file is not a PDF document", apperrors.ErrValidation)
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: failed to parse PDF: %v", apperrors.ErrValidation, err)
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			sb.WriteString("\n")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// Битая страница не должна обрушить загрузку всего документа
			log.Printf("[Ingest] Не удалось извлечь текст со страницы %d: %v", i, err)
			text = ""
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}

	return sb.String(), nil
}
