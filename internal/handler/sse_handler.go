package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yourusername/courseward-api/internal/middleware"
	"github.com/yourusername/courseward-api/internal/service"
)

// SSEHandler транслирует события о готовых результатах викторин
// через server-sent events
type SSEHandler struct {
	feed         service.ChangeFeed
	pollInterval time.Duration
}

// NewSSEHandler создает новый обработчик SSE-потока
func NewSSEHandler(feed service.ChangeFeed, pollInterval time.Duration) *SSEHandler {
	if pollInterval <= 0 {
		pollInterval = time.Second
	}
	return &SSEHandler{feed: feed, pollInterval: pollInterval}
}

// Stream держит соединение открытым и раз в тик опроса отправляет
// клиенту события quiz_result. Соединение живет до отключения клиента.
func (h *SSEHandler) Stream(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "streaming is not supported"})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Writer.WriteHeader(http.StatusOK)
	flusher.Flush()

	ticker := time.NewTicker(h.pollInterval)
	defer ticker.Stop()

	// Сначала работа, потом сон: накопившиеся к моменту подключения
	// события уходят сразу, не дожидаясь первого тика
	ctx := c.Request.Context()
	for {
		if !h.emitBatch(c.Writer, flusher, userID) {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// emitBatch выдает клиенту очередной пакет событий. Возвращает false,
// когда запись в соединение не удалась и поток пора завершать.
func (h *SSEHandler) emitBatch(w io.Writer, flusher http.Flusher, userID uint) bool {
	events, err := h.feed.NextBatch(userID)
	if err != nil {
		// Временный сбой БД не должен рвать поток: маркеры
		// остались необработанными и будут выданы позже
		log.Printf("[SSE] Ошибка опроса событий пользователя %d: %v", userID, err)
		return true
	}
	for _, event := range events {
		payload, err := json.Marshal(event)
		if err != nil {
			log.Printf("[SSE] Ошибка сериализации события: %v", err)
			continue
		}
		if _, err := fmt.Fprintf(w, "id: %s\nevent: quiz_result\ndata: %s\n\n", uuid.NewString(), payload); err != nil {
			return false
		}
	}
	if len(events) > 0 {
		flusher.Flush()
	}
	return true
}
