package handler

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/courseward-api/internal/service"
)

type stubFeed struct {
	batches [][]service.QuizResultEvent
	calls   int
}

func (f *stubFeed) NextBatch(userID uint) ([]service.QuizResultEvent, error) {
	if f.calls >= len(f.batches) {
		return nil, nil
	}
	batch := f.batches[f.calls]
	f.calls++
	return batch, nil
}

// Накопившиеся к моменту подключения события должны уйти клиенту сразу,
// а не после первого тика поллера.
func TestSSEHandler_EmitsPendingEventsBeforeFirstTick(t *testing.T) {
	gin.SetMode(gin.TestMode)

	// Arrange: тик длиной в час — если событие пришло, то из стартового пакета
	feed := &stubFeed{batches: [][]service.QuizResultEvent{
		{{QuizID: 7, Time: "2026-08-31T10:00:00Z"}},
	}}
	h := NewSSEHandler(feed, time.Hour)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // клиент отключается сразу после первого пакета
	c.Request = httptest.NewRequest("GET", "/api/notifications/stream", nil).WithContext(ctx)
	c.Set("user_id", uint(7))

	// Act
	h.Stream(c)

	// Assert
	require.Equal(t, 1, feed.calls)
	body := w.Body.String()
	assert.Contains(t, body, "event: quiz_result")
	assert.Contains(t, body, `"quiz_id":7`)
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
}
