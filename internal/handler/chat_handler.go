package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/courseward-api/internal/middleware"
	"github.com/yourusername/courseward-api/internal/service"
)

// ChatHandler обрабатывает запросы к учебному ассистенту курса
type ChatHandler struct {
	chatService *service.ChatService
}

// NewChatHandler создает новый обработчик чата
func NewChatHandler(chatService *service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// Ask отвечает на вопрос пользователя с опорой на материалы курса
func (h *ChatHandler) Ask(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	courseID := c.MustGet("courseID").(uint)

	var req service.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reply, err := h.chatService.Ask(c.Request.Context(), userID, courseID, req)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": reply})
}
