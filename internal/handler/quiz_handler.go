package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/courseward-api/internal/middleware"
	"github.com/yourusername/courseward-api/internal/service"
)

// QuizHandler обрабатывает запросы, связанные с викторинами
type QuizHandler struct {
	quizService    *service.QuizService
	attemptService *service.AttemptService
}

// NewQuizHandler создает новый обработчик викторин
func NewQuizHandler(quizService *service.QuizService, attemptService *service.AttemptService) *QuizHandler {
	return &QuizHandler{
		quizService:    quizService,
		attemptService: attemptService,
	}
}

// CreateQuizRequest представляет запрос на создание викторины с вопросами
type CreateQuizRequest struct {
	Title           string                  `json:"title" binding:"required,min=3,max=255"`
	Description     string                  `json:"description" binding:"omitempty,max=2000"`
	RewardCoins     int                     `json:"coins" binding:"omitempty,min=0"`
	MinCorrectRatio float64                 `json:"min_correct_ratio" binding:"min=0,max=1"`
	Questions       []service.QuestionInput `json:"questions" binding:"required,min=1,dive"`
}

// CreateQuiz обрабатывает запрос на создание викторины
func (h *QuizHandler) CreateQuiz(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	courseID := c.MustGet("courseID").(uint)

	var req CreateQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	quiz, err := h.quizService.Create(courseID, userID, req.Title, req.Description,
		req.RewardCoins, req.MinCorrectRatio, req.Questions)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, quiz)
}

// GetCourseProgress возвращает викторины курса с прогрессом
// текущего пользователя
func (h *QuizHandler) GetCourseProgress(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	courseID := c.MustGet("courseID").(uint)

	progress, err := h.quizService.GetCourseProgress(courseID, userID)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, progress)
}

// ListQuizzes возвращает викторины курса
func (h *QuizHandler) ListQuizzes(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	courseID := c.MustGet("courseID").(uint)

	quizzes, err := h.quizService.ListByCourse(courseID, userID)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"quizzes": quizzes})
}

// GetQuiz возвращает викторину с вопросами для прохождения.
// Флаги правильности вариантов наружу не сериализуются.
func (h *QuizHandler) GetQuiz(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	quizID := c.MustGet("quizID").(uint)

	quiz, err := h.quizService.GetForUser(quizID, userID)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, quiz)
}

// DeleteQuiz удаляет викторину
func (h *QuizHandler) DeleteQuiz(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	quizID := c.MustGet("quizID").(uint)

	if err := h.quizService.Delete(quizID, userID); err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Quiz deleted"})
}

// SubmitQuizRequest представляет отправку ответов на викторину
type SubmitQuizRequest struct {
	Answers []service.AnswerInput `json:"answers" binding:"required,dive"`
}

// SubmitQuiz засчитывает попытку прохождения викторины
func (h *QuizHandler) SubmitQuiz(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	quizID := c.MustGet("quizID").(uint)

	var req SubmitQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.attemptService.Submit(c.Request.Context(), userID, quizID, req.Answers)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// GetQuizResult возвращает попытку текущего пользователя с обратной связью
func (h *QuizHandler) GetQuizResult(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	quizID := c.MustGet("quizID").(uint)

	attempt, err := h.attemptService.GetResult(userID, quizID)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, attempt)
}

// ExportQuizResults выгружает результаты викторины в xlsx
func (h *QuizHandler) ExportQuizResults(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	quizID := c.MustGet("quizID").(uint)

	data, err := h.quizService.ExportResultsXLSX(quizID, userID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="quiz_%d_results.xlsx"`, quizID))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
