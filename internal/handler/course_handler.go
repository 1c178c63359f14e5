package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/courseward-api/internal/middleware"
	"github.com/yourusername/courseward-api/internal/service"
)

// CourseHandler обрабатывает запросы, связанные с курсами и членством
type CourseHandler struct {
	courseService *service.CourseService
}

// NewCourseHandler создает новый обработчик курсов
func NewCourseHandler(courseService *service.CourseService) *CourseHandler {
	return &CourseHandler{courseService: courseService}
}

// CreateCourseRequest представляет запрос на создание курса
type CreateCourseRequest struct {
	Title       string `json:"title" binding:"required,min=3,max=255"`
	Description string `json:"description" binding:"omitempty,max=2000"`
}

// CreateCourse обрабатывает запрос на создание курса
func (h *CourseHandler) CreateCourse(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	var req CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	course, err := h.courseService.Create(userID, req.Title, req.Description)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, course)
}

// ListCourses возвращает курсы текущего пользователя
func (h *CourseHandler) ListCourses(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	courses, err := h.courseService.ListForUser(userID)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"courses": courses})
}

// GetCourse возвращает курс по ID
func (h *CourseHandler) GetCourse(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	courseID := c.MustGet("courseID").(uint)

	course, err := h.courseService.GetForUser(courseID, userID)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, course)
}

// DeleteCourse удаляет курс вместе с его документами и индексом
func (h *CourseHandler) DeleteCourse(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	courseID := c.MustGet("courseID").(uint)

	if err := h.courseService.Delete(c.Request.Context(), courseID, userID); err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Course deleted"})
}

// InviteMemberRequest представляет запрос на приглашение участника
type InviteMemberRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// InviteMember добавляет пользователя в курс по email
func (h *CourseHandler) InviteMember(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	courseID := c.MustGet("courseID").(uint)

	var req InviteMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	invited, err := h.courseService.InviteByEmail(c.Request.Context(), courseID, userID, req.Email)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"member": invited})
}

// RemoveMember исключает участника из курса
func (h *CourseHandler) RemoveMember(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	courseID := c.MustGet("courseID").(uint)
	memberID := c.MustGet("memberID").(uint)

	if err := h.courseService.RemoveMember(courseID, userID, memberID); err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Member removed"})
}

// GetMembers возвращает участников курса
func (h *CourseHandler) GetMembers(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	courseID := c.MustGet("courseID").(uint)

	members, err := h.courseService.GetMembers(courseID, userID)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"members": members})
}
